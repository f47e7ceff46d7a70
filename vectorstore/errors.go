// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package vectorstore

import "errors"

var (
	// ErrBackendUnreachable indicates the store backend could not be
	// reached. Callers must surface this distinctly from an empty
	// result set.
	ErrBackendUnreachable = errors.New("cannot reach the index backend")

	// ErrEmbeddingCountMismatch indicates the embedding provider
	// returned a different number of vectors than messages submitted.
	// This is a contract violation, not a recoverable condition.
	ErrEmbeddingCountMismatch = errors.New("embedding count does not match message count")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("store is closed")
)
