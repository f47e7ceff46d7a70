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


// Package vectorstore provides the vector storage abstraction for recall.
//
// This package defines the Store interface that decouples the ingestion
// and query coordinators from the storage implementation. Two backends
// implement it interchangeably: a networked Qdrant REST backend
// (vectorstore/qdrant) and an embedded BadgerDB backend
// (vectorstore/badger). Callers must be able to swap one for the other
// without behavior change beyond backend-specific status strings.
//
// # Constructor Return Type Pattern
//
// Public constructors return the Store interface to enforce abstraction:
//
//	store, err := qdrant.NewStore(cfg, embedder)  // returns vectorstore.Store
//
// # Identity
//
// Both backends upsert by point identifier: re-ingesting a message with
// the same identifier overwrites the stored vector rather than
// duplicating it. Repeating an ingestion run from an unmoved offset is
// therefore idempotent.
//
// # Thread Safety
//
// Search and Stats are safe for concurrent use. At most one ingestion
// writer per collection is assumed; see the ingest package.
package vectorstore
