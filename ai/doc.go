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


// Package ai defines the embedding service abstraction used by the
// ingestion and query pipelines.
//
// The Embedder interface decouples the rest of the system from the
// concrete embedding backend. The openai subpackage provides an
// implementation for OpenAI-compatible APIs (Ollama, LocalAI, vLLM);
// the mock subpackage provides a deterministic test double.
//
// Embedding models are expensive to load, so the package exposes a
// process-wide shared instance via Shared. The instance is constructed
// lazily on first use and stays resident for the process lifetime;
// there is no teardown contract.
package ai
