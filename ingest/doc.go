// Package ingest orchestrates incremental ingestion of conversation
// logs into the vector store.
//
// The Coordinator walks a project's log files, resumes each from its
// last recorded byte offset, extracts indexable messages, writes them
// to the project's vector store collection, and records new offsets
// only after the write succeeds. Files within a project are processed
// independently, so a failure in one file does not block the others.
// Multiple projects are ingested concurrently on a worker pool.
package ingest
