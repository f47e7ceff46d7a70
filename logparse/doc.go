// Package logparse reads append-only JSONL conversation logs and
// extracts the messages worth indexing.
//
// A Scanner splits a log file into physical lines starting from an
// arbitrary byte offset, resynchronizing to the next line boundary when
// the offset falls inside a line. Record numbering is always computed
// from the true start of the file so that line numbers reported in
// search results stay stable across incremental runs.
//
// Extract reduces one raw line to a core.Message, skipping anything
// that is not a user or assistant message with non-empty text content.
package logparse
