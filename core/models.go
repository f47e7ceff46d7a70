package core

import (
	"encoding/binary"
	"fmt"

	"github.com/go-crypt/x/blake2b"
)

// ID is a 64-bit identifier for indexed points.
// It is derived deterministically from message identity so that
// re-ingesting the same message always addresses the same point.
type ID uint64

// IDFromContent generates a deterministic ID from text using BLAKE2b hashing.
// Identical input always produces the identical ID.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Message roles recognized by the extractor. Every other record type
// in a log file is skipped.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single ingestible conversation message extracted from a
// log file. It is ephemeral: produced by the extractor, consumed by the
// ingestion coordinator, and discarded after indexing.
type Message struct {
	UUID       string // identifier supplied by the source record; may be empty
	Role       string // RoleUser or RoleAssistant
	Content    string // extracted plain text, non-empty after trimming
	Timestamp  string // ISO-8601 timestamp from the source record
	SessionID  string
	FilePath   string // originating log file
	LineNumber int    // 1-based line number within the file
	ByteOffset int64  // offset of the line start within the file
}

// PointID returns the stable point identifier for the message. Messages
// with an empty UUID fall back to a content-derived ID so that repeated
// ingestion still overwrites rather than duplicates.
func (m *Message) PointID() ID {
	if m.UUID != "" {
		return IDFromContent(m.UUID)
	}
	return IDFromContent(fmt.Sprintf("%s:%d:%s", m.FilePath, m.LineNumber, m.Content))
}

// SearchResult is one ranked hit returned from a vector store query.
type SearchResult struct {
	UUID       string
	Project    string // filled in by the query coordinator
	FilePath   string
	LineNumber int
	Role       string
	Snippet    string
	Score      float32
	Timestamp  string
	SessionID  string
}

// FileProgress tracks how far a single log file has been ingested.
// LastByteOffset is monotonically non-decreasing; IndexedCount
// accumulates across incremental runs.
type FileProgress struct {
	LastByteOffset int64  `json:"last_byte_offset"`
	IndexedCount   int    `json:"indexed_count"`
	LastIndexed    string `json:"last_indexed"`
}

// ProjectState is the persisted per-project ingestion state. The
// collection name is assigned once and must never change afterwards,
// since it addresses the project's vectors in the store.
type ProjectState struct {
	CollectionName string                   `json:"collection_name"`
	Files          map[string]*FileProgress `json:"files"`
}
