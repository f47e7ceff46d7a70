package logparse

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recall/core"
)

func TestExtractTextContent_PlainString(t *testing.T) {
	content := json.RawMessage(`"just a plain message"`)
	assert.Equal(t, "just a plain message", ExtractTextContent(content))
}

func TestExtractTextContent_TextBlocks(t *testing.T) {
	content := json.RawMessage(`[
		{"type":"thinking","thinking":"hidden reasoning"},
		{"type":"text","text":"A"},
		{"type":"tool_use","name":"run","input":{}},
		{"type":"text","text":"B"}
	]`)
	assert.Equal(t, "A\nB", ExtractTextContent(content))
}

func TestExtractTextContent_OnlyNonTextBlocks(t *testing.T) {
	content := json.RawMessage(`[{"type":"thinking","thinking":"..."}]`)
	assert.Equal(t, "", ExtractTextContent(content))
}

func TestExtractTextContent_Empty(t *testing.T) {
	assert.Equal(t, "", ExtractTextContent(nil))
	assert.Equal(t, "", ExtractTextContent(json.RawMessage(`42`)))
}

func TestExtract_UserMessage(t *testing.T) {
	rec := Record{
		ByteOffset: 128,
		LineNumber: 7,
		Text:       `{"type":"user","uuid":"u-1","message":{"content":"how does resume work?"},"timestamp":"2025-06-01T12:00:00Z","sessionId":"s-1"}`,
	}

	msg, ok := Extract(rec, "/logs/p/session.jsonl")
	require.True(t, ok)
	assert.Equal(t, "u-1", msg.UUID)
	assert.Equal(t, core.RoleUser, msg.Role)
	assert.Equal(t, "how does resume work?", msg.Content)
	assert.Equal(t, "2025-06-01T12:00:00Z", msg.Timestamp)
	assert.Equal(t, "s-1", msg.SessionID)
	assert.Equal(t, "/logs/p/session.jsonl", msg.FilePath)
	assert.Equal(t, 7, msg.LineNumber)
	assert.Equal(t, int64(128), msg.ByteOffset)
}

func TestExtract_AssistantBlocks(t *testing.T) {
	rec := Record{
		LineNumber: 1,
		Text:       `{"type":"assistant","uuid":"a-1","message":{"content":[{"type":"text","text":"an answer"}]},"timestamp":"2025-06-01T12:00:01Z","sessionId":"s-1"}`,
	}

	msg, ok := Extract(rec, "f.jsonl")
	require.True(t, ok)
	assert.Equal(t, core.RoleAssistant, msg.Role)
	assert.Equal(t, "an answer", msg.Content)
}

func TestExtract_SkipsNonMessageTypes(t *testing.T) {
	skipped := []string{
		`{"type":"file-history-snapshot","uuid":"x","message":{"content":"looks like text"}}`,
		`{"type":"summary","summary":"a summary"}`,
		`{"type":"system","message":{"content":"system note"}}`,
	}
	for _, line := range skipped {
		_, ok := Extract(Record{LineNumber: 1, Text: line}, "f.jsonl")
		assert.False(t, ok, "should skip: %s", line)
	}
}

func TestExtract_SkipsMalformedJSON(t *testing.T) {
	_, ok := Extract(Record{LineNumber: 1, Text: `{"type":"user",`}, "f.jsonl")
	assert.False(t, ok)

	_, ok = Extract(Record{LineNumber: 1, Text: ""}, "f.jsonl")
	assert.False(t, ok)
}

func TestExtract_SkipsWhitespaceOnlyContent(t *testing.T) {
	_, ok := Extract(Record{
		LineNumber: 1,
		Text:       `{"type":"user","uuid":"u","message":{"content":"   \n\t"}}`,
	}, "f.jsonl")
	assert.False(t, ok)
}

func TestExtract_ThinkingOnlyAssistantDropped(t *testing.T) {
	_, ok := Extract(Record{
		LineNumber: 1,
		Text:       `{"type":"assistant","uuid":"a","message":{"content":[{"type":"thinking","thinking":"internal"}]}}`,
	}, "f.jsonl")
	assert.False(t, ok)
}

func TestExtract_EmptyUUIDAllowed(t *testing.T) {
	msg, ok := Extract(Record{
		LineNumber: 1,
		Text:       `{"type":"user","message":{"content":"no uuid"}}`,
	}, "f.jsonl")
	require.True(t, ok)
	assert.Empty(t, msg.UUID)
}
