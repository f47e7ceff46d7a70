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


package logparse

import (
	"encoding/json"
	"strings"

	"recall/core"
)

// rawRecord mirrors the JSONL envelope of a conversation log line.
// Only the fields needed for indexing are decoded.
type rawRecord struct {
	Type      string `json:"type"`
	UUID      string `json:"uuid"`
	Timestamp string `json:"timestamp"`
	SessionID string `json:"sessionId"`
	Message   struct {
		Content json.RawMessage `json:"content"`
	} `json:"message"`
}

// contentBlock is one element of a structured message body.
type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Extract reduces one raw record to an ingestible message.
//
// Records that fail to parse as JSON, whose type is not user or
// assistant, or whose extracted text is empty after trimming are
// skipped; skipping is not an error condition. filePath tags the
// resulting message with its origin.
func Extract(rec Record, filePath string) (*core.Message, bool) {
	line := strings.TrimSpace(rec.Text)
	if line == "" {
		return nil, false
	}

	var raw rawRecord
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return nil, false
	}

	if raw.Type != core.RoleUser && raw.Type != core.RoleAssistant {
		return nil, false
	}

	content := ExtractTextContent(raw.Message.Content)
	if strings.TrimSpace(content) == "" {
		return nil, false
	}

	return &core.Message{
		UUID:       raw.UUID,
		Role:       raw.Type,
		Content:    content,
		Timestamp:  raw.Timestamp,
		SessionID:  raw.SessionID,
		FilePath:   filePath,
		LineNumber: rec.LineNumber,
		ByteOffset: rec.ByteOffset,
	}, true
}

// ExtractTextContent extracts plain text from a message body.
//
// User messages carry a plain string, returned verbatim. Assistant
// messages carry an ordered array of typed blocks; only blocks of type
// "text" contribute, newline-joined in original order. Thinking traces,
// tool invocations and tool results are dropped.
func ExtractTextContent(content json.RawMessage) string {
	if len(content) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(content, &text); err == nil {
		return text
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(content, &elements); err != nil {
		return ""
	}

	parts := make([]string, 0, len(elements))
	for _, element := range elements {
		var block contentBlock
		if err := json.Unmarshal(element, &block); err != nil {
			continue
		}
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, "\n")
}
