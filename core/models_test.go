package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "same content produces same ID",
			content: "test content",
		},
		{
			name:    "empty string",
			content: "",
		},
		{
			name:    "long content",
			content: "This is a much longer piece of content that should still hash consistently",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestMessage_PointID_UsesUUID(t *testing.T) {
	a := Message{UUID: "abc", Content: "hello", FilePath: "x.jsonl", LineNumber: 1}
	b := Message{UUID: "abc", Content: "different", FilePath: "y.jsonl", LineNumber: 9}

	if a.PointID() != b.PointID() {
		t.Errorf("PointID() should depend only on UUID when UUID is set")
	}
}

func TestMessage_PointID_EmptyUUID(t *testing.T) {
	a := Message{Content: "hello", FilePath: "x.jsonl", LineNumber: 1}
	b := Message{Content: "hello", FilePath: "x.jsonl", LineNumber: 1}
	c := Message{Content: "hello", FilePath: "x.jsonl", LineNumber: 2}

	if a.PointID() != b.PointID() {
		t.Errorf("PointID() should be stable for identical messages")
	}
	if a.PointID() == c.PointID() {
		t.Errorf("PointID() should differ for messages on different lines")
	}
}
