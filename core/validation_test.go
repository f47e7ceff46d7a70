package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validMessage() *Message {
	return &Message{
		UUID:       "uuid-1",
		Role:       RoleUser,
		Content:    "how do I resume from an offset?",
		Timestamp:  "2025-06-01T12:00:00Z",
		SessionID:  "session-1",
		FilePath:   "/logs/project/session.jsonl",
		LineNumber: 1,
	}
}

func TestValidateMessage_Valid(t *testing.T) {
	require.NoError(t, ValidateMessage(validMessage()))
}

func TestValidateMessage_Nil(t *testing.T) {
	err := ValidateMessage(nil)
	assert.ErrorIs(t, err, ErrInvalidMessage)
}

func TestValidateMessage_EmptyContent(t *testing.T) {
	msg := validMessage()
	msg.Content = "   \n\t"
	err := ValidateMessage(msg)
	assert.ErrorIs(t, err, ErrEmptyContent)
}

func TestValidateMessage_BadRole(t *testing.T) {
	msg := validMessage()
	msg.Role = "file-history-snapshot"
	err := ValidateMessage(msg)
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestValidateMessage_EmptyUUIDAllowed(t *testing.T) {
	msg := validMessage()
	msg.UUID = ""
	assert.NoError(t, ValidateMessage(msg))
}

func TestValidateMessage_LineNumber(t *testing.T) {
	msg := validMessage()
	msg.LineNumber = 0
	err := ValidateMessage(msg)
	assert.ErrorIs(t, err, ErrInvalidLineNumber)
}

func TestValidateRole(t *testing.T) {
	assert.NoError(t, ValidateRole(RoleUser))
	assert.NoError(t, ValidateRole(RoleAssistant))
	assert.Error(t, ValidateRole("system"))
	assert.Error(t, ValidateRole(""))
}
