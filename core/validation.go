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


package core

import (
	"fmt"
	"strings"
)

// ValidateMessage validates a Message according to domain rules.
//
// Validation rules:
//   - Content must not be empty or whitespace-only
//   - Role must be user or assistant
//   - FilePath must not be empty
//   - LineNumber must be >= 1
//
// NOT validated:
//   - UUID (empty is legal, identity falls back to content hashing)
//   - Timestamp and SessionID (carried through as-is from the source)
func ValidateMessage(msg *Message) error {
	if msg == nil {
		return fmt.Errorf("%w: message is nil", ErrInvalidMessage)
	}

	if strings.TrimSpace(msg.Content) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, ErrEmptyContent)
	}

	if err := ValidateRole(msg.Role); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}

	if msg.FilePath == "" {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, ErrEmptyFilePath)
	}

	if msg.LineNumber < 1 {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, ErrInvalidLineNumber)
	}

	return nil
}

// ValidateRole validates that a role has a recognized value.
func ValidateRole(role string) error {
	if role != RoleUser && role != RoleAssistant {
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	return nil
}
