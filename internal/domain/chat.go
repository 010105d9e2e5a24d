package domain

import (
	"fmt"
	"time"
)

// ChatTurn is one completed question/answer exchange recorded against a
// session. Turns are append-only; they are never updated or deleted.
type ChatTurn struct {
	ID        int64
	SessionID string
	Question  string
	Answer    string
	CreatedAt time.Time
}

// ValidateChatTurn validates a ChatTurn instance
func ValidateChatTurn(t *ChatTurn) error {
	if t == nil {
		return fmt.Errorf("chat turn cannot be nil")
	}

	if t.SessionID == "" {
		return fmt.Errorf("chat turn session ID is required")
	}

	if t.Question == "" {
		return fmt.Errorf("chat turn question is required")
	}

	if t.Answer == "" {
		return fmt.Errorf("chat turn answer is required")
	}

	return nil
}
