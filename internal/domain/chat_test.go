package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateChatTurn(t *testing.T) {
	valid := func() *ChatTurn {
		return &ChatTurn{
			SessionID: "session-1",
			Question:  "When is the block party?",
			Answer:    "This Saturday at noon.",
		}
	}

	t.Run("valid turn passes", func(t *testing.T) {
		assert.NoError(t, ValidateChatTurn(valid()))
	})

	t.Run("nil turn fails", func(t *testing.T) {
		assert.Error(t, ValidateChatTurn(nil))
	})

	t.Run("missing session ID fails", func(t *testing.T) {
		turn := valid()
		turn.SessionID = ""
		assert.Error(t, ValidateChatTurn(turn))
	})

	t.Run("missing question fails", func(t *testing.T) {
		turn := valid()
		turn.Question = ""
		assert.Error(t, ValidateChatTurn(turn))
	})

	t.Run("missing answer fails", func(t *testing.T) {
		turn := valid()
		turn.Answer = ""
		assert.Error(t, ValidateChatTurn(turn))
	})
}
