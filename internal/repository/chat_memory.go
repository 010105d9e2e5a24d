package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/neighborly-labs/neighborly/internal/domain"
)

// ChatMemoryRepository is the durable, append-only log of chat turns.
// The orchestrator is its sole writer; rows are never updated or deleted.
type ChatMemoryRepository struct {
	pool *pgxpool.Pool
}

func NewChatMemoryRepository(pool *pgxpool.Pool) *ChatMemoryRepository {
	return &ChatMemoryRepository{pool: pool}
}

// Append persists one completed turn with a server-assigned timestamp.
// The write is a single INSERT, so it succeeds or fails atomically.
func (r *ChatMemoryRepository) Append(ctx context.Context, sessionID, question, answer string) error {
	turn := &domain.ChatTurn{
		SessionID: sessionID,
		Question:  question,
		Answer:    answer,
	}
	if err := domain.ValidateChatTurn(turn); err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid chat turn", err)
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO chat_turns (session_id, question, answer) VALUES ($1, $2, $3)`,
		sessionID, question, answer,
	)
	if err != nil {
		return fmt.Errorf("failed to append chat turn: %w", err)
	}
	return nil
}

// History returns all turns for the session in append order. An unknown
// session yields an empty slice, not an error.
func (r *ChatMemoryRepository) History(ctx context.Context, sessionID string) ([]*domain.ChatTurn, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, session_id, question, answer, created_at
		 FROM chat_turns
		 WHERE session_id = $1
		 ORDER BY created_at ASC, id ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read chat history: %w", err)
	}
	defer rows.Close()

	turns := []*domain.ChatTurn{}
	for rows.Next() {
		var turn domain.ChatTurn
		if err := rows.Scan(&turn.ID, &turn.SessionID, &turn.Question, &turn.Answer, &turn.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat turn: %w", err)
		}
		turns = append(turns, &turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read chat turns: %w", err)
	}
	return turns, nil
}
