package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/neighborly-labs/neighborly/internal/domain"
	"github.com/neighborly-labs/neighborly/internal/pagination"
)

// HelpRequestRepository handles persistence of help requests.
type HelpRequestRepository struct {
	pool *pgxpool.Pool
}

func NewHelpRequestRepository(pool *pgxpool.Pool) *HelpRequestRepository {
	return &HelpRequestRepository{pool: pool}
}

// Create inserts a new help request.
func (r *HelpRequestRepository) Create(ctx context.Context, req *domain.HelpRequest) error {
	if err := domain.ValidateHelpRequest(req); err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid help request", err)
	}

	volunteers := req.Volunteers
	if volunteers == nil {
		volunteers = []string{}
	}

	err := r.pool.QueryRow(ctx,
		`INSERT INTO help_requests (id, description, location, volunteers, is_resolved)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at`,
		req.ID,
		req.Description,
		req.Location,
		volunteers,
		req.IsResolved,
	).Scan(&req.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create help request: %w", err)
	}
	return nil
}

// GetByID fetches a single help request.
func (r *HelpRequestRepository) GetByID(ctx context.Context, id string) (*domain.HelpRequest, error) {
	var req domain.HelpRequest
	err := r.pool.QueryRow(ctx,
		`SELECT id, description, location, volunteers, is_resolved, created_at
		 FROM help_requests WHERE id = $1`,
		id,
	).Scan(&req.ID, &req.Description, &req.Location, &req.Volunteers, &req.IsResolved, &req.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrHelpRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get help request: %w", err)
	}
	return &req, nil
}

// List returns help requests newest-first with cursor pagination.
func (r *HelpRequestRepository) List(ctx context.Context, limit int, cursor string) (*pagination.PageResult[*domain.HelpRequest], error) {
	if limit <= 0 {
		limit = 20
	}

	decoded, err := pagination.DecodeCursor(cursor)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid cursor", err)
	}

	var rows pgx.Rows
	if decoded != nil {
		rows, err = r.pool.Query(ctx,
			`SELECT id, description, location, volunteers, is_resolved, created_at
			 FROM help_requests
			 WHERE (created_at, id) < ($1, $2)
			 ORDER BY created_at DESC, id DESC
			 LIMIT $3`,
			decoded.CreatedAt, decoded.LastID, limit+1,
		)
	} else {
		rows, err = r.pool.Query(ctx,
			`SELECT id, description, location, volunteers, is_resolved, created_at
			 FROM help_requests
			 ORDER BY created_at DESC, id DESC
			 LIMIT $1`,
			limit+1,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list help requests: %w", err)
	}
	defer rows.Close()

	requests, err := scanHelpRequests(rows)
	if err != nil {
		return nil, err
	}

	hasMore := len(requests) > limit
	if hasMore {
		requests = requests[:limit]
	}

	result := &pagination.PageResult[*domain.HelpRequest]{
		Items:   requests,
		HasMore: hasMore,
	}
	if hasMore {
		last := requests[len(requests)-1]
		result.Cursor = pagination.EncodeCursor(last.ID, last.CreatedAt)
	}
	return result, nil
}

// ListAll returns every help request oldest-first for the corpus builder.
func (r *HelpRequestRepository) ListAll(ctx context.Context) ([]*domain.HelpRequest, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, description, location, volunteers, is_resolved, created_at
		 FROM help_requests
		 ORDER BY created_at ASC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list help requests: %w", err)
	}
	defer rows.Close()

	return scanHelpRequests(rows)
}

// AddVolunteer appends a volunteer to the request if not already present.
func (r *HelpRequestRepository) AddVolunteer(ctx context.Context, id, userID string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE help_requests
		 SET volunteers = array_append(volunteers, $1)
		 WHERE id = $2 AND NOT ($1 = ANY(volunteers))`,
		userID, id,
	)
	if err != nil {
		return fmt.Errorf("failed to add volunteer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Distinguish missing request from duplicate volunteer.
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return domain.ErrAlreadyVolunteered
	}
	return nil
}

// Resolve marks a help request as resolved.
func (r *HelpRequestRepository) Resolve(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE help_requests SET is_resolved = TRUE WHERE id = $1 AND is_resolved = FALSE`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to resolve help request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return domain.ErrHelpRequestResolved
	}
	return nil
}

func scanHelpRequests(rows pgx.Rows) ([]*domain.HelpRequest, error) {
	var requests []*domain.HelpRequest
	for rows.Next() {
		var req domain.HelpRequest
		if err := rows.Scan(&req.ID, &req.Description, &req.Location, &req.Volunteers, &req.IsResolved, &req.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan help request: %w", err)
		}
		requests = append(requests, &req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read help requests: %w", err)
	}
	return requests, nil
}
