package domain

import (
	"fmt"
	"strings"
	"time"
)

// HelpRequest represents a neighbor-to-neighbor request for help
type HelpRequest struct {
	ID          string
	Description string
	Location    string
	Volunteers  []string
	IsResolved  bool
	CreatedAt   time.Time
}

// NewHelpRequest creates a new HelpRequest instance
func NewHelpRequest(id, description, location string, createdAt time.Time) *HelpRequest {
	return &HelpRequest{
		ID:          id,
		Description: description,
		Location:    location,
		CreatedAt:   createdAt,
	}
}

// ValidateHelpRequest validates a HelpRequest instance
func ValidateHelpRequest(r *HelpRequest) error {
	if r == nil {
		return fmt.Errorf("help request cannot be nil")
	}

	if r.ID == "" {
		return fmt.Errorf("help request ID is required")
	}

	if strings.TrimSpace(r.Description) == "" {
		return fmt.Errorf("help request description is required")
	}

	return nil
}

// HasVolunteer reports whether the given user already volunteered.
func (r *HelpRequest) HasVolunteer(userID string) bool {
	for _, v := range r.Volunteers {
		if v == userID {
			return true
		}
	}
	return false
}
