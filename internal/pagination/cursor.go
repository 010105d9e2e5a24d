// Package pagination implements the keyset cursors used by the community
// feed endpoints. A cursor pins the id and creation time of the last item a
// client saw, so pages stay stable while neighbors keep posting.
package pagination

import (
	"encoding/base64"
	"errors"
	"strings"
	"time"
)

// Cursor is the decoded position of the last item on the previous page.
type Cursor struct {
	LastID    string
	CreatedAt time.Time
}

// PageResult is one page of a feed listing.
type PageResult[T any] struct {
	Items   []T    `json:"items"`
	Cursor  string `json:"cursor,omitempty"`
	HasMore bool   `json:"has_more"`
}

// ErrInvalidCursor is returned for a cursor that was not produced by
// EncodeCursor.
var ErrInvalidCursor = errors.New("malformed feed cursor")

// EncodeCursor packs the last item's id and creation time into an opaque
// cursor string. An empty id yields an empty cursor, meaning no next page.
func EncodeCursor(lastID string, createdAt time.Time) string {
	if lastID == "" {
		return ""
	}
	raw := lastID + "|" + createdAt.UTC().Format(time.RFC3339Nano)
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor unpacks a cursor produced by EncodeCursor. An empty cursor
// decodes to nil, the first page.
func DecodeCursor(cursor string) (*Cursor, error) {
	if cursor == "" {
		return nil, nil
	}

	raw, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	id, stamp, ok := strings.Cut(string(raw), "|")
	if !ok || id == "" {
		return nil, ErrInvalidCursor
	}

	createdAt, err := time.Parse(time.RFC3339Nano, stamp)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	return &Cursor{LastID: id, CreatedAt: createdAt}, nil
}
