package repository

import (
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// parseIDs keeps only well-formed UUIDs; anything else cannot match a row.
func parseIDs(ids []string) []uuid.UUID {
	parsed := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if u, err := uuid.Parse(id); err == nil {
			parsed = append(parsed, u)
		}
	}
	return parsed
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
