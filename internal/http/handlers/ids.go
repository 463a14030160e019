package handlers

import "github.com/google/uuid"

// isWellFormedID rejects malformed identifiers before any store access, so a
// garbage id is a 400 rather than a store round-trip.
func isWellFormedID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
