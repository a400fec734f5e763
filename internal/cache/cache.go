package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// Cache stores follow-up answers so repeating a question within a session
// does not cost another generation call.
type Cache interface {
	// GetAnswer retrieves a cached answer by key. Empty string and false
	// on a miss.
	GetAnswer(ctx context.Context, key string) (string, bool, error)

	// SetAnswer stores an answer with TTL.
	SetAnswer(ctx context.Context, key string, answer string, ttl time.Duration) error

	// Close closes the cache connection.
	Close() error
}

// Key derives a stable cache key for a question within a session.
func Key(sessionID uuid.UUID, question string) string {
	h := sha256.Sum256([]byte(sessionID.String() + "\x00" + question))
	return hex.EncodeToString(h[:])
}
