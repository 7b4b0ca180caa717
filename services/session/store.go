// Package sessionsvc keeps the server-side login sessions behind the `sid` cookie.
package sessionsvc

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/academy/core"
)

const sidBytes = 32

var ErrNotFound = errors.New("session not found")

// Data is what a login session remembers.
type Data struct {
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store persists login sessions for a fixed TTL.
type Store interface {
	// Create starts a session for userID and returns its id.
	Create(ctx context.Context, userID string) (sid string, err error)
	// Get returns ErrNotFound for unknown or expired sessions.
	Get(ctx context.Context, sid string) (Data, error)
	Delete(ctx context.Context, sid string) error
}

func newSID() (string, error) {
	sid, err := core.RandomHex(sidBytes)
	return sid, errors.Wrap(err, "generating session id")
}
