// Package session stores wizard sessions between requests. Every backend
// keeps sessions as serialized JSON so a loaded session never aliases another
// request's copy, and every backend expires idle sessions after a TTL.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/albapepper/scoracle-fans/internal/profile"
	"github.com/albapepper/scoracle-fans/internal/wizard"
)

// ErrNotFound is returned for unknown or expired session IDs.
var ErrNotFound = errors.New("session not found")

// DefaultTTL is how long an untouched session lives.
const DefaultTTL = 2 * time.Hour

// Store persists sessions for the lifetime of a wizard run.
type Store interface {
	// Create starts a new session at step 1 and saves it.
	Create(ctx context.Context) (*wizard.Session, error)
	Get(ctx context.Context, id string) (*wizard.Session, error)
	// Save writes s back and refreshes its expiry.
	Save(ctx context.Context, s *wizard.Session) error
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	Backend() string
}

// Sweeper is implemented by stores whose expired sessions must be removed
// explicitly.
type Sweeper interface {
	Sweep(ctx context.Context) (int64, error)
}

func newSession(now time.Time) *wizard.Session {
	return wizard.NewSession(uuid.NewString(), now.UTC())
}

func encode(s *wizard.Session) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode session %s: %w", s.ID, err)
	}
	return data, nil
}

func decode(data []byte) (*wizard.Session, error) {
	var s wizard.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if s.Record == nil {
		s.Record = profile.New()
	}
	return &s, nil
}
