// Package ops implements the courtroom operations: room allocation, the
// lawsuit lifecycle, verdicts, guild settings, and the prison role.
//
// Every operation re-reads guild state from the Store; nothing is cached
// between calls. Expected user-facing outcomes are returned as court.Response
// values. Store and platform failures are returned as errors.
package ops

import (
	"crypto/rand"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/courtbot/internal/platform"
)

// Service runs court operations against a guild state store and a chat platform.
type Service struct {
	store    Store
	platform platform.Platform
	logger   *slog.Logger
}

// New creates a Service. If logger is nil, slog.Default() is used.
func New(store Store, p platform.Platform, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    store,
		platform: p,
		logger:   logger,
	}
}

// generateULID creates a new ULID string.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
