package confession

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ghost.confess/internal/metrics"
	"ghost.confess/internal/models"
	"ghost.confess/internal/store"
)

// TTL is the fixed retention window after which a confession becomes
// permanently unreachable.
const TTL = 72 * time.Hour

// Caller-supplied timestamps further than this from server time are
// treated as implausible and replaced with server time.
const timestampSlack = 24 * time.Hour

// ErrInvalidInput marks a caller error: a required field was missing or
// empty.
var ErrInvalidInput = errors.New("invalid input")

// FetchResult is the verbatim pass-through of the encrypted payload.
type FetchResult struct {
	Ciphertext string
	Nonce      string
	Timestamp  time.Time
}

// Options configures retention policy.
type Options struct {
	// DeleteOnRead removes a confession after its first successful fetch.
	// Default is read-many until expiry or explicit delete.
	DeleteOnRead bool
}

// Service composes the store and the aggregator. It is the only entry
// point external callers use.
type Service struct {
	store store.Store
	agg   *metrics.Aggregator
	opts  Options
	now   func() time.Time
}

func NewService(st store.Store, agg *metrics.Aggregator, opts Options) *Service {
	return &Service{
		store: st,
		agg:   agg,
		opts:  opts,
		now:   time.Now,
	}
}

// Create validates the submission, stores it under a fresh id, records an
// anonymized metrics sample, and returns the id.
func (s *Service) Create(ctx context.Context, sessionID, ciphertext, nonce string, timestamp time.Time) (string, error) {
	if sessionID == "" {
		return "", fmt.Errorf("%w: sessionId is required", ErrInvalidInput)
	}
	if ciphertext == "" {
		return "", fmt.Errorf("%w: ciphertext is required", ErrInvalidInput)
	}
	if nonce == "" {
		return "", fmt.Errorf("%w: nonce is required", ErrInvalidInput)
	}

	createdAt := s.plausibleTimestamp(timestamp)

	c := &models.Confession{
		SessionID:  sessionID,
		Ciphertext: ciphertext,
		Nonce:      nonce,
		CreatedAt:  createdAt,
		ExpiresAt:  createdAt.Add(TTL),
	}

	id, err := s.store.Insert(ctx, c)
	if err != nil {
		return "", fmt.Errorf("storing confession: %w", err)
	}

	s.agg.Record(models.NewMetricsSample(len(ciphertext), createdAt))
	return id, nil
}

// Fetch returns the encrypted payload and bumps the read counter. With
// DeleteOnRead enabled the confession is removed after a successful read.
func (s *Service) Fetch(ctx context.Context, id string) (*FetchResult, error) {
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.IncrementReads(ctx, id); err != nil {
		// Deleted or expired between the lookup and the bump; the record
		// is gone, so report it gone.
		return nil, err
	}

	if s.opts.DeleteOnRead {
		if _, err := s.store.Delete(ctx, id); err != nil {
			return nil, fmt.Errorf("deleting after read: %w", err)
		}
	}

	return &FetchResult{
		Ciphertext: c.Ciphertext,
		Nonce:      c.Nonce,
		Timestamp:  c.CreatedAt,
	}, nil
}

// Delete removes the confession and reports whether one was removed.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	return s.store.Delete(ctx, id)
}

func (s *Service) plausibleTimestamp(ts time.Time) time.Time {
	now := s.now()
	if ts.IsZero() {
		return now
	}
	if ts.Before(now.Add(-timestampSlack)) || ts.After(now.Add(timestampSlack)) {
		return now
	}
	return ts
}
