package store

import (
	"context"
	"sync"
	"time"

	"ghost.confess/internal/ident"
	"ghost.confess/internal/models"
)

// Compile-time interface check
var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps confessions in a mutex-guarded map. Expired records
// are purged lazily on access and by a periodic cleanup loop; both paths
// are indistinguishable from an explicit delete. The issued set ensures an
// id is never handed out twice, even after its record is gone.
type MemoryStore struct {
	mu          sync.RWMutex
	confessions map[string]*models.Confession
	issued      map[string]struct{}

	now           func() time.Time
	cleanupCancel context.CancelFunc
}

func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	ctx, cancel := context.WithCancel(context.Background())
	s := &MemoryStore{
		confessions:   make(map[string]*models.Confession),
		issued:        make(map[string]struct{}),
		now:           time.Now,
		cleanupCancel: cancel,
	}
	go s.cleanupLoop(ctx, cleanupInterval)
	return s
}

func (s *MemoryStore) Insert(ctx context.Context, c *models.Confession) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := ident.New()
	for {
		if _, taken := s.issued[id]; !taken {
			break
		}
		id = ident.New()
	}
	s.issued[id] = struct{}{}

	stored := *c
	stored.ID = id
	s.confessions[id] = &stored
	return id, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*models.Confession, error) {
	s.mu.RLock()
	c, ok := s.confessions[id]
	if ok && s.now().Before(c.ExpiresAt) {
		cp := *c
		s.mu.RUnlock()
		return &cp, nil
	}
	s.mu.RUnlock()

	if ok {
		// Expired: purge eagerly so the sweep doesn't have to.
		s.mu.Lock()
		if c, ok := s.confessions[id]; ok && !s.now().Before(c.ExpiresAt) {
			delete(s.confessions, id)
		}
		s.mu.Unlock()
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) IncrementReads(ctx context.Context, id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.confessions[id]
	if !ok {
		return 0, ErrNotFound
	}
	if !s.now().Before(c.ExpiresAt) {
		delete(s.confessions, id)
		return 0, ErrNotFound
	}

	c.ReadCount++
	return c.ReadCount, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.confessions[id]
	if !ok {
		return false, nil
	}
	delete(s.confessions, id)
	if !s.now().Before(c.ExpiresAt) {
		// Already invisible; the caller must not learn it still existed.
		return false, nil
	}
	return true, nil
}

func (s *MemoryStore) Close() error {
	if s.cleanupCancel != nil {
		s.cleanupCancel()
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.confessions = nil
	return nil
}

func (s *MemoryStore) cleanupLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *MemoryStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, c := range s.confessions {
		if !now.Before(c.ExpiresAt) {
			delete(s.confessions, id)
		}
	}
}
