package auth

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// RefreshTokenRegistry holds the single live refresh token of each subject.
// Put overwrites unconditionally; that overwrite is the only revocation path.
type RefreshTokenRegistry interface {
	Put(ctx context.Context, subject, token string) error
	Get(ctx context.Context, subject string) (token string, ok bool, err error)
	Close() error
}

// MemoryRegistry keeps refresh tokens in process memory.
// With a zero ttl entries never expire and no janitor goroutine runs.
type MemoryRegistry struct {
	c *gocache.Cache
}

// NewMemoryRegistry creates an in-process registry. When ttl > 0 entries are
// dropped ttl after their last Put and swept every sweepInterval.
func NewMemoryRegistry(ttl, sweepInterval time.Duration) *MemoryRegistry {
	if ttl <= 0 {
		// go-cache starts no janitor when the cleanup interval is <= 0
		return &MemoryRegistry{c: gocache.New(gocache.NoExpiration, 0)}
	}
	if sweepInterval <= 0 {
		sweepInterval = ttl
	}
	return &MemoryRegistry{c: gocache.New(ttl, sweepInterval)}
}

// Put stores token as the subject's live refresh token
func (r *MemoryRegistry) Put(_ context.Context, subject, token string) error {
	r.c.Set(subject, token, gocache.DefaultExpiration)
	return nil
}

// Get returns the subject's live refresh token
func (r *MemoryRegistry) Get(_ context.Context, subject string) (string, bool, error) {
	v, ok := r.c.Get(subject)
	if !ok {
		return "", false, nil
	}
	token, ok := v.(string)
	return token, ok, nil
}

// Len returns the number of tracked subjects, including not yet swept expired ones
func (r *MemoryRegistry) Len() int {
	return r.c.ItemCount()
}

// Close drops all entries
func (r *MemoryRegistry) Close() error {
	r.c.Flush()
	return nil
}
