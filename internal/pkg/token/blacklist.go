package token

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// blacklistEntry keeps expiration metadata for a revoked token.
type blacklistEntry struct {
	expiresAt time.Time
}

// Blacklist stores revoked tokens until their natural expiration to support
// logout semantics. Redis is preferred when available; otherwise entries are
// kept in memory, which is sufficient for a single-process deployment.
type Blacklist struct {
	rdb     *redis.Client
	mu      sync.RWMutex
	entries map[string]blacklistEntry
}

// NewBlacklist creates a Blacklist. rdb may be nil to force in-memory mode.
func NewBlacklist(rdb *redis.Client) *Blacklist {
	return &Blacklist{
		rdb:     rdb,
		entries: map[string]blacklistEntry{},
	}
}

// Revoke stores a token until its expiration.
func (b *Blacklist) Revoke(token string, expiresAt time.Time) {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return
	}

	if b.rdb != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := b.rdb.Set(ctx, "jwt:blacklist:"+token, "1", ttl).Err(); err == nil {
			return
		}
		// fall through to memory on Redis failure
	}

	b.mu.Lock()
	b.entries[token] = blacklistEntry{expiresAt: expiresAt}
	b.mu.Unlock()
}

// IsRevoked checks if a token was revoked before natural expiration.
func (b *Blacklist) IsRevoked(token string) bool {
	if b.rdb != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if n, err := b.rdb.Exists(ctx, "jwt:blacklist:"+token).Result(); err == nil && n > 0 {
			return true
		}
	}

	b.mu.RLock()
	entry, ok := b.entries[token]
	b.mu.RUnlock()
	if !ok {
		return false
	}

	if time.Now().After(entry.expiresAt) {
		b.mu.Lock()
		delete(b.entries, token)
		b.mu.Unlock()
		return false
	}

	return true
}
