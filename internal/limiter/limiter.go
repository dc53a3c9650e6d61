// Package limiter throttles peers that keep presenting invalid identity tokens.
package limiter

import (
	"context"
	"crypto/sha256"
	"time"
)

// Key identifies a throttled subject: a scope (e.g. "bearer") and a remote peer.
type Key struct {
	Scope string
	Peer  string
}

// PeerHash returns a stable hash of the peer so raw addresses are never stored.
func (k Key) PeerHash() []byte {
	h := sha256.Sum256([]byte(k.Peer))
	return h[:]
}

// Limiter records authentication failures and places temporary blocks.
type Limiter interface {
	// Allow reports whether the key may attempt authentication, with the remaining block time.
	Allow(ctx context.Context, k Key) (bool, time.Duration, error)
	// Success resets counters after a verified token.
	Success(ctx context.Context, k Key) error
	// Failure records a failed verification; it may place a temporary block.
	Failure(ctx context.Context, k Key) (bool, time.Duration, error)
}

// Nop never blocks; used when no database-backed limiter is configured.
type Nop struct{}

func (Nop) Allow(context.Context, Key) (bool, time.Duration, error)   { return true, 0, nil }
func (Nop) Success(context.Context, Key) error                        { return nil }
func (Nop) Failure(context.Context, Key) (bool, time.Duration, error) { return false, 0, nil }
