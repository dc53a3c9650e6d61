package invalidate

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultChannel is the pub/sub channel downstream caches subscribe to.
const DefaultChannel = "dktube:invalidate"

// RedisNotifier publishes each tag on a Redis pub/sub channel.
type RedisNotifier struct {
	rdb     redis.Cmdable
	channel string
}

// NewRedisNotifier constructs a publisher on channel (DefaultChannel when empty).
func NewRedisNotifier(rdb redis.Cmdable, channel string) *RedisNotifier {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisNotifier{rdb: rdb, channel: channel}
}

// InvalidateTag publishes the tag. Subscriber count is not checked.
func (n *RedisNotifier) InvalidateTag(ctx context.Context, tag string) error {
	return n.rdb.Publish(ctx, n.channel, tag).Err()
}

// LogNotifier only logs tags; used when no Redis is configured.
type LogNotifier struct{ Log *zap.Logger }

func (n LogNotifier) InvalidateTag(_ context.Context, tag string) error {
	n.Log.Debug("invalidate", zap.String("tag", tag))
	return nil
}

// Recorder keeps emitted tags in memory.
type Recorder struct {
	mu   sync.Mutex
	tags []string
}

func (r *Recorder) InvalidateTag(_ context.Context, tag string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tags = append(r.tags, tag)
	return nil
}

// Tags returns a copy of everything recorded so far.
func (r *Recorder) Tags() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.tags...)
}

// Reset drops recorded tags.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.tags = nil
	r.mu.Unlock()
}
