package redis

import (
	"context"
	"errors"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

var NilError = goredis.Nil

type Options = goredis.UniversalOptions

type StreamMessage struct {
	ID     string
	Values map[string]any
}

type RedisAdapter interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Ping(ctx context.Context) error
	Client() goredis.UniversalClient

	XAdd(ctx context.Context, stream string, values map[string]any) (string, error)
	XReadGroup(ctx context.Context, group, consumer, stream string, count int64, block time.Duration) ([]StreamMessage, error)
	XAck(ctx context.Context, stream, group string, ids ...string) error
	XGroupCreateMkStream(ctx context.Context, stream, group, start string) error
	XLen(ctx context.Context, stream string) (int64, error)
	XTrimApprox(ctx context.Context, stream string, maxLen int64) error
	XPending(ctx context.Context, stream, group string) (*goredis.XPending, error)
	XPendingExt(ctx context.Context, stream, group string, count int64) ([]goredis.XPendingExt, error)
	XClaim(ctx context.Context, stream, group, consumer string, minIdle time.Duration, ids ...string) ([]StreamMessage, error)
	XDel(ctx context.Context, stream string, ids ...string) error
}

type redisAdapter struct {
	prefix string
	conn   goredis.UniversalClient
}

var (
	redisLock     sync.RWMutex
	redisInstance = map[string]RedisAdapter{}
)

// NewRedisAdapter returns the adapter registered under connName, dialing
// and pinging a new client on first use.
func NewRedisAdapter(connName string, keysPrefix string, opts *Options) (RedisAdapter, error) {
	redisLock.Lock()
	defer redisLock.Unlock()

	if adapter, ok := redisInstance[connName]; ok {
		return adapter, nil
	}

	c := goredis.NewUniversalClient(opts)
	if err := c.Ping(context.Background()).Err(); err != nil {
		_ = c.Close()
		return nil, err
	}

	adapter := Wrap(c, keysPrefix)
	redisInstance[connName] = adapter
	return adapter, nil
}

// Wrap adapts an existing client without registering it.
func Wrap(client goredis.UniversalClient, keysPrefix string) RedisAdapter {
	return &redisAdapter{conn: client, prefix: keysPrefix}
}

func GetRedis(connName ...string) RedisAdapter {
	redisLock.RLock()
	defer redisLock.RUnlock()

	name := "default"
	if len(connName) > 0 && connName[0] != "" {
		name = connName[0]
	}
	return redisInstance[name]
}

func (r *redisAdapter) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.conn.Set(ctx, r.prefix+key, value, ttl).Err()
}

func (r *redisAdapter) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	return r.conn.SetNX(ctx, r.prefix+key, value, ttl).Result()
}

func (r *redisAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	return r.conn.Get(ctx, r.prefix+key).Bytes()
}

func (r *redisAdapter) Del(ctx context.Context, key string) error {
	return r.conn.Del(ctx, r.prefix+key).Err()
}

func (r *redisAdapter) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.conn.Exists(ctx, r.prefix+key).Result()
	return n > 0, err
}

func (r *redisAdapter) Ping(ctx context.Context) error {
	return r.conn.Ping(ctx).Err()
}

func (r *redisAdapter) Client() goredis.UniversalClient {
	return r.conn
}

func (r *redisAdapter) XAdd(ctx context.Context, stream string, values map[string]any) (string, error) {
	return r.conn.XAdd(ctx, &goredis.XAddArgs{
		Stream: r.prefix + stream,
		ID:     "*",
		Values: values,
	}).Result()
}

// XReadGroup reads new entries for the consumer. A timed out block yields
// no messages and no error.
func (r *redisAdapter) XReadGroup(ctx context.Context, group, consumer, stream string, count int64, block time.Duration) ([]StreamMessage, error) {
	streams, err := r.conn.XReadGroup(ctx, &goredis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{r.prefix + stream, ">"},
		Count:    count,
		Block:    block,
	}).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var messages []StreamMessage
	for _, s := range streams {
		messages = append(messages, toStreamMessages(s.Messages)...)
	}
	return messages, nil
}

func (r *redisAdapter) XAck(ctx context.Context, stream, group string, ids ...string) error {
	return r.conn.XAck(ctx, r.prefix+stream, group, ids...).Err()
}

func (r *redisAdapter) XGroupCreateMkStream(ctx context.Context, stream, group, start string) error {
	return r.conn.XGroupCreateMkStream(ctx, r.prefix+stream, group, start).Err()
}

func (r *redisAdapter) XLen(ctx context.Context, stream string) (int64, error) {
	return r.conn.XLen(ctx, r.prefix+stream).Result()
}

func (r *redisAdapter) XTrimApprox(ctx context.Context, stream string, maxLen int64) error {
	return r.conn.XTrimMaxLenApprox(ctx, r.prefix+stream, maxLen, 0).Err()
}

func (r *redisAdapter) XPending(ctx context.Context, stream, group string) (*goredis.XPending, error) {
	return r.conn.XPending(ctx, r.prefix+stream, group).Result()
}

func (r *redisAdapter) XPendingExt(ctx context.Context, stream, group string, count int64) ([]goredis.XPendingExt, error) {
	return r.conn.XPendingExt(ctx, &goredis.XPendingExtArgs{
		Stream: r.prefix + stream,
		Group:  group,
		Start:  "-",
		End:    "+",
		Count:  count,
	}).Result()
}

func (r *redisAdapter) XClaim(ctx context.Context, stream, group, consumer string, minIdle time.Duration, ids ...string) ([]StreamMessage, error) {
	msgs, err := r.conn.XClaim(ctx, &goredis.XClaimArgs{
		Stream:   r.prefix + stream,
		Group:    group,
		Consumer: consumer,
		MinIdle:  minIdle,
		Messages: ids,
	}).Result()
	if err != nil {
		return nil, err
	}
	return toStreamMessages(msgs), nil
}

func (r *redisAdapter) XDel(ctx context.Context, stream string, ids ...string) error {
	return r.conn.XDel(ctx, r.prefix+stream, ids...).Err()
}

func toStreamMessages(in []goredis.XMessage) []StreamMessage {
	out := make([]StreamMessage, 0, len(in))
	for _, m := range in {
		out = append(out, StreamMessage{ID: m.ID, Values: m.Values})
	}
	return out
}
