package storage

import (
	"context"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/teranos/cashngo/errors"
	"github.com/teranos/cashngo/logger"
)

// revisionKey holds the store-wide revision counter, relative to the prefix
const revisionKey = "__revision"

// writeScript bumps the revision, stores the snapshot and announces it atomically.
// KEYS[1] entry hash, KEYS[2] revision counter.
// ARGV[1] value ("" with ARGV[4]="1" means clear), ARGV[2] channel, ARGV[3] logical key, ARGV[4] clear flag.
var writeScript = redis.NewScript(`
local rev = redis.call('INCR', KEYS[2])
if ARGV[4] == '1' then
	redis.call('HDEL', KEYS[1], 'value')
	redis.call('HSET', KEYS[1], 'revision', rev)
else
	redis.call('HSET', KEYS[1], 'value', ARGV[1], 'revision', rev)
end
redis.call('PUBLISH', ARGV[2], rev .. ':' .. ARGV[3])
return rev
`)

// RedisBackend keeps each snapshot in a hash under <prefix><key> and publishes
// "<revision>:<key>" on a channel after every write.
type RedisBackend struct {
	client  *redis.Client
	prefix  string
	channel string
}

// RedisOptions configures NewRedisBackend
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	Channel  string
}

// NewRedisBackend connects to redis and verifies the connection
func NewRedisBackend(ctx context.Context, opts RedisOptions) (*RedisBackend, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrapf(errors.ErrServiceUnavailable, "redis %s: %v", opts.Addr, err)
	}
	return NewRedisBackendWithClient(client, opts.Prefix, opts.Channel), nil
}

// NewRedisBackendWithClient wraps an existing client
func NewRedisBackendWithClient(client *redis.Client, prefix, channel string) *RedisBackend {
	return &RedisBackend{client: client, prefix: prefix, channel: channel}
}

func (b *RedisBackend) entryKey(key string) string {
	return b.prefix + key
}

// Get returns the stored snapshot for key
func (b *RedisBackend) Get(ctx context.Context, key string) (Entry, bool, error) {
	fields, err := b.client.HMGet(ctx, b.entryKey(key), "value", "revision").Result()
	if err != nil {
		return Entry{}, false, errors.Wrapf(err, "get %s", key)
	}

	rev, err := parseRevision(fields[1])
	if err != nil {
		return Entry{}, false, errors.Wrapf(err, "get %s", key)
	}
	entry := Entry{Revision: rev}
	value, ok := fields[0].(string)
	if !ok {
		return entry, false, nil
	}
	entry.Value = []byte(value)
	return entry, true, nil
}

// parseRevision reads the revision field of an entry hash; a missing field is revision 0
func parseRevision(field interface{}) (int64, error) {
	if field == nil {
		return 0, nil
	}
	raw, ok := field.(string)
	if !ok {
		return 0, errors.Newf("revision field has type %T", field)
	}
	rev, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "corrupt revision %q", raw)
	}
	return rev, nil
}

// Set stores value under key and announces the write
func (b *RedisBackend) Set(ctx context.Context, key string, value []byte) (int64, error) {
	rev, err := b.write(ctx, key, string(value), false)
	return rev, errors.Wrapf(err, "set %s", key)
}

// Delete clears key and announces the clear
func (b *RedisBackend) Delete(ctx context.Context, key string) (int64, error) {
	rev, err := b.write(ctx, key, "", true)
	return rev, errors.Wrapf(err, "delete %s", key)
}

func (b *RedisBackend) write(ctx context.Context, key, value string, clear bool) (int64, error) {
	flag := "0"
	if clear {
		flag = "1"
	}
	return writeScript.Run(ctx, b.client,
		[]string{b.entryKey(key), b.entryKey(revisionKey)},
		value, b.channel, key, flag,
	).Int64()
}

// Tail subscribes to the change channel and re-reads every announced key.
// The re-read always yields the latest snapshot, so a burst of writes to one
// key may be delivered as a single change.
func (b *RedisBackend) Tail(ctx context.Context, emit func(Change)) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	// Wait for the subscription to be confirmed before reporting readiness
	if _, err := sub.Receive(ctx); err != nil {
		return errors.Wrapf(err, "subscribe %s", b.channel)
	}

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			key, ok := parseAnnouncement(msg.Payload)
			if !ok {
				logger.Warnw("Ignoring malformed change announcement",
					logger.FieldBackend, "redis",
					"payload", msg.Payload,
				)
				continue
			}
			entry, _, err := b.Get(ctx, key)
			if err != nil {
				logger.Warnw("Failed to re-read announced key",
					logger.FieldBackend, "redis",
					logger.FieldKey, key,
					logger.FieldError, err,
				)
				continue
			}
			emit(Change{Key: key, Entry: entry})
		}
	}
}

// parseAnnouncement splits "<revision>:<key>"
func parseAnnouncement(payload string) (string, bool) {
	rev, key, found := strings.Cut(payload, ":")
	if !found || key == "" {
		return "", false
	}
	if _, err := strconv.ParseInt(rev, 10, 64); err != nil {
		return "", false
	}
	return key, true
}

// Close closes the redis client
func (b *RedisBackend) Close() error {
	return b.client.Close()
}
