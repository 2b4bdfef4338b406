package runlock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only when it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// extendScript refreshes the expiry only when the key still holds our token.
var extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// Redis is a Locker shared by every process connected to the same server.
type Redis struct {
	client redis.UniversalClient
	prefix string
}

// NewRedis returns a Locker that namespaces keys under prefix.
func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

// Acquire sets key to a random token with SET NX PX.
func (r *Redis) Acquire(ctx context.Context, key string, ttl time.Duration) (*Lease, error) {
	fk := r.prefix + key
	token := uuid.NewString()

	ok, err := r.client.SetNX(ctx, fk, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotAcquired
	}

	return &Lease{
		Key:   key,
		Token: token,
		release: func(ctx context.Context) error {
			n, err := releaseScript.Run(ctx, r.client, []string{fk}, token).Int()
			if err != nil {
				return err
			}
			if n == 0 {
				return ErrNotHeld
			}
			return nil
		},
		extend: func(ctx context.Context, ttl time.Duration) error {
			n, err := extendScript.Run(ctx, r.client, []string{fk}, token, ttl.Milliseconds()).Int()
			if err != nil {
				return err
			}
			if n == 0 {
				return ErrNotHeld
			}
			return nil
		},
	}, nil
}
