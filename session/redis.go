package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// ErrCrossSlot is returned under a cluster client when the session keys would hash
// to different slots. A key prefix with a hash tag, such as "{vlearn}:", keeps
// both keys in one slot.
var ErrCrossSlot = errors.New("session keys span redis cluster slots")

// Redis is a [Substrate] over a go-redis client. Keys are stored without expiry;
// the store clears them explicitly on teardown.
//
// MGET, MULTI/EXEC and multi-key DEL need every key in one slot under Redis
// Cluster, so a *redis.ClusterClient requires keys sharing a hash tag.
type Redis struct {
	client  redis.UniversalClient
	cluster bool
}

func NewRedis(client redis.UniversalClient) *Redis {
	_, cluster := client.(*redis.ClusterClient)
	return &Redis{client: client, cluster: cluster}
}

// CheckKeys reports ErrCrossSlot when keys cannot be used together on this client.
// Single-node and sentinel clients accept any keys.
func (r *Redis) CheckKeys(keys ...string) error {
	if !r.cluster || len(keys) < 2 {
		return nil
	}
	tag := hashTag(keys[0])
	for _, k := range keys[1:] {
		if hashTag(k) != tag {
			return fmt.Errorf("%w: %q and %q", ErrCrossSlot, keys[0], k)
		}
	}
	return nil
}

// hashTag is the part of key Redis Cluster hashes: the content of the first
// non-empty {...} section, or the whole key.
func hashTag(key string) string {
	open := strings.IndexByte(key, '{')
	if open < 0 {
		return key
	}
	end := strings.IndexByte(key[open+1:], '}')
	if end <= 0 {
		return key
	}
	return key[open+1 : open+1+end]
}

// Load reads all keys with one MGET so a concurrent Save cannot be observed half
// applied.
func (r *Redis) Load(ctx context.Context, keys ...string) (map[string][]byte, error) {
	if len(keys) == 0 {
		return map[string][]byte{}, nil
	}
	if err := r.CheckKeys(keys...); err != nil {
		return nil, err
	}
	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSubstrateUnavailable, err)
	}

	out := make(map[string][]byte, len(keys))
	for i, v := range vals {
		switch typed := v.(type) {
		case nil:
		case string:
			out[keys[i]] = []byte(typed)
		case []byte:
			out[keys[i]] = typed
		default:
			return nil, fmt.Errorf("%w: unexpected value type %T", ErrSubstrateUnavailable, v)
		}
	}
	return out, nil
}

func (r *Redis) Save(ctx context.Context, values map[string][]byte) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	if err := r.CheckKeys(keys...); err != nil {
		return err
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, v := range values {
			pipe.Set(ctx, k, v, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSubstrateUnavailable, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.CheckKeys(keys...); err != nil {
		return err
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrSubstrateUnavailable, err)
	}
	return nil
}
