package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Aside implements the cache-aside pattern. It fills dest from the cache when
// the key is present, otherwise runs load (which must populate dest) and
// writes the result back with the given TTL. Cache failures degrade to a
// plain load; they never fail the request.
func Aside(ctx context.Context, key string, dest interface{}, ttl time.Duration, load func() error) error {
	if client != nil {
		data, err := client.Get(ctx, key).Bytes()
		if err == nil {
			if unmarshalErr := json.Unmarshal(data, dest); unmarshalErr == nil {
				return nil
			}
			// Corrupt entry, drop it and fall through to the loader
			client.Del(ctx, key)
		}
	}

	if err := load(); err != nil {
		return err
	}

	if client != nil {
		if data, err := json.Marshal(dest); err == nil {
			client.Set(ctx, key, data, ttl)
		}
	}

	return nil
}
