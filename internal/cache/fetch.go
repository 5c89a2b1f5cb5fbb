package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"railnet.dev/railnet/internal/logging"
)

// ErrNotStored marks a computed value that is handed back to callers but kept
// out of the cache, such as a search cut short by its budget.
var ErrNotStored = errors.New("result not cached")

// Fetch returns the cached value for key, or runs compute, stores its result
// under strategy and returns it. Concurrent misses for the same key share
// one compute. Entries that no longer decode into T are dropped.
//
// compute runs without the caller's cancellation since its result is shared;
// a caller whose ctx ends stops waiting and gets ctx.Err(). When compute
// returns an error wrapping ErrNotStored, its value is returned alongside the
// error and nothing is cached.
func Fetch[T any](ctx context.Context, c *Tiered, strategy, key string, compute func(context.Context) (T, error)) (T, error) {
	var zero T
	if b, ok := c.Get(key); ok {
		var v T
		if err := json.Unmarshal(b, &v); err == nil {
			return v, nil
		}
		logging.LogWarning(c.logger, "Dropping undecodable cache entry", slog.String("key", key))
		c.Remove(key)
	}

	computeCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		v, err := compute(computeCtx)
		if err != nil {
			if errors.Is(err, ErrNotStored) {
				return v, err
			}
			return nil, err
		}
		b, err := json.Marshal(v)
		if err != nil {
			logging.LogError(c.logger, "Cache encode failed", err, slog.String("key", key))
			return v, nil
		}
		c.PutStrategy(strategy, key, b)
		return v, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			if v, ok := res.Val.(T); ok && errors.Is(res.Err, ErrNotStored) {
				return v, res.Err
			}
			return zero, res.Err
		}
		return res.Val.(T), nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
