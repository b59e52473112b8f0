package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache key prefixes and TTLs.
const (
	viewKeyPrefix       = "view:"
	generationKeyPrefix = "view:gen:"

	// DefaultViewTTL bounds how long a rendered view stays cached even if
	// its path is never invalidated.
	DefaultViewTTL = 10 * time.Minute
)

// Common cache errors.
var (
	ErrCacheMiss = errors.New("cache miss")
)

// InvalidatePath marks every cached view of path as stale. Views are keyed by
// the path generation, so bumping the generation orphans the old entries and
// they expire on their own.
func (c *Cache) InvalidatePath(ctx context.Context, path string) error {
	if err := c.client.Incr(ctx, c.key(generationKey(path))).Err(); err != nil {
		return fmt.Errorf("failed to invalidate path %q: %w", path, err)
	}
	return nil
}

// GetView loads a cached view of path into dst.
// Returns ErrCacheMiss if the current generation has no entry for variant.
func (c *Cache) GetView(ctx context.Context, path, variant string, dst any) error {
	gen, err := c.generation(ctx, path)
	if err != nil {
		return err
	}

	data, err := c.client.Get(ctx, c.key(viewKey(path, gen, variant))).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return fmt.Errorf("redis get failed: %w", err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		// Corrupted entry, treat as miss
		return ErrCacheMiss
	}

	return nil
}

// SetView caches v as the current rendering of path for variant.
func (c *Cache) SetView(ctx context.Context, path, variant string, v any) error {
	gen, err := c.generation(ctx, path)
	if err != nil {
		return err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal view: %w", err)
	}

	if err := c.client.Set(ctx, c.key(viewKey(path, gen, variant)), data, DefaultViewTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache view: %w", err)
	}

	return nil
}

func (c *Cache) generation(ctx context.Context, path string) (int64, error) {
	raw, err := c.client.Get(ctx, c.key(generationKey(path))).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read path generation: %w", err)
	}

	gen, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse path generation: %w", err)
	}

	return gen, nil
}

func generationKey(path string) string {
	return generationKeyPrefix + normalizePath(path)
}

func viewKey(path string, gen int64, variant string) string {
	return viewKeyPrefix + normalizePath(path) + ":" + strconv.FormatInt(gen, 10) + ":" + variant
}

// normalizePath maps "", "/" and "/profile/" style paths onto one canonical form.
func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}
