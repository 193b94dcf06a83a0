package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"libraryhub/internal/authz"

	"github.com/redis/go-redis/v9"
)

// IdentityCache keeps resolved identities in redis hashes so the identity
// middleware does not reload groups and permissions on every request.
// A nil client turns every call into a no-op miss.
type IdentityCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdentityCache connects to redisURL and verifies the connection.
func NewIdentityCache(redisURL, password string, ttl time.Duration) (*IdentityCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	if password != "" {
		opts.Password = password
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewIdentityCacheWithClient(rdb, ttl), nil
}

// NewIdentityCacheWithClient wraps an existing client; nil gives a disabled cache.
func NewIdentityCacheWithClient(client *redis.Client, ttl time.Duration) *IdentityCache {
	return &IdentityCache{client: client, ttl: ttl}
}

func identityKey(userID string) string {
	return fmt.Sprintf("identity:user:%s", userID)
}

// Get returns the cached identity; ok is false on a miss.
func (c *IdentityCache) Get(ctx context.Context, userID string) (authz.Identity, bool, error) {
	if c == nil || c.client == nil {
		return authz.Identity{}, false, nil
	}
	fields, err := c.client.HGetAll(ctx, identityKey(userID)).Result()
	if err != nil {
		return authz.Identity{}, false, err
	}
	if len(fields) == 0 {
		return authz.Identity{}, false, nil
	}
	return decodeIdentity(fields), true, nil
}

// Set stores id until the ttl runs out.
func (c *IdentityCache) Set(ctx context.Context, id authz.Identity) error {
	if c == nil || c.client == nil {
		return nil
	}
	key := identityKey(id.UserID)
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, encodeIdentity(id))
	pipe.Expire(ctx, key, c.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// Delete drops the cached identity, e.g. after group membership changed.
func (c *IdentityCache) Delete(ctx context.Context, userID string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, identityKey(userID)).Err()
}

func (c *IdentityCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func encodeIdentity(id authz.Identity) map[string]any {
	perms := make([]string, 0, len(id.Permissions))
	for _, p := range id.Permissions {
		perms = append(perms, string(p))
	}
	return map[string]any{
		"user_id":     id.UserID,
		"username":    id.Username,
		"role":        string(id.Role),
		"permissions": strings.Join(perms, ","),
	}
}

func decodeIdentity(fields map[string]string) authz.Identity {
	id := authz.Identity{
		UserID:   fields["user_id"],
		Username: fields["username"],
		Role:     authz.Role(fields["role"]),
	}
	if raw := fields["permissions"]; raw != "" {
		for _, p := range strings.Split(raw, ",") {
			// stale entries from an older permission set are ignored
			if perm := authz.Permission(p); perm.Valid() {
				id.Permissions = append(id.Permissions, perm)
			}
		}
	}
	return id
}
