package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-ddd-task-manager/internal/domain/entity"
)

// NewClient initializes a redis client
func NewClient(addr, password string, db int) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// UserCache keeps short-lived copies of user records (never the password hash)
// so the auth gate does not hit the store on every request.
type UserCache struct {
	rdb *goredis.Client
	ttl time.Duration
}

func NewUserCache(rdb *goredis.Client, ttl time.Duration) *UserCache {
	return &UserCache{rdb: rdb, ttl: ttl}
}

func userKey(id string) string {
	return "user:profile:" + id
}

// Get returns the cached user, or ok=false on a miss.
func (c *UserCache) Get(ctx context.Context, id string) (*entity.User, bool, error) {
	b, err := c.rdb.Get(ctx, userKey(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var u entity.User
	if err := json.Unmarshal(b, &u); err != nil {
		return nil, false, err
	}
	return &u, true, nil
}

func (c *UserCache) Set(ctx context.Context, u *entity.User) error {
	// entity.User hides Password from JSON, so the hash never reaches redis.
	b, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, userKey(u.ID), b, c.ttl).Err()
}

func (c *UserCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}
