package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis stores each document as a JSON blob under a fixed key. Documents
// never expire; every save replaces the previous blob wholesale.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(redisURL string) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &Redis{client: client, prefix: "waypost:"}, nil
}

// NewRedisWithClient wraps an existing Redis client.
func NewRedisWithClient(client *redis.Client) *Redis {
	return &Redis{client: client, prefix: "waypost:"}
}

func (r *Redis) key(name string) string {
	return r.prefix + name
}

func (r *Redis) load(ctx context.Context, name string, out any) error {
	raw, err := r.client.Get(ctx, r.key(name)).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", name, err)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

func (r *Redis) save(ctx context.Context, name string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	if err := r.client.Set(ctx, r.key(name), raw, 0).Err(); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	return nil
}

func (r *Redis) LoadMediaMap(ctx context.Context) (MediaMap, error) {
	m := MediaMap{}
	err := r.load(ctx, docMediaMap, &m)
	return m, err
}

func (r *Redis) SaveMediaMap(ctx context.Context, m MediaMap) error {
	return r.save(ctx, docMediaMap, m)
}

func (r *Redis) LoadGroupIndex(ctx context.Context) (GroupIndex, error) {
	idx := GroupIndex{}
	err := r.load(ctx, docGroupIndex, &idx)
	return idx, err
}

func (r *Redis) SaveGroupIndex(ctx context.Context, idx GroupIndex) error {
	return r.save(ctx, docGroupIndex, idx)
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
