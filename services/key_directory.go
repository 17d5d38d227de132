package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// KeyDirectory holds the public key each connected user registered for this session.
type KeyDirectory interface {
	Set(ctx context.Context, userID, publicKey string) error
	Get(ctx context.Context, userID string) (string, bool, error)
	Remove(ctx context.Context, userID string) error
}

// MemoryKeyDirectory is the process-local KeyDirectory.
type MemoryKeyDirectory struct {
	mu   sync.RWMutex
	keys map[string]string
}

// NewMemoryKeyDirectory creates an empty directory.
func NewMemoryKeyDirectory() *MemoryKeyDirectory {
	return &MemoryKeyDirectory{keys: make(map[string]string)}
}

func (d *MemoryKeyDirectory) Set(_ context.Context, userID, publicKey string) error {
	d.mu.Lock()
	d.keys[userID] = publicKey
	d.mu.Unlock()
	return nil
}

func (d *MemoryKeyDirectory) Get(_ context.Context, userID string) (string, bool, error) {
	d.mu.RLock()
	key, ok := d.keys[userID]
	d.mu.RUnlock()
	return key, ok, nil
}

func (d *MemoryKeyDirectory) Remove(_ context.Context, userID string) error {
	d.mu.Lock()
	delete(d.keys, userID)
	d.mu.Unlock()
	return nil
}

// sessionKeysHash is the redis hash holding userID -> public key.
const sessionKeysHash = "chat:session_public_keys"

// RedisKeyDirectory shares session keys between server instances. Entries
// are still dropped on disconnect; nothing here survives a redis flush.
type RedisKeyDirectory struct {
	client *redis.Client
}

// NewRedisKeyDirectory connects to redisURL and verifies the connection.
func NewRedisKeyDirectory(ctx context.Context, redisURL string) (*RedisKeyDirectory, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisKeyDirectory{client: client}, nil
}

func (d *RedisKeyDirectory) Set(ctx context.Context, userID, publicKey string) error {
	return d.client.HSet(ctx, sessionKeysHash, userID, publicKey).Err()
}

func (d *RedisKeyDirectory) Get(ctx context.Context, userID string) (string, bool, error) {
	key, err := d.client.HGet(ctx, sessionKeysHash, userID).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return key, true, nil
}

func (d *RedisKeyDirectory) Remove(ctx context.Context, userID string) error {
	return d.client.HDel(ctx, sessionKeysHash, userID).Err()
}

// Close releases the redis connection pool.
func (d *RedisKeyDirectory) Close() error {
	return d.client.Close()
}
