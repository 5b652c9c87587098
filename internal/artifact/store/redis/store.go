// Package redis is the artifact registry shared by every replica through Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"praticai/internal/artifact"
	"praticai/pkg/platform/sentinel"
)

const keyPrefix = "praticai:artifact:"

// Store keeps one JSON value per artifact with a TTL.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a Redis-backed registry. A zero ttl stores entries without expiry.
func New(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func key(id uuid.UUID) string {
	return keyPrefix + id.String()
}

func (s *Store) Register(ctx context.Context, a artifact.Artifact) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}
	if err := s.client.Set(ctx, key(a.ID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("register artifact: %w", err)
	}
	return nil
}

func (s *Store) Resolve(ctx context.Context, id uuid.UUID) (*artifact.Artifact, error) {
	raw, err := s.client.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resolve artifact: %w", err)
	}
	var a artifact.Artifact
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	return &a, nil
}

func (s *Store) Remove(ctx context.Context, id uuid.UUID) error {
	return s.client.Del(ctx, key(id)).Err()
}
