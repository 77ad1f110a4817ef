package store

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ghost.confess/internal/ident"
	"ghost.confess/internal/models"
)

var _ Store = (*RedisStore)(nil)

// RedisStore keeps confessions in Redis with a native TTL, so expiry is
// enforced by the backend and survives process restarts. Ids are wide
// crypto-random strings; Redis never reuses a key slot once deleted, and
// the id space makes reissue probabilistically impossible.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(options *redis.Options) (*RedisStore, error) {
	client := redis.NewClient(options)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

func (r *RedisStore) Insert(ctx context.Context, c *models.Confession) (string, error) {
	ttl := time.Until(c.ExpiresAt)
	if ttl <= 0 {
		return "", fmt.Errorf("confession already expired at insert")
	}

	stored := *c
	stored.ID = ident.New()

	data, err := encode(&stored)
	if err != nil {
		return "", err
	}

	// NX guards the (vanishingly unlikely) id collision.
	ok, err := r.client.SetNX(ctx, confessionKey(stored.ID), data, ttl).Result()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("id collision on insert")
	}
	return stored.ID, nil
}

func (r *RedisStore) Get(ctx context.Context, id string) (*models.Confession, error) {
	data, err := r.client.Get(ctx, confessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return decode(data)
}

func (r *RedisStore) IncrementReads(ctx context.Context, id string) (int, error) {
	key := confessionKey(id)
	var reads int

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return ErrNotFound
			}
			return err
		}

		c, err := decode(data)
		if err != nil {
			return err
		}

		c.ReadCount++
		reads = c.ReadCount

		newData, err := encode(c)
		if err != nil {
			return err
		}

		ttl := tx.TTL(ctx, key).Val()
		if ttl <= 0 {
			return ErrNotFound
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, newData, ttl)
			return nil
		})
		return err
	}

	for i := 0; i < 3; i++ {
		err := r.client.Watch(ctx, txf, key)
		if err == nil {
			return reads, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return 0, err
	}

	return 0, redis.TxFailedErr
}

func (r *RedisStore) Delete(ctx context.Context, id string) (bool, error) {
	n, err := r.client.Del(ctx, confessionKey(id)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

// Helpers

func confessionKey(id string) string {
	return "confession:" + id
}

func encode(c *models.Confession) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decode(data []byte) (*models.Confession, error) {
	var c models.Confession
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}
