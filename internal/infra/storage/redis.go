package storage

import (
	"context"

	"github.com/kashguard/go-payment-intents/internal/intent"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultKeyPrefix = "payment_intent:"

	redisScanCount  = 200
	redisCASRetries = 10
)

// RedisStore keeps one JSON document per intent under <prefix><intentId>.
// Status swaps use WATCH/MULTI so a concurrent writer aborts the transaction.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Create(ctx context.Context, pi *intent.PaymentIntent) error {
	b, err := encodeIntent(pi)
	if err != nil {
		return err
	}

	ok, err := s.client.SetNX(ctx, s.key(pi.ID), b, 0).Result()
	if err != nil {
		return errors.Wrap(err, "failed to create intent in redis")
	}
	if !ok {
		return errors.Wrapf(intent.ErrAlreadyExists, "intent %s", pi.ID)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*intent.PaymentIntent, error) {
	b, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errors.Wrapf(intent.ErrNotFound, "intent %s", id)
		}
		return nil, errors.Wrap(err, "failed to get intent from redis")
	}
	return decodeIntent(b)
}

func (s *RedisStore) List(ctx context.Context, filter intent.Filter) ([]*intent.PaymentIntent, error) {
	var res []*intent.PaymentIntent

	iter := s.client.Scan(ctx, 0, s.prefix+"*", redisScanCount).Iterator()
	for iter.Next(ctx) {
		b, err := s.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, errors.Wrap(err, "failed to read intent from redis")
		}

		pi, err := decodeIntent(b)
		if err != nil {
			return nil, err
		}
		if filter.Matches(pi) {
			res = append(res, pi)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to scan intents in redis")
	}

	intent.SortByCreation(res)
	return intent.ApplyLimit(res, filter.Limit), nil
}

func (s *RedisStore) CompareAndSwap(ctx context.Context, id string, expected intent.Status, mutate intent.MutateFunc) (*intent.PaymentIntent, bool, error) {
	key := s.key(id)

	var (
		result  *intent.PaymentIntent
		swapped bool
	)

	txf := func(tx *redis.Tx) error {
		result, swapped = nil, false

		b, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return errors.Wrapf(intent.ErrNotFound, "intent %s", id)
			}
			return err
		}

		pi, err := decodeIntent(b)
		if err != nil {
			return err
		}

		if pi.Status != expected {
			result = pi
			return nil
		}

		if err := mutate(pi); err != nil {
			return err
		}

		updated, err := encodeIntent(pi)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, 0)
			return nil
		})
		if err != nil {
			return err
		}

		result, swapped = pi, true
		return nil
	}

	for i := 0; i < redisCASRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return result, swapped, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, false, err
	}

	return nil, false, errors.Errorf("compare-and-swap on intent %s did not converge", id)
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
