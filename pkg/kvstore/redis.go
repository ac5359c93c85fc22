package kvstore

import (
	"context"
	"fmt"
	"time"

	"github.com/dexwatch/swap-tracker/pkg/common/enum"
	"github.com/dexwatch/swap-tracker/pkg/infra"
	"github.com/redis/go-redis/v9"
)

// RedisStore implements infra.KVStore on a Redis server. TTLs map onto
// native key expiry.
type RedisStore struct {
	client *redis.Client
	prefix string
	codec  infra.Codec
}

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	Codec    infra.Codec
}

func NewRedisStore(opts RedisOptions) (*RedisStore, error) {
	if opts.Codec == nil {
		opts.Codec = infra.JSON
	}

	client := redis.NewClient(&redis.Options{
		Addr:            opts.Addr,
		Password:        opts.Password,
		DB:              opts.DB,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     3 * time.Second,
		WriteTimeout:    3 * time.Second,
		MaxRetries:      3,
		MinRetryBackoff: 100 * time.Millisecond,
		MaxRetryBackoff: 500 * time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{
		client: client,
		prefix: opts.Prefix,
		codec:  opts.Codec,
	}, nil
}

func (r *RedisStore) fullKey(k string) (string, error) {
	if k == "" {
		return "", ErrKeyEmpty
	}
	if r.prefix != "" {
		return r.prefix + "/" + k, nil
	}
	return k, nil
}

func (r *RedisStore) GetName() string {
	return string(enum.KVStoreTypeRedis)
}

func (r *RedisStore) Get(key string) (string, error) {
	k, err := r.fullKey(key)
	if err != nil {
		return "", err
	}
	val, err := r.client.Get(context.Background(), k).Result()
	if err == redis.Nil {
		return "", ErrKeyNotFound
	}
	return val, err
}

func (r *RedisStore) Set(key string, value string) error {
	return r.SetWithTTL(key, value, 0)
}

func (r *RedisStore) SetWithTTL(key string, value string, ttl time.Duration) error {
	k, err := r.fullKey(key)
	if err != nil {
		return err
	}
	return r.client.Set(context.Background(), k, value, ttl).Err()
}

func (r *RedisStore) SetAny(key string, value any) error {
	if err := checkKeyAndValue(key, value); err != nil {
		return err
	}
	k, err := r.fullKey(key)
	if err != nil {
		return err
	}
	data, err := r.codec.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(context.Background(), k, data, 0).Err()
}

func (r *RedisStore) GetAny(key string, value any) (bool, error) {
	if err := checkKeyAndValue(key, value); err != nil {
		return false, err
	}
	k, err := r.fullKey(key)
	if err != nil {
		return false, err
	}
	data, err := r.client.Get(context.Background(), k).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, r.codec.Unmarshal(data, value)
}

func (r *RedisStore) List(prefix string) ([]*infra.KVPair, error) {
	if prefix == "" {
		return nil, fmt.Errorf("prefix is empty")
	}
	searchPrefix := prefix
	if r.prefix != "" {
		searchPrefix = r.prefix + "/" + prefix
	}

	ctx := context.Background()
	result := make([]*infra.KVPair, 0)
	iter := r.client.Scan(ctx, 0, searchPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		val, err := r.client.Get(ctx, key).Bytes()
		if err != nil {
			if err == redis.Nil {
				continue // expired between scan and get
			}
			return nil, err
		}
		result = append(result, &infra.KVPair{Key: key, Value: val})
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *RedisStore) Delete(key string) error {
	k, err := r.fullKey(key)
	if err != nil {
		return err
	}
	return r.client.Del(context.Background(), k).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
