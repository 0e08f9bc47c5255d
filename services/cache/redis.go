// Package cachesvc implements core.Cache on redis and in memory.
package cachesvc

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/ilmhub/ilm/core"
)

const scanCount = 200

type redisCache struct {
	client    redis.UniversalClient
	keyPrefix string
}

var _ core.Cache = (*redisCache)(nil)

// NewRedisClient connects to conf.Redis and pings it.
func NewRedisClient(ctx context.Context, conf *core.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Address,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "pinging redis at %s", conf.Redis.Address)
	}
	return client, nil
}

// NewRedisCache namespaces every key under "<appName>:".
func NewRedisCache(client redis.UniversalClient, conf *core.Config) core.Cache {
	return &redisCache{client: client, keyPrefix: conf.AppName + ":"}
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if err == redis.Nil {
		return false, nil
	} else if err != nil {
		return false, errors.Wrapf(err, "getting %s", key)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, errors.Wrapf(err, "decoding %s", key)
	}
	return true, nil
}

func (c *redisCache) Set(ctx context.Context, key string, val interface{}, ttl time.Duration) error {
	data, err := json.Marshal(val)
	if err != nil {
		return errors.Wrapf(err, "encoding %s", key)
	}
	return errors.Wrapf(c.client.Set(ctx, c.keyPrefix+key, data, ttl).Err(), "setting %s", key)
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, c.keyPrefix+k)
	}
	return errors.Wrap(c.client.Del(ctx, full...).Err(), "deleting keys")
}

func (c *redisCache) DeletePrefix(ctx context.Context, prefix string) error {
	iter := c.client.Scan(ctx, 0, c.keyPrefix+prefix+"*", scanCount).Iterator()
	batch := make([]string, 0, scanCount)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanCount {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return errors.Wrapf(err, "deleting %s*", prefix)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return errors.Wrapf(err, "scanning %s*", prefix)
	}
	if len(batch) > 0 {
		return errors.Wrapf(c.client.Del(ctx, batch...).Err(), "deleting %s*", prefix)
	}
	return nil
}
