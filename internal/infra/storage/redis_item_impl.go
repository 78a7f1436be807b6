package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"go_jsoning_server/internal/domain/model/resource"
	configs "go_jsoning_server/internal/infra/config"
	"go_jsoning_server/utils"

	"github.com/go-redis/redis/v8"
)

type redisItemCacheImpl struct {
	redisClient *redis.Client
	config      configs.RedisConfig
}

func NewRedisClient(c *configs.Config) (*redis.Client, error) {
	rc := c.Redis
	// 配置 Redis 连接参数
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", rc.Host, rc.Port),
		Password:     rc.Password,
		DB:           rc.Database,
		PoolSize:     rc.PoolSize,
		MinIdleConns: rc.MinIdleConns,
		MaxRetries:   rc.MaxRetries,
		DialTimeout:  rc.DialTimeout,
		ReadTimeout:  rc.ReadTimeout,
		WriteTimeout: rc.WriteTimeout,
		PoolTimeout:  rc.PoolTimeout,
		IdleTimeout:  rc.IdleTimeout,
	})

	// 测试连接是否成功
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	utils.GetLogger().Info("Successfully connected to Redis")
	return client, nil
}

func NewRedisItemCache(redisClient *redis.Client, c *configs.Config) ItemCacheIface {
	return &redisItemCacheImpl{
		redisClient: redisClient,
		config:      c.Redis,
	}
}

var _ ItemCacheIface = (*redisItemCacheImpl)(nil)

// key 资源名带长度前缀，名字和 id 中的 ":" 不会产生歧义
func (r *redisItemCacheImpl) key(name, id string) string {
	return r.config.KeyPrefix + strconv.Itoa(len(name)) + ":" + name + ":" + id
}

func (r *redisItemCacheImpl) GetItemFromCache(ctx context.Context, name, id string) (resource.Item, error) {
	data, err := r.redisClient.Get(ctx, r.key(name, id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get item from redis: %w", err)
	}

	var item resource.Item
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item from redis: %w", err)
	}
	return item, nil
}

func (r *redisItemCacheImpl) SetItemToCache(ctx context.Context, name string, item resource.Item) error {
	id, ok := item.ID()
	if !ok {
		return resource.ErrInvalidItem
	}

	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item to JSON: %w", err)
	}

	if err := r.redisClient.Set(ctx, r.key(name, id), data, r.config.ItemTTL).Err(); err != nil {
		return fmt.Errorf("failed to set item to redis: %w", err)
	}
	return nil
}

func (r *redisItemCacheImpl) DeleteItemFromCache(ctx context.Context, name, id string) error {
	if err := r.redisClient.Del(ctx, r.key(name, id)).Err(); err != nil {
		return fmt.Errorf("failed to delete item from redis: %w", err)
	}
	return nil
}

// noopItemCache redis 未启用时使用，永远 miss
type noopItemCache struct{}

func NewNoopItemCache() ItemCacheIface { return noopItemCache{} }

func (noopItemCache) GetItemFromCache(context.Context, string, string) (resource.Item, error) {
	return nil, ErrCacheMiss
}

func (noopItemCache) SetItemToCache(context.Context, string, resource.Item) error { return nil }

func (noopItemCache) DeleteItemFromCache(context.Context, string, string) error { return nil }
