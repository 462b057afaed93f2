package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// HBooks is the default redis key holding the catalog list.
const HBooks string = "books"

type redisBookStorage struct {
	logger *zap.Logger
	client *redis.Client
	key    string
}

// NewRedisBookStorage provides an instance of redis-based book storage.
func NewRedisBookStorage(logger *zap.Logger, client *redis.Client, key string) RecordStore {
	return &redisBookStorage{
		logger: logger,
		client: client,
		key:    key,
	}
}

// GetRedisClient provides a ready to use redis client.
func GetRedisClient(config *RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", config.Host, config.Port),
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		PoolSize:     config.PoolSize,
		PoolTimeout:  config.PoolTimeout,
		Password:     config.Password,
		Username:     config.Username,
		DB:           config.DatabaseIndex,
	})

	// test connection.
	if pong, err := client.Ping(context.Background()).Result(); pong != "PONG" || err != nil {
		return client, fmt.Errorf("test connection failed: %v", err)
	}
	return client, nil
}

// Close shuts down the redis client.
func (rs *redisBookStorage) Close() error {
	return rs.client.Close()
}

// Load retrieves every book of the catalog list in stored order.
func (rs *redisBookStorage) Load(ctx context.Context) ([]Book, error) {
	exists, err := rs.client.Exists(ctx, rs.key).Result()
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, ErrStoreNotFound
	}

	items, err := rs.client.LRange(ctx, rs.key, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	books := make([]Book, 0, len(items))
	for _, bookJSONString := range items {
		var book Book
		if err = json.Unmarshal([]byte(bookJSONString), &book); err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	return books, nil
}

// Save replaces the catalog list inside a MULTI/EXEC transaction.
func (rs *redisBookStorage) Save(ctx context.Context, books []Book) error {
	values := make([]interface{}, 0, len(books))
	for _, book := range books {
		bookBytes, err := json.Marshal(book)
		if err != nil {
			return err
		}
		values = append(values, bookBytes)
	}

	_, err := rs.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, rs.key)
		if len(values) > 0 {
			pipe.RPush(ctx, rs.key, values...)
		}
		return nil
	})
	return err
}
