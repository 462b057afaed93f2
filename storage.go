package main

import (
	"fmt"

	"go.uber.org/zap"
)

// NewRecordStore opens the record store selected by the storage backend setting.
func NewRecordStore(logger *zap.Logger, config *Config) (RecordStore, error) {
	switch config.Storage.Backend {
	case BackendCSV, "":
		return NewCSVBookStorage(logger, &config.CSV), nil
	case BackendBolt:
		client, err := GetBoltDBClient(&config.BoltDB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to boltDB: %s", err)
		}
		return NewBoltBookStorage(logger, &config.BoltDB, client), nil
	case BackendRedis:
		client, err := GetRedisClient(&config.Redis)
		if err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to redis server: %s", err)
		}
		return NewRedisBookStorage(logger, client, config.Redis.Key), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", config.Storage.Backend)
	}
}
