package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Supported record store backends.
const (
	BackendCSV   = "csv"
	BackendBolt  = "bolt"
	BackendRedis = "redis"
)

const (
	DefaultConfigFile = "./config.yml"
	DefaultEnvFile    = "./config.env"
	EnvPrefix         = "LIBCAT"
)

// Config defines the structure of the configuration file.
type Config struct {
	GitCommit    string        `yaml:"git_commit" envconfig:"LIBCAT_GIT_COMMIT"`
	GitTag       string        `yaml:"git_tag" envconfig:"LIBCAT_GIT_TAG"`
	BuildTime    string        `yaml:"build_time" envconfig:"LIBCAT_BUILD_TIME"`
	IsProduction bool          `yaml:"is_production" envconfig:"LIBCAT_IS_PRODUCTION"`
	LogLevel     zapcore.Level `yaml:"log_level" envconfig:"LIBCAT_LOG_LEVEL"`
	LogFile      string        `yaml:"log_file" envconfig:"LIBCAT_LOG_FILE"`
	Storage      StorageConfig `yaml:"storage"`
	CSV          CSVConfig     `yaml:"csv"`
	Redis        RedisConfig   `yaml:"redis"`
	BoltDB       BoltDBConfig  `yaml:"boltdb"`
}

type StorageConfig struct {
	Backend string `yaml:"backend" envconfig:"LIBCAT_STORAGE_BACKEND"`
}

type CSVConfig struct {
	FilePath string `yaml:"filepath" envconfig:"LIBCAT_CSV_FILE_PATH"`
}

type RedisConfig struct {
	Host          string        `yaml:"host" envconfig:"LIBCAT_REDIS_HOST"`
	Port          string        `yaml:"port" envconfig:"LIBCAT_REDIS_PORT"`
	DialTimeout   time.Duration `yaml:"dial_timeout" envconfig:"LIBCAT_REDIS_DIAL_TIMEOUT"`
	ReadTimeout   time.Duration `yaml:"read_timeout" envconfig:"LIBCAT_REDIS_READ_TIMEOUT"`
	WriteTimeout  time.Duration `yaml:"write_timeout" envconfig:"LIBCAT_REDIS_WRITE_TIMEOUT"`
	PoolSize      int           `yaml:"pool_size" envconfig:"LIBCAT_REDIS_POOL_SIZE"`
	PoolTimeout   time.Duration `yaml:"pool_timeout" envconfig:"LIBCAT_REDIS_POOL_TIMEOUT"`
	Username      string        `yaml:"username" envconfig:"LIBCAT_REDIS_USERNAME"`
	Password      string        `yaml:"password" envconfig:"LIBCAT_REDIS_PASSWORD"`
	DatabaseIndex int           `yaml:"db_index" envconfig:"LIBCAT_REDIS_DATABASE_INDEX"`
	Key           string        `yaml:"key" envconfig:"LIBCAT_REDIS_KEY"`
}

type BoltDBConfig struct {
	FilePath   string        `yaml:"filepath" envconfig:"LIBCAT_BOLTDB_FILE_PATH"`
	Timeout    time.Duration `yaml:"timeout" envconfig:"LIBCAT_BOLTDB_TIMEOUT"`
	BucketName string        `yaml:"bucket_name" envconfig:"LIBCAT_BOLTDB_BUCKET_NAME"`
}

// LoadConfigFile provides an instance of config structure for the all application.
// A missing DefaultConfigFile or an empty file yields an empty config so that
// defaults and environment apply. Any other missing file is an error.
func LoadConfigFile(configFile string) (*Config, error) {
	cfg := &Config{}
	file, err := os.Open(configFile)
	if errors.Is(err, fs.ErrNotExist) && configFile == DefaultConfigFile {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	yd := yaml.NewDecoder(file)
	if err = yd.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigEnvs reads the environments variables into the App config.
func LoadConfigEnvs(prefix string, config *Config) error {
	return envconfig.Process(prefix, config)
}

// InitConfig setup defaults values for non provided parameters,
// configures build tags values to be used if provided and validates
// the settings of the selected storage backend.
func InitConfig(config *Config, gitCommit, gitTag, buildTime string) error {
	if len(gitCommit) != 0 {
		config.GitCommit = gitCommit
	}

	if len(gitTag) != 0 {
		config.GitTag = gitTag
	}

	if len(buildTime) != 0 {
		config.BuildTime = buildTime
	}

	if config.LogFile == "" {
		config.LogFile = "./logs/library_management.log"
	}

	if config.Storage.Backend == "" {
		config.Storage.Backend = BackendCSV
	}

	if config.CSV.FilePath == "" {
		config.CSV.FilePath = "./database/book_data.csv"
	}

	if config.BoltDB.FilePath == "" {
		config.BoltDB.FilePath = "./database/book_data.db"
	}
	if config.BoltDB.BucketName == "" {
		config.BoltDB.BucketName = "books"
	}
	if config.BoltDB.Timeout == 0 {
		config.BoltDB.Timeout = 5 * time.Second
	}

	if config.Redis.Key == "" {
		config.Redis.Key = HBooks
	}

	switch config.Storage.Backend {
	case BackendCSV, BackendBolt:
	case BackendRedis:
		if len(config.Redis.Host) == 0 || len(config.Redis.Port) == 0 {
			return errors.New("make sure to set valid redis address and port in configuration file")
		}
	default:
		return fmt.Errorf("unknown storage backend %q, expected one of: csv, bolt, redis", config.Storage.Backend)
	}

	return nil
}

// LoadAndInitConfigs loads in order the configs from various predefined sources
// then build the App configuration data. The environment file is optional.
func LoadAndInitConfigs(configFile, envFile, gitCommit, gitTag, buildTime string) (*Config, error) {
	config, err := LoadConfigFile(configFile)
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from file: %w", err)
	}

	err = godotenv.Load(envFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config, fmt.Errorf("failed to set environment configurations: %s", err)
	}

	err = LoadConfigEnvs(EnvPrefix, config)
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from environment: %s", err)
	}

	err = InitConfig(config, gitCommit, gitTag, buildTime)
	if err != nil {
		return config, fmt.Errorf("failed to initialize configurations: %s", err)
	}
	return config, nil
}
