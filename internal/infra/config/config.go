package configs

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	StoreDriverFile   = "file"
	StoreDriverMySQL  = "mysql"
	StoreDriverSQLite = "sqlite"
)

// Config JSONing 服务配置
type Config struct {
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
	Rules  RulesConfig  `yaml:"rules"`
	Store  StoreConfig  `yaml:"store"`
	Redis  RedisConfig  `yaml:"redis"`
	Repo   RepoConfig   `yaml:"repo"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" validate:"required"`
	MetricsAddr     string        `yaml:"metricsAddr"` // 为空时不暴露 /metrics
	CORS            bool          `yaml:"cors"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

type LogConfig struct {
	Level      string `yaml:"level" validate:"omitempty,oneof=trace debug info warn warning error fatal panic"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMB" validate:"min=0"`
	MaxBackups int    `yaml:"maxBackups" validate:"min=0"`
	MaxAgeDays int    `yaml:"maxAgeDays" validate:"min=0"`
}

// RulesConfig 拦截规则来源
type RulesConfig struct {
	File     string        `yaml:"file"`  // JSON 或 YAML 规则文件，为空表示无规则
	Watch    bool          `yaml:"watch"` // 文件变更后自动重新加载
	Debounce time.Duration `yaml:"debounce"`
}

// StoreConfig 资源存储后端
type StoreConfig struct {
	Driver   string               `yaml:"driver" validate:"required,oneof=file mysql sqlite"`
	File     string               `yaml:"file"` // driver=file 时的 JSON 文件；为空则只保存在内存
	SQLite   string               `yaml:"sqlite"`
	Database *DatabaseConfig      `yaml:"database" validate:"omitempty"`
	Options  DatabaseOptionConfig `yaml:"databaseConfig"`
}

// RepoConfig 封装 itemRepoImpl 的配置参数
type RepoConfig struct {
	SaveRetryCount  int           `json:"saveRetryCount" yaml:"saveRetryCount" validate:"min=1"`
	SaveRetryDelay  time.Duration `json:"saveRetryDelay" yaml:"saveRetryDelay"`
	CacheRetryCount int           `json:"cacheRetryCount" yaml:"cacheRetryCount" validate:"min=1"`
	CacheRetryDelay time.Duration `json:"cacheRetryDelay" yaml:"cacheRetryDelay"`
	WarmPoolSize    int           `json:"warmPoolSize" yaml:"warmPoolSize" validate:"min=1"`
}

// DefaultConfig 不提供配置文件时的默认值：内存存储、无规则
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":3000",
			CORS:            true,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
		Rules: RulesConfig{
			Debounce: 100 * time.Millisecond,
		},
		Store: StoreConfig{
			Driver: StoreDriverFile,
			Options: DatabaseOptionConfig{
				MaxIdleConns:    2,
				MaxOpenConns:    10,
				ConnMaxLifetime: time.Hour,
				LogLevel:        "warn",
				SlowThreshold:   200 * time.Millisecond,
			},
		},
		Redis: RedisConfig{
			Port:      6379,
			ItemTTL:   time.Minute,
			KeyPrefix: "jsoning_item:",
		},
		Repo: RepoConfig{
			SaveRetryCount:  3,
			SaveRetryDelay:  50 * time.Millisecond,
			CacheRetryCount: 2,
			CacheRetryDelay: 20 * time.Millisecond,
			WarmPoolSize:    16,
		},
	}
}

// LoadConfig 加载配置：path 为空时依次尝试环境变量 JSONING_CONFIG_PATH，都没有则使用默认值
func LoadConfig(path string) (*Config, error) {
	// 1. 确定配置文件路径
	if path == "" {
		path = os.Getenv("JSONING_CONFIG_PATH")
	}

	config := DefaultConfig()
	if path == "" {
		return config, config.Validate()
	}

	// 2. 读取配置文件
	configFile, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// 3. 解析配置，未出现的字段保留默认值
	if err := yaml.Unmarshal(configFile, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// 4. 验证配置
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// Validate 字段级校验交给 validator，跨字段约束手动检查
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	switch c.Store.Driver {
	case StoreDriverMySQL:
		if c.Store.Database == nil {
			return errors.New("store.database is required for the mysql driver")
		}
	case StoreDriverSQLite:
		if c.Store.SQLite == "" {
			return errors.New("store.sqlite is required for the sqlite driver")
		}
	}

	if c.Redis.Enabled {
		if c.Redis.Host == "" {
			return errors.New("redis host is required when redis is enabled")
		}
		if c.Redis.Port <= 0 || c.Redis.Port > 65535 {
			return fmt.Errorf("redis port %d is out of range", c.Redis.Port)
		}
	}

	if c.Rules.Watch && c.Rules.File == "" {
		return errors.New("rules.watch requires rules.file")
	}

	return nil
}
