package main

import (
	"time"

	"github.com/Takamichi23/Nike-microservice/pkg/config"
)

type MongoConfig struct {
	URI                    string          `yaml:"uri"`
	Database               string          `yaml:"database"`
	ConnectTimeout         config.Duration `yaml:"connect_timeout"`
	ServerSelectionTimeout config.Duration `yaml:"server_selection_timeout"`
	MaxPoolSize            int             `yaml:"max_pool_size"`
	MinPoolSize            int             `yaml:"min_pool_size"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type SessionConfig struct {
	TTL          config.Duration `yaml:"ttl"`
	CookieSecure bool            `yaml:"cookie_secure"`
}

type StoreAPIConfig struct {
	BaseURL string          `yaml:"base_url"`
	Timeout config.Duration `yaml:"timeout"`
	// BreakerFailures consecutive failures open the breaker for BreakerOpen.
	BreakerFailures int             `yaml:"breaker_failures"`
	BreakerOpen     config.Duration `yaml:"breaker_open"`
}

type Config struct {
	HTTPPort        string          `yaml:"http_port"`
	LogLevel        string          `yaml:"log_level"`
	OTLPEndpoint    string          `yaml:"otlp_endpoint"`
	RequestTimeout  config.Duration `yaml:"request_timeout"`
	ShutdownTimeout config.Duration `yaml:"shutdown_timeout"`
	Mongo           MongoConfig     `yaml:"mongo"`
	Redis           RedisConfig     `yaml:"redis"`
	Session         SessionConfig   `yaml:"session"`
	StoreAPI        StoreAPIConfig  `yaml:"store_api"`
}

// loadConfig applies defaults, then the optional YAML file named by
// CONFIG_FILE, then environment variables.
func loadConfig() (*Config, error) {
	cfg := &Config{
		HTTPPort:        "8080",
		LogLevel:        "info",
		RequestTimeout:  config.Duration(15 * time.Second),
		ShutdownTimeout: config.Duration(10 * time.Second),
		Mongo: MongoConfig{
			URI:                    "mongodb://localhost:27017",
			Database:               "storefront",
			ConnectTimeout:         config.Duration(10 * time.Second),
			ServerSelectionTimeout: config.Duration(5 * time.Second),
			MaxPoolSize:            100,
			MinPoolSize:            10,
		},
		Redis: RedisConfig{Addr: "localhost:6379"},
		Session: SessionConfig{
			TTL: config.Duration(14 * 24 * time.Hour),
		},
		StoreAPI: StoreAPIConfig{
			BaseURL:         "http://localhost:8000",
			Timeout:         config.Duration(10 * time.Second),
			BreakerFailures: 5,
			BreakerOpen:     config.Duration(30 * time.Second),
		},
	}

	if err := config.LoadFile(config.GetEnv("CONFIG_FILE", ""), cfg); err != nil {
		return nil, err
	}

	cfg.HTTPPort = config.GetEnv("HTTP_PORT", cfg.HTTPPort)
	cfg.LogLevel = config.GetEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.OTLPEndpoint = config.GetEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTLPEndpoint)
	cfg.RequestTimeout = config.Duration(config.GetEnvDuration("REQUEST_TIMEOUT", time.Duration(cfg.RequestTimeout)))
	cfg.ShutdownTimeout = config.Duration(config.GetEnvDuration("SHUTDOWN_TIMEOUT", time.Duration(cfg.ShutdownTimeout)))

	cfg.Mongo.URI = config.GetEnv("MONGO_URI", cfg.Mongo.URI)
	cfg.Mongo.Database = config.GetEnv("MONGO_DB_NAME", cfg.Mongo.Database)
	cfg.Mongo.ConnectTimeout = config.Duration(config.GetEnvDuration("MONGO_CONNECT_TIMEOUT", time.Duration(cfg.Mongo.ConnectTimeout)))
	cfg.Mongo.ServerSelectionTimeout = config.Duration(config.GetEnvDuration("MONGO_SERVER_SELECTION_TIMEOUT", time.Duration(cfg.Mongo.ServerSelectionTimeout)))
	cfg.Mongo.MaxPoolSize = max(config.GetEnvInt("MONGO_MAX_POOL_SIZE", cfg.Mongo.MaxPoolSize), 0)
	cfg.Mongo.MinPoolSize = max(config.GetEnvInt("MONGO_MIN_POOL_SIZE", cfg.Mongo.MinPoolSize), 0)

	cfg.Redis.Addr = config.GetEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = config.GetEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = config.GetEnvInt("REDIS_DB", cfg.Redis.DB)

	cfg.Session.TTL = config.Duration(config.GetEnvDuration("SESSION_TTL", time.Duration(cfg.Session.TTL)))
	cfg.Session.CookieSecure = config.GetEnv("SESSION_COOKIE_SECURE", "") == "true" || cfg.Session.CookieSecure

	store := &cfg.StoreAPI
	store.BaseURL = config.GetEnv("STORE_API_URL", store.BaseURL)
	store.Timeout = config.Duration(config.GetEnvDuration("STORE_API_TIMEOUT", time.Duration(store.Timeout)))
	store.BreakerFailures = config.GetEnvInt("STORE_API_BREAKER_FAILURES", store.BreakerFailures)
	store.BreakerOpen = config.Duration(config.GetEnvDuration("STORE_API_BREAKER_OPEN", time.Duration(store.BreakerOpen)))

	return cfg, nil
}
