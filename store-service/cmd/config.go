package main

import (
	"strings"
	"time"

	"github.com/Takamichi23/Nike-microservice/pkg/config"
)

type DatabaseConfig struct {
	Driver         string `yaml:"driver"`
	SQLitePath     string `yaml:"sqlite_path"`
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	User           string `yaml:"user"`
	Password       string `yaml:"password"`
	Name           string `yaml:"name"`
	MigrationsPath string `yaml:"migrations_path"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type Config struct {
	HTTPPort        string          `yaml:"http_port"`
	LogLevel        string          `yaml:"log_level"`
	OTLPEndpoint    string          `yaml:"otlp_endpoint"`
	RequestTimeout  config.Duration `yaml:"request_timeout"`
	ShutdownTimeout config.Duration `yaml:"shutdown_timeout"`
	Database        DatabaseConfig  `yaml:"database"`
	Kafka           KafkaConfig     `yaml:"kafka"`
}

// loadConfig applies defaults, then the optional YAML file named by
// CONFIG_FILE, then environment variables.
func loadConfig() (*Config, error) {
	cfg := &Config{
		HTTPPort:        "8000",
		LogLevel:        "info",
		RequestTimeout:  config.Duration(10 * time.Second),
		ShutdownTimeout: config.Duration(10 * time.Second),
		Database: DatabaseConfig{
			Driver:         "sqlite",
			SQLitePath:     "db.sqlite3",
			Host:           "localhost",
			Port:           5432,
			User:           "postgres",
			Password:       "postgres",
			Name:           "ecommerce",
			MigrationsPath: "./internal/repository/migrations",
		},
		Kafka: KafkaConfig{Topic: "order-events"},
	}

	if err := config.LoadFile(config.GetEnv("CONFIG_FILE", ""), cfg); err != nil {
		return nil, err
	}

	cfg.HTTPPort = config.GetEnv("HTTP_PORT", cfg.HTTPPort)
	cfg.LogLevel = config.GetEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.OTLPEndpoint = config.GetEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTLPEndpoint)
	cfg.RequestTimeout = config.Duration(config.GetEnvDuration("REQUEST_TIMEOUT", time.Duration(cfg.RequestTimeout)))
	cfg.ShutdownTimeout = config.Duration(config.GetEnvDuration("SHUTDOWN_TIMEOUT", time.Duration(cfg.ShutdownTimeout)))

	db := &cfg.Database
	db.Driver = config.GetEnv("DB_DRIVER", db.Driver)
	db.SQLitePath = config.GetEnv("SQLITE_PATH", db.SQLitePath)
	db.Host = config.GetEnv("DB_HOST", db.Host)
	db.Port = config.GetEnvInt("DB_PORT", db.Port)
	db.User = config.GetEnv("DB_USER", db.User)
	db.Password = config.GetEnv("DB_PASSWORD", db.Password)
	db.Name = config.GetEnv("DB_NAME", db.Name)
	db.MigrationsPath = config.GetEnv("MIGRATIONS_PATH", db.MigrationsPath)

	if brokers := config.GetEnv("KAFKA_BROKERS", ""); brokers != "" {
		cfg.Kafka.Brokers = strings.Split(brokers, ",")
	}
	cfg.Kafka.Topic = config.GetEnv("KAFKA_TOPIC", cfg.Kafka.Topic)

	return cfg, nil
}
