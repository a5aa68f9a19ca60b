package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/corray333/backend-labs/pos/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// MustInit loads .env, reads config.yaml and installs the default logger.
func MustInit() {
	if err := godotenv.Load("./.env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic("error while loading .env file: " + err.Error())
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("/etc/pos-svc")
	viper.AddConfigPath(".")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	SetDefaults()

	if err := viper.ReadInConfig(); err != nil {
		panic("error while reading config file: " + err.Error())
	}
	SetupLogger()
}

// SetDefaults registers fallback values for every key the services read.
func SetDefaults() {
	viper.SetDefault("server.http.port", "3001")
	viper.SetDefault("server.http.rate_limit.rps", 100)
	viper.SetDefault("server.http.rate_limit.burst", 200)
	viper.SetDefault("server.grpc.port", "50051")
	viper.SetDefault("postgres.migrations_path", "./migrations")
	viper.SetDefault("rabbitmq.exchange", "pos.events")
	viper.SetDefault("rabbitmq.audit.queue", "pos.audit")
	viper.SetDefault("rabbitmq.outbox.max_retries", 5)
	viper.SetDefault("redis.ttl_seconds", 300)
	viper.SetDefault("orders.strict_transitions", false)
	viper.SetDefault("ws.send_buffer", 64)
	viper.SetDefault("jaeger.endpoint", "http://jaeger:14268/api/traces")
	viper.SetDefault("log.level", "info")
}

// SetupLogger installs the JSON slog handler as the default logger.
func SetupLogger() {
	var level slog.Level
	if err := level.UnmarshalText([]byte(viper.GetString("log.level"))); err != nil {
		level = slog.LevelInfo
	}

	handler := logger.NewHandler(&slog.HandlerOptions{Level: level})
	log := slog.New(handler)
	slog.SetDefault(log)
}
