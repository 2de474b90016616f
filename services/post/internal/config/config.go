package config

import (
	pkgcfg "github.com/socialmesh/platform/pkg/config"
)

type Config struct {
	ListenAddr  string
	DatabaseURL string
	RedisAddr   string

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	LogLevel string
}

func Load() *Config {
	pkgcfg.LoadDotenv(".env")

	return &Config{
		ListenAddr:   pkgcfg.EnvDefault("POST_ADDR", ":3002"),
		DatabaseURL:  pkgcfg.Must("DATABASE_URL"),
		RedisAddr:    pkgcfg.Must("REDIS_ADDR"),
		KafkaBrokers: pkgcfg.CSV(pkgcfg.EnvDefault("KAFKA_BROKERS", "")),
		ESURL:        pkgcfg.EnvDefault("ES_URL", ""),
		ESUser:       pkgcfg.EnvDefault("ES_USER", ""),
		ESPassword:   pkgcfg.EnvDefault("ES_PASSWORD", ""),
		ESIndex:      pkgcfg.EnvDefault("ES_INDEX", "posts"),
		LogLevel:     pkgcfg.EnvDefault("LOG_LEVEL", "info"),
	}
}
