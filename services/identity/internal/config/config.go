package config

import (
	pkgcfg "github.com/socialmesh/platform/pkg/config"
)

type Config struct {
	ListenAddr  string
	DatabaseURL string
	RedisAddr   string
	JWTSecret   []byte
	LogLevel    string
}

func Load() *Config {
	pkgcfg.LoadDotenv(".env")

	return &Config{
		ListenAddr:  pkgcfg.EnvDefault("IDENTITY_ADDR", ":3001"),
		DatabaseURL: pkgcfg.Must("DATABASE_URL"),
		RedisAddr:   pkgcfg.Must("REDIS_ADDR"),
		JWTSecret:   []byte(pkgcfg.Must("JWT_SECRET")),
		LogLevel:    pkgcfg.EnvDefault("LOG_LEVEL", "info"),
	}
}
