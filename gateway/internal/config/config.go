package config

import (
	pkgcfg "github.com/socialmesh/platform/pkg/config"
)

type Config struct {
	ListenAddr  string
	IdentityURL string
	PostURL     string
	MediaURL    string
	RedisAddr   string
	JWTSecret   []byte
	LogLevel    string
}

func Load() *Config {
	pkgcfg.LoadDotenv(".env")

	return &Config{
		ListenAddr:  pkgcfg.EnvDefault("GATEWAY_ADDR", ":3000"),
		IdentityURL: pkgcfg.Must("IDENTITY_SERVICE_URL"),
		PostURL:     pkgcfg.Must("POST_SERVICE_URL"),
		MediaURL:    pkgcfg.Must("MEDIA_SERVICE_URL"),
		RedisAddr:   pkgcfg.Must("REDIS_ADDR"),
		JWTSecret:   []byte(pkgcfg.Must("JWT_SECRET")),
		LogLevel:    pkgcfg.EnvDefault("LOG_LEVEL", "info"),
	}
}
