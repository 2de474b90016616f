package config

import (
	pkgcfg "github.com/socialmesh/platform/pkg/config"
)

type Config struct {
	ListenAddr  string
	DatabaseURL string

	KafkaBrokers []string

	S3Region       string
	S3BaseEndpoint string
	S3AccessKey    string
	S3SecretKey    string
	S3Bucket       string
	S3PublicURL    string

	LogLevel string
}

func Load() *Config {
	pkgcfg.LoadDotenv(".env")

	return &Config{
		ListenAddr:     pkgcfg.EnvDefault("MEDIA_ADDR", ":3003"),
		DatabaseURL:    pkgcfg.Must("DATABASE_URL"),
		KafkaBrokers:   pkgcfg.CSV(pkgcfg.EnvDefault("KAFKA_BROKERS", "")),
		S3Region:       pkgcfg.EnvDefault("S3_REGION", "us-east-1"),
		S3BaseEndpoint: pkgcfg.EnvDefault("S3_ENDPOINT", ""),
		S3AccessKey:    pkgcfg.Must("S3_ACCESS_KEY"),
		S3SecretKey:    pkgcfg.Must("S3_SECRET_KEY"),
		S3Bucket:       pkgcfg.Must("S3_BUCKET"),
		S3PublicURL:    pkgcfg.Must("S3_PUBLIC_URL"),
		LogLevel:       pkgcfg.EnvDefault("LOG_LEVEL", "info"),
	}
}
