package config

import (
	"os"
)

type Config struct {
	ServerPort string
	Env        string

	// Storage selects the post store backend: "postgres" or "memory".
	Storage    string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// RedisURL enables the redis rate limiter; empty falls back to the
	// in-process limiter.
	RedisURL string

	JWTSecret string

	// DirectoryURL points at the external user directory API that resolves
	// author ids to public profiles.
	DirectoryURL   string
	DirectoryToken string
}

func Load() *Config {
	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		Env:        getEnv("APP_ENV", "development"),

		Storage:    getEnv("STORAGE", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "chirp"),
		DBPassword: getEnv("DB_PASSWORD", "chirp_dev_password"),
		DBName:     getEnv("DB_NAME", "chirp"),

		RedisURL: getEnv("REDIS_URL", ""),

		JWTSecret: getEnv("JWT_SECRET", "dev-secret-change-me"),

		DirectoryURL:   getEnv("DIRECTORY_URL", "http://localhost:9000"),
		DirectoryToken: getEnv("DIRECTORY_TOKEN", ""),
	}
}

func getEnv(key, fallback string) string {
	val, exists := os.LookupEnv(key)

	if exists {
		return val
	}

	return fallback
}
