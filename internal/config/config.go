package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env            string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	ServerPort     string
	JWTSecret      string
	TokenTTL       time.Duration
	RequestTimeout time.Duration
}

// devSecret is only ever used when APP_ENV=local and JWT_SECRET is unset.
const devSecret = "insecure-dev-secret"

func Load() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	}

	cfg := &Config{
		Env:            getEnv("APP_ENV", "local"),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "todo_user"),
		DBPassword:     getEnv("DB_PASSWORD", "todo_pass"),
		DBName:         getEnv("DB_NAME", "todo_db"),
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		TokenTTL:       getDuration("TOKEN_TTL", 24*time.Hour),
		RequestTimeout: getDuration("REQUEST_TIMEOUT", 10*time.Second),
	}

	if cfg.JWTSecret == "" {
		if cfg.Env != "local" {
			return nil, fmt.Errorf("JWT_SECRET must be set when APP_ENV=%q", cfg.Env)
		}
		log.Println("⚠️  JWT_SECRET not set, falling back to an insecure development secret")
		cfg.JWTSecret = devSecret
	}

	return cfg, nil
}

// Production returns true for any environment other than local development.
func (c *Config) Production() bool {
	return c.Env != "local"
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("⚠️  Invalid %s value %q, using default %s", key, value, defaultVal)
		return defaultVal
	}
	return d
}
