package config

import (
	"os"
	"runtime"
	"strconv"
)

type Config struct {
	Face      FaceConfig
	RateLimit RateLimitConfig
	Upload    UploadConfig
	Embedding EmbeddingConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Web       WebConfig
}

type FaceConfig struct {
	MatchThreshold float64 // minimum cosine similarity for a positive match
}

type RateLimitConfig struct {
	MaxRequests   int // max requests per client within the window
	WindowSeconds int // trailing window length in seconds
}

type UploadConfig struct {
	MaxSize int64 // maximum request body size in bytes
}

type EmbeddingConfig struct {
	URL     string // face embedding server URL; empty selects the pixel fallback backend
	Dim     int    // expected embedding dimension of the neural backend (default 512)
	Workers int    // bounded extraction worker pool size
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL; empty selects the in-memory registry
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type AuthConfig struct {
	Secret string // HMAC secret for bearer token verification
}

type WebConfig struct {
	Host string
	Port int
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envInt64 reads an environment variable and parses it as a positive int64.
func envInt64(key string, defaultVal int64) int64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a float64.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return defaultVal
}

func Load() *Config {
	return &Config{
		Face: FaceConfig{
			MatchThreshold: envFloat("FACE_MATCH_THRESHOLD", 0.5),
		},
		RateLimit: RateLimitConfig{
			MaxRequests:   envInt("RATE_LIMIT_MAX_REQUESTS", 100),
			WindowSeconds: envInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		},
		Upload: UploadConfig{
			MaxSize: envInt64("MAX_UPLOAD_SIZE", 5*1024*1024),
		},
		Embedding: EmbeddingConfig{
			URL:     os.Getenv("EMBEDDING_URL"),
			Dim:     envInt("EMBEDDING_DIM", 512),
			Workers: envInt("EXTRACT_WORKERS", runtime.NumCPU()),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Auth: AuthConfig{
			Secret: os.Getenv("AUTH_SECRET"),
		},
		Web: WebConfig{
			Host: envString("WEB_HOST", "0.0.0.0"),
			Port: envInt("WEB_PORT", 8080),
		},
	}
}

// envString reads an environment variable, returning the default when unset.
func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}
