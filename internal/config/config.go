package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server      ServerConfig
	Recognition RecognitionConfig
	Database    DatabaseConfig
	Detector    DetectorConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type RecognitionConfig struct {
	Dimension      int           // embedding vector length produced by the external model
	MatchThreshold float64       // maximum Euclidean distance for a positive match
	CooldownWindow time.Duration // minimum gap between two accepted events for one name
	TickInterval   time.Duration // recognition loop period
}

type DatabaseConfig struct {
	URL           string // PostgreSQL connection URL; when empty the sqlite backend is used
	SQLitePath    string // path to the sqlite database file (default attendance.db)
	MaxOpenConns  int    // maximum open connections (default 25)
	MaxIdleConns  int    // maximum idle connections (default 5)
	HNSWIndexPath string // path to persist the identity HNSW index (optional)
}

type DetectorConfig struct {
	URL     string        // external face-embedding service (e.g., http://localhost:8000)
	Timeout time.Duration // per-request timeout for the embedding service
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

// envFloat reads an environment variable and parses it as a positive float.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

// envDuration reads an environment variable and parses it as a Go duration
// string (e.g., "5m", "400ms").
func envDuration(key string, defaultVal time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envString("WEB_HOST", "0.0.0.0"),
			Port: envInt("WEB_PORT", 8080),
		},
		Recognition: RecognitionConfig{
			Dimension:      envInt("EMBEDDING_DIM", 128),
			MatchThreshold: envFloat("MATCH_THRESHOLD", 0.6),
			CooldownWindow: envDuration("COOLDOWN_WINDOW", 5*time.Minute),
			TickInterval:   envDuration("TICK_INTERVAL", 400*time.Millisecond),
		},
		Database: DatabaseConfig{
			URL:           os.Getenv("DATABASE_URL"),
			SQLitePath:    envString("SQLITE_PATH", "attendance.db"),
			MaxOpenConns:  envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:  envInt("DATABASE_MAX_IDLE_CONNS", 5),
			HNSWIndexPath: os.Getenv("HNSW_INDEX_PATH"),
		},
		Detector: DetectorConfig{
			URL:     os.Getenv("DETECTOR_URL"),
			Timeout: envDuration("DETECTOR_TIMEOUT", 10*time.Second),
		},
	}
}
