package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all NBLAST service configuration.
type Config struct {
	Server    ServerConfig
	Neighbor  NeighborConfig
	PairCache PairCacheConfig
	Score     ScoreConfig
}

// ServerConfig holds REST server configuration.
type ServerConfig struct {
	Host            string        // Server host (default: "0.0.0.0")
	Port            int           // Server port (default: 8080)
	MaxConnections  int           // Max concurrent connections
	RequestTimeout  time.Duration // Request timeout
	ShutdownTimeout time.Duration // Graceful shutdown timeout
	EnableTLS       bool          // Enable TLS
	CertFile        string        // TLS certificate file
	KeyFile         string        // TLS key file

	CORSEnabled bool     // Enable CORS
	CORSOrigins []string // Allowed CORS origins ("*" for all)

	AuthEnabled bool     // Enable JWT authentication
	JWTSecret   string   // HMAC secret for JWT signing/verification
	PublicPaths []string // Path prefixes exempt from authentication
	AdminPaths  []string // Path prefixes requiring the "admin" role

	RateLimitEnabled bool    // Enable request rate limiting
	RateLimitPerSec  float64 // Sustained requests per second
	RateLimitBurst   int     // Burst size
	RateLimitPerIP   bool    // Rate limit per client IP
	RateLimitPerUser bool    // Rate limit per authenticated user
	RateLimitGlobal  bool    // Apply an additional global rate limit
}

// NeighborConfig holds settings for the optional approximate
// neuron-shortlist index. Never affects exact Query/Batch/AllVsAll scoring.
// These values are validated and shown at startup only: the REST server
// builds a tenant's shortlist with neighbor.DefaultConfig() on its first
// /similar request, whether or not Enabled is set.
type NeighborConfig struct {
	Enabled         bool // Shortlist flag (not consulted by the REST server)
	M               int  // Neighbor edges kept per graph node (default: 16)
	EfConstruction  int  // Candidate list size during construction (default: 200)
	DefaultEfSearch int  // Candidate list size during search (default: 50)
}

// PairCacheConfig holds pairwise-score cache configuration.
type PairCacheConfig struct {
	Enabled  bool          // Enable pairwise score caching
	Capacity int           // Max cache entries
	TTL      time.Duration // Time to live for cache entries (0 = no expiry)
}

// ScoreConfig points at the score table a new arena is built from.
type ScoreConfig struct {
	TablePath string // Path to a score table file (format: caller-defined)
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			MaxConnections:  1000,
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			EnableTLS:       false,

			CORSEnabled: true,
			CORSOrigins: []string{"*"},

			AuthEnabled: false,
			PublicPaths: []string{"/v1/health", "/docs"},
			AdminPaths:  nil,

			RateLimitEnabled: true,
			RateLimitPerSec:  100,
			RateLimitBurst:   200,
			RateLimitPerIP:   true,
		},
		Neighbor: NeighborConfig{
			Enabled:         false,
			M:               16,
			EfConstruction:  200,
			DefaultEfSearch: 50,
		},
		PairCache: PairCacheConfig{
			Enabled:  false,
			Capacity: 10000,
			TTL:      5 * time.Minute,
		},
		Score: ScoreConfig{
			TablePath: "",
		},
	}
}

// LoadFromEnv loads configuration from NBLAST_-prefixed environment
// variables, starting from Default and overriding only what is set.
func LoadFromEnv() *Config {
	cfg := Default()

	if host := os.Getenv("NBLAST_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if port := os.Getenv("NBLAST_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if maxConn := os.Getenv("NBLAST_MAX_CONNECTIONS"); maxConn != "" {
		if mc, err := strconv.Atoi(maxConn); err == nil {
			cfg.Server.MaxConnections = mc
		}
	}
	if timeout := os.Getenv("NBLAST_REQUEST_TIMEOUT"); timeout != "" {
		if t, err := time.ParseDuration(timeout); err == nil {
			cfg.Server.RequestTimeout = t
		}
	}
	if enableTLS := os.Getenv("NBLAST_ENABLE_TLS"); enableTLS == "true" {
		cfg.Server.EnableTLS = true
		cfg.Server.CertFile = os.Getenv("NBLAST_TLS_CERT")
		cfg.Server.KeyFile = os.Getenv("NBLAST_TLS_KEY")
	}
	if authEnabled := os.Getenv("NBLAST_AUTH_ENABLED"); authEnabled == "true" {
		cfg.Server.AuthEnabled = true
		cfg.Server.JWTSecret = os.Getenv("NBLAST_JWT_SECRET")
	}
	if rateLimitEnabled := os.Getenv("NBLAST_RATE_LIMIT_ENABLED"); rateLimitEnabled == "false" {
		cfg.Server.RateLimitEnabled = false
	}

	if enabled := os.Getenv("NBLAST_NEIGHBOR_ENABLED"); enabled == "true" {
		cfg.Neighbor.Enabled = true
	}
	if m := os.Getenv("NBLAST_NEIGHBOR_M"); m != "" {
		if mVal, err := strconv.Atoi(m); err == nil {
			cfg.Neighbor.M = mVal
		}
	}
	if ef := os.Getenv("NBLAST_NEIGHBOR_EF_CONSTRUCTION"); ef != "" {
		if efVal, err := strconv.Atoi(ef); err == nil {
			cfg.Neighbor.EfConstruction = efVal
		}
	}

	if cacheEnabled := os.Getenv("NBLAST_PAIR_CACHE_ENABLED"); cacheEnabled == "true" {
		cfg.PairCache.Enabled = true
	}
	if capacity := os.Getenv("NBLAST_PAIR_CACHE_CAPACITY"); capacity != "" {
		if c, err := strconv.Atoi(capacity); err == nil {
			cfg.PairCache.Capacity = c
		}
	}
	if ttl := os.Getenv("NBLAST_PAIR_CACHE_TTL"); ttl != "" {
		if t, err := time.ParseDuration(ttl); err == nil {
			cfg.PairCache.TTL = t
		}
	}

	if tablePath := os.Getenv("NBLAST_SCORE_TABLE_PATH"); tablePath != "" {
		cfg.Score.TablePath = tablePath
	}

	return cfg
}

// Validate checks if the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.MaxConnections < 1 {
		return fmt.Errorf("invalid max connections: %d (must be > 0)", c.Server.MaxConnections)
	}
	if c.Server.EnableTLS {
		if c.Server.CertFile == "" || c.Server.KeyFile == "" {
			return fmt.Errorf("TLS enabled but cert or key file not specified")
		}
	}
	if c.Server.AuthEnabled && c.Server.JWTSecret == "" {
		return fmt.Errorf("auth enabled but NBLAST_JWT_SECRET not set")
	}

	if c.Neighbor.Enabled {
		if c.Neighbor.M < 2 || c.Neighbor.M > 100 {
			return fmt.Errorf("invalid neighbor M: %d (recommended: 16)", c.Neighbor.M)
		}
		if c.Neighbor.EfConstruction < 10 {
			return fmt.Errorf("invalid neighbor efConstruction: %d (must be >= 10)", c.Neighbor.EfConstruction)
		}
	}

	if c.PairCache.Enabled && c.PairCache.Capacity < 1 {
		return fmt.Errorf("invalid pair cache capacity: %d (must be > 0)", c.PairCache.Capacity)
	}

	return nil
}

// Address returns the server address (host:port).
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
