package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures everything the gateway needs at startup. Values come from
// the environment so main stays lean; file-based overrides (compatibility
// table, display names) are paths, loaded by their owning packages.
type Config struct {
	Addr string

	// Upstream API.
	UpstreamBaseURL string
	UpstreamHost    string
	UpstreamTimeout time.Duration

	// Credential pair for request signing. Absence is fatal at startup.
	APIKeyID      string
	APIPrivateKey string

	// Catalog cache.
	CatalogTTL time.Duration

	// Optional infrastructure. Empty means "use in-memory".
	RedisURL     string
	PostgresDSN  string
	KafkaBrokers []string
	KafkaTopic   string

	// Optional override files, extendable without code changes.
	CompatibilityTablePath string
	DisplayNamesPath       string

	// Hosted checkout base for generated redirect links.
	CheckoutBaseURL string
}

// FromEnv builds a Config from environment variables, applying defaults
// suitable for local development. Credential validation happens in the signer,
// not here, so a missing key fails with a typed error instead of a zero value.
func FromEnv() Config {
	cfg := Config{
		Addr:            envOr("RAMPGW_ADDR", ":8080"),
		UpstreamBaseURL: envOr("RAMPGW_UPSTREAM_URL", "https://api.developer.coinbase.com"),
		UpstreamTimeout: envDuration("RAMPGW_UPSTREAM_TIMEOUT", 10*time.Second),
		APIKeyID:        os.Getenv("RAMPGW_API_KEY_ID"),
		APIPrivateKey:   os.Getenv("RAMPGW_API_PRIVATE_KEY"),
		CatalogTTL:      envDuration("RAMPGW_CATALOG_TTL", 15*time.Minute),
		RedisURL:        os.Getenv("RAMPGW_REDIS_URL"),
		PostgresDSN:     os.Getenv("RAMPGW_POSTGRES_DSN"),
		KafkaTopic:      envOr("RAMPGW_KAFKA_TOPIC", "rampgw.audit"),

		CompatibilityTablePath: os.Getenv("RAMPGW_COMPAT_TABLE"),
		DisplayNamesPath:       os.Getenv("RAMPGW_DISPLAY_NAMES"),

		CheckoutBaseURL: envOr("RAMPGW_CHECKOUT_URL", "https://pay.coinbase.com/v3"),
	}

	if brokers := os.Getenv("RAMPGW_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	// The host inside signed tokens must match what the upstream verifier
	// sees, so derive it from the base URL unless pinned explicitly.
	cfg.UpstreamHost = os.Getenv("RAMPGW_UPSTREAM_HOST")
	if cfg.UpstreamHost == "" {
		host := strings.TrimPrefix(strings.TrimPrefix(cfg.UpstreamBaseURL, "https://"), "http://")
		if i := strings.IndexByte(host, '/'); i >= 0 {
			host = host[:i]
		}
		cfg.UpstreamHost = host
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	// Accept plain seconds for operator convenience.
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
