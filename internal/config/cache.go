package config

import (
	"strings"
	"time"
)

// CacheConfig drives the response cache middleware.  Caching is disabled
// when Enabled is false or no Redis client could be built.  Methods lists
// the HTTP methods eligible for caching, TTL bounds entry lifetime, and
// KeyStrategy selects which request parts feed the cache key.
type CacheConfig struct {
	Enabled      bool
	Methods      map[string]bool
	TTL          time.Duration
	KeyStrategy  string
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig reads cache settings from the environment with defaults
// suited to the public browse endpoints.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      envDefault("CACHE_ENABLED", "true") == "true",
		Methods:      parseMethods(envDefault("CACHE_METHODS", "GET")),
		TTL:          envDuration("CACHE_TTL", 30*time.Second),
		KeyStrategy:  envDefault("CACHE_KEY_STRATEGY", "route_query"),
		Prefix:       envDefault("CACHE_PREFIX", "cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
	}
}

func parseMethods(s string) map[string]bool {
	m := map[string]bool{}
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(strings.ToUpper(p))
		if p != "" {
			m[p] = true
		}
	}
	return m
}
