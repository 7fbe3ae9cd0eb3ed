package advice

import "time"

// Config holds cache lifetimes for generated advice.
type Config struct {
	CacheTTL     time.Duration
	CacheSliding time.Duration
	FallbackTTL  time.Duration
}

func (c Config) withDefaults() Config {
	if c.CacheTTL <= 0 {
		c.CacheTTL = 10 * time.Minute
	}
	if c.CacheSliding <= 0 {
		c.CacheSliding = 5 * time.Minute
	}
	if c.FallbackTTL <= 0 {
		c.FallbackTTL = 2 * time.Minute
	}
	return c
}
