package weather

import "time"

// Config holds runtime knobs for the weather service.
type Config struct {
	CacheTTL   time.Duration
	DailyQuota int
}

const (
	defaultCacheTTL   = 5 * time.Minute
	defaultDailyQuota = 900
)

func (c Config) withDefaults() Config {
	if c.CacheTTL <= 0 {
		c.CacheTTL = defaultCacheTTL
	}
	if c.DailyQuota <= 0 {
		c.DailyQuota = defaultDailyQuota
	}
	return c
}
