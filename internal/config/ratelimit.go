package config

import "time"

// RateLimitConfig drives the Redis token bucket in front of the API.
// Booking endpoints get their own, tighter bucket so a client retrying on
// 409 cannot starve other traffic.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	KeyStrategy    string
	Prefix         string
	Debug          bool
}

// LoadRateLimitConfig reads the general API bucket.
func LoadRateLimitConfig() RateLimitConfig {
	return loadRateLimit("RATE_LIMIT", 60, "ip_user_route", "abogapp:rl")
}

// LoadBookingRateLimitConfig reads the bucket applied to POST /api/meetings.
func LoadBookingRateLimitConfig() RateLimitConfig {
	return loadRateLimit("BOOKING_RATE_LIMIT", 10, "user_route", "abogapp:rl:booking")
}

func loadRateLimit(prefix string, capacity int, strategy, keyPrefix string) RateLimitConfig {
	c := RateLimitConfig{
		Enabled:        envBool(prefix+"_ENABLED", true),
		Capacity:       envInt(prefix+"_CAPACITY", capacity),
		RefillTokens:   envInt(prefix+"_REFILL_TOKENS", 1),
		RefillInterval: envDur(prefix+"_REFILL_INTERVAL", time.Second),
		TTL:            envDur(prefix+"_TTL", 10*time.Minute),
		KeyStrategy:    envStr(prefix+"_KEY_STRATEGY", strategy),
		Prefix:         envStr(prefix+"_PREFIX", keyPrefix),
		Debug:          envBool(prefix+"_DEBUG", false),
	}
	if c.Capacity < 1 {
		c.Capacity = 1
	}
	if c.RefillTokens < 1 {
		c.RefillTokens = 1
	}
	if c.RefillInterval <= 0 {
		c.RefillInterval = time.Second
	}
	if minTTL := 5 * c.RefillInterval; c.TTL < minTTL {
		c.TTL = minTTL
	}
	return c
}
