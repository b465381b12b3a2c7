package config

import (
    "fmt"
    "os"
    "strconv"
    "strings"
    "time"
)

// Rate limit key parts.  A strategy is one or more of them joined by "_",
// for example "user_route".
const (
    KeyIP    = "ip"
    KeyUser  = "user"
    KeyRoute = "route"
)

// RateLimitConfig configures the Redis token bucket.  Each bucket holds
// Capacity tokens and regains RefillTokens every RefillInterval; idle
// buckets expire after TTL.
type RateLimitConfig struct {
    Enabled        bool
    Capacity       int
    RefillTokens   int
    RefillInterval time.Duration
    TTL            time.Duration
    KeyParts       []string // ordered subset of KeyIP, KeyUser, KeyRoute
    Prefix         string
}

// loadRateLimit reads RATE_LIMIT_* variables.  Values below their minimum
// are raised to it; an unknown key strategy is an error.
func loadRateLimit() (RateLimitConfig, error) {
    rl := RateLimitConfig{
        Enabled:        envBool("RATE_LIMIT_ENABLED", true),
        Capacity:       envInt("RATE_LIMIT_CAPACITY", 60),
        RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
        RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", time.Second),
        TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
        Prefix:         envStr("RATE_LIMIT_PREFIX", "recipe-api:rl"),
    }
    parts, err := ParseKeyStrategy(envStr("RATE_LIMIT_KEY_STRATEGY", "ip_user_route"))
    if err != nil {
        return RateLimitConfig{}, err
    }
    rl.KeyParts = parts

    rl.Capacity = max(rl.Capacity, 1)
    rl.RefillTokens = max(rl.RefillTokens, 1)
    if rl.RefillInterval <= 0 {
        rl.RefillInterval = time.Second
    }
    // a bucket must outlive a few refills or it resets to full too early
    rl.TTL = max(rl.TTL, 5*rl.RefillInterval)
    return rl, nil
}

// ParseKeyStrategy splits s into key parts, rejecting unknown or repeated
// parts.
func ParseKeyStrategy(s string) ([]string, error) {
    var (
        parts []string
        seen  = map[string]bool{}
    )
    for _, p := range strings.Split(strings.ToLower(strings.TrimSpace(s)), "_") {
        switch p {
        case KeyIP, KeyUser, KeyRoute:
        default:
            return nil, fmt.Errorf("invalid RATE_LIMIT_KEY_STRATEGY %q: unknown part %q", s, p)
        }
        if seen[p] {
            return nil, fmt.Errorf("invalid RATE_LIMIT_KEY_STRATEGY %q: repeated part %q", s, p)
        }
        seen[p] = true
        parts = append(parts, p)
    }
    return parts, nil
}

func envStr(k, d string) string {
    if v := os.Getenv(k); v != "" {
        return v
    }
    return d
}

func envBool(k string, d bool) bool {
    switch strings.ToLower(os.Getenv(k)) {
    case "1", "true", "yes", "on":
        return true
    case "0", "false", "no", "off":
        return false
    }
    return d
}

func envInt(k string, d int) int {
    if n, err := strconv.Atoi(os.Getenv(k)); err == nil {
        return n
    }
    return d
}

func envDur(k string, d time.Duration) time.Duration {
    if dur, err := time.ParseDuration(os.Getenv(k)); err == nil {
        return dur
    }
    return d
}
