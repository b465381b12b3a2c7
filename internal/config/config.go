package config // package config loads application configuration from environment variables

import (
    "fmt"
    "log"
    "log/slog"
    "os"
    "strconv"
    "strings"

    "github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
    Env            string // application environment (e.g. "dev", "prod")
    Port           string // HTTP port to listen on
    DBUser         string
    DBPass         string // optional
    DBHost         string
    DBPort         string
    DBName         string
    JWTSecret      string // secret used to sign access tokens
    AccessTTLMin   int    // access token lifetime in minutes
    RefreshTTLDays int    // refresh token lifetime in days
    BcryptCost     int

    AMQPURL       string // RabbitMQ url; empty disables events
    EventsEnabled bool
    LogLevel      slog.Level
    LogDir        string // where the event consumer appends recipes.log

    RateLimit RateLimitConfig
}

// missingError reports a required variable that is unset or empty.
type missingError struct{ key string }

func (e missingError) Error() string { return "missing required env var: " + e.key }

// LoadDotEnv loads a .env file when one is present.  A missing file is not an
// error; variables already set in the environment win.
func LoadDotEnv(paths ...string) {
    if len(paths) == 0 {
        paths = []string{".env"}
    }
    for _, p := range paths {
        if _, err := os.Stat(p); err == nil {
            _ = godotenv.Load(p)
        }
    }
}

// Load is FromEnv for process startup: any error is fatal.
func Load() Config {
    cfg, err := FromEnv()
    if err != nil {
        log.Fatal(err)
    }
    return cfg
}

// FromEnv reads the configuration from the environment.
func FromEnv() (Config, error) {
    var (
        cfg  Config
        errs []string
    )
    must := func(key string) string {
        v, ok := os.LookupEnv(key)
        if !ok || v == "" {
            errs = append(errs, missingError{key}.Error())
        }
        return v
    }
    mustInt := func(key string) int {
        s := must(key)
        if s == "" {
            return 0
        }
        n, err := strconv.Atoi(s)
        if err != nil {
            errs = append(errs, fmt.Sprintf("invalid int for %s: %q", key, s))
        }
        return n
    }

    cfg.Env = must("APP_ENV")
    cfg.Port = must("APP_PORT")
    cfg.DBUser = must("DB_USER")
    cfg.DBPass = os.Getenv("DB_PASS")
    cfg.DBHost = must("DB_HOST")
    cfg.DBPort = must("DB_PORT")
    cfg.DBName = must("DB_NAME")
    cfg.JWTSecret = must("JWT_SECRET")
    cfg.AccessTTLMin = mustInt("ACCESS_TOKEN_TTL_MIN")
    cfg.RefreshTTLDays = mustInt("REFRESH_TOKEN_TTL_DAYS")
    cfg.BcryptCost = mustInt("BCRYPT_COST")

    cfg.AMQPURL = envStr("RABBITMQ_URL", os.Getenv("AMQP_URL"))
    cfg.EventsEnabled = envBool("EVENTS_ENABLED", cfg.AMQPURL != "")
    cfg.LogDir = envStr("LOG_DIR", "logs")

    rl, err := loadRateLimit()
    if err != nil {
        errs = append(errs, err.Error())
    }
    cfg.RateLimit = rl

    lvl, err := parseLevel(envStr("LOG_LEVEL", "info"))
    if err != nil {
        errs = append(errs, err.Error())
    }
    cfg.LogLevel = lvl

    if len(errs) > 0 {
        return Config{}, fmt.Errorf("config: %s", strings.Join(errs, "; "))
    }
    return cfg, nil
}

// IsProd reports whether the service runs in production.
func (c Config) IsProd() bool { return strings.EqualFold(c.Env, "prod") || strings.EqualFold(c.Env, "production") }

func parseLevel(s string) (slog.Level, error) {
    var l slog.Level
    if err := l.UnmarshalText([]byte(s)); err != nil {
        return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q", s)
    }
    return l, nil
}
