package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	LogLevel    string
	HTTPAddr    string
	MetricsAddr string
	APIPrefix   string

	DBDriver string
	DBDSN    string

	RedisAddr string
	RedisDB   int
	RedisPass string
	CacheTTL  time.Duration

	HostawayBase      string
	HostawayKey       string
	HostawayAccountID string
	HostawayTimeout   time.Duration
	HostawayRPS       int

	FrontendURL  string
	ExtraOrigins []string
	RateLimitRPM int
}

// Load reads a .env file when present, then the process environment.
// Variables already set in the environment win over the file.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg(".env not loaded")
	}
	return FromEnv()
}

func FromEnv() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("not an integer; using default")
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "development"),
		LogLevel:    env("LOG_LEVEL", "info"),
		HTTPAddr:    env("HTTP_ADDR", ":8000"),
		MetricsAddr: os.Getenv("METRICS_ADDR"),
		APIPrefix:   strings.TrimRight(envAllowEmpty("API_PREFIX", "/api"), "/"),

		DBDriver: env("DB_DRIVER", "sqlite3"),
		DBDSN:    env("DB_DSN", "reviews.db"),

		RedisAddr: os.Getenv("REDIS_ADDR"),
		RedisPass: os.Getenv("REDIS_PASSWORD"),
		RedisDB:   atoi("REDIS_DB", 0),
		CacheTTL:  time.Duration(atoi("CACHE_TTL_SECONDS", 60)) * time.Second,

		HostawayBase:      env("HOSTAWAY_BASE_URL", "https://api.hostaway.com/v1"),
		HostawayKey:       os.Getenv("HOSTAWAY_API_KEY"),
		HostawayAccountID: os.Getenv("HOSTAWAY_ACCOUNT_ID"),
		HostawayTimeout:   time.Duration(atoi("HOSTAWAY_TIMEOUT_SECONDS", 30)) * time.Second,
		HostawayRPS:       atoi("HOSTAWAY_RPS", 5),

		FrontendURL:  env("FRONTEND_URL", "http://localhost:3000"),
		ExtraOrigins: splitList(os.Getenv("CORS_ORIGINS")),
		RateLimitRPM: atoi("RATE_LIMIT_RPM", 300),
	}
	if c.HostawayKey == "" {
		log.Warn().Msg("HOSTAWAY_API_KEY is empty; source calls will likely fall back to sample data")
	}
	return c
}

// CORSOrigins is the de-duplicated list of browser origins allowed to call the API.
func (c Config) CORSOrigins() []string {
	all := append([]string{"http://localhost:3000", "http://localhost:3001", c.FrontendURL}, c.ExtraOrigins...)
	seen := make(map[string]bool, len(all))
	out := make([]string, 0, len(all))
	for _, o := range all {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "" || seen[o] {
			continue
		}
		seen[o] = true
		out = append(out, o)
	}
	return out
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// envAllowEmpty distinguishes an unset key from one explicitly set to "".
func envAllowEmpty(k, def string) string {
	if v, ok := os.LookupEnv(k); ok {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
