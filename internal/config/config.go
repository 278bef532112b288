package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Harshitk-cp/agentlink/internal/agentlink"
	"github.com/Harshitk-cp/agentlink/internal/buildconfig"
	"github.com/joho/godotenv"
)

// Load reads the .env file specified by AGENTLINK_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
// Call it once at startup; packages below cmd/ receive values explicitly.
func Load() error {
	envFile := os.Getenv("AGENTLINK_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

// BaseURL returns the AgentLink directory base URL without trailing slashes.
// Defaults to https://www.agent-l.ink if not set.
func BaseURL() string {
	u := strings.TrimRight(strings.TrimSpace(os.Getenv("AGENTLINK_BASE_URL")), "/")
	if u == "" {
		return agentlink.DefaultBaseURL
	}
	return u
}

func APIKey() string {
	return os.Getenv("AGENTLINK_API_KEY")
}

// DiscovererSlug identifies this process to the directory for attribution.
func DiscovererSlug() string {
	return os.Getenv("AGENTLINK_DISCOVERER_SLUG")
}

// SearchTimeout returns the per-request search timeout.
// Defaults to 15s if not set or invalid.
func SearchTimeout() time.Duration {
	return durationOr("AGENTLINK_SEARCH_TIMEOUT", agentlink.DefaultSearchTimeout)
}

// ConnectTimeout returns the per-request connect timeout.
// Defaults to 30s if not set or invalid.
func ConnectTimeout() time.Duration {
	return durationOr("AGENTLINK_CONNECT_TIMEOUT", agentlink.DefaultConnectTimeout)
}

// AgentLink assembles the client configuration from the environment.
func AgentLink() agentlink.Config {
	return agentlink.Config{
		BaseURL:        BaseURL(),
		SearchTimeout:  SearchTimeout(),
		ConnectTimeout: ConnectTimeout(),
		UserAgent:      buildconfig.UserAgent(),
	}
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

// RateLimitRPS returns requests per second limit.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}

func durationOr(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		// bare numbers are seconds
		secs, serr := strconv.ParseFloat(raw, 64)
		if serr != nil || secs <= 0 {
			return def
		}
		return time.Duration(secs * float64(time.Second))
	}
	if d <= 0 {
		return def
	}
	return d
}
