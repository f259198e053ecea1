package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderRasa   = "rasa"
	ProviderOpenAI = "openai"

	// rasaWebhookPath is the REST channel endpoint exposed by a Rasa server.
	rasaWebhookPath = "/webhooks/rest/webhook"
)

type Config struct {
	Port          string
	AllowedOrigin string
	LogLevel      string
	LogFormat     string
	// Gateway
	GatewayEnabled   bool
	UpstreamProvider string
	RasaServerURL    string
	UpstreamTimeout  time.Duration
	OpenAIAPIKey     string
	OpenAIModel      string
	OpenAISystem     string
	// Knowledge base
	KnowledgeFile         string
	KnowledgeSnapshotFile string
	// Database
	DatabaseURL   string
	MigrationsDir string
	// Dialogue tree
	SupportEmail string
}

// Load reads the environment (and an optional .env file) and fails on
// settings that would otherwise only surface on the first gateway request.
func Load() (Config, error) {
	_ = godotenv.Load()
	timeout, err := getEnvDurationDefault("UPSTREAM_TIMEOUT", 30*time.Second)
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		Port:                  getEnvDefault("PORT", "8080"),
		AllowedOrigin:         getEnvDefault("ALLOWED_ORIGIN", "*"),
		LogLevel:              getEnvDefault("LOG_LEVEL", "info"),
		LogFormat:             getEnvDefault("LOG_FORMAT", "console"),
		GatewayEnabled:        getEnvBoolDefault("GATEWAY_ENABLED", true),
		UpstreamProvider:      strings.ToLower(getEnvDefault("UPSTREAM_PROVIDER", ProviderRasa)),
		RasaServerURL:         strings.TrimRight(strings.TrimSpace(os.Getenv("RASA_SERVER_URL")), "/"),
		UpstreamTimeout:       timeout,
		OpenAIAPIKey:          os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:           getEnvDefault("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAISystem:          os.Getenv("OPENAI_SYSTEM_PROMPT"),
		KnowledgeFile:         os.Getenv("KNOWLEDGE_FILE"),
		KnowledgeSnapshotFile: os.Getenv("KNOWLEDGE_SNAPSHOT_FILE"),
		DatabaseURL:           os.Getenv("DB_URL"),
		MigrationsDir:         getEnvDefault("MIGRATIONS_DIR", "./migrations"),
		SupportEmail:          getEnvDefault("SUPPORT_EMAIL", "support@vasptechnologies.com"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings that would otherwise only fail on the first
// gateway request.
func (c Config) Validate() error {
	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT must be positive, got %s", c.UpstreamTimeout)
	}
	if !c.GatewayEnabled {
		return nil
	}
	switch c.UpstreamProvider {
	case ProviderRasa:
		if c.RasaServerURL == "" {
			return fmt.Errorf("RASA_SERVER_URL is required when the gateway is enabled")
		}
		if err := validateServerURL(c.RasaServerURL); err != nil {
			return fmt.Errorf("invalid RASA_SERVER_URL: %w", err)
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for UPSTREAM_PROVIDER=openai")
		}
	default:
		return fmt.Errorf("unknown UPSTREAM_PROVIDER %q", c.UpstreamProvider)
	}
	return nil
}

// UpstreamEndpoint is the full URL the gateway posts to.
func (c Config) UpstreamEndpoint() string {
	if c.UpstreamProvider == ProviderOpenAI {
		return "openai:" + c.OpenAIModel
	}
	return c.RasaServerURL + rasaWebhookPath
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBoolDefault(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func validateServerURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%q must use http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%q has no host", raw)
	}
	return nil
}

func getEnvDurationDefault(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: expected a duration such as 30s", key, v)
	}
	return d, nil
}
