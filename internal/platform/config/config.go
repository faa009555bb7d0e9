// Package config loads process configuration. Values are layered, lowest
// precedence first: defaults, an optional YAML file named by
// TALENTGATE_CONFIG, a .env file, then TALENTGATE_* environment variables.
package config

import (
	"strings"
	"time"
)

// Config is the full process configuration. Empty connection URLs select
// the in-memory implementation of the corresponding store or channel.
type Config struct {
	Addr           string `koanf:"addr"`
	LogLevel       string `koanf:"log_level"`
	CORSOrigins    string `koanf:"cors_origins"`
	TrustedProxies string `koanf:"trusted_proxies"`
	// AdminToken guards the operator routes. Empty disables them.
	AdminToken string `koanf:"admin_token"`

	DatabaseURL      string `koanf:"database_url"`
	RedisURL         string `koanf:"redis_url"`
	KafkaBrokers     string `koanf:"kafka_brokers"`
	AlertTopic       string `koanf:"alert_topic"`
	AssessmentsTopic string `koanf:"assessments_topic"`

	// Channels is a comma-separated list of enabled alert channels.
	Channels       string        `koanf:"channels"`
	EmailRelayURL  string        `koanf:"email_relay_url"`
	SMSRelayURL    string        `koanf:"sms_relay_url"`
	RelayAPIKey    string        `koanf:"relay_api_key"`
	RelayTimeout   time.Duration `koanf:"relay_timeout"`
	DashboardTopic string        `koanf:"dashboard_topic"`

	RegistryURL          string        `koanf:"registry_url"`
	RegistryTokenURL     string        `koanf:"registry_token_url"`
	RegistryClientID     string        `koanf:"registry_client_id"`
	RegistryClientSecret string        `koanf:"registry_client_secret"`
	RegistryTimeout      time.Duration `koanf:"registry_timeout"`
	RegistryFailures     int           `koanf:"registry_failure_threshold"`
	RegistryCooldown     time.Duration `koanf:"registry_cooldown"`

	AnonymizationKey  string        `koanf:"anonymization_key"`
	BatchSize         int           `koanf:"batch_size"`
	BatchConcurrency  int           `koanf:"batch_concurrency"`
	AuditRetention    int           `koanf:"audit_retention"`
	AnalyticsFailOpen bool          `koanf:"analytics_fail_open"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
	SeedDemoData      bool          `koanf:"seed_demo_data"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Addr:             ":8080",
		LogLevel:         "info",
		AlertTopic:       "talentgate.alerts",
		AssessmentsTopic: "talentgate.assessments",
		Channels:         "dashboard",
		RelayTimeout:     5 * time.Second,
		DashboardTopic:   "alerts:dashboard",
		RegistryTimeout:  10 * time.Second,
		RegistryFailures: 5,
		RegistryCooldown: 30 * time.Second,
		BatchSize:        10,
		BatchConcurrency: 4,
		AuditRetention:   1000,
		ShutdownTimeout:  10 * time.Second,
	}
}

// EnabledChannels returns the configured channel names, lowercased.
func (c *Config) EnabledChannels() []string {
	return splitList(c.Channels, true)
}

// AllowedOrigins returns the configured CORS origins.
func (c *Config) AllowedOrigins() []string {
	return splitList(c.CORSOrigins, false)
}

// ProxyPrefixes returns the configured trusted proxy CIDRs.
func (c *Config) ProxyPrefixes() []string {
	return splitList(c.TrustedProxies, false)
}

func splitList(s string, lower bool) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if lower {
			part = strings.ToLower(part)
		}
		out = append(out, part)
	}
	return out
}
