package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "TALENTGATE_"

// Load builds a Config from defaults, the optional YAML file, .env and the
// environment. A missing .env file is not an error.
func Load() (*Config, error) {
	envFile := os.Getenv(envPrefix + "ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	k := koanf.New(".")
	if path := os.Getenv(envPrefix + "CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return errors.New("addr must not be empty")
	}
	if c.BatchSize <= 0 || c.BatchConcurrency <= 0 {
		return errors.New("batch_size and batch_concurrency must be positive")
	}
	if c.AuditRetention <= 0 {
		return errors.New("audit_retention must be positive")
	}
	if len(c.AnonymizationKey) > 64 {
		return errors.New("anonymization_key must be at most 64 bytes")
	}
	for _, ch := range c.EnabledChannels() {
		switch ch {
		case "email":
			if c.EmailRelayURL == "" {
				return errors.New("email channel enabled without email_relay_url")
			}
		case "sms":
			if c.SMSRelayURL == "" {
				return errors.New("sms channel enabled without sms_relay_url")
			}
		case "push":
			if c.KafkaBrokers == "" {
				return errors.New("push channel enabled without kafka_brokers")
			}
		case "dashboard":
		default:
			return fmt.Errorf("unknown alert channel %q", ch)
		}
	}
	for _, cidr := range c.ProxyPrefixes() {
		if _, err := netip.ParsePrefix(cidr); err != nil {
			return fmt.Errorf("trusted_proxies: %w", err)
		}
	}
	if c.RegistryURL != "" && c.RegistryTokenURL == "" {
		return errors.New("registry_url set without registry_token_url")
	}
	return nil
}
