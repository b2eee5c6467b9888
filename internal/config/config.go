package config

import (
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all runtime settings. Values come from an optional config.yaml
// overlaid with environment variables; env always wins.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	WordPress WordPressConfig `yaml:"wordpress"`
	Push      PushConfig      `yaml:"push"`
	Database  DatabaseConfig  `yaml:"database"`
	CORS      CORSConfig      `yaml:"cors"`

	// ConfigPath is the path the file config was loaded from (not serialized).
	ConfigPath string `yaml:"-"`
}

type ServerConfig struct {
	Addr    string `yaml:"addr"`
	GinMode string `yaml:"gin_mode"`
}

type WordPressConfig struct {
	// SiteURL is the base URL of the WordPress backend, without trailing slash.
	SiteURL string `yaml:"site_url"`
}

type PushConfig struct {
	// VAPIDPublicKey is the base64url-encoded application server key.
	// Empty disables the notification subsystem; the rest of the app still runs.
	VAPIDPublicKey string `yaml:"vapid_public_key"`

	// GatewayURL is the push gateway the platform adapter registers against.
	GatewayURL string `yaml:"gateway_url"`

	// Grant is the initial notification permission: default, granted or denied.
	Grant string `yaml:"grant"`

	ReconnectDelay    time.Duration `yaml:"reconnect_delay"`
	MaxReconnectDelay time.Duration `yaml:"max_reconnect_delay"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Default returns the baseline configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
		Push: PushConfig{
			Grant:             "default",
			ReconnectDelay:    1 * time.Second,
			MaxReconnectDelay: 30 * time.Second,
		},
		Database: DatabaseConfig{
			DSN: "root:@tcp(127.0.0.1:3306)/providerdash?parseTime=true&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s",
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://127.0.0.1:3000",
				"http://localhost:5173",
				"http://127.0.0.1:5173",
			},
		},
	}
}

// Load builds the configuration from config.yaml (searched in common
// locations) plus environment overrides. A missing file is not an error.
func Load() (*Config, error) {
	cfg := Default()

	configPaths := []string{
		"config.yaml",
		"configs/config.yaml",
		"/etc/providerdash/config.yaml",
	}
	for _, path := range configPaths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
		cfg.ConfigPath = path
		break
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := envStr("APP_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := envStr("GIN_MODE"); v != "" {
		cfg.Server.GinMode = v
	}
	if v := envStr("WP_SITE_URL"); v != "" {
		cfg.WordPress.SiteURL = v
	}
	if v := envStr("VAPID_PUBLIC_KEY"); v != "" {
		cfg.Push.VAPIDPublicKey = v
	}
	if v := envStr("PUSH_GATEWAY_URL"); v != "" {
		cfg.Push.GatewayURL = v
	}
	if v := envStr("PUSH_GRANT"); v != "" {
		cfg.Push.Grant = v
	}
	if v := envStr("DB_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := envStr("CORS_ALLOWED_ORIGINS"); v != "" {
		origins := []string{}
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.CORS.AllowedOrigins = origins
	}
	cfg.WordPress.SiteURL = strings.TrimRight(cfg.WordPress.SiteURL, "/")
}

func envStr(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
