package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	IdentityModeGoTrue = "gotrue"
	IdentityModeLocal  = "local"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr         string
		APIPrefix    string
		AllowedHosts []string
	}
	Database struct {
		Path string
	}
	Identity struct {
		Mode            string
		BaseURL         string
		ServiceRoleKey  string
		AnonKey         string
		Timeout         time.Duration
		JWTSecret       string
		TokenTTLMinutes int
	}
	Storage struct {
		Bucket           string
		KeyPrefix        string
		Region           string
		Endpoint         string
		URLExpiryMinutes int
	}
	AWS struct {
		Profile string
	}
	Log struct {
		Level  string
		Format string
	}
}

// legacyEnv maps keys to the variable names used by earlier deployments.
var legacyEnv = map[string]string{
	"identity.baseurl":        "SUPABASE_URL",
	"identity.servicerolekey": "SUPABASE_SERVICE_ROLE_KEY",
	"identity.anonkey":        "SUPABASE_ANON_KEY",
	"server.allowedhosts":     "ALLOWED_HOSTS",
}

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	// optional file; never overrides variables already set
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("QUESTIONNAIRE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, legacy := range legacyEnv {
		envKey := "QUESTIONNAIRE_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envKey, legacy); err != nil {
			return Config{}, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	v.SetDefault("server.addr", "0.0.0.0:8000")
	v.SetDefault("server.apiprefix", "/api/v1")
	v.SetDefault("server.allowedhosts", []string{
		"http://localhost:3000",
		"http://localhost:3001",
		"http://frontend:3000",
	})
	v.SetDefault("database.path", "data/questionnaire.db")
	v.SetDefault("identity.mode", "")
	v.SetDefault("identity.baseurl", "")
	v.SetDefault("identity.servicerolekey", "")
	v.SetDefault("identity.anonkey", "")
	v.SetDefault("identity.timeout", "10s")
	v.SetDefault("identity.jwtsecret", "")
	v.SetDefault("identity.tokenttlminutes", 60)
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.keyprefix", "exports")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.urlexpiryminutes", 15)
	v.SetDefault("aws.profile", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.normalize()

	return cfg, nil
}

func (c *Config) normalize() {
	if c.Identity.Mode == "" {
		if strings.TrimSpace(c.Identity.BaseURL) != "" {
			c.Identity.Mode = IdentityModeGoTrue
		} else {
			c.Identity.Mode = IdentityModeLocal
		}
	}
	c.Identity.Mode = strings.ToLower(strings.TrimSpace(c.Identity.Mode))
	c.Identity.BaseURL = strings.TrimRight(strings.TrimSpace(c.Identity.BaseURL), "/")

	prefix := "/" + strings.Trim(strings.TrimSpace(c.Server.APIPrefix), "/")
	if prefix == "/" {
		prefix = ""
	}
	c.Server.APIPrefix = prefix

	hosts := c.Server.AllowedHosts[:0]
	for _, h := range c.Server.AllowedHosts {
		if h = strings.TrimSpace(h); h != "" {
			hosts = append(hosts, h)
		}
	}
	c.Server.AllowedHosts = hosts
}

// Validate reports configuration that cannot produce a working server.
func (c Config) Validate() error {
	switch c.Identity.Mode {
	case IdentityModeGoTrue:
		if c.Identity.BaseURL == "" {
			return errors.New("identity base url is required in gotrue mode")
		}
		if strings.TrimSpace(c.Identity.ServiceRoleKey) == "" && strings.TrimSpace(c.Identity.AnonKey) == "" {
			return errors.New("identity service role key or anon key is required in gotrue mode")
		}
	case IdentityModeLocal:
		if strings.TrimSpace(c.Identity.JWTSecret) == "" {
			return errors.New("identity jwt secret is required in local mode")
		}
		if c.Identity.TokenTTLMinutes <= 0 {
			return errors.New("identity token ttl must be positive")
		}
	default:
		return fmt.Errorf("unknown identity mode %q", c.Identity.Mode)
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database path is required")
	}
	return nil
}
