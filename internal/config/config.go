// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Folio Contributors

// Package config loads Folio settings from defaults, an optional YAML file,
// the environment and command-line flags, in increasing precedence.
package config

import (
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/folioweb/folio/internal/logging"
	"github.com/folioweb/folio/internal/mail"
)

// EnvPrefix prefixes every Folio environment variable. A double underscore
// separates nesting levels: FOLIO_HTTP__BASE_URL sets http.base_url.
const EnvPrefix = "FOLIO_"

// MinSecretLength is the minimum secret key length in bytes.
const MinSecretLength = 32

// Config is the complete runtime configuration.
type Config struct {
	HTTP     HTTPConfig     `koanf:"http"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	Database DatabaseConfig `koanf:"database"`
	Security SecurityConfig `koanf:"security"`
	Mail     mail.Config    `koanf:"mail"`
	Log      LogConfig      `koanf:"log"`
	Content  ContentConfig  `koanf:"content"`
}

// HTTPConfig configures the public site.
type HTTPConfig struct {
	Addr           string `koanf:"addr"`
	BaseURL        string `koanf:"base_url"`
	StaticDir      string `koanf:"static_dir"`
	UploadDir      string `koanf:"upload_dir"`
	MaxUploadBytes int64  `koanf:"max_upload_bytes"`
	SecureCookies  bool   `koanf:"secure_cookies"`
}

// MetricsConfig configures the observability listener. An empty Addr
// disables it.
type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

// DatabaseConfig configures PostgreSQL access.
type DatabaseConfig struct {
	URL            string        `koanf:"url"`
	AutoMigrate    bool          `koanf:"auto_migrate"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
}

// SecurityConfig holds the signing secret and session lifetimes.
type SecurityConfig struct {
	SecretKey        string        `koanf:"secret_key"`
	ResetTokenMaxAge time.Duration `koanf:"reset_token_max_age"`
	SessionTTL       time.Duration `koanf:"session_ttl"`
	RememberTTL      time.Duration `koanf:"remember_ttl"`
}

// LogConfig selects log format and level.
type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

// ContentConfig controls default content seeding.
type ContentConfig struct {
	SeedOnStart bool   `koanf:"seed_on_start"`
	File        string `koanf:"file"`
}

// Defaults returns the built-in settings.
func Defaults() map[string]any {
	return map[string]any{
		"http.addr":                    "127.0.0.1:8080",
		"http.base_url":                "http://localhost:8080",
		"http.static_dir":              "static",
		"http.upload_dir":              "static/uploads",
		"http.max_upload_bytes":        int64(4 << 20),
		"http.secure_cookies":          false,
		"metrics.addr":                 "127.0.0.1:9100",
		"database.url":                 "",
		"database.auto_migrate":        true,
		"database.connect_timeout":     "30s",
		"security.secret_key":          "",
		"security.reset_token_max_age": "30m",
		"security.session_ttl":         "24h",
		"security.remember_ttl":        "8760h",
		"mail.host":                    "",
		"mail.port":                    587,
		"mail.username":                "",
		"mail.password":                "",
		"mail.from":                    "",
		"log.format":                   "json",
		"log.level":                    "info",
		"content.seed_on_start":        true,
		"content.file":                 "",
	}
}

// legacyEnv maps unprefixed variables honoured for compatibility with the
// usual PaaS conventions.
var legacyEnv = map[string]string{
	"DATABASE_URL": "database.url",
	"SECRET_KEY":   "security.secret_key",
}

// Options selects the sources Load reads.
type Options struct {
	// File is an optional YAML file. Empty skips it.
	File string
	// Flags are applied last. Only flags named in FlagKeys are read, and
	// only when set on the command line.
	Flags *pflag.FlagSet
	// FlagKeys maps flag names to config keys.
	FlagKeys map[string]string
}

// Load builds a Config from all sources. It does not validate.
func Load(opts Options) (*Config, error) {
	k := koanf.New(".")

	for key, val := range Defaults() {
		if err := k.Set(key, val); err != nil {
			return nil, oops.Code("CONFIG_DEFAULTS_FAILED").With("key", key).Wrap(err)
		}
	}

	for name, key := range legacyEnv {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			if err := k.Set(key, v); err != nil {
				return nil, oops.Code("CONFIG_ENV_FAILED").With("var", name).Wrap(err)
			}
		}
	}

	if opts.File != "" {
		if err := k.Load(file.Provider(opts.File), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_FILE_INVALID").With("path", opts.File).Wrap(err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, oops.Code("CONFIG_ENV_FAILED").Wrap(err)
	}

	if opts.Flags != nil {
		fs := opts.Flags
		provider := posflag.ProviderWithFlag(fs, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := opts.FlagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(fs, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, oops.Code("CONFIG_DECODE_FAILED").Wrap(err)
	}
	return &cfg, nil
}

// envKey turns FOLIO_SECURITY__SECRET_KEY into security.secret_key.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var problems []string
	add := func(msg string) { problems = append(problems, msg) }

	if c.Database.URL == "" {
		add("database.url is required (or set DATABASE_URL)")
	}
	if len(c.Security.SecretKey) < MinSecretLength {
		add("security.secret_key must be at least 32 bytes (or set SECRET_KEY)")
	}
	if c.HTTP.Addr == "" {
		add("http.addr is required")
	}
	if u, err := url.Parse(c.HTTP.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		add("http.base_url must be an absolute http or https URL")
	}
	if c.HTTP.UploadDir == "" {
		add("http.upload_dir is required")
	}
	if c.HTTP.MaxUploadBytes <= 0 {
		add("http.max_upload_bytes must be positive")
	}
	if !logging.ValidFormat(c.Log.Format) {
		add("log.format must be 'json' or 'text'")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		add("log.level must be debug, info, warn or error")
	}
	for _, d := range []struct {
		key string
		val time.Duration
	}{
		{"security.reset_token_max_age", c.Security.ResetTokenMaxAge},
		{"security.session_ttl", c.Security.SessionTTL},
		{"security.remember_ttl", c.Security.RememberTTL},
		{"database.connect_timeout", c.Database.ConnectTimeout},
	} {
		if d.val <= 0 {
			add(d.key + " must be positive")
		}
	}

	if len(problems) > 0 {
		return oops.Code("CONFIG_INVALID").
			With("problems", problems).
			Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
