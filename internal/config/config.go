// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GradeMe Contributors

// Package config loads GradeMe configuration.
//
// Values are layered, lowest precedence first: built-in defaults, the YAML
// config file, GRADEME_* environment variables (plus the conventional
// DATABASE_URL and JWT_SECRET), and finally flags set on the command line.
package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/dumindu-Test/GradeMe/internal/auth"
	"github.com/dumindu-Test/GradeMe/internal/store"
)

// EnvPrefix is the prefix of environment variables read into the config.
const EnvPrefix = "GRADEME_"

// DevJWTSecret is the signing secret used when none is configured.
// It is fine for local use only; serve warns when it is in effect.
const DevJWTSecret = "your-super-secret-jwt-key-change-in-production"

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config is the full GradeMe configuration.
type Config struct {
	HTTP    HTTPConfig    `koanf:"http"`
	Metrics MetricsConfig `koanf:"metrics"`
	Log     LogConfig     `koanf:"log"`
	Store   StoreConfig   `koanf:"store"`
	Auth    AuthConfig    `koanf:"auth"`
}

// HTTPConfig configures the API listener.
type HTTPConfig struct {
	Addr string `koanf:"addr"`
	// SecureCookies forces the Secure flag on the session cookie even for
	// plain-HTTP requests, e.g. behind a TLS-terminating proxy.
	SecureCookies bool   `koanf:"secure_cookies"`
	TLSCert       string `koanf:"tls_cert"`
	TLSKey        string `koanf:"tls_key"`
}

// MetricsConfig configures the observability listener. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

// LogConfig configures logging.
type LogConfig struct {
	Format string `koanf:"format"`
}

// StoreConfig selects and configures the credential store.
type StoreConfig struct {
	Driver          string `koanf:"driver"`
	DatabaseURL     string `koanf:"database_url"`
	ConnectAttempts uint64 `koanf:"connect_attempts"`
	// Fixture is the account fixture loaded into the memory store at startup.
	Fixture string `koanf:"fixture"`
}

// AuthConfig configures hashing and session tokens.
type AuthConfig struct {
	JWTSecret         string        `koanf:"jwt_secret"`
	SessionLifetime   time.Duration `koanf:"session_lifetime"`
	PasswordAlgorithm string        `koanf:"password_algorithm"`
	BcryptCost        int           `koanf:"bcrypt_cost"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			Addr: ":3000",
		},
		Metrics: MetricsConfig{
			Addr: "127.0.0.1:9100",
		},
		Log: LogConfig{
			Format: "json",
		},
		Store: StoreConfig{
			Driver:          DriverPostgres,
			ConnectAttempts: store.DefaultConnectAttempts,
		},
		Auth: AuthConfig{
			JWTSecret:         DevJWTSecret,
			SessionLifetime:   auth.SessionLifetime,
			PasswordAlgorithm: auth.AlgorithmBcrypt,
			BcryptCost:        auth.DefaultBcryptCost,
		},
	}
}

// flagKeys maps command-line flag names to config keys. Flags not listed
// here are ignored by Load.
var flagKeys = map[string]string{
	"addr":           "http.addr",
	"secure-cookies": "http.secure_cookies",
	"tls-cert":       "http.tls_cert",
	"tls-key":        "http.tls_key",
	"metrics-addr":   "metrics.addr",
	"log-format":     "log.format",
	"store":          "store.driver",
	"fixture":        "store.fixture",
}

// aliasEnv maps unprefixed environment variables honoured for compatibility.
var aliasEnv = map[string]string{
	"DATABASE_URL": "store.database_url",
	"JWT_SECRET":   "auth.jwt_secret",
}

// RegisterServeFlags adds the serve command flags, with defaults taken from Default.
func RegisterServeFlags(flags *pflag.FlagSet) {
	d := Default()
	flags.String("addr", d.HTTP.Addr, "API listen address")
	flags.Bool("secure-cookies", d.HTTP.SecureCookies, "always mark the session cookie Secure")
	flags.String("tls-cert", d.HTTP.TLSCert, "TLS certificate file (enables HTTPS with --tls-key)")
	flags.String("tls-key", d.HTTP.TLSKey, "TLS private key file")
	flags.String("metrics-addr", d.Metrics.Addr, "observability listen address (empty to disable)")
	flags.String("log-format", d.Log.Format, "log format (json, text)")
	flags.String("store", d.Store.Driver, "credential store driver (postgres, memory)")
	flags.String("fixture", d.Store.Fixture, "account fixture to load into the memory store")
}

// Load builds the configuration. path names the YAML file; a missing file
// is only an error when required is true. flags may be nil.
func Load(path string, required bool, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if required || !errors.Is(err, fs.ErrNotExist) {
				return nil, oops.Code("CONFIG_LOAD_FAILED").With("path", path).Wrap(err)
			}
		}
	}

	if err := k.Load(env.Provider("", ".", aliasKey), nil); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "env").Wrap(err)
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "env").Wrap(err)
	}

	if flags != nil {
		p := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(p, nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "flags").Wrap(err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_INVALID").Wrap(err)
	}
	return &cfg, nil
}

// envKey maps GRADEME_SECTION_SOME_KEY to section.some_key.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, rest, ok := strings.Cut(s, "_")
	if !ok || rest == "" {
		return ""
	}
	return section + "." + rest
}

func aliasKey(s string) string {
	return aliasEnv[s]
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	switch c.Log.Format {
	case "json", "text":
	default:
		return oops.Code("CONFIG_INVALID").
			With("log_format", c.Log.Format).
			Errorf("log format must be 'json' or 'text', got %q", c.Log.Format)
	}

	if c.HTTP.Addr == "" {
		return oops.Code("CONFIG_INVALID").Errorf("http.addr is required")
	}
	if (c.HTTP.TLSCert == "") != (c.HTTP.TLSKey == "") {
		return oops.Code("CONFIG_INVALID").Errorf("http.tls_cert and http.tls_key must be set together")
	}

	switch c.Store.Driver {
	case DriverPostgres:
		if c.Store.DatabaseURL == "" {
			return oops.Code("CONFIG_INVALID").
				Errorf("store.database_url (or DATABASE_URL) is required for the postgres store")
		}
		if c.Store.ConnectAttempts == 0 {
			return oops.Code("CONFIG_INVALID").Errorf("store.connect_attempts must be at least 1")
		}
	case DriverMemory:
	default:
		return oops.Code("CONFIG_INVALID").
			With("driver", c.Store.Driver).
			Errorf("store driver must be %q or %q, got %q", DriverPostgres, DriverMemory, c.Store.Driver)
	}

	if len(c.Auth.JWTSecret) < auth.MinSecretLength {
		return oops.Code("CONFIG_INVALID").
			Errorf("auth.jwt_secret must be at least %d bytes", auth.MinSecretLength)
	}
	if c.Auth.SessionLifetime <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("auth.session_lifetime must be positive")
	}
	switch c.Auth.PasswordAlgorithm {
	case auth.AlgorithmBcrypt, auth.AlgorithmArgon2id:
	default:
		return oops.Code("CONFIG_INVALID").
			With("algorithm", c.Auth.PasswordAlgorithm).
			Errorf("auth.password_algorithm must be %q or %q", auth.AlgorithmBcrypt, auth.AlgorithmArgon2id)
	}

	return nil
}

// UsesDevSecret reports whether the built-in development signing secret is in effect.
func (c *Config) UsesDevSecret() bool {
	return c.Auth.JWTSecret == DevJWTSecret
}
