// Package config loads and validates the zkpauthd server configuration
// surface named by spec.md section 6: bind address, logging, per-RPC
// timeout, transport concurrency, challenge TTL, rate limiting, and
// registry capacity caps.
//
// Grounded on marmos91-dittofs/pkg/config/config.go's Load/setupViper
// shape: a viper instance reads a YAML file, then environment variables
// (here ZKP_ prefixed, per spec.md section 6 verbatim) override it, then
// defaults fill in anything left unset, then go-playground/validator/v10
// checks the result.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is the complete zkpauthd configuration surface.
type Config struct {
	// Host is the bind address for the HTTP transport.
	Host string `mapstructure:"host" yaml:"host" validate:"required"`
	// Port is the TCP port for the HTTP transport.
	Port int `mapstructure:"port" yaml:"port" validate:"required,min=1,max=65535"`

	// LogLevel is one of trace, debug, info, warn, error.
	LogLevel string `mapstructure:"log_level" yaml:"log_level" validate:"required,oneof=trace debug info warn error"`

	// RequestTimeoutSecs is the per-RPC deadline, in whole seconds.
	RequestTimeoutSecs int `mapstructure:"request_timeout_secs" yaml:"request_timeout_secs" validate:"required,gt=0"`

	// MaxConcurrentStreams bounds transport-layer connection concurrency.
	// The core protocol engine does not consume this value; it is enforced
	// entirely at the HTTP adapter (see internal/transport).
	MaxConcurrentStreams int `mapstructure:"max_concurrent_streams" yaml:"max_concurrent_streams" validate:"required,gt=0"`

	// ChallengeTTLSecs is how long a pending challenge remains valid, in
	// whole seconds.
	ChallengeTTLSecs int `mapstructure:"challenge_ttl_secs" yaml:"challenge_ttl_secs" validate:"required,gt=0"`

	// RateLimitPerMinute bounds attempts per key per minute, applied
	// independently to registration, challenge creation, and verification.
	RateLimitPerMinute int `mapstructure:"rate_limit_per_minute" yaml:"rate_limit_per_minute" validate:"required,gt=0"`

	// MaxPendingChallenges caps the Challenge Registry.
	MaxPendingChallenges int `mapstructure:"max_pending_challenges" yaml:"max_pending_challenges" validate:"required,gt=0"`

	// MaxSessions caps the Session Registry.
	MaxSessions int `mapstructure:"max_sessions" yaml:"max_sessions" validate:"required,gt=0"`
}

// RequestTimeout converts RequestTimeoutSecs to a time.Duration for use
// at call sites that need one (transport deadlines, HTTP server timeouts).
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSecs) * time.Second
}

// ChallengeTTL converts ChallengeTTLSecs to a time.Duration for use at
// call sites that need one (the Challenge Registry's expiry sweep).
func (c *Config) ChallengeTTL() time.Duration {
	return time.Duration(c.ChallengeTTLSecs) * time.Second
}

const envPrefix = "ZKP"

// Load reads configuration from configPath (if non-empty and present),
// then environment variables prefixed ZKP_, applies defaults for
// anything still unset, and validates the result. An empty configPath
// is not an error: defaults plus environment overrides are sufficient to
// run the server.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	cfg := Defaults()
	if found {
		if err := v.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("config: failed to unmarshal: %w", err)
		}
	}
	applyEnvOverrides(v, cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}

// recognizedKeys lists every key Load/applyEnvOverrides understands.
// Each is explicitly bound to its ZKP_-prefixed environment variable: a
// bare AutomaticEnv call only activates for keys viper already knows
// about (from a config file, a default, or an explicit bind), so keys
// with no file-set value still need this to pick up an env override.
var recognizedKeys = []string{
	"host", "port", "log_level", "request_timeout_secs",
	"max_concurrent_streams", "challenge_ttl_secs", "rate_limit_per_minute",
	"max_pending_challenges", "max_sessions",
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range recognizedKeys {
		_ = v.BindEnv(key)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("zkpauthd")
		v.SetConfigType("yaml")
	}
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("config: failed to read config file: %w", err)
	}
	return true, nil
}

// applyEnvOverrides walks every recognized key and, if the corresponding
// ZKP_ environment variable is set, overrides the value already loaded
// from file/defaults, so environment variables take precedence over the
// file. No command-line flag overrides an individual setting:
// cmd/zkpauthd only takes --config, which chooses the file.
func applyEnvOverrides(v *viper.Viper, cfg *Config) {
	if v.IsSet("host") {
		cfg.Host = v.GetString("host")
	}
	if v.IsSet("port") {
		cfg.Port = v.GetInt("port")
	}
	if v.IsSet("log_level") {
		cfg.LogLevel = v.GetString("log_level")
	}
	if v.IsSet("request_timeout_secs") {
		cfg.RequestTimeoutSecs = v.GetInt("request_timeout_secs")
	}
	if v.IsSet("max_concurrent_streams") {
		cfg.MaxConcurrentStreams = v.GetInt("max_concurrent_streams")
	}
	if v.IsSet("challenge_ttl_secs") {
		cfg.ChallengeTTLSecs = v.GetInt("challenge_ttl_secs")
	}
	if v.IsSet("rate_limit_per_minute") {
		cfg.RateLimitPerMinute = v.GetInt("rate_limit_per_minute")
	}
	if v.IsSet("max_pending_challenges") {
		cfg.MaxPendingChallenges = v.GetInt("max_pending_challenges")
	}
	if v.IsSet("max_sessions") {
		cfg.MaxSessions = v.GetInt("max_sessions")
	}
}

var validate = validator.New()

// Validate runs struct-tag validation over cfg.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return err
	}
	return nil
}

// DefaultConfigPath returns the conventional zkpauthd.yaml location in
// the current directory; unlike marmos91-dittofs's XDG-based layout,
// this service has no per-user state, so a working-directory file is
// sufficient.
func DefaultConfigPath() string {
	return filepath.Join(".", "zkpauthd.yaml")
}
