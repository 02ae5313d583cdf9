// Package config loads and validates the authentication core's
// configuration, sourced from environment variables per spec §6.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/prassanna-ravishankar/phlow-go/pkg/apierrors"
)

// BreakerConfig holds the per-dependency circuit breaker defaults.
type BreakerConfig struct {
	FailureThreshold       int           `mapstructure:"failure_threshold"`
	RecoveryMillis         time.Duration `mapstructure:"recovery_millis"`
	OperationTimeoutMillis time.Duration `mapstructure:"operation_timeout_millis"`
}

// Config is the validated, fully-resolved configuration schema from spec §6.
type Config struct {
	AgentID     string
	AgentName   string
	ServiceURL  string
	PrivateKey  string
	PublicKey   string

	RegistryEndpoint   string
	RegistryCredential string

	RateLimitMax       int
	RateLimitWindowMS  int64
	RateLimitSharedURL string // empty = in-memory only

	Breakers map[string]BreakerConfig

	DIDCacheTTLMillis       int64
	VerifiedRoleTTLMillis   int64
}

const (
	defaultFailureThreshold       = 5
	defaultRecoveryMillis         = 60000
	defaultOperationTimeoutMillis = 15000
	defaultDIDCacheTTLMillis      = 3600000
	defaultVerifiedRoleTTLMillis  = 3600000

	// BreakerNames known to the core; a host may register additional ones.
)

// Known breaker dependency names, per spec §4.3.
const (
	BreakerRegistry      = "registry"
	BreakerDIDResolver   = "didResolver"
	BreakerPeerMessaging = "peerMessaging"
)

var knownBreakers = []string{BreakerRegistry, BreakerDIDResolver, BreakerPeerMessaging}

// Load reads configuration from the environment (PHLOW_* variables) and
// validates it. Invalid configuration is returned as a ConfigurationInvalid
// error and is fatal at startup per spec §7.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PHLOW")
	v.AutomaticEnv()
	v.SetDefault("rate_limit_max", 100)
	v.SetDefault("rate_limit_window_ms", 60000)
	v.SetDefault("did_cache_ttl_ms", defaultDIDCacheTTLMillis)
	v.SetDefault("verified_role_ttl_ms", defaultVerifiedRoleTTLMillis)

	cfg := &Config{
		AgentID:             v.GetString("agent_id"),
		AgentName:           v.GetString("agent_name"),
		ServiceURL:          v.GetString("service_url"),
		PrivateKey:          v.GetString("private_key"),
		PublicKey:           v.GetString("public_key"),
		RegistryEndpoint:    v.GetString("registry_endpoint"),
		RegistryCredential:  v.GetString("registry_credential"),
		RateLimitMax:        v.GetInt("rate_limit_max"),
		RateLimitWindowMS:   v.GetInt64("rate_limit_window_ms"),
		RateLimitSharedURL:  v.GetString("rate_limit_shared_url"),
		DIDCacheTTLMillis:     v.GetInt64("did_cache_ttl_ms"),
		VerifiedRoleTTLMillis: v.GetInt64("verified_role_ttl_ms"),
		Breakers:              make(map[string]BreakerConfig, len(knownBreakers)),
	}

	for _, name := range knownBreakers {
		prefix := "breaker_" + strings.ToLower(name) + "_"
		v.SetDefault(prefix+"failure_threshold", defaultFailureThreshold)
		v.SetDefault(prefix+"recovery_millis", defaultRecoveryMillis)
		v.SetDefault(prefix+"operation_timeout_millis", defaultOperationTimeoutMillis)

		cfg.Breakers[name] = BreakerConfig{
			FailureThreshold:       v.GetInt(prefix + "failure_threshold"),
			RecoveryMillis:         time.Duration(v.GetInt64(prefix+"recovery_millis")) * time.Millisecond,
			OperationTimeoutMillis: time.Duration(v.GetInt64(prefix+"operation_timeout_millis")) * time.Millisecond,
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field's type and range per spec §6/§9. Returns a
// ConfigurationInvalid error describing the first violation found.
func (c *Config) Validate() error {
	if c.AgentID == "" {
		return apierrors.NewConfigurationInvalid("agent_id", "must not be empty")
	}
	if c.PrivateKey == "" {
		return apierrors.NewConfigurationInvalid("private_key", "must not be empty")
	}
	if c.PublicKey == "" {
		return apierrors.NewConfigurationInvalid("public_key", "must not be empty")
	}
	if c.RateLimitMax <= 0 {
		return apierrors.NewConfigurationInvalid("rate_limit_max", "must be positive")
	}
	if c.RateLimitWindowMS <= 0 {
		return apierrors.NewConfigurationInvalid("rate_limit_window_ms", "must be positive")
	}
	if c.DIDCacheTTLMillis < 0 {
		return apierrors.NewConfigurationInvalid("did_cache_ttl_ms", "must not be negative")
	}
	if c.VerifiedRoleTTLMillis < 0 {
		return apierrors.NewConfigurationInvalid("verified_role_ttl_ms", "must not be negative")
	}
	for name, b := range c.Breakers {
		if b.FailureThreshold <= 0 {
			return apierrors.NewConfigurationInvalid(fmt.Sprintf("breaker_%s_failure_threshold", name), "must be positive")
		}
		if b.RecoveryMillis <= 0 {
			return apierrors.NewConfigurationInvalid(fmt.Sprintf("breaker_%s_recovery_millis", name), "must be positive")
		}
		if b.OperationTimeoutMillis <= 0 {
			return apierrors.NewConfigurationInvalid(fmt.Sprintf("breaker_%s_operation_timeout_millis", name), "must be positive")
		}
	}
	return nil
}
