package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	App       AppSettings       `mapstructure:"app"`
	Backend   BackendSettings   `mapstructure:"backend"`
	Redis     RedisSettings     `mapstructure:"redis"`
	Kafka     KafkaSettings     `mapstructure:"kafka"`
	RateLimit RateLimitSettings `mapstructure:"rate_limit"`
	Recovery  RecoverySettings  `mapstructure:"recovery"`
	Telemetry TelemetrySettings `mapstructure:"telemetry"`
}

type AppSettings struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// BackendSettings configures the hosted backend the gateway delegates to. The
// application ID and keys are fixed application credentials, not per-user
// secrets.
type BackendSettings struct {
	ServerURL     string        `mapstructure:"server_url"`
	ApplicationID string        `mapstructure:"application_id"`
	ClientKey     string        `mapstructure:"client_key"`
	MasterKey     string        `mapstructure:"master_key"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// RedisSettings configures the Redis connection used for recovery wizard
// state, rate limits, and the in-flight submission guard.
type RedisSettings struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	DB             int    `mapstructure:"db"`
	Password       string `mapstructure:"password"`
	TLSEnabled     bool   `mapstructure:"tls_enabled"`
	RecoveryPrefix string `mapstructure:"recovery_prefix"`
	InflightPrefix string `mapstructure:"inflight_prefix"`
}

// KafkaSettings configures the Kafka producer for auth events.
type KafkaSettings struct {
	Brokers     []string `mapstructure:"brokers"`
	TopicPrefix string   `mapstructure:"topic_prefix"`
	Async       bool     `mapstructure:"async"`
}

// RateLimitSettings configures rate limiting windows and max attempts per endpoint.
type RateLimitSettings struct {
	WindowDuration    time.Duration `mapstructure:"window_duration"`
	LoginMaxAttempts  int           `mapstructure:"login_max_attempts"`
	SignUpMaxAttempts int           `mapstructure:"signup_max_attempts"`
	RecoveryMaxStarts int           `mapstructure:"recovery_max_starts"`
}

// RecoverySettings configures the password-recovery wizard.
type RecoverySettings struct {
	CodeLength  int           `mapstructure:"code_length"`
	SessionTTL  time.Duration `mapstructure:"session_ttl"`
	MaxAttempts int           `mapstructure:"max_attempts"`
	InflightTTL time.Duration `mapstructure:"inflight_ttl"`
}

type TelemetrySettings struct {
	MetricsNamespace string `mapstructure:"metrics_namespace"`
}

func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("LC")

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.name",
		"app.env",
		"app.host",
		"app.port",
		"backend.server_url",
		"backend.application_id",
		"backend.client_key",
		"backend.master_key",
		"backend.timeout",
		"redis.host",
		"redis.port",
		"redis.db",
		"redis.password",
		"redis.tls_enabled",
		"redis.recovery_prefix",
		"redis.inflight_prefix",
		"kafka.brokers",
		"kafka.topic_prefix",
		"kafka.async",
		"rate_limit.window_duration",
		"rate_limit.login_max_attempts",
		"rate_limit.signup_max_attempts",
		"rate_limit.recovery_max_starts",
		"recovery.code_length",
		"recovery.session_ttl",
		"recovery.max_attempts",
		"recovery.inflight_ttl",
		"telemetry.metrics_namespace",
	}); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "auth-gateway")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)

	v.SetDefault("backend.server_url", "https://parseapi.back4app.com")
	v.SetDefault("backend.application_id", "")
	v.SetDefault("backend.client_key", "")
	v.SetDefault("backend.master_key", "")
	v.SetDefault("backend.timeout", "10s")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.tls_enabled", false)
	v.SetDefault("redis.recovery_prefix", "lc:recovery")
	v.SetDefault("redis.inflight_prefix", "lc:inflight")

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic_prefix", "auth")
	v.SetDefault("kafka.async", true)

	v.SetDefault("rate_limit.window_duration", "1m")
	v.SetDefault("rate_limit.login_max_attempts", 5)
	v.SetDefault("rate_limit.signup_max_attempts", 3)
	v.SetDefault("rate_limit.recovery_max_starts", 3)

	v.SetDefault("recovery.code_length", 6)
	v.SetDefault("recovery.session_ttl", "15m")
	v.SetDefault("recovery.max_attempts", 5)
	v.SetDefault("recovery.inflight_ttl", "30s")

	v.SetDefault("telemetry.metrics_namespace", "authgw")
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, "LC_"+envKey, envKey); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}
