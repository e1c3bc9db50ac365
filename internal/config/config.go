// Package config resolves the dashboard configuration from a secrets store,
// a .env file and the process environment.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Keys resolved through the secrets store before falling back to the environment.
const (
	KeyDatabaseURL = "DATABASE_URL"
	KeyAPIKey      = "API_KEY"
	KeyDataBaseURL = "DATA_BASE_URL"
)

// SecretKeys lists the keys looked up in the secrets store.
var SecretKeys = []string{KeyDatabaseURL, KeyAPIKey, KeyDataBaseURL}

// ErrMissingDatabaseURL is returned when DATABASE_URL resolves from no source.
var ErrMissingDatabaseURL = errors.New("DATABASE_URL is not configured")

// Config is the resolved application configuration.
type Config struct {
	Environment string `envconfig:"APP_ENV" default:"local" validate:"oneof=local dev staging prod"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=trace debug info warn error"`
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8080" validate:"required"`

	// DatabaseURL is the only setting the dashboard cannot start without.
	DatabaseURL SecretString `envconfig:"DATABASE_URL"`

	// APIKey and DataBaseURL are read for compatibility with existing deployments
	// but no dashboard feature uses them.
	APIKey      SecretString `envconfig:"API_KEY"`
	DataBaseURL string       `envconfig:"DATA_BASE_URL"`

	CacheTTL       time.Duration `envconfig:"CACHE_TTL" default:"5m" validate:"gt=0"`
	QueryTimeout   time.Duration `envconfig:"QUERY_TIMEOUT" default:"10s" validate:"gt=0"`
	ConnectTimeout time.Duration `envconfig:"CONNECT_TIMEOUT" default:"5s" validate:"gt=0"`

	// WarmOnStart loads the snapshot before the first request; WarmInterval > 0
	// keeps it loaded in the background.
	WarmOnStart  bool          `envconfig:"CACHE_WARM_ON_START" default:"true"`
	WarmInterval time.Duration `envconfig:"CACHE_WARM_INTERVAL" default:"0s" validate:"gte=0"`

	LatestReadingPolicy string        `envconfig:"LATEST_READING_POLICY" default:"position" validate:"oneof=position timestamp"`
	HistoryWindow       time.Duration `envconfig:"HISTORY_WINDOW" default:"168h" validate:"gt=0"`
	DataTimezone        string        `envconfig:"DATA_TIMEZONE" default:"UTC" validate:"timezone"`

	RequireTLS bool `envconfig:"REQUIRE_TLS" default:"false"`

	SecretsFile string `envconfig:"SECRETS_FILE" default:".streamlit/secrets.toml"`
	SSMPrefix   string `envconfig:"SECRETS_SSM_PREFIX"`
	AWSRegion   string `envconfig:"AWS_REGION" default:"us-east-1"`

	Telemetry TelemetryConfig
}

// TelemetryConfig holds OpenTelemetry exporter settings.
type TelemetryConfig struct {
	Enabled      bool   `envconfig:"OTEL_ENABLED" default:"false"`
	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT" default:"localhost:4317"`
}

// IsLocal reports whether the dashboard runs on a developer machine.
func (c *Config) IsLocal() bool {
	return c.Environment == "local"
}

// Location returns the zone used for timestamps stored without one.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.DataTimezone)
}

// SecretString holds a secret value that is redacted when printed or marshalled.
type SecretString string

const redacted = "[REDACTED]"

// Reveal returns the plaintext value.
func (s SecretString) Reveal() string {
	return string(s)
}

// String implements fmt.Stringer.
func (s SecretString) String() string {
	if s == "" {
		return ""
	}
	return redacted
}

// GoString implements fmt.GoStringer so %#v does not leak the value.
func (s SecretString) GoString() string {
	return fmt.Sprintf("%q", s.String())
}

// MarshalJSON implements json.Marshaler.
func (s SecretString) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// ConfigErrorType categorizes configuration loading failures.
type ConfigErrorType string

const (
	// ErrTypeMissing indicates a required setting was not found in any source.
	ErrTypeMissing ConfigErrorType = "MISSING"
	// ErrTypeSecrets indicates a failure reading the secrets store.
	ErrTypeSecrets ConfigErrorType = "SECRETS_FAILURE"
	// ErrTypeValidation indicates the configuration failed validation rules.
	ErrTypeValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrTypeParsing indicates an environment value could not be parsed.
	ErrTypeParsing ConfigErrorType = "PARSING_FAILED"
)

// ConfigError is returned by Load to aid debugging.
type ConfigError struct {
	Type    ConfigErrorType
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *ConfigError) Unwrap() error {
	return e.Err
}
