package config

// The loading sequence is:
//  1. Load the .env file via godotenv (non-fatal if absent; never overrides
//     variables already set in the process).
//  2. Use envconfig to populate Config from the environment.
//  3. Ask each SecretProvider, in order, for the secret keys. The first
//     non-empty value wins and takes precedence over the environment.
//  4. Fail if DATABASE_URL is still empty, then validate the struct.

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// envFileVar names the variable that overrides the .env location.
const envFileVar = "ENV_FILE"

const defaultEnvFile = ".env"

// Loader resolves a Config.
type Loader struct {
	// EnvFile is the dotenv file to load. Defaults to $ENV_FILE, then ".env".
	EnvFile string

	// Providers are consulted in order. When nil, DefaultProviders is used.
	Providers []SecretProvider
}

// Resolved describes where each secret key came from.
type Resolved map[string]string

// Load resolves the configuration with default providers.
func Load(ctx context.Context) (*Config, Resolved, error) {
	return (&Loader{}).Load(ctx)
}

// DefaultProviders returns the secrets file provider, followed by SSM when a
// parameter prefix is configured.
func DefaultProviders(cfg *Config) []SecretProvider {
	providers := []SecretProvider{NewFileProvider(cfg.SecretsFile)}
	if cfg.SSMPrefix != "" {
		providers = append(providers, NewSSMProvider(cfg.AWSRegion, cfg.SSMPrefix))
	}
	return providers
}

// Load resolves the configuration.
func (l *Loader) Load(ctx context.Context) (*Config, Resolved, error) {
	envFile := l.EnvFile
	if envFile == "" {
		envFile = os.Getenv(envFileVar)
	}
	if envFile == "" {
		envFile = defaultEnvFile
	}

	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, nil, &ConfigError{
			Type:    ErrTypeParsing,
			Message: "failed to load env file " + envFile,
			Err:     err,
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, nil, &ConfigError{
			Type:    ErrTypeParsing,
			Message: "failed to process environment variables",
			Err:     err,
		}
	}

	resolved := make(Resolved, len(SecretKeys))
	for _, key := range SecretKeys {
		if os.Getenv(key) != "" {
			resolved[key] = "env"
		}
	}

	providers := l.Providers
	if providers == nil {
		providers = DefaultProviders(&cfg)
	}

	secrets, sources, err := resolveSecrets(ctx, providers, SecretKeys)
	if err != nil {
		return nil, nil, err
	}
	for key, source := range sources {
		resolved[key] = source
	}
	applySecrets(&cfg, secrets)

	if cfg.DatabaseURL == "" {
		return nil, nil, &ConfigError{
			Type:    ErrTypeMissing,
			Message: "set DATABASE_URL in the secrets store, the .env file or the environment",
			Err:     ErrMissingDatabaseURL,
		}
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, nil, &ConfigError{
			Type:    ErrTypeValidation,
			Message: "configuration validation failed",
			Err:     err,
		}
	}

	return &cfg, resolved, nil
}

// resolveSecrets asks each provider for the keys still unresolved.
func resolveSecrets(ctx context.Context, providers []SecretProvider, keys []string) (map[string]string, map[string]string, error) {
	values := make(map[string]string, len(keys))
	sources := make(map[string]string, len(keys))

	for _, p := range providers {
		pending := make([]string, 0, len(keys))
		for _, key := range keys {
			if values[key] == "" {
				pending = append(pending, key)
			}
		}
		if len(pending) == 0 {
			break
		}

		found, err := p.GetSecrets(ctx, pending)
		if err != nil {
			return nil, nil, &ConfigError{
				Type:    ErrTypeSecrets,
				Message: "failed to read secrets from " + p.Name(),
				Err:     err,
			}
		}
		for key, v := range found {
			if v != "" && values[key] == "" {
				values[key] = v
				sources[key] = p.Name()
			}
		}
	}

	return values, sources, nil
}

func applySecrets(cfg *Config, secrets map[string]string) {
	if v := secrets[KeyDatabaseURL]; v != "" {
		cfg.DatabaseURL = SecretString(v)
	}
	if v := secrets[KeyAPIKey]; v != "" {
		cfg.APIKey = SecretString(v)
	}
	if v := secrets[KeyDataBaseURL]; v != "" {
		cfg.DataBaseURL = v
	}
}
