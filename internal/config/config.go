// Package config assembles the runtime configuration from defaults,
// command-line flags, an optional .env file, and environment variables,
// in that order of precedence (environment wins).
package config

import (
	"flag"
	"log"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the service.
// SessionSigningKey deliberately has no default and no flag: the
// session secret must come from the environment (base64url-encoded),
// and startup fails when it is absent.
type Config struct {
	RunAddr           string        `env:"SERVER_ADDRESS" validate:"hostname_port"`
	ShortURLBase      string        `env:"BASE_URL" validate:"url"`
	LogLevel          string        `env:"LOG_LEVEL" validate:"loglevel"`
	SessionCookieName string        `env:"SESSION_COOKIE_NAME" validate:"required"`
	SessionSigningKey string        `env:"TINYAPP_SESSION_KEY" validate:"required,base64url"`
	SessionTTL        time.Duration `env:"SESSION_TTL" validate:"required"`
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	allowedLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
	}

	return allowedLogLevels[fieldLevel.Field().String()]
}

func (cfg *Config) validate() error {
	validate := validator.New()

	if err := validate.RegisterValidation("loglevel", validateLogLevel); err != nil {
		return err
	}

	return validate.Struct(cfg)
}

// InitOption customizes New.
type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
}

// WithDisableFlagsParsing skips command-line flag parsing; tests use it
// so the test binary's own flags do not collide with the service flags.
func WithDisableFlagsParsing(disableFlagsParsing bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disableFlagsParsing
	}
}

// New builds the configuration and validates it.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("Unable to load .env file: %v", err)
	}

	cfg := &Config{
		RunAddr:           ":8080",
		ShortURLBase:      "http://localhost:8080",
		LogLevel:          "info",
		SessionCookieName: "tinyapp_session",
		SessionTTL:        24 * time.Hour,
	}

	if !options.disableFlagsParsing {
		flag.StringVar(&cfg.RunAddr, "a", cfg.RunAddr, "address and port to run server")
		flag.StringVar(&cfg.ShortURLBase, "b", cfg.ShortURLBase, "base address of the resulting shortened URL")
		flag.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "logger level")
		flag.StringVar(&cfg.SessionCookieName, "c", cfg.SessionCookieName, "name of the session cookie")
		flag.Parse()
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
