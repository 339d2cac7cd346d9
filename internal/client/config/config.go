package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
)

// S3 configures publishing of exported CVs. Publishing is off while Bucket
// is empty.
type S3 struct {
	Bucket    string
	Region    string        `validate:"required_with=Bucket"`
	Endpoint  string        `validate:"omitempty,url"`
	AccessKey string        `validate:"required_with=SecretKey"`
	SecretKey string        `validate:"required_with=AccessKey"`
	LinkTTL   time.Duration `validate:"gt=0"`
}

// Config holds runtime settings for the eportfolio CLI.
type Config struct {
	APIBaseURL     string        `validate:"required,url"`
	DatabasePath   string        `validate:"required"`
	ExportDir      string        `validate:"required"`
	RequestTimeout time.Duration `validate:"gt=0"`
	LogLevel       string        `validate:"oneof=debug info warn error"`
	LogFormat      string        `validate:"oneof=text json"`

	UserID    string
	UserName  string
	Token     string
	TokenFile string

	S3 S3
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		APIBaseURL:     "http://localhost:8080",
		DatabasePath:   "eportfolio.db",
		ExportDir:      "exports",
		RequestTimeout: 15 * time.Second,
		LogLevel:       "info",
		LogFormat:      "text",
		TokenFile:      ".eportfolio-token",
		S3: S3{
			Region:  "us-east-1",
			LinkTTL: 24 * time.Hour,
		},
	}
}

// PublishEnabled reports whether an S3 bucket is configured.
func (c *Config) PublishEnabled() bool {
	return c.S3.Bucket != ""
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Load builds a Config from defaults, the optional config file, the
// environment and finally the flags in fs that were set explicitly. fs must
// have been prepared with RegisterFlags.
func Load(fs *pflag.FlagSet) (*Config, error) {
	cfg := Defaults()

	if path, _ := fs.GetString(flagConfig); path != "" {
		if err := parseFile(cfg, path); err != nil {
			return nil, err
		}
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, fs); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
