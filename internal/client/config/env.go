package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/eportfolio/internal/timex"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable the CLI reads, e.g.
// EPORTFOLIO_API_BASE_URL or EPORTFOLIO_S3_BUCKET.
const EnvPrefix = "EPORTFOLIO"

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not an
// error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func parseEnv(cfg *Config) error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	strs := map[string]*string{
		"api_base_url":  &cfg.APIBaseURL,
		"database_path": &cfg.DatabasePath,
		"export_dir":    &cfg.ExportDir,
		"log_level":     &cfg.LogLevel,
		"log_format":    &cfg.LogFormat,
		"user_id":       &cfg.UserID,
		"user_name":     &cfg.UserName,
		"token":         &cfg.Token,
		"token_file":    &cfg.TokenFile,
		"s3.bucket":     &cfg.S3.Bucket,
		"s3.region":     &cfg.S3.Region,
		"s3.endpoint":   &cfg.S3.Endpoint,
		"s3.access_key": &cfg.S3.AccessKey,
		"s3.secret_key": &cfg.S3.SecretKey,
	}
	for key, dst := range strs {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}

	durations := map[string]*time.Duration{
		"request_timeout": &cfg.RequestTimeout,
		"s3.link_ttl":     &cfg.S3.LinkTTL,
	}
	for key, dst := range durations {
		if !v.IsSet(key) {
			continue
		}
		d, err := timex.Parse(v.GetString(key))
		if err != nil {
			return fmt.Errorf("%s_%s: %w", EnvPrefix, strings.ToUpper(strings.ReplaceAll(key, ".", "_")), err)
		}
		*dst = d
	}
	return nil
}
