package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/eportfolio/internal/timex"
	"gopkg.in/yaml.v3"
)

// fileConfig is a DTO used exclusively for file unmarshalling. Pointers tell
// absent keys apart from empty values.
type fileConfig struct {
	APIBaseURL     *string         `json:"api_base_url" yaml:"api_base_url"`
	DatabasePath   *string         `json:"database_path" yaml:"database_path"`
	ExportDir      *string         `json:"export_dir" yaml:"export_dir"`
	RequestTimeout *timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	LogLevel       *string         `json:"log_level" yaml:"log_level"`
	LogFormat      *string         `json:"log_format" yaml:"log_format"`
	UserID         *string         `json:"user_id" yaml:"user_id"`
	UserName       *string         `json:"user_name" yaml:"user_name"`
	TokenFile      *string         `json:"token_file" yaml:"token_file"`
	S3             *fileS3         `json:"s3" yaml:"s3"`
}

type fileS3 struct {
	Bucket    *string         `json:"bucket" yaml:"bucket"`
	Region    *string         `json:"region" yaml:"region"`
	Endpoint  *string         `json:"endpoint" yaml:"endpoint"`
	AccessKey *string         `json:"access_key" yaml:"access_key"`
	SecretKey *string         `json:"secret_key" yaml:"secret_key"`
	LinkTTL   *timex.Duration `json:"link_ttl" yaml:"link_ttl"`
}

func parseFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}

func (fc fileConfig) apply(cfg *Config) {
	set(&cfg.APIBaseURL, fc.APIBaseURL)
	set(&cfg.DatabasePath, fc.DatabasePath)
	set(&cfg.ExportDir, fc.ExportDir)
	setDuration(&cfg.RequestTimeout, fc.RequestTimeout)
	set(&cfg.LogLevel, fc.LogLevel)
	set(&cfg.LogFormat, fc.LogFormat)
	set(&cfg.UserID, fc.UserID)
	set(&cfg.UserName, fc.UserName)
	set(&cfg.TokenFile, fc.TokenFile)

	if fc.S3 == nil {
		return
	}
	set(&cfg.S3.Bucket, fc.S3.Bucket)
	set(&cfg.S3.Region, fc.S3.Region)
	set(&cfg.S3.Endpoint, fc.S3.Endpoint)
	set(&cfg.S3.AccessKey, fc.S3.AccessKey)
	set(&cfg.S3.SecretKey, fc.S3.SecretKey)
	setDuration(&cfg.S3.LinkTTL, fc.S3.LinkTTL)
}

func set(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
