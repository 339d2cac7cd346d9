package config

import (
	"github.com/spf13/pflag"
)

const (
	flagConfig    = "config"
	flagAPI       = "api"
	flagDB        = "db"
	flagExportDir = "export-dir"
	flagTimeout   = "timeout"
	flagLogLevel  = "log-level"
	flagLogFormat = "log-format"
	flagUser      = "user"
	flagUserName  = "name"
	flagToken     = "token"
	flagTokenFile = "token-file"
	flagS3Bucket  = "s3-bucket"
)

// GlobalFlags lists the flag spellings RegisterFlags defines, for callers
// that have to strip them from free-form input.
var GlobalFlags = []string{
	"-c", "--" + flagConfig, "-a", "--" + flagAPI, "--" + flagDB, "--" + flagExportDir,
	"--" + flagTimeout, "--" + flagLogLevel, "--" + flagLogFormat, "-u", "--" + flagUser,
	"--" + flagUserName, "--" + flagToken, "--" + flagTokenFile, "--" + flagS3Bucket,
}

// RegisterFlags defines the configuration flags on fs. Defaults shown in help
// are the built-in ones; only flags set explicitly override other sources.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Defaults()
	fs.StringP(flagConfig, "c", "", "path to a JSON or YAML config file")
	fs.StringP(flagAPI, "a", d.APIBaseURL, "base URL of the portfolio API")
	fs.String(flagDB, d.DatabasePath, "path to the local SQLite database")
	fs.String(flagExportDir, d.ExportDir, "directory for exported PDF files")
	fs.Duration(flagTimeout, d.RequestTimeout, "timeout for API requests")
	fs.String(flagLogLevel, d.LogLevel, "log level (debug, info, warn, error)")
	fs.String(flagLogFormat, d.LogFormat, "log format (text, json)")
	fs.StringP(flagUser, "u", "", "user id owning the local CV collection")
	fs.String(flagUserName, "", "display name used for default CV titles")
	fs.String(flagToken, "", "bearer token for the portfolio API")
	fs.String(flagTokenFile, d.TokenFile, "file holding the bearer token")
	fs.String(flagS3Bucket, "", "S3 bucket for published CVs")
}

func parseFlags(cfg *Config, fs *pflag.FlagSet) error {
	strs := map[string]*string{
		flagAPI:       &cfg.APIBaseURL,
		flagDB:        &cfg.DatabasePath,
		flagExportDir: &cfg.ExportDir,
		flagLogLevel:  &cfg.LogLevel,
		flagLogFormat: &cfg.LogFormat,
		flagUser:      &cfg.UserID,
		flagUserName:  &cfg.UserName,
		flagToken:     &cfg.Token,
		flagTokenFile: &cfg.TokenFile,
		flagS3Bucket:  &cfg.S3.Bucket,
	}
	for name, dst := range strs {
		if !fs.Changed(name) {
			continue
		}
		v, err := fs.GetString(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	if fs.Changed(flagTimeout) {
		v, err := fs.GetDuration(flagTimeout)
		if err != nil {
			return err
		}
		cfg.RequestTimeout = v
	}
	return nil
}
