// Package config loads runtime configuration for the eportfolio CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see Defaults).
//  2. Optional config file selected with -c/--config; ".yaml"/".yml" files are
//     read as YAML, anything else as JSON.
//  3. Environment variables prefixed with EPORTFOLIO_ (a ".env" file in the
//     working directory is loaded first, see LoadDotEnv).
//  4. Command-line flags that were set explicitly.
//
// The result is validated before it is returned.
//
// # File format
//
// Durations accept strings like "15s" or bare seconds:
//
//	{
//	  "api_base_url": "http://localhost:8080",
//	  "request_timeout": "15s",
//	  "s3": {"bucket": "cv-share", "link_ttl": "24h"}
//	}
package config
