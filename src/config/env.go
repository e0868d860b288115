package config

import (
	"os"
	"strconv"
)

// loadEnv overlays environment variables onto cfg.
// Only non-empty values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Badge.Branch, "BADGEBRANCH_BRANCH")
	setString(&cfg.Badge.Style, "BADGEBRANCH_STYLE")
	setString(&cfg.Git.Remote, "BADGEBRANCH_REMOTE")
	setString(&cfg.Log.Level, "BADGEBRANCH_LOG_LEVEL")
	setBool(&cfg.Policy.FailOnError, "BADGEBRANCH_FAIL_ON_ERROR")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
