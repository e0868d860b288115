package config

import (
	"fmt"
	"os"
)

// Runtime is process state read once at startup.
type Runtime struct {
	Dir           string // working directory the repository is opened from
	MessageSuffix string // appended to commit messages during CI test runs
	Token         string // push/fetch token for HTTP(S) remotes
}

// LoadRuntime captures the working directory and the environment-derived
// settings described by cfg.
func LoadRuntime(cfg *Config) (Runtime, error) {
	dir, err := os.Getwd()
	if err != nil {
		return Runtime{}, fmt.Errorf("resolving working directory: %w", err)
	}
	rt := Runtime{Dir: dir}
	if cfg.Policy.CITestEnv != "" {
		if _, ok := os.LookupEnv(cfg.Policy.CITestEnv); ok {
			rt.MessageSuffix = cfg.Policy.CITestSuffix
		}
	}
	if cfg.Git.TokenEnv != "" {
		rt.Token = os.Getenv(cfg.Git.TokenEnv)
	}
	return rt, nil
}
