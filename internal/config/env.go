package config

import (
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// Environment variables consulted after the YAML file.
const (
	EnvWorkspace        = "PKGBUILD_WORKSPACE"
	EnvDefaultWorkspace = "PKGBUILD_DEFAULT_WORKSPACE"
	EnvSearchPath       = "PKGBUILD_PATH"
	EnvHackMode         = "PKGBUILD_HACK"
	EnvLogLevel         = "PKGBUILD_LOG_LEVEL"
)

func applyEnv(cfg *Config, getenv func(string) string) {
	if v := getenv(EnvWorkspace); v != "" {
		cfg.Workspace = v
	}
	if v := getenv(EnvDefaultWorkspace); v != "" {
		cfg.DefaultWorkspace = v
	}
	if v := getenv(EnvSearchPath); v != "" {
		for _, entry := range filepath.SplitList(v) {
			if entry = strings.TrimSpace(entry); entry != "" && !slices.Contains(cfg.SearchPath, entry) {
				cfg.SearchPath = append(cfg.SearchPath, entry)
			}
		}
	}
	if v := getenv(EnvHackMode); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.HackMode = b
		}
	}
	if v := getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = LogLevel(v)
	}
}
