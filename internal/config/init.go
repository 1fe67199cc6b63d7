package config

import (
	"os"

	"git.home.luguber.info/inful/pkgbuild/internal/foundation/errors"
)

const exampleConfig = `# pkgbuild configuration
workspace: .
# default_workspace: ~/.pkgbuild
# search_path:
#   - /opt/src
hack_mode: false
cfgs: []

cache:
  database: .pkgbuild/workcache.db

compiler:
  command: rustc
  args: []

fetch:
  shallow_depth: 0
  retry:
    mode: linear
    initial: 1s
    max: 30s
    max_retries: 2

logging:
  level: info
  format: text
`

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).
			Build()
	}
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0o600); err != nil {
		return errors.FileSystemError("failed to write configuration file").
			WithCause(err).
			WithContext("path", configPath).
			Build()
	}
	return nil
}
