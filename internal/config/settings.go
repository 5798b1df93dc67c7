// Package config loads runtime settings and hosts the shared YAML and
// validation helpers used by every configuration document.
package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	gameerrors "github.com/alexisbeaulieu97/gameready/pkg/errors"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "GAMEREADY_"

// LogDirName is created under the invoking user's home when no log directory
// is configured.
const LogDirName = "gameready-logs"

// Settings holds everything a run can be tuned with.
type Settings struct {
	QueryTimeout     time.Duration `yaml:"query_timeout" env:"QUERY_TIMEOUT" validate:"min=1s,max=60s"`
	InstallTimeout   time.Duration `yaml:"install_timeout" env:"INSTALL_TIMEOUT" validate:"min=30s"`
	Parallel         int           `yaml:"parallel" env:"PARALLEL" validate:"min=1,max=32"`
	LogDir           string        `yaml:"log_dir" env:"LOG_DIR"`
	LogLevel         string        `yaml:"log_level" env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	CatalogPath      string        `yaml:"catalog" env:"CATALOG"`
	ScanKernelLog    bool          `yaml:"scan_kernel_log" env:"SCAN_KERNEL_LOG"`
	FlatpakRemote    string        `yaml:"flatpak_remote" env:"FLATPAK_REMOTE" validate:"required,component_id"`
	FlatpakRemoteURL string        `yaml:"flatpak_remote_url" env:"FLATPAK_REMOTE_URL" validate:"required,url"`

	// User is the account the run acts for; it is resolved, never configured.
	User string `yaml:"-"`
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		QueryTimeout:     5 * time.Second,
		InstallTimeout:   5 * time.Minute,
		Parallel:         4,
		LogLevel:         "info",
		FlatpakRemote:    "flathub",
		FlatpakRemoteURL: "https://dl.flathub.org/repo/flathub.flatpakrepo",
	}
}

// Load layers defaults, the optional YAML file at path and environment
// overrides, then validates the result. environ is a KEY=VALUE list; nil means
// the process environment.
func Load(path string, environ []string) (Settings, error) {
	if environ == nil {
		environ = os.Environ()
	}
	vars := env.ToMap(environ)

	settings := Defaults()
	if strings.TrimSpace(path) != "" {
		if err := ReadYAMLFile(path, &settings); err != nil {
			return Settings{}, err
		}
	}

	if err := env.ParseWithOptions(&settings, env.Options{
		Prefix:      EnvPrefix,
		Environment: vars,
	}); err != nil {
		return Settings{}, gameerrors.NewValidationError("env", fmt.Sprintf("parse env: %v", err), err)
	}

	settings.User = InvokingUser(vars)
	if settings.LogDir == "" {
		settings.LogDir = defaultLogDir(settings.User)
	}

	if err := Validate(settings); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// Validate checks settings after every layer has been applied.
func Validate(s Settings) error {
	if err := validatorInstance().Struct(s); err != nil {
		return ConvertValidationError(err)
	}
	return nil
}

// InvokingUser prefers the account that ran sudo over the effective one.
func InvokingUser(vars map[string]string) string {
	if name := strings.TrimSpace(vars["SUDO_USER"]); name != "" {
		return name
	}
	return strings.TrimSpace(vars["USER"])
}

func defaultLogDir(username string) string {
	if username != "" {
		if u, err := user.Lookup(username); err == nil && u.HomeDir != "" {
			return filepath.Join(u.HomeDir, LogDirName)
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, LogDirName)
	}
	return LogDirName
}
