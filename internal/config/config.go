package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defaultConfigFile = "config.yaml"
	projectConfigFile = ".annofabcli.yaml"

	EnvEndpointURL = "ANNOFAB_ENDPOINT_URL"
)

const (
	DefaultTimeoutSeconds      = 60
	DefaultLogDir              = ".log"
	DefaultWaitIntervalSeconds = 60
	DefaultWaitMaxTries        = 360
)

type Config struct {
	EndpointURL         string         `yaml:"endpoint_url"`
	TimeoutSeconds      int            `yaml:"timeout_seconds"`
	LogDir              string         `yaml:"logdir"`
	CSVFormat           map[string]any `yaml:"csv_format"`
	Parallelism         int            `yaml:"parallelism"`
	WaitIntervalSeconds int            `yaml:"wait_interval_seconds"`
	WaitMaxTries        int            `yaml:"wait_max_tries"`
}

func Defaults() Config {
	return Config{
		TimeoutSeconds:      DefaultTimeoutSeconds,
		LogDir:              DefaultLogDir,
		WaitIntervalSeconds: DefaultWaitIntervalSeconds,
		WaitMaxTries:        DefaultWaitMaxTries,
	}
}

func DefaultUserConfigPath() (string, error) {
	xdg := os.Getenv("XDG_CONFIG_HOME")
	if xdg == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		xdg = filepath.Join(home, ".config")
	}
	return filepath.Join(xdg, "annofabcli", defaultConfigFile), nil
}

func DefaultProjectConfigPath(cwd string) string {
	return filepath.Join(cwd, projectConfigFile)
}

func LoadConfig(path string) (Config, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, false, nil
		}
		return Config{}, false, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, true, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, true, nil
}

// Load merges defaults, the user config and the project config in cwd, later
// files winning field by field.
func Load(cwd string) (Config, error) {
	cfg := Defaults()
	userPath, err := DefaultUserConfigPath()
	if err != nil {
		return cfg, err
	}
	for _, path := range []string{userPath, DefaultProjectConfigPath(cwd)} {
		loaded, found, err := LoadConfig(path)
		if err != nil {
			return cfg, err
		}
		if found {
			cfg = MergeConfig(cfg, loaded)
		}
	}
	return cfg, nil
}

// EnsureDir creates path with its parents. "" and "." need nothing.
func EnsureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o755)
}

func MergeConfig(base Config, override Config) Config {
	result := base
	if override.EndpointURL != "" {
		result.EndpointURL = override.EndpointURL
	}
	if override.TimeoutSeconds > 0 {
		result.TimeoutSeconds = override.TimeoutSeconds
	}
	if override.LogDir != "" {
		result.LogDir = override.LogDir
	}
	if len(override.CSVFormat) > 0 {
		result.CSVFormat = override.CSVFormat
	}
	if override.Parallelism > 0 {
		result.Parallelism = override.Parallelism
	}
	if override.WaitIntervalSeconds > 0 {
		result.WaitIntervalSeconds = override.WaitIntervalSeconds
	}
	if override.WaitMaxTries > 0 {
		result.WaitMaxTries = override.WaitMaxTries
	}
	return result
}

// ResolveEndpointURL picks the endpoint: flag, then ANNOFAB_ENDPOINT_URL, then
// config. An empty result means the client default.
func ResolveEndpointURL(flagValue string, getenv func(string) string, cfg Config) string {
	if v := strings.TrimSpace(flagValue); v != "" {
		return v
	}
	if v := strings.TrimSpace(getenv(EnvEndpointURL)); v != "" {
		return v
	}
	return strings.TrimSpace(cfg.EndpointURL)
}
