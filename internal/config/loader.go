package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

const (
	// ConfigDirName is the name of the configuration directory.
	ConfigDirName = ".shlokstudy"
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "config.yaml"
	// PathEnv overrides the default configuration file location.
	PathEnv = "SHLOKSTUDY_CONFIG"
)

// envVarPattern matches ${VAR} and ${VAR:-fallback}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// Loader reads and writes one configuration file.
type Loader struct {
	configPath string
}

// NewLoader returns a loader for $SHLOKSTUDY_CONFIG, or for
// ~/.shlokstudy/config.yaml when it is unset.
func NewLoader() (*Loader, error) {
	if p := os.Getenv(PathEnv); p != "" {
		return NewLoaderWithPath(p), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return NewLoaderWithPath(filepath.Join(homeDir, ConfigDirName, ConfigFileName)), nil
}

// NewLoaderFor returns a loader for configPath, or for the default location
// when configPath is empty.
func NewLoaderFor(configPath string) (*Loader, error) {
	if configPath != "" {
		return NewLoaderWithPath(configPath), nil
	}
	return NewLoader()
}

// NewLoaderWithPath creates a loader with a custom config path.
func NewLoaderWithPath(configPath string) *Loader {
	return &Loader{configPath: configPath}
}

// ConfigPath returns the configuration file path.
func (l *Loader) ConfigPath() string {
	return l.configPath
}

// Load reads the configuration, expands ${VAR} references and validates the
// result. Keys missing from the file keep their defaults; with no file at
// all the defaults are expanded as if they had been written out.
func (l *Loader) Load() (*Config, error) {
	return l.read(true)
}

// LoadRaw reads the configuration without expanding environment variables,
// which keeps placeholders intact for display and for rewriting the file.
func (l *Loader) LoadRaw() (*Config, error) {
	return l.read(false)
}

func (l *Loader) read(expand bool) (*Config, error) {
	data, err := os.ReadFile(l.configPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if !expand {
			return DefaultConfig(), nil
		}
		if data, err = yaml.Marshal(DefaultConfig()); err != nil {
			return nil, fmt.Errorf("failed to encode default config: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if expand {
		data = []byte(expandEnvVars(string(data)))
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", l.configPath, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", l.configPath, err)
	}
	return cfg, nil
}

// Save writes cfg through a temporary file so a failed write never leaves a
// truncated config behind. The file may hold API keys and is private to the
// user.
func (l *Loader) Save(cfg *Config) error {
	dir := filepath.Dir(l.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ConfigFileName+".*")
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Rename(tmp.Name(), l.configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Exists checks if the configuration file exists.
func (l *Loader) Exists() bool {
	_, err := os.Stat(l.configPath)
	return err == nil
}

// Init creates a default configuration file.
func (l *Loader) Init() error {
	if l.Exists() {
		return fmt.Errorf("config file already exists: %s", l.configPath)
	}
	return l.Save(DefaultConfig())
}

// expandEnvVars replaces ${VAR} with its value and ${VAR:-fallback} with the
// value or, when VAR is unset or empty, the fallback.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		m := envVarPattern.FindStringSubmatch(match)
		if value := os.Getenv(m[1]); value != "" {
			return value
		}
		return m[2]
	})
}

// GetEnvOrDefault returns the environment variable value or a default.
func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
