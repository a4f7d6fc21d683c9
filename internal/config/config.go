// Package config loads plotpipe settings from defaults, .env files and
// PLOTPIPE_* environment variables.
//
// Priority, highest first:
//  1. Bound command line flags
//  2. Environment variables (PLOTPIPE_GNUPLOT, PLOTPIPE_TIMEOUT, ...)
//  3. .env in the working directory
//  4. .env in the user config directory (~/.config/plotpipe/.env)
//  5. Defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every plotpipe environment variable.
const EnvPrefix = "PLOTPIPE"

// Configuration keys. The environment variable is EnvPrefix + "_" + the
// upper-cased key.
const (
	KeyGnuplot       = "gnuplot"
	KeyPersist       = "persist"
	KeyTimeout       = "timeout"
	KeyBinary        = "binary"
	KeyDebug         = "debug"
	KeyLogLevel      = "log_level"
	KeyLogFile       = "log_file"
	KeyOutput        = "output"
	KeyOutputOptions = "output_options"
	KeyColor         = "color"
)

// Config is the resolved configuration.
type Config struct {
	Executable    string
	Persist       bool
	Timeout       time.Duration
	Binary        bool
	Debug         bool
	LogLevel      string
	LogFile       string
	Output        string
	OutputOptions string
	Color         string
}

// Loader resolves a Config. The zero directories mean the user config
// directory and the process working directory.
type Loader struct {
	ConfigDir string
	WorkDir   string

	v *viper.Viper
}

// NewLoader creates a loader with its own viper instance and defaults.
func NewLoader() *Loader {
	v := viper.New()
	v.SetDefault(KeyGnuplot, "gnuplot")
	v.SetDefault(KeyPersist, false)
	v.SetDefault(KeyTimeout, "0")
	v.SetDefault(KeyBinary, false)
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyOutput, "")
	v.SetDefault(KeyOutputOptions, "")
	v.SetDefault(KeyColor, "auto")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return &Loader{v: v}
}

// Viper exposes the underlying instance so callers can bind flags.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// Load reads the .env layers and returns the merged configuration.
func (l *Loader) Load() (*Config, error) {
	if err := l.loadDotEnvFiles(); err != nil {
		return nil, err
	}

	timeout, err := ParseTimeout(l.v.GetString(KeyTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s_TIMEOUT: %w", EnvPrefix, err)
	}

	return &Config{
		Executable:    l.v.GetString(KeyGnuplot),
		Persist:       l.v.GetBool(KeyPersist),
		Timeout:       timeout,
		Binary:        l.v.GetBool(KeyBinary),
		Debug:         l.v.GetBool(KeyDebug),
		LogLevel:      l.v.GetString(KeyLogLevel),
		LogFile:       l.v.GetString(KeyLogFile),
		Output:        l.v.GetString(KeyOutput),
		OutputOptions: l.v.GetString(KeyOutputOptions),
		Color:         l.v.GetString(KeyColor),
	}, nil
}

// Load resolves the configuration with a fresh loader.
func Load() (*Config, error) {
	return NewLoader().Load()
}

// loadDotEnvFiles merges the config-dir .env and then the local .env
// into viper's config layer, so environment variables still win.
func (l *Loader) loadDotEnvFiles() error {
	configDir := l.ConfigDir
	if configDir == "" {
		dir, err := UserConfigDir()
		if err == nil {
			configDir = dir
		}
		// config directory access failure is not fatal
	}

	workDir := l.WorkDir
	if workDir == "" {
		dir, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		workDir = dir
	}

	merged := make(map[string]interface{})
	for _, dir := range []string{configDir, workDir} {
		if dir == "" {
			continue
		}
		values, err := readDotEnv(filepath.Join(dir, ".env"))
		if err != nil {
			return err
		}
		for k, v := range values {
			merged[k] = v
		}
	}

	if len(merged) == 0 {
		return nil
	}
	return l.v.MergeConfigMap(merged)
}

// readDotEnv returns the PLOTPIPE_ entries of a .env file keyed by
// configuration key. A missing file is not an error.
func readDotEnv(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read .env file %s: %w", path, err)
	}

	envMap, err := godotenv.Unmarshal(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse .env file %s: %w", path, err)
	}

	values := make(map[string]string)
	for key, value := range envMap {
		name, ok := strings.CutPrefix(key, EnvPrefix+"_")
		if !ok {
			continue
		}
		values[strings.ToLower(name)] = value
	}
	return values, nil
}

// UserConfigDir returns $XDG_CONFIG_HOME/plotpipe, falling back to
// ~/.config/plotpipe.
func UserConfigDir() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		configHome = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configHome, "plotpipe"), nil
}

// ParseTimeout accepts a Go duration ("1m30s") or a plain number of
// seconds ("2.5"). Empty and zero disable the timeout.
func ParseTimeout(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		if secs < 0 {
			return 0, fmt.Errorf("negative timeout %q", s)
		}
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative timeout %q", s)
	}
	return d, nil
}
