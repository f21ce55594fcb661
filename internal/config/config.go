package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the optional wrench configuration file.
type Config struct {
	Defaults DefaultsConfig `toml:"defaults,omitempty"`
	Filter   FilterConfig   `toml:"filter,omitempty"`
}

// DefaultsConfig holds persistent flag defaults. A nil field means the
// flag's built-in default applies.
type DefaultsConfig struct {
	ExcludeHidden *bool   `toml:"exclude_hidden"`
	NativeOrder   *bool   `toml:"native_order"`
	Async         *bool   `toml:"async"`
	Verify        *bool   `toml:"verify"`
	BWLimit       *string `toml:"bwlimit"`
	PreserveTimes *bool   `toml:"preserve_times"`
}

// FilterConfig holds rules applied to every filtered command before any
// given on the command line.
type FilterConfig struct {
	Exclude []string `toml:"exclude,omitempty"`
	Include []string `toml:"include,omitempty"`
	File    *string  `toml:"file"`
}

// Path returns the resolved path to the config file.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "wrench", "config.toml")
}

// Load reads the config file from the XDG path. Returns a zero Config
// (no error) if the file does not exist. Config is always optional.
func Load() (Config, error) {
	path := Path()
	if path == "" {
		return Config{}, nil
	}
	return LoadFile(path)
}

// LoadFile reads the config file at path. A missing file yields a zero
// Config; unknown keys are an error so typos do not go unnoticed.
func LoadFile(path string) (Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	return cfg, nil
}

// Encode writes cfg as TOML. Unset fields are omitted.
func Encode(w io.Writer, cfg Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}
