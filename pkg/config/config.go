package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ProjectFiles are the config file names LoadProject looks for, in order.
var ProjectFiles = []string{"pricing.yaml", "pricing.yml", "pricing.toml"}

// Load reads a pricing configuration from a YAML or TOML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data, filepath.Ext(path))
}

// Parse decodes configuration bytes. The format is picked from ext
// (".toml" for TOML, anything else is YAML).
func Parse(data []byte, ext string) (*Config, error) {
	var cfg Config
	switch strings.ToLower(ext) {
	case ".toml":
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config TOML: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config YAML: %w", err)
		}
	}
	return &cfg, nil
}

// LoadProject loads the pricing configuration from a project directory.
func LoadProject(projectDir string) (*Config, error) {
	path, err := FindProjectFile(projectDir, ProjectFiles)
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// FindProjectFile returns the first of names present in dir.
func FindProjectFile(dir string, names []string) (string, error) {
	for _, name := range names {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("checking %s: %w", p, err)
		}
	}
	return "", fmt.Errorf("no %s in %s: %w", strings.Join(names, ", "), dir, os.ErrNotExist)
}

// Save writes the configuration as TOML when path ends in .toml and as YAML
// otherwise.
func Save(path string, cfg *Config) error {
	var buf bytes.Buffer
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return fmt.Errorf("encoding config TOML: %w", err)
		}
	} else {
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("encoding config YAML: %w", err)
		}
		buf.Write(data)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
