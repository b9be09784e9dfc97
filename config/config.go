// Package config loads the service configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// EnvPath names the environment variable that overrides the config file location.
const EnvPath = "EXAMSCORE_CONFIG"

type Config struct {
	Http struct {
		Port           int           `yaml:"port"`
		Timeout        time.Duration `yaml:"timeout"`
		AllowedOrigins []string      `yaml:"allowed_origins"`
	} `yaml:"http"`
	Model struct {
		Path      string `yaml:"path"`
		Watch     bool   `yaml:"watch"`
		CacheSize int    `yaml:"cache_size"`
	} `yaml:"model"`
	Log struct {
		Level      string `yaml:"level"`
		Format     string `yaml:"format"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
	} `yaml:"log"`
}

func Default() *Config {
	var c Config
	c.Http.Port = 8501
	c.Http.Timeout = 30 * time.Second
	c.Http.AllowedOrigins = []string{"*"}
	c.Model.Path = "linear_regression_model.json"
	c.Model.CacheSize = 256
	c.Log.Level = "info"
	c.Log.Format = "json"
	c.Log.MaxSizeMB = 100
	c.Log.MaxBackups = 3
	return &c
}

// Path returns the config file to read: $EXAMSCORE_CONFIG or config.yaml.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return "config.yaml"
}

// Load decodes path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	config := Default()
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(config); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) Validate() error {
	if c.Http.Port <= 0 || c.Http.Port > 65535 {
		return fmt.Errorf("http.port out of range: %d", c.Http.Port)
	}
	if c.Http.Timeout <= 0 {
		return errors.New("http.timeout must be positive")
	}
	if c.Model.Path == "" {
		return errors.New("model.path is required")
	}
	if c.Model.CacheSize < 0 {
		return errors.New("model.cache_size must not be negative")
	}
	return nil
}
