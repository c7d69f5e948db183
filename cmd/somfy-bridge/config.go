package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	somfy "github.com/caarlos0/somfy-bridge"
	"gopkg.in/yaml.v3"
)

type Config struct {
	URL          string        `env:"SOMFY_URL"`
	Password     string        `env:"SOMFY_PASSWORD"`
	File         string        `env:"CONFIG"          envDefault:"config.json"`
	Address      string        `env:"LISTEN"          envDefault:":5000"`
	Timeout      time.Duration `env:"TIMEOUT"         envDefault:"30s"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT"    envDefault:"10s"`
	ProbeTimeout time.Duration `env:"PROBE_TIMEOUT"   envDefault:"1m"`
	Debug        bool          `env:"DEBUG"`

	Codes somfy.Codebook
}

// fileConfig is the config.json layout: panel url, password and the
// authentication card codes.
type fileConfig struct {
	URL      string            `json:"url"      yaml:"url"`
	Password string            `json:"password" yaml:"password"`
	Codes    map[string]string `json:"codes"    yaml:"codes"`
}

func loadConfig(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return cfg, err
	}

	file, err := readConfigFile(cfg.File)
	if err != nil {
		return cfg, err
	}
	cfg.merge(file)

	return cfg, cfg.session().Validate()
}

func readConfigFile(path string) (fileConfig, error) {
	var file fileConfig
	bts, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return file, nil
	}
	if err != nil {
		return file, fmt.Errorf("could not read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(bts, &file)
	default:
		err = json.Unmarshal(bts, &file)
	}
	if err != nil {
		return file, fmt.Errorf("could not parse config file %s: %w", path, err)
	}
	return file, nil
}

// merge fills in whatever the environment did not set.
func (c *Config) merge(file fileConfig) {
	if c.URL == "" {
		c.URL = file.URL
	}
	if c.Password == "" {
		c.Password = file.Password
	}
	c.Codes = somfy.Codebook(file.Codes)
}

func (c Config) session() somfy.Config {
	return somfy.Config{
		URL:      c.URL,
		Password: c.Password,
		Codes:    c.Codes,
		Timeout:  c.Timeout,

		ReadTimeout: c.ReadTimeout,
	}
}

func (c Config) panelHost() string {
	u, err := url.Parse(c.URL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
