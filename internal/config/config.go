// Package config loads simctl settings from defaults, an optional YAML file,
// an optional .env file and the process environment, in that order.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL = "https://n10s.net"
	DefaultFile    = "simctl.yaml"
	DefaultEnvFile = ".env"
)

// Names of the environment variables commands may require.
const (
	EnvBaseURL  = "BASE_URL"
	EnvAPIKey   = "API_KEY"
	EnvDistrKey = "DISTR_KEY"
	EnvProduct  = "PRODUCT"
)

// ErrMissingEnv is the cause of every MissingEnvError.
var ErrMissingEnv = errors.New("missing env var")

// MissingEnvError names a required setting that was empty after loading.
type MissingEnvError struct {
	Name string
}

func (e *MissingEnvError) Error() string { return "missing env var: " + e.Name }

func (e *MissingEnvError) Is(target error) bool { return target == ErrMissingEnv }

type Config struct {
	BaseURL     string        `yaml:"base_url" env:"BASE_URL"`
	APIKey      string        `yaml:"api_key" env:"API_KEY"`
	DistrKey    string        `yaml:"distr_key" env:"DISTR_KEY"`
	Product     string        `yaml:"product" env:"PRODUCT"`
	DataDir     string        `yaml:"data_dir" env:"SIMCTL_DATA_DIR"`
	LogLevel    string        `yaml:"log_level" env:"SIMCTL_LOG_LEVEL"`
	RenderStyle string        `yaml:"render_style" env:"SIMCTL_RENDER_STYLE"`
	HTTPTimeout time.Duration `yaml:"http_timeout" env:"SIMCTL_HTTP_TIMEOUT"`
	Stream      StreamConfig  `yaml:"stream"`
}

type StreamConfig struct {
	Interval     time.Duration `yaml:"interval" env:"SIMCTL_STREAM_INTERVAL"`
	CloseTimeout time.Duration `yaml:"close_timeout" env:"SIMCTL_STREAM_CLOSE_TIMEOUT"`
}

// Options selects the files Load reads. An empty ConfigFile means the
// default file, which may be absent; a named file must exist.
type Options struct {
	ConfigFile string
	EnvFile    string
}

func defaultConfig() *Config {
	return &Config{
		BaseURL:     DefaultBaseURL,
		LogLevel:    "info",
		RenderStyle: "auto",
		HTTPTimeout: 30 * time.Second,
		Stream: StreamConfig{
			Interval:     3 * time.Second,
			CloseTimeout: 2 * time.Second,
		},
	}
}

func Load(opts Options) (*Config, error) {
	cfg := defaultConfig()

	path, required := opts.ConfigFile, true
	if path == "" {
		path, required = DefaultFile, false
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, eris.Wrapf(err, "parse config %s", path)
		}
	case errors.Is(err, fs.ErrNotExist) && !required:
	default:
		return nil, eris.Wrapf(err, "read config %s", path)
	}

	envFile, required := opts.EnvFile, true
	if envFile == "" {
		envFile, required = DefaultEnvFile, false
	}
	// godotenv.Load leaves variables that are already set untouched.
	if err := godotenv.Load(envFile); err != nil {
		if required || !errors.Is(err, fs.ErrNotExist) {
			return nil, eris.Wrapf(err, "load env file %s", envFile)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, eris.Wrap(err, "parse env")
	}

	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	c.BaseURL = strings.TrimSuffix(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.APIKey = strings.TrimSpace(c.APIKey)
	c.DistrKey = strings.TrimSpace(c.DistrKey)
	c.Product = strings.TrimSpace(c.Product)
	c.DataDir = strings.TrimSpace(c.DataDir)
	c.LogLevel = strings.TrimSpace(c.LogLevel)
	c.RenderStyle = strings.TrimSpace(c.RenderStyle)
	if c.Stream.Interval <= 0 {
		c.Stream.Interval = 3 * time.Second
	}
}

// Require returns the value of the named setting, or a MissingEnvError when
// it is empty.
func (c *Config) Require(name string) (string, error) {
	var v string
	switch name {
	case EnvBaseURL:
		v = c.BaseURL
	case EnvAPIKey:
		v = c.APIKey
	case EnvDistrKey:
		v = c.DistrKey
	case EnvProduct:
		v = c.Product
	default:
		v = strings.TrimSpace(os.Getenv(name))
	}
	if v == "" {
		return "", &MissingEnvError{Name: name}
	}
	return v, nil
}

// RequireAll checks every name and reports the first one missing.
func (c *Config) RequireAll(names ...string) error {
	for _, name := range names {
		if _, err := c.Require(name); err != nil {
			return err
		}
	}
	return nil
}
