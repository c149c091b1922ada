package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/bryanwahyu/bizdata-console/internal/middleware"
)

const (
	DefaultBaseURL  = "http://localhost:8081"
	DefaultPort     = 3000
	DefaultLogLevel = "info"
)

// Environment overrides, applied after the YAML file.
const (
	EnvBaseURL  = "BIZDATA_API_BASE_URL"
	EnvPort     = "BIZDATA_PORT"
	EnvLogLevel = "BIZDATA_LOG_LEVEL"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	API struct {
		BaseURL string `yaml:"baseUrl"`
	} `yaml:"api"`

	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`

	RateLimit struct {
		Capacity   int `yaml:"capacity"`
		RefillRate int `yaml:"refillRate"`
	} `yaml:"rateLimit"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowedOrigins"`
	} `yaml:"cors"`
}

// Default config kalau file tidak ada
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// Load baca file config.yaml. File yang tidak ada bukan error, semua
// nilai jatuh ke default. .env di folder yang sama dan di working dir
// dibaca dulu (best-effort), lalu env override diterapkan.
func Load(path string) (*Config, error) {
	loadEnvFiles(path)

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that have no sensible fallback.
func (c *Config) Validate() error {
	if err := middleware.ValidateBaseURL(c.API.BaseURL); err != nil {
		return fmt.Errorf("api.baseUrl: %w", err)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	return nil
}

// Addr listen address untuk http.Server
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPort, err)
		}
		c.Server.Port = port
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.RateLimit.Capacity == 0 {
		c.RateLimit.Capacity = 30
	}
	if c.RateLimit.RefillRate == 0 {
		c.RateLimit.RefillRate = 5
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	}
}

// loadEnvFiles loads .env.local then .env next to the config file and in
// the working directory. Variables already set are never overwritten.
func loadEnvFiles(configPath string) {
	dirs := []string{filepath.Dir(configPath), "."}
	seen := make(map[string]struct{})
	var files []string
	for _, dir := range dirs {
		for _, name := range []string{".env.local", ".env"} {
			candidate, err := filepath.Abs(filepath.Join(dir, name))
			if err != nil {
				continue
			}
			if _, ok := seen[candidate]; ok {
				continue
			}
			seen[candidate] = struct{}{}
			if _, err := os.Stat(candidate); err != nil {
				continue
			}
			files = append(files, candidate)
		}
	}
	if len(files) == 0 {
		return
	}
	_ = godotenv.Load(files...)
}
