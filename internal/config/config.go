// Package config loads .blogflow/config.yaml, applies environment overrides
// and validates the result.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jorge-barreto/blogflow/internal/pipeline"
)

const (
	Dir        = ".blogflow"
	ConfigFile = "config.yaml"
	EnvFile    = ".env"
)

type Endpoints struct {
	Discovery    string `yaml:"discovery" validate:"required,url"`
	Clustering   string `yaml:"clustering" validate:"required,url"`
	Titles       string `yaml:"titles" validate:"required,url"`
	Outline      string `yaml:"outline" validate:"required,url"`
	FinalArticle string `yaml:"final_article" validate:"required,url"`
}

type Discovery struct {
	Language string `yaml:"language"`
	Country  string `yaml:"country"`
	Depth    int    `yaml:"depth" validate:"gte=0,lte=5"`
	Limit    int    `yaml:"limit" validate:"gte=0,lte=1000"`
}

type Retry struct {
	Max int `yaml:"max" validate:"gte=0,lte=10"`
}

type Breaker struct {
	MaxFailures uint32 `yaml:"max-failures"`
	Cooldown    int    `yaml:"cooldown" validate:"gte=0"` // seconds
}

type Store struct {
	Driver string `yaml:"driver" validate:"omitempty,oneof=sqlite3 postgres"`
	DSN    string `yaml:"dsn"`
}

type User struct {
	ID           string `yaml:"id"`
	SessionToken string `yaml:"session-token"`
}

type Log struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=console json"`
}

type Metrics struct {
	Addr string `yaml:"addr" validate:"omitempty,hostname_port"`
}

type Config struct {
	Name         string            `yaml:"name"`
	Endpoints    Endpoints         `yaml:"endpoints"`
	Timeouts     map[string]int    `yaml:"timeouts"` // seconds, keyed by stage
	Headers      map[string]string `yaml:"headers"`
	Discovery    Discovery         `yaml:"discovery"`
	Retry        Retry             `yaml:"retry"`
	Breaker      Breaker           `yaml:"breaker"`
	Store        Store             `yaml:"store"`
	User         User              `yaml:"user"`
	Log          Log               `yaml:"log"`
	Metrics      Metrics           `yaml:"metrics"`
	ArtifactsDir string            `yaml:"artifacts-dir"`
}

// Path returns the config file path under projectRoot.
func Path(projectRoot string) string {
	return filepath.Join(projectRoot, Dir, ConfigFile)
}

// LoadEnv loads projectRoot/.env into the process environment. Variables
// already set win. A missing file is not an error.
func LoadEnv(projectRoot string) error {
	err := godotenv.Load(filepath.Join(projectRoot, EnvFile))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config: loading %s: %w", EnvFile, err)
	}
	return nil
}

// Load reads a YAML config file, applies environment overrides and returns
// a validated Config.
func Load(path, projectRoot string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	ApplyEnv(&cfg, os.LookupEnv)
	if err := Validate(&cfg, projectRoot); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyEnv overrides config values from BLOGFLOW_* variables.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set("BLOGFLOW_USER_ID", &cfg.User.ID)
	set("BLOGFLOW_SESSION_TOKEN", &cfg.User.SessionToken)
	set("BLOGFLOW_STORE_DRIVER", &cfg.Store.Driver)
	set("BLOGFLOW_STORE_DSN", &cfg.Store.DSN)
	set("BLOGFLOW_LOG_LEVEL", &cfg.Log.Level)
	for _, st := range pipeline.Stages {
		set("BLOGFLOW_"+strings.ToUpper(string(st))+"_URL", cfg.Endpoints.field(st))
	}
	if v, ok := lookup("BLOGFLOW_API_KEY"); ok && v != "" {
		if cfg.Headers == nil {
			cfg.Headers = map[string]string{}
		}
		cfg.Headers["Authorization"] = "Bearer " + v
	}
}

func (e *Endpoints) field(st pipeline.Stage) *string {
	switch st {
	case pipeline.StageDiscovery:
		return &e.Discovery
	case pipeline.StageClustering:
		return &e.Clustering
	case pipeline.StageTitles:
		return &e.Titles
	case pipeline.StageOutline:
		return &e.Outline
	default:
		return &e.FinalArticle
	}
}

// EndpointMap returns the endpoint URL of every stage.
func (c *Config) EndpointMap() map[pipeline.Stage]string {
	out := make(map[pipeline.Stage]string, len(pipeline.Stages))
	for _, st := range pipeline.Stages {
		out[st] = *c.Endpoints.field(st)
	}
	return out
}

// TimeoutMap returns the configured per-stage request bounds.
func (c *Config) TimeoutMap() map[pipeline.Stage]time.Duration {
	out := make(map[pipeline.Stage]time.Duration, len(c.Timeouts))
	for name, secs := range c.Timeouts {
		if st, err := pipeline.ParseStage(name); err == nil && secs > 0 {
			out[st] = time.Duration(secs) * time.Second
		}
	}
	return out
}

// BreakerSettings converts the breaker section for the pipeline client.
func (c *Config) BreakerSettings() pipeline.BreakerSettings {
	return pipeline.BreakerSettings{
		MaxFailures: c.Breaker.MaxFailures,
		Cooldown:    time.Duration(c.Breaker.Cooldown) * time.Second,
	}
}
