package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jorge-barreto/blogflow/internal/pipeline"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate checks the config for errors and sets defaults. Relative paths
// are resolved against projectRoot.
func Validate(cfg *Config, projectRoot string) error {
	if cfg.Name == "" {
		return fmt.Errorf("config: 'name' is required")
	}

	if err := validate.Struct(cfg); err != nil {
		return structError(err)
	}

	for name, secs := range cfg.Timeouts {
		if _, err := pipeline.ParseStage(name); err != nil {
			return fmt.Errorf("config: timeouts: %w", err)
		}
		if secs < 0 {
			return fmt.Errorf("config: timeouts: %s must be >= 0", name)
		}
	}
	for k := range cfg.Headers {
		if strings.TrimSpace(k) == "" {
			return fmt.Errorf("config: headers: empty header name")
		}
	}

	if cfg.Discovery.Language == "" {
		cfg.Discovery.Language = "en"
	}
	if cfg.Discovery.Country == "" {
		cfg.Discovery.Country = "us"
	}
	if cfg.Discovery.Depth == 0 {
		cfg.Discovery.Depth = 1
	}
	if cfg.Discovery.Limit == 0 {
		cfg.Discovery.Limit = 100
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = "sqlite3"
	}
	if cfg.Store.DSN == "" {
		if cfg.Store.Driver != "sqlite3" {
			return fmt.Errorf("config: store: 'dsn' is required for driver %q", cfg.Store.Driver)
		}
		cfg.Store.DSN = filepath.Join(Dir, "articles.db")
	}
	if cfg.Store.Driver == "sqlite3" && cfg.Store.DSN != ":memory:" {
		cfg.Store.DSN = resolve(projectRoot, cfg.Store.DSN)
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.ArtifactsDir == "" {
		cfg.ArtifactsDir = filepath.Join(Dir, "artifacts")
	}
	cfg.ArtifactsDir = resolve(projectRoot, cfg.ArtifactsDir)
	return nil
}

func resolve(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

// structError turns validator failures into a config: message naming the
// first offending field.
func structError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("config: %w", err)
	}
	e := verrs[0]
	field := e.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch e.Tag() {
	case "required":
		return fmt.Errorf("config: '%s' is required", field)
	case "url":
		return fmt.Errorf("config: %s: %q is not a valid URL", field, e.Value())
	case "oneof":
		return fmt.Errorf("config: %s: %q must be one of: %s", field, e.Value(), e.Param())
	case "hostname_port":
		return fmt.Errorf("config: %s: %q must be host:port", field, e.Value())
	default:
		return fmt.Errorf("config: %s: failed %s=%s (got %v)", field, e.Tag(), e.Param(), e.Value())
	}
}
