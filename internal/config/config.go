// Package config loads server settings from the environment, with an
// optional .env file underneath.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/multierr"
)

type SubmitMode string

const (
	SubmitLog  SubmitMode = "log"
	SubmitHTTP SubmitMode = "http"
	SubmitNATS SubmitMode = "nats"
)

type Config struct {
	Addr          string        `env:"REG_ADDR"           envDefault:":8080"`
	LogLevel      string        `env:"REG_LOG_LEVEL"      envDefault:"info"`
	DevLog        bool          `env:"REG_DEV_LOG"`
	DatabaseURL   string        `env:"REG_DATABASE_URL"`
	CatalogFile   string        `env:"REG_CATALOG_FILE"`
	FlowsFile     string        `env:"REG_FLOWS_FILE"`
	SubmitMode    SubmitMode    `env:"REG_SUBMIT_MODE"    envDefault:"log"`
	SubmitURL     string        `env:"REG_SUBMIT_URL"`
	NATSURL       string        `env:"REG_NATS_URL"`
	NATSSubject   string        `env:"REG_NATS_SUBJECT"   envDefault:"registrations"`
	SubmitTimeout time.Duration `env:"REG_SUBMIT_TIMEOUT" envDefault:"10s"`
	StrictNav     bool          `env:"REG_STRICT_NAV"`
	// IdleTimeout stops registrations nobody is attached to. Zero keeps them
	// until shutdown.
	IdleTimeout time.Duration `env:"REG_IDLE_TIMEOUT" envDefault:"30m"`
}

// Load reads the given dotenv files (missing ones are skipped) and then the
// process environment, which wins over file values.
func Load(files ...string) (Config, error) {
	vars := make(map[string]string)
	for _, f := range files {
		m, err := godotenv.Read(f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Config{}, fmt.Errorf("read %s: %w", f, err)
		}
		for k, v := range m {
			vars[k] = v
		}
	}
	for k, v := range env.ToMap(os.Environ()) {
		vars[k] = v
	}

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var err error
	switch c.SubmitMode {
	case SubmitLog:
	case SubmitHTTP:
		if c.SubmitURL == "" {
			err = multierr.Append(err, errors.New("REG_SUBMIT_URL is required for http submit mode"))
		}
	case SubmitNATS:
		if c.NATSURL == "" {
			err = multierr.Append(err, errors.New("REG_NATS_URL is required for nats submit mode"))
		}
		if c.NATSSubject == "" {
			err = multierr.Append(err, errors.New("REG_NATS_SUBJECT must not be empty"))
		}
	default:
		err = multierr.Append(err, fmt.Errorf("unknown REG_SUBMIT_MODE %q", c.SubmitMode))
	}
	if c.SubmitTimeout <= 0 {
		err = multierr.Append(err, fmt.Errorf("REG_SUBMIT_TIMEOUT must be positive, got %s", c.SubmitTimeout))
	}
	if c.IdleTimeout < 0 {
		err = multierr.Append(err, fmt.Errorf("REG_IDLE_TIMEOUT must not be negative, got %s", c.IdleTimeout))
	}
	return err
}
