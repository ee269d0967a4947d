// Package cliconfig loads the environment shared by the i18n command line
// tools and builds their logger.
package cliconfig

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/known-socially/i18n"
	"github.com/known-socially/i18n/locales"
)

// Config is read from the environment (and an optional .env file).
type Config struct {
	// Directory of locale resources; the embedded locales are used when empty.
	Dir         string   `env:"I18N_DIR"`
	DefaultLang string   `env:"I18N_DEFAULT_LANG" envDefault:"en"`
	Languages   []string `env:"I18N_LANGUAGES" envSeparator:","`
	Env         string   `env:"I18N_ENV" envDefault:"development"`
	LogLevel    string   `env:"I18N_LOG_LEVEL" envDefault:"warn"`
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	// .env is optional; variables may come from the environment alone.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("cliconfig: %w", err)
	}
	return cfg, nil
}

// FS returns the locale file system the tools read from.
func (c *Config) FS() fs.FS {
	if c.Dir == "" {
		return locales.FS
	}
	return os.DirFS(c.Dir)
}

// Logger builds a production JSON logger when Env is "production" and a
// console logger otherwise.
func (c *Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("cliconfig: I18N_LOG_LEVEL: %w", err)
	}

	var zc zap.Config
	if c.Env == "production" {
		zc = zap.NewProductionConfig()
		zc.EncoderConfig.TimeKey = "timestamp"
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

// Bundle creates a Bundle over FS. When no languages are configured every
// resource found in the directory is supported.
func (c *Config) Bundle(logger *zap.Logger) (*i18n.Bundle, error) {
	fsys := c.FS()
	langs := c.Languages
	if len(langs) == 0 {
		found, err := i18n.DiscoverLanguages(fsys)
		if err != nil {
			return nil, fmt.Errorf("cliconfig: listing locales: %w", err)
		}
		langs = found
	}
	return i18n.New(i18n.Config{
		DefaultLang: c.DefaultLang,
		Languages:   langs,
	}, i18n.NewFSLoader(fsys), i18n.WithLogger(logger))
}
