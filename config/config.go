package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"loom/tracing"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"
)

// FileName is looked for in the working directory; absence is fine, the
// environment alone is a complete configuration.
const FileName = "loom.yaml"

type Config struct {
	Endpoint     string `mapstructure:"endpoint"`
	Insecure     bool   `mapstructure:"insecure"`
	IngestKey    string `mapstructure:"ingest_key"`
	CACert       string `mapstructure:"ca_cert"`
	SkipVerify   bool   `mapstructure:"skip_verify"`
	PreviewBound int    `mapstructure:"preview_bound"`
	ArchivePath  string `mapstructure:"archive"`
	PlannerModel string `mapstructure:"planner_model"`
	WriterModel  string `mapstructure:"writer_model"`
	LogLevel     string `mapstructure:"log_level"`
}

// CreateConfig resolves configuration in increasing precedence: defaults,
// then loom.yaml when present, then environment variables.
func CreateConfig(ctx context.Context) (*Config, error) {
	cfg := &Config{
		PlannerModel: "gemini-2.5-pro",
		WriterModel:  "gemini-2.5-flash",
		LogLevel:     "info",
	}

	if err := fromFile(cfg, FileName); err != nil {
		return nil, err
	}

	if err := fromEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func fromFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	values := map[string]any{}
	if err := yaml.Unmarshal(raw, &values); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := mapstructure.Decode(values, cfg); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}

	return nil
}

func fromEnv(cfg *Config) error {
	setString(&cfg.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	setString(&cfg.IngestKey, "LOOM_INGEST_KEY")
	setString(&cfg.CACert, "LOOM_CA_CERT")
	setString(&cfg.ArchivePath, "LOOM_ARCHIVE")
	setString(&cfg.PlannerModel, "LOOM_PLANNER_MODEL")
	setString(&cfg.WriterModel, "LOOM_WRITER_MODEL")
	setString(&cfg.LogLevel, "LOOM_LOG_LEVEL")

	if err := setBool(&cfg.Insecure, "LOOM_INSECURE"); err != nil {
		return err
	}
	if err := setBool(&cfg.SkipVerify, "LOOM_SKIP_VERIFY"); err != nil {
		return err
	}

	if val := os.Getenv("LOOM_PREVIEW_BOUND"); val != "" {
		bound, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("LOOM_PREVIEW_BOUND: %w", err)
		}
		cfg.PreviewBound = bound
	}

	return nil
}

func setString(target *string, name string) {
	if val := os.Getenv(name); val != "" {
		*target = val
	}
}

func setBool(target *bool, name string) error {
	val := os.Getenv(name)
	if val == "" {
		return nil
	}

	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	*target = parsed
	return nil
}

func (c *Config) validate() error {
	if c.IngestKey != "" && c.Insecure {
		return errors.New("an ingestion key requires a TLS endpoint, unset LOOM_INSECURE")
	}

	if c.PreviewBound < 0 {
		return errors.New("preview_bound must be positive")
	}

	return nil
}

// Tracing maps the resolved configuration onto the span pipeline's config.
func (c *Config) Tracing(serviceName, version string) tracing.Config {
	tc := tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: version,
		Endpoint:       c.Endpoint,
		Insecure:       c.Insecure,
		PreviewBound:   c.PreviewBound,
		TLS: tracing.TLSConfig{
			CACertPath: c.CACert,
			SkipVerify: c.SkipVerify,
		},
	}

	if c.IngestKey != "" {
		tc.Headers = map[string]string{"loom-ingestion-key": c.IngestKey}
	}

	return tc
}

// Level parses the configured log verbosity, defaulting to info on junk so a
// typo never disables logging entirely.
func (c *Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}

	return level
}
