// Package config loads orgchart server configuration from defaults, an
// optional YAML file, .env files, the environment and command-line flags,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/nainya/orgchart/pkg/store"
)

// EnvPrefix prefixes every environment variable the server reads
const EnvPrefix = "ORGCHART_"

// Config is the full server configuration
type Config struct {
	Server ServerConfig `yaml:"server" envPrefix:"SERVER_"`
	Store  StoreConfig  `yaml:"store" envPrefix:"STORE_"`
	Log    LogConfig    `yaml:"log" envPrefix:"LOG_"`
}

// ServerConfig holds listener settings. A MetricsPort of 0 disables the
// observability server.
type ServerConfig struct {
	GRPCPort        int           `yaml:"grpc_port" env:"GRPC_PORT"`
	MetricsPort     int           `yaml:"metrics_port" env:"METRICS_PORT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

// StoreConfig selects the state backend
type StoreConfig struct {
	Driver string `yaml:"driver" env:"DRIVER"`
	Path   string `yaml:"path" env:"PATH"`
}

// LogConfig mirrors logger.Config
type LogConfig struct {
	Level      string `yaml:"level" env:"LEVEL"`
	Pretty     bool   `yaml:"pretty" env:"PRETTY"`
	WithCaller bool   `yaml:"with_caller" env:"WITH_CALLER"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			GRPCPort:        50051,
			MetricsPort:     9090,
			ShutdownTimeout: 10 * time.Second,
		},
		Store: StoreConfig{
			Driver: store.DriverFile,
			Path:   "orgchart_data.json",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration from the process environment and args
// (without the program name)
func Load(args []string) (*Config, error) {
	return load(args, environ())
}

func environ() map[string]string {
	out := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			out[k] = v
		}
	}
	return out
}

func load(args []string, environment map[string]string) (*Config, error) {
	cfg := Default()

	fs := pflag.NewFlagSet("orgchart", pflag.ContinueOnError)
	configFile := fs.String("config", "", "Path to a YAML configuration file")
	envFiles := fs.StringSlice("env-file", []string{".env"}, "Dotenv files to read, missing files are skipped")
	grpcPort := fs.Int("grpc-port", cfg.Server.GRPCPort, "gRPC listen port")
	metricsPort := fs.Int("metrics-port", cfg.Server.MetricsPort, "Observability HTTP port (0 disables)")
	driver := fs.String("store-driver", cfg.Store.Driver, "State backend: file or sqlite")
	path := fs.String("store-path", cfg.Store.Path, "State file or database path")
	level := fs.String("log-level", cfg.Log.Level, "Log level: debug, info, warn, error")
	pretty := fs.Bool("log-pretty", cfg.Log.Pretty, "Human-readable console logs")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *configFile != "" {
		if err := loadYAML(*configFile, cfg); err != nil {
			return nil, err
		}
	}

	merged, err := withDotenv(*envFiles, environment)
	if err != nil {
		return nil, err
	}
	if err := env.ParseWithOptions(cfg, env.Options{
		Prefix:      EnvPrefix,
		Environment: merged,
	}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if fs.Changed("grpc-port") {
		cfg.Server.GRPCPort = *grpcPort
	}
	if fs.Changed("metrics-port") {
		cfg.Server.MetricsPort = *metricsPort
	}
	if fs.Changed("store-driver") {
		cfg.Store.Driver = *driver
	}
	if fs.Changed("store-path") {
		cfg.Store.Path = *path
	}
	if fs.Changed("log-level") {
		cfg.Log.Level = *level
	}
	if fs.Changed("log-pretty") {
		cfg.Log.Pretty = *pretty
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// withDotenv layers dotenv values under the real environment
func withDotenv(files []string, environment map[string]string) (map[string]string, error) {
	merged := make(map[string]string, len(environment))
	for _, file := range files {
		if _, err := os.Stat(file); errors.Is(err, os.ErrNotExist) {
			continue
		}
		values, err := godotenv.Read(file)
		if err != nil {
			return nil, fmt.Errorf("read env file %s: %w", file, err)
		}
		for k, v := range values {
			merged[k] = v
		}
	}
	for k, v := range environment {
		merged[k] = v
	}
	return merged, nil
}

// Validate rejects configurations the server cannot start with
func (c *Config) Validate() error {
	var errs []error
	if c.Server.GRPCPort < 1 || c.Server.GRPCPort > 65535 {
		errs = append(errs, fmt.Errorf("grpc port %d out of range", c.Server.GRPCPort))
	}
	if c.Server.MetricsPort < 0 || c.Server.MetricsPort > 65535 {
		errs = append(errs, fmt.Errorf("metrics port %d out of range", c.Server.MetricsPort))
	}
	if c.Server.MetricsPort != 0 && c.Server.MetricsPort == c.Server.GRPCPort {
		errs = append(errs, errors.New("grpc and metrics ports must differ"))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("shutdown timeout must be positive"))
	}
	switch c.Store.Driver {
	case store.DriverFile, store.DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.Store.Driver))
	}
	if strings.TrimSpace(c.Store.Path) == "" {
		errs = append(errs, errors.New("store path is required"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
