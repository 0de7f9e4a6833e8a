// Package config loads server settings.
//
// Sources are applied in order, later ones win:
// built-in defaults, TOML file (-config flag or CREDGATE_CONFIG),
// CREDGATE_* environment variables, command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Storage drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverBolt     = "bolt"
)

// Config holds runtime settings for the credgate server
type Config struct {
	Gateway     GatewayConfig  `toml:"gateway"`
	Log         LogConfig      `toml:"log"`
	Storage     StorageConfig  `toml:"storage"`
	Server      ServerConfig   `toml:"server"`
	Password    PasswordConfig `toml:"password"`
	ConfigFile  string         `toml:"-"`
	ShowVersion bool           `toml:"-"`
}

// ServerConfig describes the HTTP listener
type ServerConfig struct {
	Address         string        `toml:"address"`
	ReadTimeout     time.Duration `toml:"read_timeout"`
	WriteTimeout    time.Duration `toml:"write_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

// StorageConfig selects the credential store.
// DSN is a file path for sqlite and bolt, a connection string for postgres.
type StorageConfig struct {
	Driver string `toml:"driver"`
	DSN    string `toml:"dsn"`
}

// GatewayConfig describes how gateway signatures are checked
type GatewayConfig struct {
	PublicKeyPath string `toml:"public_key_path"`
	Algorithm     string `toml:"algorithm"`
}

// PasswordConfig tunes the password hasher
type PasswordConfig struct {
	BcryptCost int `toml:"bcrypt_cost"`
}

// LogConfig tunes the slog handler
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns development defaults
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Address:         ":5000",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Storage: StorageConfig{
			Driver: DriverSQLite,
			DSN:    "users.db",
		},
		Gateway: GatewayConfig{
			PublicKeyPath: "public.pem",
			Algorithm:     "RS256",
		},
		Password: PasswordConfig{
			BcryptCost: 10,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds a Config from defaults, an optional TOML file, the environment
// and args (without the program name). getenv is usually os.Getenv.
func Load(args []string, getenv func(string) string) (*Config, error) {
	cfg := Default()

	fs, flags := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.ConfigFile = getenv("CREDGATE_CONFIG")
	if flags.configFile != "" {
		cfg.ConfigFile = flags.configFile
	}

	if cfg.ConfigFile != "" {
		if _, err := toml.DecodeFile(cfg.ConfigFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file %s: %w", cfg.ConfigFile, err)
		}
	}

	if err := applyEnv(cfg, getenv); err != nil {
		return nil, err
	}

	flags.apply(fs, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Address == "" {
		errs = append(errs, errors.New("server address is required"))
	}

	switch c.Storage.Driver {
	case DriverSQLite, DriverPostgres, DriverBolt:
	default:
		errs = append(errs, fmt.Errorf("unknown storage driver %q", c.Storage.Driver))
	}

	if c.Storage.DSN == "" {
		errs = append(errs, errors.New("storage dsn is required"))
	}

	if c.Gateway.PublicKeyPath == "" {
		errs = append(errs, errors.New("gateway public key path is required"))
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	strs := map[string]*string{
		"CREDGATE_ADDRESS":         &cfg.Server.Address,
		"CREDGATE_STORAGE_DRIVER":  &cfg.Storage.Driver,
		"CREDGATE_STORAGE_DSN":     &cfg.Storage.DSN,
		"CREDGATE_PUBLIC_KEY_PATH": &cfg.Gateway.PublicKeyPath,
		"CREDGATE_SIGNATURE_ALG":   &cfg.Gateway.Algorithm,
		"CREDGATE_LOG_LEVEL":       &cfg.Log.Level,
		"CREDGATE_LOG_FORMAT":      &cfg.Log.Format,
	}
	for name, dst := range strs {
		if v := getenv(name); v != "" {
			*dst = v
		}
	}

	if v := getenv("CREDGATE_BCRYPT_COST"); v != "" {
		cost, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid CREDGATE_BCRYPT_COST: %w", err)
		}
		cfg.Password.BcryptCost = cost
	}

	return nil
}

// flagValues keeps parsed flags until the file and env layers are applied
type flagValues struct {
	configFile   string
	address      string
	driver       string
	dsn          string
	publicKey    string
	algorithm    string
	logLevel     string
	logFormat    string
	bcryptCost   int
	showVersion  bool
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func newFlagSet() (*flag.FlagSet, *flagValues) {
	v := &flagValues{}
	fs := flag.NewFlagSet("credgate-server", flag.ContinueOnError)

	fs.StringVar(&v.configFile, "config", "", "path to TOML config file")
	fs.StringVar(&v.address, "addr", "", "HTTP listen address")
	fs.StringVar(&v.driver, "storage", "", "storage driver: sqlite, postgres or bolt")
	fs.StringVar(&v.dsn, "dsn", "", "storage DSN (file path for sqlite/bolt)")
	fs.StringVar(&v.publicKey, "public-key", "", "gateway public key PEM file")
	fs.StringVar(&v.algorithm, "alg", "", "gateway signature algorithm (RS256, PS256, ...)")
	fs.StringVar(&v.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&v.logFormat, "log-format", "", "log format: text or json")
	fs.IntVar(&v.bcryptCost, "bcrypt-cost", 0, "bcrypt cost")
	fs.DurationVar(&v.readTimeout, "read-timeout", 0, "HTTP read timeout")
	fs.DurationVar(&v.writeTimeout, "write-timeout", 0, "HTTP write timeout")
	fs.BoolVar(&v.showVersion, "version", false, "Show version information")

	return fs, v
}

// apply copies only explicitly set flags into cfg
func (v *flagValues) apply(fs *flag.FlagSet, cfg *Config) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Server.Address = v.address
		case "storage":
			cfg.Storage.Driver = v.driver
		case "dsn":
			cfg.Storage.DSN = v.dsn
		case "public-key":
			cfg.Gateway.PublicKeyPath = v.publicKey
		case "alg":
			cfg.Gateway.Algorithm = v.algorithm
		case "log-level":
			cfg.Log.Level = v.logLevel
		case "log-format":
			cfg.Log.Format = v.logFormat
		case "bcrypt-cost":
			cfg.Password.BcryptCost = v.bcryptCost
		case "read-timeout":
			cfg.Server.ReadTimeout = v.readTimeout
		case "write-timeout":
			cfg.Server.WriteTimeout = v.writeTimeout
		case "version":
			cfg.ShowVersion = v.showVersion
		}
	})
}
