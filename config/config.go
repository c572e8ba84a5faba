package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/poscalc/risk"
)

// EnvPrefix is prepended to environment overrides, e.g. POSCALC_DEFAULTS_FEE_RATE.
const EnvPrefix = "POSCALC"

// Config is the complete application configuration.
type Config struct {
	Defaults Preferences   `json:"defaults" yaml:"defaults" mapstructure:"defaults"`
	Journal  JournalConfig `json:"journal" yaml:"journal" mapstructure:"journal"`
	Server   ServerConfig  `json:"server" yaml:"server" mapstructure:"server"`
	Log      LogConfig     `json:"log" yaml:"log" mapstructure:"log"`
}

// Preferences seed the stop-loss amount and fee rate fields.
type Preferences struct {
	StopLossAmount float64 `json:"stop_loss_amount" yaml:"stop_loss_amount" mapstructure:"stop_loss_amount"`
	FeeRate        float64 `json:"fee_rate" yaml:"fee_rate" mapstructure:"fee_rate"` // percent
}

// Text renders the preferences the way a user would type them.
func (p Preferences) Text() (amount, feeRate string) {
	return strconv.FormatFloat(p.StopLossAmount, 'f', -1, 64),
		strconv.FormatFloat(p.FeeRate, 'f', -1, 64)
}

// JournalConfig selects where calculations are recorded.
type JournalConfig struct {
	Type    string `json:"type" yaml:"type" mapstructure:"type"` // "none", "csv" or "sqlite"
	DBPath  string `json:"db_path,omitempty" yaml:"db_path,omitempty" mapstructure:"db_path"`
	CSVPath string `json:"csv_path,omitempty" yaml:"csv_path,omitempty" mapstructure:"csv_path"`
}

// Enabled reports whether calculations should be journaled.
func (j JournalConfig) Enabled() bool {
	return j.Type != "" && j.Type != "none"
}

// ServerConfig contains the HTTP listener settings.
type ServerConfig struct {
	Addr            string `json:"addr" yaml:"addr" mapstructure:"addr"`
	ShutdownTimeout string `json:"shutdown_timeout" yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"` // e.g. "10s"
}

// ParseShutdownTimeout converts the timeout string to time.Duration.
func (s ServerConfig) ParseShutdownTimeout() (time.Duration, error) {
	if s.ShutdownTimeout == "" {
		return 0, nil
	}
	return time.ParseDuration(s.ShutdownTimeout)
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level       string `json:"level" yaml:"level" mapstructure:"level"` // debug|info|warn|error
	Development bool   `json:"development" yaml:"development" mapstructure:"development"`
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Defaults: Preferences{
			StopLossAmount: risk.DefaultStopLossAmount,
			FeeRate:        risk.DefaultFeeRate,
		},
		Journal: JournalConfig{
			Type: "none",
		},
		Server: ServerConfig{
			Addr:            "127.0.0.1:8089",
			ShutdownTimeout: "10s",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultPath is where the config lives when --config is not given.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "poscalc.yaml"
	}
	return filepath.Join(dir, "poscalc", "config.yaml")
}

// LoadFromFile loads configuration from a file (JSON or YAML based on
// extension) and applies POSCALC_* environment overrides.
func LoadFromFile(path string) (*Config, error) {
	return load(path, true)
}

func load(path string, withEnv bool) (*Config, error) {
	return build(path, true, withEnv)
}

// build merges defaults, the file (when readFile) and env overrides.
func build(path string, readFile, withEnv bool) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())
	if withEnv {
		v.SetEnvPrefix(EnvPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}

	if readFile {
		v.SetConfigFile(path)
		v.SetConfigType(formatOf(path))
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("defaults.stop_loss_amount", d.Defaults.StopLossAmount)
	v.SetDefault("defaults.fee_rate", d.Defaults.FeeRate)
	v.SetDefault("journal.type", d.Journal.Type)
	v.SetDefault("journal.db_path", d.Journal.DBPath)
	v.SetDefault("journal.csv_path", d.Journal.CSVPath)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.development", d.Log.Development)
}

func formatOf(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return "json"
	}
	return "yaml"
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if formatOf(path) == "json" {
		data, err = json.MarshalIndent(c, "", "  ")
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.Defaults.Validate(); err != nil {
		return err
	}
	switch c.Journal.Type {
	case "", "none":
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	case "csv":
		if c.Journal.CSVPath == "" {
			return fmt.Errorf("journal csv_path required for CSV type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if _, err := c.Server.ParseShutdownTimeout(); err != nil {
		return fmt.Errorf("server.shutdown_timeout: %w", err)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug|info|warn|error")
	}
	return nil
}

// Validate only requires finite numbers; sign is left to the calculator.
func (p Preferences) Validate() error {
	if math.IsNaN(p.StopLossAmount) || math.IsInf(p.StopLossAmount, 0) {
		return fmt.Errorf("defaults.stop_loss_amount must be a finite number")
	}
	if math.IsNaN(p.FeeRate) || math.IsInf(p.FeeRate, 0) {
		return fmt.Errorf("defaults.fee_rate must be a finite number")
	}
	return nil
}

// FileStore is the persisted preferences store backed by a config file.
// A missing file reads as Default() plus env overrides.
type FileStore struct {
	Path string

	mu sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load returns the effective configuration, env overrides included.
func (s *FileStore) Load() (*Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(true)
}

func (s *FileStore) read(withEnv bool) (*Config, error) {
	if _, err := os.Stat(s.Path); errors.Is(err, fs.ErrNotExist) {
		return build(s.Path, false, withEnv)
	}
	return load(s.Path, withEnv)
}

// Defaults returns the stored default stop-loss amount and fee rate.
func (s *FileStore) Defaults() (Preferences, error) {
	cfg, err := s.Load()
	if err != nil {
		return Preferences{}, err
	}
	return cfg.Defaults, nil
}

// SetDefaults writes new defaults, keeping the rest of the file as is.
func (s *FileStore) SetDefaults(p Preferences) error {
	if err := p.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.read(false)
	if err != nil {
		return err
	}
	cfg.Defaults = p
	return cfg.SaveToFile(s.Path)
}
