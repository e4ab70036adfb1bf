package config

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/riskcore/market"
	"github.com/rustyeddy/riskcore/risk"
)

// Config is the complete riskcore configuration
type Config struct {
	Limits           risk.Limits        `json:"limits" yaml:"limits"`
	Instruments      []InstrumentConfig `json:"instruments,omitempty" yaml:"instruments,omitempty"`
	Journal          JournalConfig      `json:"journal" yaml:"journal"`
	Metrics          MetricsConfig      `json:"metrics" yaml:"metrics"`
	EventLogCapacity int                `json:"event_log_capacity,omitempty" yaml:"event_log_capacity,omitempty"`
}

// InstrumentConfig overrides or adds per-symbol trading constants
type InstrumentConfig struct {
	Name             string  `json:"name" yaml:"name"`
	BaseCurrency     string  `json:"base_currency" yaml:"base_currency"`
	QuoteCurrency    string  `json:"quote_currency" yaml:"quote_currency"`
	PipSize          float64 `json:"pip_size" yaml:"pip_size"`
	PipValuePerLot   float64 `json:"pip_value_per_lot" yaml:"pip_value_per_lot"`
	CommissionPerLot float64 `json:"commission_per_lot" yaml:"commission_per_lot"`
	ContractSize     float64 `json:"contract_size" yaml:"contract_size"`
}

// JournalConfig contains event/trade persistence parameters
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv", "sqlite" or "" to disable
	EventsFile string `json:"events_file,omitempty" yaml:"events_file,omitempty"`
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Listen  string `json:"listen,omitempty" yaml:"listen,omitempty"`
}

// LoadFromFile loads configuration from a file (JSON or YAML based on extension)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if (len(path) > 5 && path[len(path)-5:] == ".yaml") || (len(path) > 4 && path[len(path)-4:] == ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.Limits.Validate(); err != nil {
		return fmt.Errorf("limits: %w", err)
	}
	for _, ins := range c.Instruments {
		if ins.Name == "" {
			return fmt.Errorf("instrument name is required")
		}
		if ins.PipSize <= 0 {
			return fmt.Errorf("instrument %s: pip_size must be positive", ins.Name)
		}
		if ins.PipValuePerLot <= 0 {
			return fmt.Errorf("instrument %s: pip_value_per_lot must be positive", ins.Name)
		}
		if ins.ContractSize <= 0 {
			return fmt.Errorf("instrument %s: contract_size must be positive", ins.Name)
		}
		if ins.CommissionPerLot < 0 {
			return fmt.Errorf("instrument %s: commission_per_lot must be non-negative", ins.Name)
		}
	}
	switch c.Journal.Type {
	case "", "csv", "sqlite":
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite' or empty")
	}
	if c.Journal.Type == "csv" && (c.Journal.EventsFile == "" || c.Journal.TradesFile == "") {
		return fmt.Errorf("journal events_file and trades_file required for CSV type")
	}
	if c.Journal.Type == "sqlite" && c.Journal.DBPath == "" {
		return fmt.Errorf("journal db_path required for SQLite type")
	}
	if c.EventLogCapacity < 0 {
		return fmt.Errorf("event_log_capacity must be non-negative")
	}
	if c.Metrics.Enabled && c.Metrics.Listen == "" {
		return fmt.Errorf("metrics.listen required when metrics are enabled")
	}
	return nil
}

// RegisterInstruments installs the configured per-symbol constants into the
// market registry.
func (c *Config) RegisterInstruments() {
	for _, ins := range c.Instruments {
		market.Register(market.Instrument{
			Name:             market.Normalize(ins.Name),
			BaseCurrency:     ins.BaseCurrency,
			QuoteCurrency:    ins.QuoteCurrency,
			PipSize:          ins.PipSize,
			PipValuePerLot:   ins.PipValuePerLot,
			CommissionPerLot: ins.CommissionPerLot,
			ContractSize:     ins.ContractSize,
		})
	}
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Limits: risk.DefaultLimits(),
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./riskcore.db",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Listen:  ":9105",
		},
	}
}
