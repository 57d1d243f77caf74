package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the on-disk configuration for marketd.
type Config struct {
	ListenAddress        string   `toml:"ListenAddress"`
	DataDir              string   `toml:"DataDir"`
	Environment          string   `toml:"Environment"`
	SweepIntervalSeconds int64    `toml:"SweepIntervalSeconds"`
	Collections          []string `toml:"Collections"`

	Market  MarketConfig  `toml:"Market"`
	Pricing PricingConfig `toml:"Pricing"`
	Rewards RewardsConfig `toml:"Rewards"`
}

// MarketConfig carries the static engine parameters. Monetary amounts are
// decimal strings so they survive values beyond int64.
type MarketConfig struct {
	Admin              string   `toml:"Admin"`
	Treasury           string   `toml:"Treasury"`
	MarketAddress      string   `toml:"MarketAddress"`
	BaseFeeBps         uint32   `toml:"BaseFeeBps"`
	ListingFeeAmount   string   `toml:"ListingFeeAmount"`
	ListingFeeDenom    string   `toml:"ListingFeeDenom"`
	MinPrice           string   `toml:"MinPrice"`
	MaxPrice           string   `toml:"MaxPrice"`
	MinDurationSeconds int64    `toml:"MinDurationSeconds"`
	MaxDurationSeconds int64    `toml:"MaxDurationSeconds"`
	AcceptedDenoms     []string `toml:"AcceptedDenoms"`
}

// PricingConfig maps settlement denoms to fiat rates (decimal strings,
// fiat units per smallest denomination unit).
type PricingConfig struct {
	Rates map[string]string `toml:"Rates"`
}

// RewardsConfig seeds the loyalty reward system. An empty TokenDenom disables
// rewards entirely.
type RewardsConfig struct {
	TokenDenom string       `toml:"TokenDenom"`
	Rate       string       `toml:"Rate"`
	Tiers      []TierConfig `toml:"Tiers"`
}

type TierConfig struct {
	Level       uint32 `toml:"Level"`
	Price       string `toml:"Price"`
	DiscountBps uint32 `toml:"DiscountBps"`
}

// Load loads the configuration from the given path, writing a default file
// when none exists yet.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config file %s has unknown field %s", path, undecoded[0].String())
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.ListenAddress) == "" {
		cfg.ListenAddress = ":8545"
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./market-data"
	}
	if strings.TrimSpace(cfg.Environment) == "" {
		cfg.Environment = "local"
	}
	if cfg.SweepIntervalSeconds <= 0 {
		cfg.SweepIntervalSeconds = 60
	}
	if cfg.Collections == nil {
		cfg.Collections = []string{}
	}
	if cfg.Pricing.Rates == nil {
		cfg.Pricing.Rates = map[string]string{}
	}
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	cfg := &Config{
		ListenAddress:        ":8545",
		DataDir:              "./market-data",
		Environment:          "local",
		SweepIntervalSeconds: 60,
		Collections:          []string{},
		Market: MarketConfig{
			BaseFeeBps:         420,
			ListingFeeAmount:   "6900000",
			ListingFeeDenom:    "uhuahua",
			MinPrice:           "1000",
			MaxPrice:           "1000000000000",
			MinDurationSeconds: 3_600,
			MaxDurationSeconds: 180 * 24 * 3_600,
			AcceptedDenoms:     []string{"uhuahua"},
		},
		Pricing: PricingConfig{
			Rates: map[string]string{"uhuahua": "0.0000123"},
		},
	}

	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
