package config

import (
	"fmt"
	"strings"
)

// Validate checks the sections that Load does not already default, including
// the pieces the engine needs parsed (addresses, amounts, reward tiers).
func Validate(cfg *Config) error {
	if strings.TrimSpace(cfg.ListenAddress) == "" {
		return fmt.Errorf("config: ListenAddress is required")
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		return fmt.Errorf("config: DataDir is required")
	}
	if cfg.SweepIntervalSeconds <= 0 {
		return fmt.Errorf("config: SweepIntervalSeconds must be positive")
	}
	if _, err := cfg.MarketParams(); err != nil {
		return err
	}
	if _, err := cfg.SeedCollections(); err != nil {
		return err
	}
	if _, err := cfg.RewardSystem(); err != nil {
		return err
	}
	for _, denom := range cfg.Market.AcceptedDenoms {
		if _, ok := cfg.Pricing.Rates[denom]; !ok {
			return fmt.Errorf("config: Pricing.Rates has no rate for accepted denom %s", denom)
		}
	}
	return nil
}
