package config

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/racoon-supply-rac/chihuahua-nft-marketplace-sub000/native/market"
)

func parseAddress(field, value string) ([20]byte, error) {
	trimmed := strings.TrimSpace(value)
	if !common.IsHexAddress(trimmed) {
		return [20]byte{}, fmt.Errorf("config: %s is not a hex address: %q", field, value)
	}
	return [20]byte(common.HexToAddress(trimmed)), nil
}

func parseAmount(field, value string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(strings.TrimSpace(value), 10)
	if !ok {
		return nil, fmt.Errorf("config: %s is not a decimal integer: %q", field, value)
	}
	return amount, nil
}

// MarketParams converts the Market section into engine parameters.
func (c *Config) MarketParams() (market.Params, error) {
	var params market.Params
	var err error
	if params.Admin, err = parseAddress("Market.Admin", c.Market.Admin); err != nil {
		return market.Params{}, err
	}
	if params.Treasury, err = parseAddress("Market.Treasury", c.Market.Treasury); err != nil {
		return market.Params{}, err
	}
	if params.MarketAddress, err = parseAddress("Market.MarketAddress", c.Market.MarketAddress); err != nil {
		return market.Params{}, err
	}
	params.BaseFeeBps = c.Market.BaseFeeBps

	listingFee, err := parseAmount("Market.ListingFeeAmount", c.Market.ListingFeeAmount)
	if err != nil {
		return market.Params{}, err
	}
	params.ListingFee = market.NewCoin(c.Market.ListingFeeDenom, listingFee)

	if params.MinPrice, err = parseAmount("Market.MinPrice", c.Market.MinPrice); err != nil {
		return market.Params{}, err
	}
	if params.MaxPrice, err = parseAmount("Market.MaxPrice", c.Market.MaxPrice); err != nil {
		return market.Params{}, err
	}
	params.MinDuration = c.Market.MinDurationSeconds
	params.MaxDuration = c.Market.MaxDurationSeconds
	params.AcceptedDenoms = append([]string(nil), c.Market.AcceptedDenoms...)

	if err := params.Validate(); err != nil {
		return market.Params{}, err
	}
	return params, nil
}

// SeedCollections parses the configured collection addresses to register at
// startup.
func (c *Config) SeedCollections() ([][20]byte, error) {
	collections := make([][20]byte, 0, len(c.Collections))
	for i, raw := range c.Collections {
		addr, err := parseAddress(fmt.Sprintf("Collections[%d]", i), raw)
		if err != nil {
			return nil, err
		}
		collections = append(collections, addr)
	}
	return collections, nil
}

// RewardSystem builds the seed reward system, or nil when rewards are
// disabled.
func (c *Config) RewardSystem() (*market.RewardSystem, error) {
	if strings.TrimSpace(c.Rewards.TokenDenom) == "" {
		return nil, nil
	}
	rate, err := parseAmount("Rewards.Rate", c.Rewards.Rate)
	if err != nil {
		return nil, err
	}
	system := &market.RewardSystem{
		TokenDenom:  c.Rewards.TokenDenom,
		Rate:        rate,
		Distributed: big.NewInt(0),
		Tiers:       make([]market.RewardTier, 0, len(c.Rewards.Tiers)),
	}
	for i, tier := range c.Rewards.Tiers {
		price, err := parseAmount(fmt.Sprintf("Rewards.Tiers[%d].Price", i), tier.Price)
		if err != nil {
			return nil, err
		}
		system.Tiers = append(system.Tiers, market.RewardTier{
			Level:       tier.Level,
			Price:       price,
			DiscountBps: tier.DiscountBps,
		})
	}
	if err := system.Validate(); err != nil {
		return nil, err
	}
	return system, nil
}
