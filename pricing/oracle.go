package pricing

import (
	"fmt"
	"math/big"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

// StaticOracle converts settlement amounts into the common fiat reference unit
// using a fixed per-denomination rate table. Rates are decimal fiat units per
// smallest denomination unit; conversions floor to an integer fiat amount.
// The table can be swapped at runtime, so an operator can refresh quotes
// without restarting the daemon.
type StaticOracle struct {
	mu    sync.RWMutex
	rates map[string]decimal.Decimal
}

// NewStaticOracle builds an oracle from a denom -> rate table. Rates must be
// strictly positive.
func NewStaticOracle(rates map[string]decimal.Decimal) (*StaticOracle, error) {
	oracle := &StaticOracle{rates: make(map[string]decimal.Decimal, len(rates))}
	for denom, rate := range rates {
		if err := oracle.setRate(denom, rate); err != nil {
			return nil, err
		}
	}
	return oracle, nil
}

// ParseRates converts string-valued rates (as read from configuration) into a
// decimal table.
func ParseRates(raw map[string]string) (map[string]decimal.Decimal, error) {
	rates := make(map[string]decimal.Decimal, len(raw))
	for denom, value := range raw {
		rate, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("pricing: rate for %s: %w", denom, err)
		}
		rates[denom] = rate
	}
	return rates, nil
}

func (o *StaticOracle) setRate(denom string, rate decimal.Decimal) error {
	denom = strings.TrimSpace(denom)
	if denom == "" {
		return fmt.Errorf("pricing: empty denom")
	}
	if rate.Sign() <= 0 {
		return fmt.Errorf("pricing: rate for %s must be positive, got %s", denom, rate)
	}
	o.rates[denom] = rate
	return nil
}

// SetRates atomically replaces the whole rate table.
func (o *StaticOracle) SetRates(rates map[string]decimal.Decimal) error {
	next := &StaticOracle{rates: make(map[string]decimal.Decimal, len(rates))}
	for denom, rate := range rates {
		if err := next.setRate(denom, rate); err != nil {
			return err
		}
	}
	o.mu.Lock()
	o.rates = next.rates
	o.mu.Unlock()
	return nil
}

// Denoms lists the quoted denominations in stable order.
func (o *StaticOracle) Denoms() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	denoms := make([]string, 0, len(o.rates))
	for denom := range o.rates {
		denoms = append(denoms, denom)
	}
	sort.Strings(denoms)
	return denoms
}

// FiatEquivalent converts an amount of the denomination into fiat units,
// flooring the result. Negative or nil amounts convert to zero.
func (o *StaticOracle) FiatEquivalent(amount *big.Int, denom string) (*big.Int, error) {
	o.mu.RLock()
	rate, ok := o.rates[strings.TrimSpace(denom)]
	o.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("pricing: no rate for denom %q", denom)
	}
	if amount == nil || amount.Sign() <= 0 {
		return big.NewInt(0), nil
	}
	fiat := decimal.NewFromBigInt(amount, 0).Mul(rate).Floor()
	return fiat.BigInt(), nil
}
