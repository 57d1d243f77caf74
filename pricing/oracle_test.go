package pricing

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func mustRates(t *testing.T, raw map[string]string) map[string]decimal.Decimal {
	t.Helper()
	rates, err := ParseRates(raw)
	require.NoError(t, err)
	return rates
}

func TestFiatEquivalentFloorsResult(t *testing.T) {
	oracle, err := NewStaticOracle(mustRates(t, map[string]string{
		"uhuahua": "0.0000123",
		"uatom":   "0.0095",
	}))
	require.NoError(t, err)

	fiat, err := oracle.FiatEquivalent(big.NewInt(2_000_000), "uhuahua")
	require.NoError(t, err)
	// 2_000_000 * 0.0000123 = 24.6 -> 24
	require.Equal(t, int64(24), fiat.Int64())

	fiat, err = oracle.FiatEquivalent(big.NewInt(1_000_000), "uatom")
	require.NoError(t, err)
	require.Equal(t, int64(9_500), fiat.Int64())
}

func TestFiatEquivalentUnknownDenom(t *testing.T) {
	oracle, err := NewStaticOracle(mustRates(t, map[string]string{"uhuahua": "1"}))
	require.NoError(t, err)

	_, err = oracle.FiatEquivalent(big.NewInt(100), "uscrt")
	require.Error(t, err)
}

func TestFiatEquivalentNonPositiveAmounts(t *testing.T) {
	oracle, err := NewStaticOracle(mustRates(t, map[string]string{"uhuahua": "0.5"}))
	require.NoError(t, err)

	fiat, err := oracle.FiatEquivalent(nil, "uhuahua")
	require.NoError(t, err)
	require.Zero(t, fiat.Sign())

	fiat, err = oracle.FiatEquivalent(big.NewInt(-10), "uhuahua")
	require.NoError(t, err)
	require.Zero(t, fiat.Sign())
}

func TestFiatEquivalentLargeAmounts(t *testing.T) {
	oracle, err := NewStaticOracle(mustRates(t, map[string]string{"uhuahua": "0.000001"}))
	require.NoError(t, err)

	amount, ok := new(big.Int).SetString("1000000000000000000000000", 10)
	require.True(t, ok)
	fiat, err := oracle.FiatEquivalent(amount, "uhuahua")
	require.NoError(t, err)
	require.Equal(t, "1000000000000000000", fiat.String())
}

func TestNewStaticOracleRejectsBadRates(t *testing.T) {
	_, err := NewStaticOracle(map[string]decimal.Decimal{"uhuahua": decimal.Zero})
	require.Error(t, err)

	_, err = NewStaticOracle(map[string]decimal.Decimal{"": decimal.NewFromInt(1)})
	require.Error(t, err)

	_, err = NewStaticOracle(map[string]decimal.Decimal{"uatom": decimal.NewFromInt(-1)})
	require.Error(t, err)
}

func TestSetRatesSwapsTable(t *testing.T) {
	oracle, err := NewStaticOracle(mustRates(t, map[string]string{"uhuahua": "1"}))
	require.NoError(t, err)

	require.NoError(t, oracle.SetRates(mustRates(t, map[string]string{"uatom": "2"})))

	_, err = oracle.FiatEquivalent(big.NewInt(1), "uhuahua")
	require.Error(t, err)
	fiat, err := oracle.FiatEquivalent(big.NewInt(3), "uatom")
	require.NoError(t, err)
	require.Equal(t, int64(6), fiat.Int64())

	require.Equal(t, []string{"uatom"}, oracle.Denoms())
}

func TestParseRatesRejectsGarbage(t *testing.T) {
	_, err := ParseRates(map[string]string{"uhuahua": "not-a-number"})
	require.Error(t, err)
}
