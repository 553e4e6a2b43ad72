// AngelaMos | 2026
// controller_test.go

package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/currency-tracker/internal/core"
	"github.com/carterperez-dev/currency-tracker/internal/model"
	"github.com/carterperez-dev/currency-tracker/internal/store"
	"github.com/carterperez-dev/currency-tracker/internal/store/memory"
)

type fakeRates map[string]float64

func (f fakeRates) Rate(_ context.Context, code string) (float64, error) {
	v, ok := f[code]
	if !ok {
		return 0, fmt.Errorf("quote %s: %w", code, core.ErrNotFound)
	}
	return v, nil
}

type brokenStore struct {
	store.CurrencyStore
}

func (brokenStore) ReadCurrencies(context.Context) ([]model.Currency, error) {
	return nil, fmt.Errorf("read currencies: %w", core.ErrStore)
}

func (brokenStore) ReadCurrencyByCode(context.Context, string) (*model.Currency, error) {
	return nil, fmt.Errorf("read currency: %w", core.ErrStore)
}

func (brokenStore) CreateCurrency(context.Context, string, string, string, float64, int) (int64, error) {
	return 0, fmt.Errorf("create currency: %w", core.ErrStore)
}

func (brokenStore) UpdateCurrencyValue(context.Context, string, float64) (bool, error) {
	return false, fmt.Errorf("update currency: %w", core.ErrStore)
}

func seededController(t *testing.T, rates RateSource) (*Controller, *memory.Store) {
	t.Helper()

	s := memory.New()
	_, err := store.Seed(context.Background(), s)
	require.NoError(t, err)

	return NewController(s, rates, nil), s
}

func TestGetCurrency(t *testing.T) {
	c, s := seededController(t, nil)
	ctx := context.Background()

	usd, err := s.ReadCurrencyByCode(ctx, "USD")
	require.NoError(t, err)

	got, err := c.GetCurrency(ctx, usd.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "USD", got.CharCode)

	missing, err := c.GetCurrency(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	byCode, err := c.GetCurrencyByCode(ctx, "eur")
	require.NoError(t, err)
	require.NotNil(t, byCode)
	assert.Equal(t, "EUR", byCode.CharCode)

	none, err := c.GetCurrencyByCode(ctx, "XYZ")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestGetCurrencyStoreFailure(t *testing.T) {
	c := NewController(brokenStore{}, nil, nil)

	_, err := c.GetCurrency(context.Background(), 1)
	require.ErrorIs(t, err, core.ErrStore)
}

func TestUpdateAndDeleteCurrency(t *testing.T) {
	c, s := seededController(t, nil)
	ctx := context.Background()

	assert.True(t, c.UpdateCurrency(ctx, "USD", 95.5))
	assert.False(t, c.UpdateCurrency(ctx, "XYZ", 1.0))
	assert.False(t, c.UpdateCurrency(ctx, "USD", -1))

	usd, err := s.ReadCurrencyByCode(ctx, "USD")
	require.NoError(t, err)
	assert.InDelta(t, 95.5, usd.Value, 1e-9)

	assert.True(t, c.DeleteCurrency(ctx, usd.ID))
	assert.False(t, c.DeleteCurrency(ctx, usd.ID))

	broken := NewController(brokenStore{}, nil, nil)
	assert.False(t, broken.UpdateCurrency(ctx, "USD", 1))
}

func TestCreateCurrencyResults(t *testing.T) {
	c, _ := seededController(t, nil)
	ctx := context.Background()

	id, result, err := c.CreateCurrency(ctx, "756", "chf", "Швейцарский франк", 104.3, 1)
	require.NoError(t, err)
	assert.Equal(t, Created, result)
	assert.Positive(t, id)

	_, result, err = c.CreateCurrency(ctx, "840", "USD", "Доллар США", 90, 1)
	assert.Equal(t, DuplicateKey, result)
	require.ErrorIs(t, err, core.ErrDuplicateKey)

	_, result, err = c.CreateCurrency(ctx, "84", "AUD", "Австралийский доллар", 60, 1)
	assert.Equal(t, ValidationFailed, result)
	require.ErrorIs(t, err, core.ErrInvalidInput)

	_, result, _ = c.CreateCurrency(ctx, "036", "AUD", "Австралийский доллар", 0, 1)
	assert.Equal(t, ValidationFailed, result)

	broken := NewController(brokenStore{}, nil, nil)
	_, result, err = broken.CreateCurrency(ctx, "036", "AUD", "Австралийский доллар", 60, 1)
	assert.Equal(t, StoreFault, result)
	require.ErrorIs(t, err, core.ErrStore)
}

func TestAddCurrencyCollapsesToBool(t *testing.T) {
	c, _ := seededController(t, nil)
	ctx := context.Background()

	assert.True(t, c.AddCurrency(ctx, "036", "AUD", "Австралийский доллар", 60.1, 1))
	assert.False(t, c.AddCurrency(ctx, "036", "AUD", "Австралийский доллар", 60.1, 1))
	assert.False(t, c.AddCurrency(ctx, "abc", "NZD", "Новозеландский доллар", 55, 1))

	broken := NewController(brokenStore{}, nil, nil)
	assert.False(t, broken.AddCurrency(ctx, "554", "NZD", "Новозеландский доллар", 55, 1))
}

func TestCurrencyStats(t *testing.T) {
	c, _ := seededController(t, nil)

	stats, err := c.CurrencyStats(context.Background())
	require.NoError(t, err)

	assert.False(t, stats.Empty())
	assert.Equal(t, 5, stats.TotalCount)
	assert.Equal(t, "GBP", stats.MaxValue.CharCode)
	assert.InDelta(t, 118.45, stats.MaxValue.Value, 1e-9)
	assert.Equal(t, "JPY", stats.MinValue.CharCode)
	assert.InDelta(t, (12.89+101.70+118.45+0.63+93.25)/5, stats.AvgValue, 1e-9)
}

func TestComputeStatsTiesKeepFirst(t *testing.T) {
	stats := ComputeStats([]model.Currency{
		{CharCode: "AAA", Name: "a", Value: 5},
		{CharCode: "BBB", Name: "b", Value: 5},
		{CharCode: "CCC", Name: "c", Value: 1},
		{CharCode: "DDD", Name: "d", Value: 1},
	})

	assert.Equal(t, "AAA", stats.MaxValue.CharCode)
	assert.Equal(t, "CCC", stats.MinValue.CharCode)
	assert.InDelta(t, 3.0, stats.AvgValue, 1e-9)
}

func TestEmptyStatsSerializeAsEmptyObject(t *testing.T) {
	stats := ComputeStats(nil)
	assert.True(t, stats.Empty())

	raw, err := json.Marshal(stats)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(raw))

	full, err := json.Marshal(ComputeStats([]model.Currency{{CharCode: "USD", Name: "d", Value: 2}}))
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"total_count":1,"max_value":{"char_code":"USD","value":2,"name":"d"},`+
			`"min_value":{"char_code":"USD","value":2,"name":"d"},"avg_value":2}`,
		string(full))
}

func TestCalculateExchange(t *testing.T) {
	c, _ := seededController(t, fakeRates{"KZT": 0.2})
	ctx := context.Background()

	tests := []struct {
		name     string
		amount   float64
		from, to string
		want     float64
	}{
		{"same currency", 10, "USD", "usd", 10},
		{"to pivot", 2, "USD", "RUB", 186.5},
		{"from pivot", 93.25, "RUB", "USD", 1},
		{"cross", 1, "GBP", "USD", 118.45 / 93.25},
		{"per unit nominal", 100, "JPY", "RUB", 63},
		{"provider fallback", 10, "KZT", "RUB", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.CalculateExchange(ctx, tt.amount, tt.from, tt.to)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestCalculateExchangeUnknownCode(t *testing.T) {
	c, _ := seededController(t, fakeRates{})

	_, err := c.CalculateExchange(context.Background(), 1, "XYZ", "RUB")
	require.ErrorIs(t, err, core.ErrNotFound)

	offline, _ := seededController(t, nil)
	_, err = offline.CalculateExchange(context.Background(), 1, "USD", "XYZ")
	require.ErrorIs(t, err, core.ErrNotFound)

	broken := NewController(brokenStore{}, nil, nil)
	_, err = broken.CalculateExchange(context.Background(), 1, "USD", "RUB")
	require.ErrorIs(t, err, core.ErrStore)
}

func TestAddResultString(t *testing.T) {
	assert.Equal(t, "created", Created.String())
	assert.Equal(t, "duplicate_key", DuplicateKey.String())
	assert.Equal(t, "validation_failed", ValidationFailed.String())
	assert.Equal(t, "store_fault", StoreFault.String())
}
