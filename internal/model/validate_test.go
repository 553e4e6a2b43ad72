// AngelaMos | 2026
// validate_test.go

package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/currency-tracker/internal/core"
)

func TestNewCurrency(t *testing.T) {
	c, err := NewCurrency(" 840", "usd", " Доллар США ", 93.25, 1)
	require.NoError(t, err)

	assert.Equal(t, "840", c.NumCode)
	assert.Equal(t, "USD", c.CharCode)
	assert.Equal(t, "Доллар США", c.Name)
	assert.InDelta(t, 93.25, c.Value, 1e-9)
	assert.Equal(t, 1, c.Nominal)
}

func TestNewCurrencyRejects(t *testing.T) {
	tests := []struct {
		name     string
		numCode  string
		charCode string
		title    string
		value    float64
		nominal  int
	}{
		{"short num code", "84", "USD", "Dollar", 1, 1},
		{"signed num code", "-84", "USD", "Dollar", 1, 1},
		{"letters in num code", "8a0", "USD", "Dollar", 1, 1},
		{"long char code", "840", "USDX", "Dollar", 1, 1},
		{"digits in char code", "840", "US1", "Dollar", 1, 1},
		{"blank name", "840", "USD", "  ", 1, 1},
		{"zero value", "840", "USD", "Dollar", 0, 1},
		{"negative value", "840", "USD", "Dollar", -1, 1},
		{"nan value", "840", "USD", "Dollar", math.NaN(), 1},
		{"zero nominal", "840", "USD", "Dollar", 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCurrency(tt.numCode, tt.charCode, tt.title, tt.value, tt.nominal)
			require.ErrorIs(t, err, core.ErrInvalidInput)
		})
	}
}

func TestNewUser(t *testing.T) {
	u, err := NewUser("  Test  ")
	require.NoError(t, err)
	assert.Equal(t, "Test", u.Name)

	_, err = NewUser("   ")
	require.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestNewApp(t *testing.T) {
	author, err := NewAuthor("Иван Иванов", "ПИ-202")
	require.NoError(t, err)

	app, err := NewApp("Currency Tracker", "1.0.0", author)
	require.NoError(t, err)
	assert.Equal(t, "ПИ-202", app.Author.Group)

	for _, version := range []string{"1.0", "1.0.0.1", "a.b.c", "1.0.x", ""} {
		_, err := NewApp("Currency Tracker", version, author)
		require.ErrorIs(t, err, core.ErrInvalidInput, version)
	}

	_, err = NewAuthor("Иван", " ")
	require.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestCurrencyUpdateNormalize(t *testing.T) {
	code := "eur"
	name := " Евро "
	upd, err := CurrencyUpdate{CharCode: &code, Name: &name}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, "EUR", *upd.CharCode)
	assert.Equal(t, "Евро", *upd.Name)

	negative := -1.0
	_, err = CurrencyUpdate{Value: &negative}.Normalize()
	require.ErrorIs(t, err, core.ErrInvalidInput)

	zero := 0
	_, err = CurrencyUpdate{Nominal: &zero}.Normalize()
	require.ErrorIs(t, err, core.ErrInvalidInput)

	assert.True(t, CurrencyUpdate{}.IsEmpty())
}

func TestCurrencyUpdateApply(t *testing.T) {
	value := 95.0
	c := Currency{CharCode: "USD", Value: 93.25, Nominal: 1}

	got := CurrencyUpdate{Value: &value}.Apply(c)
	assert.InDelta(t, 95.0, got.Value, 1e-9)
	assert.Equal(t, "USD", got.CharCode)
}

func TestIsCharCode(t *testing.T) {
	for _, code := range []string{"USD", "KZT"} {
		assert.True(t, IsCharCode(code), code)
	}
	for _, code := range []string{"usd", "US", "USDT", "840", "U5D", ""} {
		assert.False(t, IsCharCode(code), code)
	}
}
