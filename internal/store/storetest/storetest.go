// AngelaMos | 2026
// storetest.go

// Package storetest holds behavioural tests shared by every store.Store
// implementation.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/currency-tracker/internal/core"
	"github.com/carterperez-dev/currency-tracker/internal/model"
	"github.com/carterperez-dev/currency-tracker/internal/store"
)

type Factory func(t *testing.T) store.Store

func Run(t *testing.T, newStore Factory) {
	t.Helper()

	tests := []struct {
		name string
		fn   func(t *testing.T, s store.Store)
	}{
		{"CreateAndReadCurrency", testCreateAndReadCurrency},
		{"CurrencyConstraints", testCurrencyConstraints},
		{"UpdateCurrencyValue", testUpdateCurrencyValue},
		{"RatePositivity", testRatePositivity},
		{"UpdateCurrencyFields", testUpdateCurrencyFields},
		{"SubscribeAndList", testSubscribeAndList},
		{"SubscriptionUniqueness", testSubscriptionUniqueness},
		{"SubscribeUnknownRefs", testSubscribeUnknownRefs},
		{"Unsubscribe", testUnsubscribe},
		{"DeleteUserCascades", testDeleteUserCascades},
		{"DeleteCurrencyCascades", testDeleteCurrencyCascades},
		{"Users", testUsers},
		{"Statistics", testStatistics},
		{"App", testApp},
		{"Seed", testSeed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			t.Cleanup(func() { _ = s.Close() })
			tt.fn(t, s)
		})
	}
}

func createUSD(t *testing.T, s store.Store) int64 {
	t.Helper()
	id, err := s.CreateCurrency(context.Background(), "840", "USD", "Доллар США", 93.25, 1)
	require.NoError(t, err)
	return id
}

func testCreateAndReadCurrency(t *testing.T, s store.Store) {
	ctx := context.Background()
	id := createUSD(t, s)

	c, err := s.ReadCurrency(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "USD", c.CharCode)
	assert.InDelta(t, 93.25, c.Value, 1e-9)
	assert.Equal(t, 1, c.Nominal)
	assert.False(t, c.LastUpdated.IsZero())

	byCode, err := s.ReadCurrencyByCode(ctx, "usd")
	require.NoError(t, err)
	assert.Equal(t, id, byCode.ID)

	_, err = s.ReadCurrency(ctx, id+100)
	require.ErrorIs(t, err, core.ErrNotFound)

	_, err = s.ReadCurrencyByCode(ctx, "XXX")
	require.ErrorIs(t, err, core.ErrNotFound)

	_, err = s.CreateCurrency(ctx, "978", "EUR", "Евро", 101.70, 1)
	require.NoError(t, err)

	all, err := s.ReadCurrencies(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "EUR", all[0].CharCode)
	assert.Equal(t, "USD", all[1].CharCode)
}

func testCurrencyConstraints(t *testing.T, s store.Store) {
	ctx := context.Background()
	createUSD(t, s)

	_, err := s.CreateCurrency(ctx, "841", "usd", "Another dollar", 1, 1)
	require.ErrorIs(t, err, core.ErrDuplicateKey)

	_, err = s.CreateCurrency(ctx, "978", "EUR", "Евро", 0, 1)
	require.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = s.CreateCurrency(ctx, "978", "EUR", "Евро", 1, -5)
	require.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = s.CreateCurrency(ctx, "97", "EUR", "Евро", 1, 1)
	require.ErrorIs(t, err, core.ErrInvalidInput)

	all, err := s.ReadCurrencies(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func testUpdateCurrencyValue(t *testing.T, s store.Store) {
	ctx := context.Background()
	id := createUSD(t, s)

	before, err := s.ReadCurrency(ctx, id)
	require.NoError(t, err)

	ok, err := s.UpdateCurrencyValue(ctx, "USD", 95.0)
	require.NoError(t, err)
	require.True(t, ok)

	after, err := s.ReadCurrency(ctx, id)
	require.NoError(t, err)
	assert.InDelta(t, 95.0, after.Value, 1e-9)
	assert.True(t, after.LastUpdated.After(before.LastUpdated))

	ok, err = s.UpdateCurrencyValue(ctx, "XXX", 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func testRatePositivity(t *testing.T, s store.Store) {
	ctx := context.Background()
	id := createUSD(t, s)

	ok, err := s.UpdateCurrencyValue(ctx, "USD", -1)
	require.ErrorIs(t, err, core.ErrInvalidInput)
	assert.False(t, ok)

	c, err := s.ReadCurrency(ctx, id)
	require.NoError(t, err)
	assert.InDelta(t, 93.25, c.Value, 1e-9)

	zero := 0
	ok, err = s.UpdateCurrency(ctx, id, model.CurrencyUpdate{Nominal: &zero})
	require.ErrorIs(t, err, core.ErrInvalidInput)
	assert.False(t, ok)
}

func testUpdateCurrencyFields(t *testing.T, s store.Store) {
	ctx := context.Background()
	id := createUSD(t, s)
	_, err := s.CreateCurrency(ctx, "978", "EUR", "Евро", 101.70, 1)
	require.NoError(t, err)

	ok, err := s.UpdateCurrency(ctx, id, model.CurrencyUpdate{})
	require.NoError(t, err)
	assert.False(t, ok)

	name := "US Dollar"
	nominal := 10
	ok, err = s.UpdateCurrency(ctx, id, model.CurrencyUpdate{Name: &name, Nominal: &nominal})
	require.NoError(t, err)
	require.True(t, ok)

	c, err := s.ReadCurrency(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "US Dollar", c.Name)
	assert.Equal(t, 10, c.Nominal)
	assert.InDelta(t, 93.25, c.Value, 1e-9)

	taken := "eur"
	renamed := "Renamed"
	bigger := 1000
	_, err = s.UpdateCurrency(ctx, id, model.CurrencyUpdate{
		CharCode: &taken,
		Name:     &renamed,
		Nominal:  &bigger,
	})
	require.ErrorIs(t, err, core.ErrDuplicateKey)

	unchanged, err := s.ReadCurrency(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "USD", unchanged.CharCode)
	assert.Equal(t, "US Dollar", unchanged.Name)
	assert.Equal(t, 10, unchanged.Nominal)
	assert.InDelta(t, 93.25, unchanged.Value, 1e-9)
	assert.True(t, unchanged.LastUpdated.Equal(c.LastUpdated),
		"last_updated moved from %s to %s", c.LastUpdated, unchanged.LastUpdated)

	ok, err = s.UpdateCurrency(ctx, id+100, model.CurrencyUpdate{Name: &name})
	require.NoError(t, err)
	assert.False(t, ok)
}

func testSubscribeAndList(t *testing.T, s store.Store) {
	ctx := context.Background()
	usd := createUSD(t, s)

	userID, err := s.CreateUser(ctx, "Test")
	require.NoError(t, err)

	ok, err := s.Subscribe(ctx, userID, usd)
	require.NoError(t, err)
	require.True(t, ok)

	subs, err := s.ListSubscriptions(ctx, userID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "USD", subs[0].CharCode)
	assert.Equal(t, usd, subs[0].ID)
	assert.False(t, subs[0].SubscribedAt.IsZero())
}

func testSubscriptionUniqueness(t *testing.T, s store.Store) {
	ctx := context.Background()
	usd := createUSD(t, s)
	userID, err := s.CreateUser(ctx, "Test")
	require.NoError(t, err)

	ok, err := s.Subscribe(ctx, userID, usd)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.Subscribe(ctx, userID, usd)
	require.NoError(t, err)
	assert.False(t, ok)

	stats, err := s.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.SubscriptionCount)

	user, err := s.ReadUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, user.SubscriptionCount)
}

func testSubscribeUnknownRefs(t *testing.T, s store.Store) {
	ctx := context.Background()
	usd := createUSD(t, s)
	userID, err := s.CreateUser(ctx, "Test")
	require.NoError(t, err)

	_, err = s.Subscribe(ctx, userID+100, usd)
	require.ErrorIs(t, err, core.ErrNotFound)

	_, err = s.Subscribe(ctx, userID, usd+100)
	require.ErrorIs(t, err, core.ErrNotFound)
}

func testUnsubscribe(t *testing.T, s store.Store) {
	ctx := context.Background()
	usd := createUSD(t, s)
	userID, err := s.CreateUser(ctx, "Test")
	require.NoError(t, err)

	ok, err := s.Unsubscribe(ctx, userID, usd)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Subscribe(ctx, userID, usd)
	require.NoError(t, err)

	ok, err = s.Unsubscribe(ctx, userID, usd)
	require.NoError(t, err)
	assert.True(t, ok)

	subs, err := s.ListSubscriptions(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func testDeleteUserCascades(t *testing.T, s store.Store) {
	ctx := context.Background()

	userID, err := s.CreateUser(ctx, "Test")
	require.NoError(t, err)
	otherID, err := s.CreateUser(ctx, "Other")
	require.NoError(t, err)

	codes := []struct{ num, char string }{{"840", "USD"}, {"978", "EUR"}, {"826", "GBP"}}
	for _, c := range codes {
		id, err := s.CreateCurrency(ctx, c.num, c.char, c.char, 10, 1)
		require.NoError(t, err)
		_, err = s.Subscribe(ctx, userID, id)
		require.NoError(t, err)
		if c.char == "USD" {
			_, err = s.Subscribe(ctx, otherID, id)
			require.NoError(t, err)
		}
	}

	before, err := s.Statistics(ctx)
	require.NoError(t, err)
	require.Equal(t, 4, before.SubscriptionCount)

	ok, err := s.DeleteUser(ctx, userID)
	require.NoError(t, err)
	require.True(t, ok)

	after, err := s.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, after.SubscriptionCount)

	subs, err := s.ListSubscriptions(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, subs)

	_, err = s.ReadUser(ctx, userID)
	require.ErrorIs(t, err, core.ErrNotFound)

	ok, err = s.DeleteUser(ctx, userID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func testDeleteCurrencyCascades(t *testing.T, s store.Store) {
	ctx := context.Background()
	usd := createUSD(t, s)
	userID, err := s.CreateUser(ctx, "Test")
	require.NoError(t, err)
	_, err = s.Subscribe(ctx, userID, usd)
	require.NoError(t, err)

	ok, err := s.DeleteCurrency(ctx, usd)
	require.NoError(t, err)
	require.True(t, ok)

	subs, err := s.ListSubscriptions(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, subs)

	ok, err = s.DeleteCurrency(ctx, usd)
	require.NoError(t, err)
	assert.False(t, ok)
}

func testUsers(t *testing.T, s store.Store) {
	ctx := context.Background()

	_, err := s.CreateUser(ctx, "   ")
	require.ErrorIs(t, err, core.ErrInvalidInput)

	bID, err := s.CreateUser(ctx, "Мария Петрова")
	require.NoError(t, err)
	aID, err := s.CreateUser(ctx, "  Алексей Сидоров ")
	require.NoError(t, err)
	assert.Positive(t, aID)

	users, err := s.ReadUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Алексей Сидоров", users[0].Name)
	assert.Equal(t, "Мария Петрова", users[1].Name)
	assert.Zero(t, users[0].SubscriptionCount)

	ok, err := s.UpdateUser(ctx, bID, "Мария Иванова")
	require.NoError(t, err)
	require.True(t, ok)

	u, err := s.ReadUser(ctx, bID)
	require.NoError(t, err)
	assert.Equal(t, "Мария Иванова", u.Name)

	_, err = s.UpdateUser(ctx, bID, "")
	require.ErrorIs(t, err, core.ErrInvalidInput)

	ok, err = s.UpdateUser(ctx, bID+100, "Nobody")
	require.NoError(t, err)
	assert.False(t, ok)
}

func testStatistics(t *testing.T, s store.Store) {
	ctx := context.Background()

	empty, err := s.Statistics(ctx)
	require.NoError(t, err)
	assert.Zero(t, empty.CurrencyCount)
	assert.Nil(t, empty.LastUpdate)

	createUSD(t, s)
	_, err = s.CreateUser(ctx, "Test")
	require.NoError(t, err)
	_, err = s.UpdateCurrencyValue(ctx, "USD", 94)
	require.NoError(t, err)

	stats, err := s.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.UserCount)
	assert.Equal(t, 1, stats.CurrencyCount)
	require.NotNil(t, stats.LastUpdate)

	c, err := s.ReadCurrencyByCode(ctx, "USD")
	require.NoError(t, err)
	assert.True(t, stats.LastUpdate.Equal(c.LastUpdated))
}

func testApp(t *testing.T, s store.Store) {
	ctx := context.Background()

	_, err := s.ReadApp(ctx)
	require.ErrorIs(t, err, core.ErrNotFound)

	err = s.SaveApp(ctx, model.App{
		Name:    "Currency Tracker",
		Version: "1.0.0",
		Author:  model.Author{Name: "Иван Иванов", Group: "ПИ-202"},
	})
	require.NoError(t, err)

	app, err := s.ReadApp(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Currency Tracker", app.Name)
	assert.Equal(t, "ПИ-202", app.Author.Group)

	err = s.SaveApp(ctx, model.App{Name: "Currency Tracker", Version: "1.0", Author: app.Author})
	require.ErrorIs(t, err, core.ErrInvalidInput)
}

func testSeed(t *testing.T, s store.Store) {
	ctx := context.Background()

	seeded, err := store.Seed(ctx, s)
	require.NoError(t, err)
	require.True(t, seeded)

	stats, err := s.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.UserCount)
	assert.Equal(t, 5, stats.CurrencyCount)
	assert.Equal(t, 4, stats.SubscriptionCount)

	seeded, err = store.Seed(ctx, s)
	require.NoError(t, err)
	assert.False(t, seeded)
}
