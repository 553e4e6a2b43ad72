// AngelaMos | 2026
// seed.go

package store

import (
	"context"
	"fmt"

	"github.com/carterperez-dev/currency-tracker/internal/model"
)

// Seed loads the sample users, currencies and subscriptions into a store
// that has no currencies yet. It reports whether anything was inserted.
func Seed(ctx context.Context, s Store) (bool, error) {
	stats, err := s.Statistics(ctx)
	if err != nil {
		return false, fmt.Errorf("seed: %w", err)
	}
	if stats.CurrencyCount > 0 {
		return false, nil
	}

	userIDs := make([]int64, 0, len(model.SeedUsers))
	for _, name := range model.SeedUsers {
		id, err := s.CreateUser(ctx, name)
		if err != nil {
			return false, fmt.Errorf("seed user %q: %w", name, err)
		}
		userIDs = append(userIDs, id)
	}

	currencyIDs := make([]int64, 0, len(model.SeedCurrencies))
	for _, c := range model.SeedCurrencies {
		id, err := s.CreateCurrency(ctx, c.NumCode, c.CharCode, c.Name, c.Value, c.Nominal)
		if err != nil {
			return false, fmt.Errorf("seed currency %s: %w", c.CharCode, err)
		}
		currencyIDs = append(currencyIDs, id)
	}

	for _, pair := range model.SeedSubscriptions {
		userID, currencyID := userIDs[pair[0]-1], currencyIDs[pair[1]-1]
		if _, err := s.Subscribe(ctx, userID, currencyID); err != nil {
			return false, fmt.Errorf("seed subscription %d/%d: %w", userID, currencyID, err)
		}
	}

	return true, nil
}
