// AngelaMos | 2026
// store.go

package store

import (
	"context"

	"github.com/carterperez-dev/currency-tracker/internal/model"
)

// UserStore reads return core.ErrNotFound for unknown ids. Update and
// delete report a missing row as false.
type UserStore interface {
	CreateUser(ctx context.Context, name string) (int64, error)
	ReadUsers(ctx context.Context) ([]model.UserSummary, error)
	ReadUser(ctx context.Context, id int64) (*model.UserSummary, error)
	UpdateUser(ctx context.Context, id int64, name string) (bool, error)
	DeleteUser(ctx context.Context, id int64) (bool, error)
}

type CurrencyStore interface {
	CreateCurrency(
		ctx context.Context,
		numCode, charCode, name string,
		value float64,
		nominal int,
	) (int64, error)
	ReadCurrencies(ctx context.Context) ([]model.Currency, error)
	ReadCurrency(ctx context.Context, id int64) (*model.Currency, error)
	ReadCurrencyByCode(ctx context.Context, charCode string) (*model.Currency, error)
	UpdateCurrencyValue(ctx context.Context, charCode string, value float64) (bool, error)
	UpdateCurrency(ctx context.Context, id int64, upd model.CurrencyUpdate) (bool, error)
	DeleteCurrency(ctx context.Context, id int64) (bool, error)
}

// SubscriptionStore treats a duplicate pair as an ordinary false result.
type SubscriptionStore interface {
	Subscribe(ctx context.Context, userID, currencyID int64) (bool, error)
	Unsubscribe(ctx context.Context, userID, currencyID int64) (bool, error)
	ListSubscriptions(ctx context.Context, userID int64) ([]model.SubscribedCurrency, error)
}

type AppStore interface {
	SaveApp(ctx context.Context, app model.App) error
	ReadApp(ctx context.Context) (*model.App, error)
}

type Store interface {
	UserStore
	CurrencyStore
	SubscriptionStore
	AppStore

	Statistics(ctx context.Context) (model.Statistics, error)
	Ping(ctx context.Context) error
	Close() error
}
