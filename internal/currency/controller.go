// AngelaMos | 2026
// controller.go

package currency

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/carterperez-dev/currency-tracker/internal/core"
	"github.com/carterperez-dev/currency-tracker/internal/model"
	"github.com/carterperez-dev/currency-tracker/internal/rate"
	"github.com/carterperez-dev/currency-tracker/internal/store"
)

// RateSource supplies live per-unit rates for codes the store does not hold.
type RateSource interface {
	Rate(ctx context.Context, code string) (float64, error)
}

type AddResult int

const (
	Created AddResult = iota
	DuplicateKey
	ValidationFailed
	StoreFault
)

func (r AddResult) String() string {
	switch r {
	case Created:
		return "created"
	case DuplicateKey:
		return "duplicate_key"
	case ValidationFailed:
		return "validation_failed"
	default:
		return "store_fault"
	}
}

type Controller struct {
	store  store.CurrencyStore
	rates  RateSource
	logger *slog.Logger
}

// NewController wires the controller. rates may be nil, in which case
// exchange only uses stored currencies.
func NewController(
	s store.CurrencyStore,
	rates RateSource,
	logger *slog.Logger,
) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		store:  s,
		rates:  rates,
		logger: logger.With(slog.String("component", "currency")),
	}
}

func (c *Controller) ListCurrencies(ctx context.Context) ([]model.Currency, error) {
	return c.store.ReadCurrencies(ctx)
}

// GetCurrency scans the listing for id and returns nil when it is absent.
func (c *Controller) GetCurrency(ctx context.Context, id int64) (*model.Currency, error) {
	currencies, err := c.store.ReadCurrencies(ctx)
	if err != nil {
		return nil, err
	}

	for i := range currencies {
		if currencies[i].ID == id {
			return &currencies[i], nil
		}
	}

	return nil, nil
}

func (c *Controller) GetCurrencyByCode(ctx context.Context, code string) (*model.Currency, error) {
	cur, err := c.store.ReadCurrencyByCode(ctx, model.NormalizeCharCode(code))
	if errors.Is(err, core.ErrNotFound) {
		return nil, nil
	}
	return cur, err
}

// UpdateCurrency stores an already normalized rate for charCode.
func (c *Controller) UpdateCurrency(ctx context.Context, charCode string, value float64) bool {
	ok, err := c.store.UpdateCurrencyValue(ctx, charCode, value)
	if err != nil {
		c.logger.WarnContext(ctx, "currency update failed",
			"char_code", charCode,
			"value", value,
			"error", err,
		)
		return false
	}
	return ok
}

func (c *Controller) DeleteCurrency(ctx context.Context, id int64) bool {
	ok, err := c.store.DeleteCurrency(ctx, id)
	if err != nil {
		c.logger.WarnContext(ctx, "currency delete failed", "id", id, "error", err)
		return false
	}
	return ok
}

// AddCurrency reports only whether the currency was inserted. Callers that
// need the reason use CreateCurrency.
func (c *Controller) AddCurrency(
	ctx context.Context,
	numCode, charCode, name string,
	value float64,
	nominal int,
) bool {
	_, result, _ := c.CreateCurrency(ctx, numCode, charCode, name, value, nominal)
	return result == Created
}

func (c *Controller) CreateCurrency(
	ctx context.Context,
	numCode, charCode, name string,
	value float64,
	nominal int,
) (int64, AddResult, error) {
	cur, err := model.NewCurrency(numCode, charCode, name, value, nominal)
	if err != nil {
		return 0, ValidationFailed, err
	}

	id, err := c.store.CreateCurrency(ctx,
		cur.NumCode, cur.CharCode, cur.Name, cur.Value, cur.Nominal)
	switch {
	case err == nil:
		return id, Created, nil
	case errors.Is(err, core.ErrDuplicateKey):
		return 0, DuplicateKey, err
	case errors.Is(err, core.ErrInvalidInput), errors.Is(err, core.ErrConstraint):
		return 0, ValidationFailed, err
	default:
		c.logger.ErrorContext(ctx, "currency insert failed",
			"char_code", cur.CharCode,
			"error", err,
		)
		return 0, StoreFault, err
	}
}

func (c *Controller) CurrencyStats(ctx context.Context) (Stats, error) {
	currencies, err := c.store.ReadCurrencies(ctx)
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(currencies), nil
}

// CalculateExchange converts amount through the RUB pivot.
func (c *Controller) CalculateExchange(
	ctx context.Context,
	amount float64,
	from, to string,
) (float64, error) {
	from, to = model.NormalizeCharCode(from), model.NormalizeCharCode(to)
	if from == to {
		return amount, nil
	}

	fromRate, err := c.rateOf(ctx, from)
	if err != nil {
		return 0, err
	}

	toRate, err := c.rateOf(ctx, to)
	if err != nil {
		return 0, err
	}

	return amount * fromRate / toRate, nil
}

func (c *Controller) rateOf(ctx context.Context, code string) (float64, error) {
	if code == rate.PivotCode {
		return 1, nil
	}

	cur, err := c.store.ReadCurrencyByCode(ctx, code)
	if err == nil {
		return cur.Value, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return 0, err
	}

	if c.rates == nil {
		return 0, fmt.Errorf("unknown currency %s: %w", code, core.ErrNotFound)
	}

	value, err := c.rates.Rate(ctx, code)
	if err != nil {
		return 0, fmt.Errorf("rate for %s: %w", code, err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("rate for %s is not positive: %w", code, core.ErrFormat)
	}

	return value, nil
}
