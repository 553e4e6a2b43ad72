// AngelaMos | 2026
// handler.go

package currency

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/currency-tracker/internal/core"
	"github.com/carterperez-dev/currency-tracker/internal/model"
	"github.com/carterperez-dev/currency-tracker/internal/rate"
)

// Refresher pulls fresh rates into the store on demand.
type Refresher interface {
	RefreshRates(ctx context.Context) error
	LastRefresh() *time.Time
}

type DetailsSource interface {
	Details(ctx context.Context, code string) (*rate.Details, error)
}

type QuoteSource interface {
	Quotes(ctx context.Context) (*rate.Listing, error)
}

type Handler struct {
	controller *Controller
	refresher  Refresher
	details    DetailsSource
	quotes     QuoteSource
	validator  *validator.Validate
	logger     *slog.Logger
}

type HandlerConfig struct {
	Controller *Controller
	Refresher  Refresher
	Details    DetailsSource
	Quotes     QuoteSource
	Logger     *slog.Logger
}

func NewHandler(cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		controller: cfg.Controller,
		refresher:  cfg.Refresher,
		details:    cfg.Details,
		quotes:     cfg.Quotes,
		validator:  core.NewValidator(),
		logger:     logger.With(slog.String("component", "currency_api")),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/currencies", func(r chi.Router) {
		r.Get("/", h.ListCurrencies)
		r.Post("/", h.CreateCurrency)
		r.Get("/stats", h.GetStats)
		r.Get("/provider", h.ListProviderQuotes)
		r.Get("/{currencyID}", h.GetCurrency)
	})
	r.Get("/exchange", h.CalculateExchange)
}

// Refresh runs an on-demand refresh when the request asks for one. Failures
// are logged and the stored rates are served as they are.
func (h *Handler) Refresh(r *http.Request) {
	if h.refresher == nil || core.QueryParam(r, "refresh", "") != "true" {
		return
	}
	if err := h.refresher.RefreshRates(r.Context()); err != nil {
		h.logger.WarnContext(r.Context(), "on-demand refresh failed", "error", err)
	}
}

func (h *Handler) ListCurrencies(w http.ResponseWriter, r *http.Request) {
	h.Refresh(r)

	currencies, err := h.controller.ListCurrencies(r.Context())
	if err != nil {
		core.JSONError(w, r, err)
		return
	}

	core.OK(w, r, core.M{
		"currencies":  ToCurrencyResponseList(currencies),
		"count":       len(currencies),
		"last_update": h.lastUpdate(currencies),
	})
}

func (h *Handler) lastUpdate(currencies []model.Currency) *time.Time {
	if h.refresher != nil {
		if t := h.refresher.LastRefresh(); t != nil {
			return t
		}
	}
	return LatestUpdate(currencies)
}

func (h *Handler) CreateCurrency(w http.ResponseWriter, r *http.Request) {
	body := core.ReadJSONBody(r)
	if body == nil {
		core.BadRequest(w, r, "Invalid JSON body")
		return
	}

	var req CreateCurrencyRequest
	if err := core.Bind(body, &req); err != nil {
		core.BadRequest(w, r, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, r, core.FormatValidationError(err))
		return
	}

	id, result, err := h.controller.CreateCurrency(r.Context(),
		req.NumCode, req.CharCode, req.Name, req.Value, req.NominalOrDefault())

	switch result {
	case Created:
	case DuplicateKey:
		core.BadRequest(w, r, "Currency with this char code already exists")
		return
	case ValidationFailed:
		core.BadRequest(w, r, core.FromError(err).Message)
		return
	default:
		core.InternalServerError(w, r, err)
		return
	}

	cur, err := h.controller.GetCurrency(r.Context(), id)
	if err != nil || cur == nil {
		core.Created(w, r, core.M{
			"message": "Currency created successfully",
			"id":      id,
		})
		return
	}

	core.Created(w, r, core.M{
		"message":  "Currency created successfully",
		"currency": ToCurrencyResponse(cur),
	})
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.controller.CurrencyStats(r.Context())
	if err != nil {
		core.JSONError(w, r, err)
		return
	}

	core.OK(w, r, core.M{"stats": stats})
}

// GetCurrency resolves a numeric id or a char code against the store. Only
// an unknown char code falls back to the provider's live record.
func (h *Handler) GetCurrency(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := chi.URLParam(r, "currencyID")

	id, byID := core.ParseID(key)

	var (
		cur *model.Currency
		err error
	)
	if byID {
		cur, err = h.controller.GetCurrency(ctx, id)
	} else {
		cur, err = h.controller.GetCurrencyByCode(ctx, key)
	}
	if err != nil {
		core.JSONError(w, r, err)
		return
	}
	if cur != nil {
		core.OK(w, r, core.M{"currency": ToCurrencyResponse(cur)})
		return
	}

	if byID || h.details == nil || !model.IsCharCode(model.NormalizeCharCode(key)) {
		core.NotFound(w, r, "Currency not found")
		return
	}

	details, err := h.details.Details(ctx, key)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, r, "Currency not found")
			return
		}
		core.JSONError(w, r, err)
		return
	}

	core.OK(w, r, core.M{"currency": details})
}

// ListProviderQuotes lists every currency the provider currently quotes,
// whether or not it is tracked locally.
func (h *Handler) ListProviderQuotes(w http.ResponseWriter, r *http.Request) {
	if h.quotes == nil {
		core.NotFound(w, r, "Provider listing is not available")
		return
	}

	listing, err := h.quotes.Quotes(r.Context())
	if err != nil {
		core.JSONError(w, r, err)
		return
	}

	core.OK(w, r, core.M{
		"currencies": listing.Quotes,
		"count":      len(listing.Quotes),
		"skipped":    listing.Skipped,
		"timestamp":  listing.Timestamp,
	})
}

func (h *Handler) CalculateExchange(w http.ResponseWriter, r *http.Request) {
	amount, err := strconv.ParseFloat(core.QueryParam(r, "amount", "1"), 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		core.BadRequest(w, r, "Invalid parameters")
		return
	}

	from := model.NormalizeCharCode(core.QueryParam(r, "from", "USD"))
	to := model.NormalizeCharCode(core.QueryParam(r, "to", rate.PivotCode))

	result, err := h.controller.CalculateExchange(r.Context(), amount, from, to)
	if err != nil {
		if errors.Is(err, core.ErrStore) {
			core.InternalServerError(w, r, err)
			return
		}
		h.logger.InfoContext(r.Context(), "exchange rejected",
			"from", from,
			"to", to,
			"error", err,
		)
		core.BadRequest(w, r, "Could not calculate exchange")
		return
	}

	effective := 0.0
	if amount > 0 {
		effective = result / amount
	}

	core.OK(w, r, core.M{
		"amount": amount,
		"from":   from,
		"to":     to,
		"result": result,
		"rate":   effective,
	})
}
