// AngelaMos | 2026
// handler.go

package page

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/currency-tracker/internal/config"
	"github.com/carterperez-dev/currency-tracker/internal/core"
	"github.com/carterperez-dev/currency-tracker/internal/currency"
	"github.com/carterperez-dev/currency-tracker/internal/model"
	"github.com/carterperez-dev/currency-tracker/internal/rate"
	"github.com/carterperez-dev/currency-tracker/internal/user"
)

const (
	modelsCount    = 5
	templatesCount = 6
)

// Catalog is the slice of the store the pages read directly.
type Catalog interface {
	Statistics(ctx context.Context) (model.Statistics, error)
	ReadApp(ctx context.Context) (*model.App, error)
}

type Handler struct {
	catalog    Catalog
	users      *user.Service
	currencies *currency.Controller
	refresher  currency.Refresher
	renderer   Renderer
	app        config.AppConfig
	logger     *slog.Logger
}

type HandlerConfig struct {
	Catalog    Catalog
	Users      *user.Service
	Currencies *currency.Controller
	Refresher  currency.Refresher
	Renderer   Renderer
	App        config.AppConfig
	Logger     *slog.Logger
}

func NewHandler(cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		catalog:    cfg.Catalog,
		users:      cfg.Users,
		currencies: cfg.Currencies,
		refresher:  cfg.Refresher,
		renderer:   cfg.Renderer,
		app:        cfg.App,
		logger:     logger.With(slog.String("component", "pages")),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Index)
	r.Get("/author", h.Author)
	r.Get("/users", h.Users)
	r.Get("/user", h.User)
	r.Get("/currencies", h.Currencies)
	r.Get("/currency/update", h.UpdateCurrencies)
	r.Get("/currency/delete", h.DeleteCurrency)
	r.Get("/currency/show", h.ShowCurrencies)
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	stats, err := h.catalog.Statistics(r.Context())
	if err != nil {
		h.renderError(w, r, http.StatusInternalServerError, "Ошибка сервера", err)
		return
	}

	data := h.base(r.Context(), "Главная")
	data["users_count"] = stats.UserCount
	data["currencies_count"] = stats.CurrencyCount
	data["subscriptions_count"] = stats.SubscriptionCount
	data["last_update"] = h.lastUpdate(stats.LastUpdate)

	h.render(w, r, http.StatusOK, "index.html", data)
}

func (h *Handler) Author(w http.ResponseWriter, r *http.Request) {
	data := h.base(r.Context(), "Об авторе")
	data["models_count"] = modelsCount
	data["templates_count"] = templatesCount

	h.render(w, r, http.StatusOK, "author.html", data)
}

func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		h.renderError(w, r, http.StatusInternalServerError, "Ошибка сервера", err)
		return
	}

	data := h.base(r.Context(), "Пользователи")
	data["users"] = users

	h.render(w, r, http.StatusOK, "users.html", data)
}

func (h *Handler) User(w http.ResponseWriter, r *http.Request) {
	raw := core.QueryParam(r, "id", "")
	if raw == "" {
		h.renderError(w, r, http.StatusBadRequest, "User ID is required", nil)
		return
	}

	id, ok := core.ParseID(raw)
	if !ok {
		h.renderError(w, r, http.StatusBadRequest, "Invalid user ID", nil)
		return
	}

	profile, err := h.users.GetUser(r.Context(), id)
	if errors.Is(err, core.ErrNotFound) {
		h.renderError(w, r, http.StatusNotFound, "User not found", nil)
		return
	}
	if err != nil {
		h.renderError(w, r, http.StatusInternalServerError, "Ошибка сервера", err)
		return
	}

	all, err := h.currencies.ListCurrencies(r.Context())
	if err != nil {
		h.renderError(w, r, http.StatusInternalServerError, "Ошибка сервера", err)
		return
	}

	data := h.base(r.Context(), profile.Name)
	data["user"] = profile.UserSummary
	data["subscriptions"] = profile.Subscriptions
	data["all_currencies"] = all

	h.render(w, r, http.StatusOK, "user.html", data)
}

func (h *Handler) Currencies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.refresher != nil && core.QueryParam(r, "refresh", "") == "true" {
		if err := h.refresher.RefreshRates(ctx); err != nil {
			h.logger.WarnContext(ctx, "on-demand refresh failed", "error", err)
		}
	}

	list, err := h.currencies.ListCurrencies(ctx)
	if err != nil {
		h.renderError(w, r, http.StatusInternalServerError, "Ошибка сервера", err)
		return
	}

	data := h.base(ctx, "Валюты")
	data["currencies"] = list
	data["stats"] = currency.ComputeStats(list)
	data["last_update"] = h.lastUpdate(currency.LatestUpdate(list))

	h.render(w, r, http.StatusOK, "currencies.html", data)
}

// UpdateCurrencies applies every ?XXX=value pair whose key is a three letter
// code and whose value parses as a rate.
func (h *Handler) UpdateCurrencies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	updates := make(map[string]float64)
	for key, values := range r.URL.Query() {
		if len(key) != 3 || len(values) == 0 {
			continue
		}
		code := model.NormalizeCharCode(key)
		value, err := rate.Normalize(values[0], 1, code)
		if err != nil {
			continue
		}
		updates[code] = value
	}

	if len(updates) == 0 {
		h.renderError(w, r, http.StatusBadRequest, "No valid currency updates provided", nil)
		return
	}

	failed := make([]string, 0)
	for code, value := range updates {
		if !h.currencies.UpdateCurrency(ctx, code, value) {
			failed = append(failed, code)
		}
	}

	if len(failed) > 0 {
		h.renderError(w, r, http.StatusBadRequest,
			"Failed to update: "+strings.Join(failed, ", "), nil)
		return
	}

	http.Redirect(w, r, "/currencies", http.StatusFound)
}

func (h *Handler) DeleteCurrency(w http.ResponseWriter, r *http.Request) {
	raw := core.QueryParam(r, "id", "")
	if raw == "" {
		h.renderError(w, r, http.StatusBadRequest, "Currency ID is required", nil)
		return
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Invalid currency ID", nil)
		return
	}

	if !h.currencies.DeleteCurrency(r.Context(), id) {
		h.renderError(w, r, http.StatusNotFound, "Currency not found", nil)
		return
	}

	http.Redirect(w, r, "/currencies", http.StatusFound)
}

func (h *Handler) ShowCurrencies(w http.ResponseWriter, r *http.Request) {
	list, err := h.currencies.ListCurrencies(r.Context())
	if err != nil {
		core.JSONError(w, r, err)
		return
	}

	core.OK(w, r, core.M{
		"count":      len(list),
		"currencies": currency.ToCurrencyResponseList(list),
	})
}

// NotFound answers unmatched routes with JSON under /api and an HTML page
// everywhere else.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	if isAPI(r) {
		core.NotFound(w, r, "Endpoint not found")
		return
	}
	h.renderError(w, r, http.StatusNotFound, "Страница не найдена", nil)
}

func isAPI(r *http.Request) bool {
	return r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/")
}

func (h *Handler) base(ctx context.Context, title string) map[string]any {
	data := map[string]any{
		"title":        title,
		"app_name":     h.app.Name,
		"app_version":  h.app.Version,
		"author_name":  h.app.AuthorName,
		"author_group": h.app.AuthorGroup,
		"author":       model.Author{Name: h.app.AuthorName, Group: h.app.AuthorGroup},
	}

	if h.catalog == nil {
		return data
	}

	app, err := h.catalog.ReadApp(ctx)
	if err != nil {
		if !errors.Is(err, core.ErrNotFound) {
			h.logger.WarnContext(ctx, "read app failed", "error", err)
		}
		return data
	}

	data["app_name"] = app.Name
	data["app_version"] = app.Version
	data["author_name"] = app.Author.Name
	data["author_group"] = app.Author.Group
	data["author"] = app.Author
	return data
}

func (h *Handler) lastUpdate(fallback any) any {
	if h.refresher != nil {
		if t := h.refresher.LastRefresh(); t != nil {
			return t
		}
	}
	return fallback
}

func (h *Handler) render(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	name string,
	data map[string]any,
) {
	body, err := h.renderer.Render(name, data)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "render failed",
			"template", name,
			"error", err,
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError),
			http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (h *Handler) renderError(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	message string,
	cause error,
) {
	if cause != nil {
		h.logger.ErrorContext(r.Context(), "page failed",
			"path", r.URL.Path,
			"error", cause,
		)
	}

	data := h.base(r.Context(), strconv.Itoa(status))
	data["error_code"] = status
	data["error_message"] = message
	h.render(w, r, status, "error.html", data)
}
