// AngelaMos | 2026
// handler.go

package user

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/currency-tracker/internal/core"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: core.NewValidator(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.ListUsers)
		r.Post("/", h.CreateUser)
		r.Get("/{userID}", h.GetUser)
		r.Put("/{userID}", h.UpdateUser)
		r.Delete("/{userID}", h.DeleteUser)
		r.Post("/{userID}/subscribe", h.Subscribe)
		r.Post("/{userID}/unsubscribe", h.Unsubscribe)
	})
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		core.JSONError(w, r, err)
		return
	}

	core.OK(w, r, core.M{
		"users": ToUserResponseList(users),
		"count": len(users),
	})
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := core.ParseID(chi.URLParam(r, "userID"))
	if !ok {
		core.BadRequest(w, r, "Invalid user ID")
		return
	}

	profile, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	core.OK(w, r, core.M{"user": ToProfileResponse(profile)})
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !h.decode(w, r, &req) {
		return
	}

	u, err := h.service.CreateUser(r.Context(), req.Name)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	core.Created(w, r, core.M{
		"message": "User created successfully",
		"user":    ToUserResponse(u),
	})
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := core.ParseID(chi.URLParam(r, "userID"))
	if !ok {
		core.BadRequest(w, r, "Invalid user ID")
		return
	}

	var req UpdateUserRequest
	if !h.decode(w, r, &req) {
		return
	}

	u, err := h.service.UpdateUser(r.Context(), userID, req.Name)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	core.OK(w, r, core.M{
		"message": "User updated successfully",
		"user":    ToUserResponse(u),
	})
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := core.ParseID(chi.URLParam(r, "userID"))
	if !ok {
		core.BadRequest(w, r, "Invalid user ID")
		return
	}

	if err := h.service.DeleteUser(r.Context(), userID); err != nil {
		h.fail(w, r, err)
		return
	}

	core.OK(w, r, core.M{"message": "User deleted successfully"})
}

func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID, ok := core.ParseID(chi.URLParam(r, "userID"))
	if !ok {
		core.BadRequest(w, r, "Invalid user ID")
		return
	}

	var req SubscriptionRequest
	if !h.decode(w, r, &req) {
		return
	}

	sub, err := h.service.Subscribe(r.Context(), userID, *req.CurrencyID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	core.Created(w, r, core.M{
		"message":      "Subscription added successfully",
		"subscription": ToSubscriptionResponse(sub),
	})
}

func (h *Handler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	userID, ok := core.ParseID(chi.URLParam(r, "userID"))
	if !ok {
		core.BadRequest(w, r, "Invalid user ID")
		return
	}

	var req SubscriptionRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.service.Unsubscribe(r.Context(), userID, *req.CurrencyID); err != nil {
		h.fail(w, r, err)
		return
	}

	core.OK(w, r, core.M{"message": "Subscription removed successfully"})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := core.ReadJSONBody(r)
	if body == nil {
		core.BadRequest(w, r, "Invalid JSON body")
		return false
	}

	if err := core.Bind(body, dst); err != nil {
		core.BadRequest(w, r, "Invalid request body")
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		core.BadRequest(w, r, core.FormatValidationError(err))
		return false
	}

	return true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrUserNotFound):
		core.NotFound(w, r, "User not found")
	case errors.Is(err, ErrCurrencyNotFound):
		core.NotFound(w, r, "Currency not found")
	case errors.Is(err, ErrSubscriptionAbsent):
		core.NotFound(w, r, "Subscription not found")
	case errors.Is(err, ErrAlreadySubscribed):
		core.BadRequest(w, r, "User is already subscribed to this currency")
	default:
		core.JSONError(w, r, err)
	}
}
