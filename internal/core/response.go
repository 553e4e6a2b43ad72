// AngelaMos | 2026
// response.go

package core

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
)

// M is a JSON object payload. Every response carries "success" alongside it.
type M map[string]any

func JSON(w http.ResponseWriter, r *http.Request, status int, payload M) {
	body := make(M, len(payload)+1)
	for k, v := range payload {
		body[k] = v
	}
	if _, ok := body["success"]; !ok {
		body["success"] = status < http.StatusBadRequest
	}

	render.Status(r, status)
	render.JSON(w, r, body)
}

func OK(w http.ResponseWriter, r *http.Request, payload M) {
	JSON(w, r, http.StatusOK, payload)
}

func Created(w http.ResponseWriter, r *http.Request, payload M) {
	JSON(w, r, http.StatusCreated, payload)
}

func Fail(w http.ResponseWriter, r *http.Request, status int, message string) {
	JSON(w, r, status, M{
		"success": false,
		"message": message,
	})
}

func BadRequest(w http.ResponseWriter, r *http.Request, message string) {
	Fail(w, r, http.StatusBadRequest, message)
}

func NotFound(w http.ResponseWriter, r *http.Request, message string) {
	Fail(w, r, http.StatusNotFound, message)
}

func InternalServerError(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	Fail(w, r, http.StatusInternalServerError, "Internal server error")
}

func JSONError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := FromError(err)
	if appErr.StatusCode >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"code", appErr.Code,
			"error", err,
		)
	}

	JSON(w, r, appErr.StatusCode, M{
		"success": false,
		"message": appErr.Message,
		"code":    appErr.Code,
	})
}
