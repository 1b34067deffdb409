package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/GregMSThompson/explorer-guide/internal/errs"
	"github.com/GregMSThompson/explorer-guide/pkg/logger"
)

// InternalErrorDetail is the only detail clients see for server-side failures.
const InternalErrorDetail = "An internal error occurred while generating the guide."

type ErrorResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code"`
}

func (h *responseHandler) WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Detail: message,
		Code:   code,
	}); err != nil {
		// Use context logger if encoding fails
		log := logger.FromContext(r.Context())
		log.Error("failed to encode error response", "error", err, "status", status, "code", code)
	}
}

// HandleError logs err with full detail and writes a response that exposes only
// the error kind. Client errors keep their message.
func (h *responseHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	kind := errs.KindOf(err)

	var (
		validation   *errs.ValidationError
		forbidden    *errs.ForbiddenError
		ext          *errs.ExternalServiceError
		db           *errs.DatabaseError
		notConverged *errs.NotConvergedError
	)
	switch {
	case errors.As(err, &validation):
		log.Warn("validation failed", "error", validation.Message)
		h.WriteError(w, r, http.StatusBadRequest, string(kind), validation.Message)
		return

	case errors.As(err, &forbidden):
		log.Warn("forbidden", "error", forbidden.Message)
		h.WriteError(w, r, http.StatusForbidden, string(kind), forbidden.Message)
		return

	case errors.As(err, &ext):
		level := slog.LevelError
		if ext.Transient {
			level = slog.LevelWarn
		}
		log.Log(r.Context(), level, "external service error",
			"service", ext.Service,
			"transient", ext.Transient,
			"error", err)

	case errors.As(err, &db):
		log.Error("database error",
			"operation", db.Operation,
			"error", err)

	case errors.As(err, &notConverged):
		log.Error("agent did not converge", "rounds", notConverged.Rounds)

	default:
		log.Error("unexpected error",
			"error", err,
			"type", fmt.Sprintf("%T", err))
	}

	h.WriteError(w, r, http.StatusInternalServerError, string(kind), InternalErrorDetail)
}
