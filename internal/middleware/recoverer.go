package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/GregMSThompson/explorer-guide/internal/errs"
	"github.com/GregMSThompson/explorer-guide/internal/response"
	"github.com/GregMSThompson/explorer-guide/pkg/logger"
)

type recoverer struct {
	Errors errorWriter
}

func NewRecoverer(errWriter errorWriter) *recoverer {
	return &recoverer{Errors: errWriter}
}

// Recoverer turns a panic in the handler chain into the generic internal error body.
func (m *recoverer) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			log := logger.FromContext(r.Context())
			log.Error("panic recovered", "panic", rec, "stack", string(debug.Stack()))
			m.Errors.WriteError(w, r, http.StatusInternalServerError, string(errs.KindInternal), response.InternalErrorDetail)
		}()

		next.ServeHTTP(w, r)
	})
}
