package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/explorer-guide/internal/dto"
	"github.com/GregMSThompson/explorer-guide/internal/errs"
	"github.com/GregMSThompson/explorer-guide/internal/middleware"
	"github.com/GregMSThompson/explorer-guide/internal/response"
)

type GuideService interface {
	Generate(ctx context.Context, uid, sessionID, prompt string) (dto.GenerateResponse, error)
	Region() string
}

type guideHandlers struct {
	ResponseHandler response.ResponseHandler
	GuideSvc        GuideService
}

func NewGuideHandlers(deps *Deps) *guideHandlers {
	return &guideHandlers{
		ResponseHandler: deps.ResponseHandler,
		GuideSvc:        deps.GuideSvc,
	}
}

func (h *guideHandlers) GuideRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/generate", h.Generate)
	return r
}

func (h *guideHandlers) Generate(w http.ResponseWriter, r *http.Request) {
	var body dto.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("request body must be a JSON object"))
		return
	}
	if err := validateGenerate(body); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	// With auth enabled the verified token decides who the caller is.
	if uid := middleware.UID(r.Context()); uid != "" && uid != body.UserID {
		h.ResponseHandler.HandleError(w, r, errs.NewForbiddenError("user_id does not match the authenticated user"))
		return
	}

	resp, err := h.GuideSvc.Generate(r.Context(), body.UserID, body.SessionID, body.Prompt)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, resp)
}

func validateGenerate(body dto.GenerateRequest) error {
	for _, f := range []struct{ name, value string }{
		{"user_id", body.UserID},
		{"prompt", body.Prompt},
		{"session_id", body.SessionID},
	} {
		if strings.TrimSpace(f.value) == "" {
			return errs.NewValidationError(fmt.Sprintf("%s is required", f.name))
		}
	}
	return nil
}
