package handlers

import (
	"fmt"
	"net/http"

	"github.com/GregMSThompson/explorer-guide/internal/dto"
	"github.com/GregMSThompson/explorer-guide/internal/response"
)

type rootHandlers struct {
	ResponseHandler response.ResponseHandler
	region          string
}

func NewRootHandlers(deps *Deps) *rootHandlers {
	region := "Colorado"
	if deps.GuideSvc != nil {
		region = deps.GuideSvc.Region()
	}
	return &rootHandlers{ResponseHandler: deps.ResponseHandler, region: region}
}

func (h *rootHandlers) Welcome(w http.ResponseWriter, r *http.Request) {
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, dto.WelcomeResponse{
		Message: fmt.Sprintf("Welcome to the %s Explorer AI Guide API", h.region),
	})
}

func (h *rootHandlers) Health(w http.ResponseWriter, r *http.Request) {
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
