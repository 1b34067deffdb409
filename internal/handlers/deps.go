package handlers

import (
	"log/slog"

	"firebase.google.com/go/v4/auth"

	"github.com/GregMSThompson/explorer-guide/internal/response"
)

type Deps struct {
	Log             *slog.Logger
	ResponseHandler response.ResponseHandler
	GuideSvc        GuideService
	// Firebase is nil when caller authentication is disabled.
	Firebase *auth.Client
}
