package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/GregMSThompson/explorer-guide/internal/dto"
	"github.com/GregMSThompson/explorer-guide/internal/errs"
	"github.com/GregMSThompson/explorer-guide/internal/middleware"
	"github.com/GregMSThompson/explorer-guide/pkg/logger"
)

type stubGuideService struct {
	called    bool
	uid       string
	sessionID string
	prompt    string
	resp      dto.GenerateResponse
	err       error
}

func (s *stubGuideService) Generate(ctx context.Context, uid, sessionID, prompt string) (dto.GenerateResponse, error) {
	s.called = true
	s.uid = uid
	s.sessionID = sessionID
	s.prompt = prompt
	return s.resp, s.err
}

func (s *stubGuideService) Region() string { return "Colorado" }

type stubResponseHandler struct {
	writeSuccessCalled bool
	writeSuccessStatus int
	writeSuccessData   any

	handleErrorCalled bool
	handleError       error
}

func (s *stubResponseHandler) WriteSuccess(w http.ResponseWriter, r *http.Request, status int, data any) {
	s.writeSuccessCalled = true
	s.writeSuccessStatus = status
	s.writeSuccessData = data
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *stubResponseHandler) WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	w.WriteHeader(status)
}

func (s *stubResponseHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	s.handleErrorCalled = true
	s.handleError = err
	w.WriteHeader(http.StatusInternalServerError)
}

func newGenerateRequest(body string, uid string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate", strings.NewReader(body))
	ctx := logger.ToContext(req.Context(), slog.New(logger.NewTestHandler(slog.LevelInfo)))
	if uid != "" {
		ctx = context.WithValue(ctx, middleware.UIDKey, uid)
	}
	return req.WithContext(ctx)
}

func TestGenerateHandlerSuccess(t *testing.T) {
	svc := &stubGuideService{resp: dto.GenerateResponse{Response: "Here are three trails...", SessionID: "s1"}}
	resp := &stubResponseHandler{}
	h := NewGuideHandlers(&Deps{ResponseHandler: resp, GuideSvc: svc})

	rr := httptest.NewRecorder()
	h.Generate(rr, newGenerateRequest(`{"user_id":"u1","prompt":"Best hikes near Denver?","session_id":"s1"}`, ""))

	if !svc.called || svc.uid != "u1" || svc.sessionID != "s1" || svc.prompt != "Best hikes near Denver?" {
		t.Fatalf("service called with unexpected args: %+v", svc)
	}
	if !resp.writeSuccessCalled || resp.writeSuccessStatus != http.StatusOK {
		t.Fatalf("WriteSuccess not called with status 200")
	}
	var body dto.GenerateResponse
	json.NewDecoder(rr.Body).Decode(&body)
	if body.Response != "Here are three trails..." || body.SessionID != "s1" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestGenerateHandlerValidation(t *testing.T) {
	cases := map[string]string{
		"invalid json":       "not-json",
		"missing user_id":    `{"prompt":"hi","session_id":"s1"}`,
		"empty prompt":       `{"user_id":"u1","prompt":"","session_id":"s1"}`,
		"blank session_id":   `{"user_id":"u1","prompt":"hi","session_id":"  "}`,
		"wrong type user_id": `{"user_id":7,"prompt":"hi","session_id":"s1"}`,
	}
	for name, body := range cases {
		svc := &stubGuideService{}
		resp := &stubResponseHandler{}
		h := NewGuideHandlers(&Deps{ResponseHandler: resp, GuideSvc: svc})

		h.Generate(httptest.NewRecorder(), newGenerateRequest(body, ""))

		if svc.called {
			t.Fatalf("%s: service should not be called", name)
		}
		var valErr *errs.ValidationError
		if !errors.As(resp.handleError, &valErr) {
			t.Fatalf("%s: expected ValidationError, got %T", name, resp.handleError)
		}
	}
}

func TestGenerateHandlerRejectsOtherUser(t *testing.T) {
	svc := &stubGuideService{}
	resp := &stubResponseHandler{}
	h := NewGuideHandlers(&Deps{ResponseHandler: resp, GuideSvc: svc})

	h.Generate(httptest.NewRecorder(), newGenerateRequest(`{"user_id":"u2","prompt":"hi","session_id":"s1"}`, "u1"))

	if svc.called {
		t.Fatalf("service should not be called for another user's session")
	}
	var forbidden *errs.ForbiddenError
	if !errors.As(resp.handleError, &forbidden) {
		t.Fatalf("expected ForbiddenError, got %T", resp.handleError)
	}
}

func TestGenerateHandlerServiceError(t *testing.T) {
	svc := &stubGuideService{err: errors.New("boom")}
	resp := &stubResponseHandler{}
	h := NewGuideHandlers(&Deps{ResponseHandler: resp, GuideSvc: svc})

	h.Generate(httptest.NewRecorder(), newGenerateRequest(`{"user_id":"u1","prompt":"hi","session_id":"s1"}`, "u1"))

	if !svc.called {
		t.Fatalf("expected service to be called")
	}
	if !resp.handleErrorCalled || resp.handleError.Error() != "boom" {
		t.Fatalf("expected HandleError with service error")
	}
}
