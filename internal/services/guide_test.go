package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/GregMSThompson/explorer-guide/internal/dto"
	"github.com/GregMSThompson/explorer-guide/internal/models"
	"github.com/GregMSThompson/explorer-guide/internal/tools"
	"github.com/GregMSThompson/explorer-guide/pkg/helpers"
)

type fakeHistory struct {
	turns     map[string][]models.Message
	appendErr error
	appends   int
}

func newFakeHistory() *fakeHistory {
	return &fakeHistory{turns: map[string][]models.Message{}}
}

func (f *fakeHistory) Get(ctx context.Context, uid, sessionID string) ([]models.Message, error) {
	return append([]models.Message(nil), f.turns[uid+"/"+sessionID]...), nil
}

func (f *fakeHistory) Append(ctx context.Context, uid, sessionID string, human, assistant models.Message) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appends++
	key := uid + "/" + sessionID
	f.turns[key] = append(f.turns[key], human, assistant)
	return nil
}

func newTestGuide(vertex *fakeVertexClient, places *fakePlaces, history *fakeHistory) *guideService {
	svc := NewGuideService(vertex, tools.NewRegistry(tools.SearchPlaces(places, "Colorado", time.Second)), history, GuideOptions{})
	fixed := time.Date(2025, time.July, 4, 10, 0, 0, 0, time.UTC)
	svc.clockNow = func() time.Time { return fixed }
	svc.agent.clockNow = svc.clockNow
	return svc
}

func TestGenerateDenverScenario(t *testing.T) {
	places := &fakePlaces{results: []dto.PlaceRecord{{Name: "Mount Falcon"}}}
	vertex := &fakeVertexClient{responses: []dto.VertexGenerateResponse{
		toolCallResponse(dto.VertexToolCall{ID: "c1", Name: tools.SearchPlacesName, Args: map[string]any{"query": "hikes near Denver"}}),
		{Text: "Here are three trails..."},
	}}
	history := newFakeHistory()
	svc := newTestGuide(vertex, places, history)

	resp, err := svc.Generate(helpers.TestCtx(), "u1", "s1", "Best hikes near Denver?")
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if resp != (dto.GenerateResponse{Response: "Here are three trails...", SessionID: "s1"}) {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if len(vertex.requests) != 2 || len(places.queries) != 1 {
		t.Fatalf("expected 2 model calls and 1 tool call, got %d and %d", len(vertex.requests), len(places.queries))
	}

	got := history.turns["u1/s1"]
	if len(got) != 2 {
		t.Fatalf("expected only prompt and answer persisted, got %d messages", len(got))
	}
	if got[0].Role != models.RoleUser || got[0].Content != "Best hikes near Denver?" {
		t.Fatalf("unexpected human message: %+v", got[0])
	}
	if got[1].Role != models.RoleAssistant || got[1].Content != "Here are three trails..." || len(got[1].ToolCalls) != 0 {
		t.Fatalf("unexpected assistant message: %+v", got[1])
	}
}

func TestGenerateFeedsHistoryAfterSystemPrompt(t *testing.T) {
	vertex := &fakeVertexClient{responses: []dto.VertexGenerateResponse{{Text: "first"}, {Text: "second"}}}
	history := newFakeHistory()
	svc := newTestGuide(vertex, &fakePlaces{}, history)
	ctx := helpers.TestCtx()

	if _, err := svc.Generate(ctx, "u1", "s1", "one"); err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if _, err := svc.Generate(ctx, "u1", "s1", "dos"); err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	req := vertex.requests[1]
	if !strings.Contains(req.System, "Explorer") || !strings.Contains(req.System, "same language") {
		t.Fatalf("system prompt missing persona or language rule: %q", req.System)
	}
	if len(req.Contents) != 3 {
		t.Fatalf("expected history plus new prompt, got %d contents", len(req.Contents))
	}
	if *req.Contents[0].Parts[0].Text != "one" || *req.Contents[1].Parts[0].Text != "first" || *req.Contents[2].Parts[0].Text != "dos" {
		t.Fatalf("unexpected content order: %+v", req.Contents)
	}
	if len(history.turns["u1/s1"]) != 4 {
		t.Fatalf("expected 4 persisted messages, got %d", len(history.turns["u1/s1"]))
	}
	for _, msg := range history.turns["u1/s1"] {
		if msg.Role == models.RoleSystem {
			t.Fatalf("system prompt must not be persisted")
		}
	}
}

func TestGenerateModelFailureLeavesHistoryUntouched(t *testing.T) {
	vertex := &fakeVertexClient{errs: []error{errors.New("boom")}}
	history := newFakeHistory()
	svc := newTestGuide(vertex, &fakePlaces{}, history)

	if _, err := svc.Generate(helpers.TestCtx(), "u1", "s1", "hi"); err == nil {
		t.Fatalf("expected error")
	}
	if history.appends != 0 {
		t.Fatalf("history must not change on failure")
	}
}

func TestGenerateAppendFailurePropagates(t *testing.T) {
	vertex := &fakeVertexClient{responses: []dto.VertexGenerateResponse{{Text: "ok"}}}
	history := newFakeHistory()
	history.appendErr = errors.New("disk full")
	svc := newTestGuide(vertex, &fakePlaces{}, history)

	if _, err := svc.Generate(helpers.TestCtx(), "u1", "s1", "hi"); err == nil {
		t.Fatalf("expected append error")
	}
}

func TestGenerateSessionsAreIsolated(t *testing.T) {
	vertex := &fakeVertexClient{responses: []dto.VertexGenerateResponse{{Text: "a"}, {Text: "b"}}}
	history := newFakeHistory()
	svc := newTestGuide(vertex, &fakePlaces{}, history)
	ctx := helpers.TestCtx()

	svc.Generate(ctx, "u1", "s1", "one")
	svc.Generate(ctx, "u1", "s2", "two")

	if len(vertex.requests[1].Contents) != 1 {
		t.Fatalf("session s2 must not see s1 history")
	}
	if len(history.turns["u1/s1"]) != 2 || len(history.turns["u1/s2"]) != 2 {
		t.Fatalf("unexpected history sizes: %v", history.turns)
	}
}

func TestNewGuideServiceDefaultsRegion(t *testing.T) {
	svc := NewGuideService(&fakeVertexClient{}, tools.NewRegistry(), newFakeHistory(), GuideOptions{})
	if svc.Region() != "Colorado" {
		t.Fatalf("expected default region, got %q", svc.Region())
	}
	if svc.agent.maxRounds != DefaultMaxRounds || svc.agent.llmTimeout != DefaultLLMTimeout {
		t.Fatalf("expected loop defaults")
	}
}
