package vertexclient

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GregMSThompson/explorer-guide/internal/dto"
	"github.com/GregMSThompson/explorer-guide/pkg/helpers"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("call-%d", n)
	}
}

func TestParseContentResponseTextAndCalls(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Role: "model",
				Parts: []genai.Part{
					genai.Text("Looking that up. "),
					&genai.FunctionCall{Name: "search_places", Args: map[string]any{"query": "hikes near Denver"}},
					genai.Text("One moment."),
					&genai.FunctionCall{Name: "web_search", Args: map[string]any{"query": "trail closures"}},
				},
			},
		}},
	}

	text, calls := parseContentResponse(resp, sequentialIDs())

	if text != "Looking that up. One moment." {
		t.Fatalf("text mismatch: %q", text)
	}
	if len(calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(calls))
	}
	if calls[0].ID != "call-1" || calls[0].Name != "search_places" || calls[0].Args["query"] != "hikes near Denver" {
		t.Fatalf("unexpected first call: %+v", calls[0])
	}
	if calls[1].ID != "call-2" || calls[1].Name != "web_search" {
		t.Fatalf("unexpected second call: %+v", calls[1])
	}
}

func TestParseContentResponseEmpty(t *testing.T) {
	text, calls := parseContentResponse(nil, sequentialIDs())
	if text != "" || calls != nil {
		t.Fatalf("expected empty result for nil response")
	}

	text, calls = parseContentResponse(&genai.GenerateContentResponse{}, sequentialIDs())
	if text != "" || calls != nil {
		t.Fatalf("expected empty result for no candidates")
	}
}

func TestToGenaiContentsSkipsEmptyAndMapsParts(t *testing.T) {
	contents := []dto.VertexContent{
		{Role: "user", Parts: []dto.VertexPart{{Text: helpers.Ptr("Best hikes near Denver?")}}},
		{Role: "model", Parts: nil},
		{Role: "model", Parts: []dto.VertexPart{{FunctionCall: &dto.VertexToolCall{ID: "c1", Name: "search_places", Args: map[string]any{"query": "hikes"}}}}},
		{Role: "user", Parts: []dto.VertexPart{
			{FunctionResponse: &dto.VertexToolResult{ID: "c1", Name: "search_places", Response: map[string]any{"results": []any{}}}},
		}},
	}

	out := toGenaiContents(contents)

	if len(out) != 3 {
		t.Fatalf("expected empty content to be dropped, got %d contents", len(out))
	}
	if out[0].Role != "user" || out[0].Parts[0] != genai.Text("Best hikes near Denver?") {
		t.Fatalf("unexpected first content: %+v", out[0])
	}
	call, ok := out[1].Parts[0].(genai.FunctionCall)
	if !ok || call.Name != "search_places" {
		t.Fatalf("expected function call part, got %#v", out[1].Parts[0])
	}
	resp, ok := out[2].Parts[0].(genai.FunctionResponse)
	if !ok || resp.Name != "search_places" {
		t.Fatalf("expected function response part, got %#v", out[2].Parts[0])
	}
}

func TestToGenaiToolsSchema(t *testing.T) {
	tools := toGenaiTools([]dto.VertexTool{{
		Name:        "search_places",
		Description: "Find places.",
		Parameters: &dto.VertexSchema{
			Type: "object",
			Properties: map[string]*dto.VertexSchema{
				"query": {Type: "string", Description: "What to look for."},
				"tags":  {Type: "array", Items: &dto.VertexSchema{Type: "string"}},
			},
			Required: []string{"query"},
		},
	}})

	if len(tools) != 1 || len(tools[0].FunctionDeclarations) != 1 {
		t.Fatalf("expected one tool with one declaration")
	}
	decl := tools[0].FunctionDeclarations[0]
	if decl.Parameters.Type != genai.TypeObject {
		t.Fatalf("expected object schema")
	}
	if decl.Parameters.Properties["query"].Type != genai.TypeString {
		t.Fatalf("expected string query property")
	}
	if decl.Parameters.Properties["tags"].Items.Type != genai.TypeString {
		t.Fatalf("expected string items")
	}
	if toGenaiTools(nil) != nil {
		t.Fatalf("expected nil tools for empty input")
	}
}

func TestIsTransient(t *testing.T) {
	if !isTransient(status.Error(codes.Unavailable, "try again")) {
		t.Fatalf("unavailable should be transient")
	}
	if !isTransient(fmt.Errorf("wrap: %w", context.DeadlineExceeded)) {
		t.Fatalf("deadline exceeded should be transient")
	}
	if isTransient(status.Error(codes.InvalidArgument, "bad schema")) {
		t.Fatalf("invalid argument should not be transient")
	}
	if isTransient(errors.New("boom")) {
		t.Fatalf("plain error should not be transient")
	}
}
