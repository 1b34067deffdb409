package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/GregMSThompson/explorer-guide/internal/dto"
	"github.com/GregMSThompson/explorer-guide/internal/errs"
	"github.com/GregMSThompson/explorer-guide/internal/models"
	"github.com/GregMSThompson/explorer-guide/internal/tools"
	"github.com/GregMSThompson/explorer-guide/pkg/helpers"
	"github.com/GregMSThompson/explorer-guide/pkg/logger"
)

const (
	DefaultMaxRounds  = 8
	DefaultLLMTimeout = 60 * time.Second
)

type vertexClient interface {
	GenerateContent(ctx context.Context, req dto.VertexGenerateRequest) (dto.VertexGenerateResponse, error)
}

type toolRegistry interface {
	Lookup(name string) (tools.Tool, bool)
	Declarations() []dto.VertexTool
}

type agent struct {
	vertex          vertexClient
	tools           toolRegistry
	maxRounds       int
	llmTimeout      time.Duration
	temperature     *float32
	maxOutputTokens *int32
	clockNow        func() time.Time
}

func newAgent(vertex vertexClient, registry toolRegistry, opts GuideOptions) *agent {
	a := &agent{
		vertex:     vertex,
		tools:      registry,
		maxRounds:  opts.MaxRounds,
		llmTimeout: opts.LLMTimeout,
		clockNow:   time.Now,
	}
	if a.maxRounds <= 0 {
		a.maxRounds = DefaultMaxRounds
	}
	if a.llmTimeout <= 0 {
		a.llmTimeout = DefaultLLMTimeout
	}
	if opts.Temperature != nil {
		a.temperature = helpers.Ptr(*opts.Temperature)
	}
	if opts.MaxOutputTokens > 0 {
		a.maxOutputTokens = helpers.Ptr(opts.MaxOutputTokens)
	}
	return a
}

// Run alternates model and tool rounds until the model replies without tool
// calls. The returned sequence includes the system message, history, the new
// prompt and every message the loop produced.
func (a *agent) Run(ctx context.Context, system string, history []models.Message, prompt string) (string, []models.Message, error) {
	log := logger.FromContext(ctx)

	seq := make([]models.Message, 0, len(history)+4)
	seq = append(seq, models.Message{Role: models.RoleSystem, Content: system})
	seq = append(seq, history...)
	seq = append(seq, models.UserMessage(prompt, a.clockNow()))

	for round := 1; round <= a.maxRounds; round++ {
		resp, err := a.callModel(ctx, seq)
		if err != nil {
			return "", seq, fmt.Errorf("model round %d: %w", round, err)
		}

		reply := models.Message{
			Role:      models.RoleAssistant,
			Content:   resp.Text,
			ToolCalls: toModelToolCalls(resp.ToolCalls),
			CreatedAt: a.clockNow(),
		}
		seq = append(seq, reply)

		if len(reply.ToolCalls) == 0 {
			if reply.Content == "" {
				log.Warn("model finished with an empty answer", "rounds", round)
			}
			log.Debug("agent finished", "rounds", round)
			return reply.Content, seq, nil
		}

		for _, call := range reply.ToolCalls {
			seq = append(seq, a.runTool(ctx, call))
		}
	}

	log.Warn("agent did not converge", "max_rounds", a.maxRounds)
	return "", seq, errs.NewNotConvergedError(a.maxRounds)
}

func (a *agent) callModel(ctx context.Context, seq []models.Message) (dto.VertexGenerateResponse, error) {
	system, contents := convertMessagesToContents(seq)
	req := dto.VertexGenerateRequest{
		System:   system,
		Contents: contents,
		Tools:    a.tools.Declarations(),

		Temperature:     a.temperature,
		MaxOutputTokens: a.maxOutputTokens,
	}

	var resp dto.VertexGenerateResponse
	err := helpers.RetryOnce(ctx, a.llmTimeout, errs.IsTransient, func(ctx context.Context) error {
		var err error
		resp, err = a.vertex.GenerateContent(ctx, req)
		return err
	})
	return resp, err
}

// runTool never fails: an unknown tool or bad arguments become an error
// payload the model can read.
func (a *agent) runTool(ctx context.Context, call models.ToolCall) models.Message {
	log := logger.FromContext(ctx)
	msg := models.Message{
		Role:       models.RoleTool,
		ToolCallID: call.ID,
		ToolName:   call.Name,
		CreatedAt:  a.clockNow(),
	}

	tool, ok := a.tools.Lookup(call.Name)
	if !ok {
		log.Warn("model requested unknown tool", "tool", call.Name)
		msg.ToolResult = map[string]any{"error": fmt.Sprintf("unknown tool: %s", call.Name)}
		return msg
	}

	result, err := tool.Handler(ctx, call.Args)
	if err != nil {
		log.Warn("tool rejected call", "tool", call.Name, "error", err)
		msg.ToolResult = map[string]any{"error": err.Error()}
		return msg
	}

	payload, err := toMap(map[string]any{"results": result})
	if err != nil {
		log.Error("tool result not serializable", "tool", call.Name, "error", err)
		msg.ToolResult = map[string]any{"error": "tool result could not be encoded"}
		return msg
	}
	msg.ToolResult = payload
	return msg
}

func toModelToolCalls(calls []dto.VertexToolCall) []models.ToolCall {
	if len(calls) == 0 {
		return nil
	}
	out := make([]models.ToolCall, 0, len(calls))
	for _, c := range calls {
		out = append(out, models.ToolCall{ID: c.ID, Name: c.Name, Args: c.Args})
	}
	return out
}

// emptyAnswerText stands in for a stored empty answer so user and model turns keep alternating.
const emptyAnswerText = "(no answer)"

// convertMessagesToContents splits off the system instruction and maps the rest
// to Gemini contents. Consecutive tool results are grouped into one user turn,
// which is how Gemini expects parallel function responses.
func convertMessagesToContents(seq []models.Message) (string, []dto.VertexContent) {
	var system string
	contents := make([]dto.VertexContent, 0, len(seq))

	for i, msg := range seq {
		switch msg.Role {
		case models.RoleSystem:
			system = msg.Content

		case models.RoleUser:
			contents = append(contents, dto.VertexContent{
				Role:  "user",
				Parts: []dto.VertexPart{{Text: helpers.Ptr(msg.Content)}},
			})

		case models.RoleAssistant:
			parts := make([]dto.VertexPart, 0, len(msg.ToolCalls)+1)
			if msg.Content != "" {
				parts = append(parts, dto.VertexPart{Text: helpers.Ptr(msg.Content)})
			}
			for _, call := range msg.ToolCalls {
				parts = append(parts, dto.VertexPart{FunctionCall: &dto.VertexToolCall{
					ID:   call.ID,
					Name: call.Name,
					Args: call.Args,
				}})
			}
			if len(parts) == 0 {
				if i+1 < len(seq) && seq[i+1].Role == models.RoleAssistant {
					continue
				}
				parts = append(parts, dto.VertexPart{Text: helpers.Ptr(emptyAnswerText)})
			}
			contents = append(contents, dto.VertexContent{Role: "model", Parts: parts})

		case models.RoleTool:
			part := dto.VertexPart{FunctionResponse: &dto.VertexToolResult{
				ID:       msg.ToolCallID,
				Name:     msg.ToolName,
				Response: msg.ToolResult,
			}}
			if n := len(contents); n > 0 && contents[n-1].Role == "user" && contents[n-1].Parts[0].FunctionResponse != nil {
				contents[n-1].Parts = append(contents[n-1].Parts, part)
				continue
			}
			contents = append(contents, dto.VertexContent{Role: "user", Parts: []dto.VertexPart{part}})
		}
	}

	return system, contents
}

func toMap(value any) (map[string]any, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
