package services

import (
	"context"
	"time"

	"github.com/GregMSThompson/explorer-guide/internal/dto"
	"github.com/GregMSThompson/explorer-guide/internal/models"
	"github.com/GregMSThompson/explorer-guide/pkg/logger"
)

type historyStore interface {
	Get(ctx context.Context, uid, sessionID string) ([]models.Message, error)
	Append(ctx context.Context, uid, sessionID string, human, assistant models.Message) error
}

type GuideOptions struct {
	Region     string
	MaxRounds  int
	LLMTimeout time.Duration
	// Temperature is left to the model default when nil.
	Temperature     *float32
	MaxOutputTokens int32
}

type guideService struct {
	agent    *agent
	history  historyStore
	region   string
	clockNow func() time.Time
}

func NewGuideService(vertex vertexClient, registry toolRegistry, history historyStore, opts GuideOptions) *guideService {
	region := opts.Region
	if region == "" {
		region = "Colorado"
	}
	return &guideService{
		agent:    newAgent(vertex, registry, opts),
		history:  history,
		region:   region,
		clockNow: time.Now,
	}
}

// Generate answers prompt in the context of the (uid, sessionID) history and
// records the prompt and the final answer. Nothing is recorded on failure.
func (s *guideService) Generate(ctx context.Context, uid, sessionID, prompt string) (dto.GenerateResponse, error) {
	log, ctx := logger.With(ctx, "uid", uid, "session_id", sessionID)
	start := s.clockNow()

	history, err := s.history.Get(ctx, uid, sessionID)
	if err != nil {
		return dto.GenerateResponse{}, err
	}

	answer, _, err := s.agent.Run(ctx, systemPrompt(s.region), history, prompt)
	if err != nil {
		return dto.GenerateResponse{}, err
	}

	if err := s.history.Append(ctx, uid, sessionID,
		models.UserMessage(prompt, start),
		models.AssistantMessage(answer, s.clockNow()),
	); err != nil {
		return dto.GenerateResponse{}, err
	}

	log.Info("guide answer generated", "history_len", len(history)+2, "duration", s.clockNow().Sub(start))
	return dto.GenerateResponse{Response: answer, SessionID: sessionID}, nil
}

// History returns the persisted turns for a session.
func (s *guideService) History(ctx context.Context, uid, sessionID string) ([]models.Message, error) {
	return s.history.Get(ctx, uid, sessionID)
}

// Region is the geographic area answers are restricted to.
func (s *guideService) Region() string {
	return s.region
}
