package openai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/helio-cloud/groundex/internal/domain"
)

// Moderator screens query text via the OpenAI moderation endpoint.
type Moderator struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// ModeratorConfig holds the moderation provider settings.
type ModeratorConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Logger  *zap.Logger
}

// NewModerator creates an OpenAI moderation provider.
func NewModerator(cfg *ModeratorConfig) *Moderator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Moderator{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		logger: cfg.Logger,
	}
}

// Moderate implements domain.Moderator.
func (m *Moderator) Moderate(ctx context.Context, text string) (domain.ModerationResult, error) {
	req := openai.ModerationRequest{Input: text}
	if m.model != "" {
		req.Model = m.model
	}

	resp, err := m.client.Moderations(ctx, req)
	if err != nil {
		return domain.ModerationResult{}, parseAPIError("moderation", err, domain.ErrModerationProviderError)
	}

	if len(resp.Results) == 0 {
		return domain.ModerationResult{}, fmt.Errorf("empty moderation response: %w", domain.ErrModerationProviderError)
	}

	res := resp.Results[0]
	return domain.ModerationResult{
		Flagged:    res.Flagged,
		Categories: flaggedCategories(res.Categories),
	}, nil
}

// flaggedCategories returns the names of categories the provider flagged.
func flaggedCategories(c openai.ResultCategories) []string {
	var out []string
	for _, cat := range []struct {
		name    string
		flagged bool
	}{
		{"hate", c.Hate},
		{"hate/threatening", c.HateThreatening},
		{"harassment", c.Harassment},
		{"harassment/threatening", c.HarassmentThreatening},
		{"self-harm", c.SelfHarm},
		{"self-harm/intent", c.SelfHarmIntent},
		{"self-harm/instructions", c.SelfHarmInstructions},
		{"sexual", c.Sexual},
		{"sexual/minors", c.SexualMinors},
		{"violence", c.Violence},
		{"violence/graphic", c.ViolenceGraphic},
	} {
		if cat.flagged {
			out = append(out, cat.name)
		}
	}
	return out
}
