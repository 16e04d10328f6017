package openai

import (
	"context"
	"errors"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/helio-cloud/groundex/internal/domain"
)

// Generator streams grounded answers via the chat completions API.
type Generator struct {
	client    *openai.Client
	model     string
	maxTokens int
	logger    *zap.Logger
}

// GeneratorConfig holds the generation provider settings.
type GeneratorConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Logger    *zap.Logger
}

// NewGenerator creates an OpenAI-compatible chat completion provider.
func NewGenerator(cfg *GeneratorConfig) *Generator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Generator{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		logger:    cfg.Logger,
	}
}

// Stream implements domain.Generator. It opens a streaming chat completion
// and pumps content deltas into the returned channel. The channel is closed
// when the stream ends; a mid-stream failure is delivered as a final Chunk
// with Err set.
func (g *Generator) Stream(
	ctx context.Context, instructions, contextText, query string,
) (<-chan domain.Chunk, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: instructions},
	}
	if contextText != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: fmt.Sprintf("Context:\n%s\n\nQuestion: %s", contextText, query),
		})
	} else {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: query,
		})
	}

	req := openai.ChatCompletionRequest{
		Model:    g.model,
		Messages: messages,
		Stream:   true,
	}
	if g.maxTokens > 0 {
		req.MaxTokens = g.maxTokens
	}

	stream, err := g.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, parseAPIError("generation", err, domain.ErrGenerationProviderError)
	}

	out := make(chan domain.Chunk)
	go g.pump(stream, out)
	return out, nil
}

func (g *Generator) pump(stream *openai.ChatCompletionStream, out chan<- domain.Chunk) {
	defer close(out)
	defer stream.Close()

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			out <- domain.Chunk{Err: fmt.Errorf("stream recv: %w", domain.ErrGenerationProviderError)}
			return
		}

		if len(resp.Choices) == 0 {
			continue
		}
		if delta := resp.Choices[0].Delta.Content; delta != "" {
			out <- domain.Chunk{Text: delta}
		}
	}
}
