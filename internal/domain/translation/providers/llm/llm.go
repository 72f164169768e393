package llm

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"transcribe-server-go/internal/domain/translation"
	"transcribe-server-go/internal/platform/config"
	"transcribe-server-go/internal/platform/errors"
	"transcribe-server-go/internal/platform/logging"
	"transcribe-server-go/internal/platform/observability"
)

func init() {
	translation.RegisterFactory("openai", NewProvider)
}

// Provider translates through a chat-completion model. Useful for
// deployments without egress to the Google endpoint.
type Provider struct {
	client *openai.Client
	model  string
	logger *logging.Logger
}

func NewProvider(cfg config.TranslateConfig, logger *logging.Logger) (translation.Provider, error) {
	if cfg.Model == "" {
		return nil, errors.New(errors.KindConfig, "llm.new", "translation model name is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Provider{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		logger: logger,
	}, nil
}

func (p *Provider) Initialize() error {
	p.logger.InfoTag("TRANSLATE", "llm translation backend ready, model=%s", p.model)
	return nil
}

func (p *Provider) Cleanup() error {
	return nil
}

func (p *Provider) Translate(ctx context.Context, text, from, to string) (string, error) {
	if from == "" {
		from = "auto"
	}

	spanCtx, spanEnd := observability.StartSpan(ctx, "translate.llm", "translate")

	system := fmt.Sprintf(
		"You are a translation engine. Translate the user message from %s to %s. "+
			"Reply with the translation only, no commentary.", from, to)

	resp, err := p.client.CreateChatCompletion(spanCtx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: 0,
	})
	if err != nil {
		spanEnd(err)
		return "", errors.Wrap(errors.KindTranslate, "llm.translate", "translation backend call failed", err)
	}
	spanEnd(nil)

	if len(resp.Choices) == 0 {
		return "", errors.New(errors.KindTranslate, "llm.translate", "translation backend returned no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
