package whisper

import (
	"bytes"
	"context"
	stderrors "errors"

	openai "github.com/sashabaranov/go-openai"

	"transcribe-server-go/internal/domain/transcription"
	"transcribe-server-go/internal/platform/config"
	"transcribe-server-go/internal/platform/errors"
	"transcribe-server-go/internal/platform/logging"
	"transcribe-server-go/internal/platform/observability"
)

func init() {
	transcription.RegisterFactory("openai", NewProvider)
}

// Provider talks to an OpenAI-compatible audio transcriptions endpoint.
// A faster-whisper model behind speaches/whisper-server exposes exactly
// this API, as does api.openai.com itself.
type Provider struct {
	client      *openai.Client
	model       string
	device      string
	temperature float32
	logger      *logging.Logger
}

func NewProvider(cfg config.ASRConfig, logger *logging.Logger) (transcription.Provider, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New(errors.KindConfig, "whisper.new", "ASR base url is required")
	}
	if cfg.Model == "" {
		return nil, errors.New(errors.KindConfig, "whisper.new", "ASR model name is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL

	return &Provider{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		device:      cfg.Device,
		temperature: float32(cfg.Temperature),
		logger:      logger,
	}, nil
}

func (p *Provider) Initialize() error {
	p.logger.InfoTag("ASR", "whisper backend ready, model=%s device=%s", p.model, p.device)
	return nil
}

func (p *Provider) Cleanup() error {
	return nil
}

// Transcribe uploads the audio and asks for a verbose response so the
// segment timings come back alongside the text.
func (p *Provider) Transcribe(ctx context.Context, req *transcription.Request) (*transcription.Result, error) {
	spanCtx, spanEnd := observability.StartSpan(ctx, "asr.whisper", "transcribe")

	audioReq := openai.AudioRequest{
		Model:       p.model,
		FilePath:    req.Filename,
		Reader:      bytes.NewReader(req.Data),
		Language:    req.Language,
		Temperature: p.temperature,
		Format:      openai.AudioResponseFormatVerboseJSON,
	}

	resp, err := p.client.CreateTranscription(spanCtx, audioReq)
	if err != nil {
		spanEnd(err)
		return nil, classify(err)
	}
	spanEnd(nil)

	segments := make([]transcription.Segment, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		segments = append(segments, transcription.Segment{
			Start: s.Start,
			End:   s.End,
			Text:  s.Text,
		})
	}

	language := resp.Language
	if language == "" {
		language = req.Language
	}

	return &transcription.Result{
		Text:     resp.Text,
		Language: language,
		Segments: segments,
	}, nil
}

// classify keeps the two error classes apart: a 4xx from the backend means
// the audio itself was rejected, anything else is a backend failure.
func classify(err error) error {
	var apiErr *openai.APIError
	if stderrors.As(err, &apiErr) && apiErr.HTTPStatusCode >= 400 && apiErr.HTTPStatusCode < 500 {
		return errors.Wrap(errors.KindAudio, "whisper.transcribe", "speech backend rejected the audio", err)
	}
	return errors.Wrap(errors.KindTranscribe, "whisper.transcribe", "speech backend call failed", err)
}
