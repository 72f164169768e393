package services

import (
	"context"
	"time"

	"transcribe-server-go/internal/domain/audio"
	"transcribe-server-go/internal/domain/eventbus"
	"transcribe-server-go/internal/domain/transcription"
	"transcribe-server-go/internal/domain/translation"
	"transcribe-server-go/internal/platform/errors"
	"transcribe-server-go/internal/platform/logging"
)

// SpeechRequest is one uploaded recording plus the caller's language hints.
// FromLanguage narrows recognition when set; ToLanguage selects the
// translation target and leaves translation off when empty.
type SpeechRequest struct {
	RequestID    string
	Filename     string
	Data         []byte
	FromLanguage string
	ToLanguage   string
}

// SpeechResult is the combined recognition and translation outcome.
// Translated is nil when no translation was requested.
type SpeechResult struct {
	Text       string
	Translated *string
	Language   string
	Segments   []transcription.Segment
}

// SpeechService drives one upload through validation, recognition and the
// optional translation hop. It owns no HTTP concerns.
type SpeechService struct {
	validator  *audio.Validator
	asr        transcription.Provider
	translator translation.Provider
	logger     *logging.Logger
}

func NewSpeechService(validator *audio.Validator, asr transcription.Provider, translator translation.Provider, logger *logging.Logger) *SpeechService {
	return &SpeechService{
		validator:  validator,
		asr:        asr,
		translator: translator,
		logger:     logger,
	}
}

func (s *SpeechService) Process(ctx context.Context, req *SpeechRequest) (*SpeechResult, error) {
	format, err := s.validator.Validate(req.Filename, req.Data)
	if err != nil {
		return nil, err
	}

	eventbus.Publish(eventbus.EventTranscriptionStarted, eventbus.TranscriptionEventData{
		RequestID:  req.RequestID,
		Filename:   req.Filename,
		AudioBytes: len(req.Data),
		Language:   req.FromLanguage,
	})

	started := time.Now()
	result, err := s.asr.Transcribe(ctx, &transcription.Request{
		Filename: req.Filename,
		Data:     req.Data,
		Language: req.FromLanguage,
	})
	if err != nil {
		eventbus.Publish(eventbus.EventTranscriptionError, eventbus.TranscriptionEventData{
			RequestID: req.RequestID,
			Filename:  req.Filename,
			Error:     err.Error(),
		})
		return nil, err
	}

	eventbus.Publish(eventbus.EventTranscriptionCompleted, eventbus.TranscriptionEventData{
		RequestID:    req.RequestID,
		Filename:     req.Filename,
		AudioBytes:   len(req.Data),
		Language:     result.Language,
		SegmentCount: len(result.Segments),
		DurationMs:   float64(time.Since(started).Milliseconds()),
	})

	s.logger.InfoTag("ASR", "transcribed %s (%s, %d bytes) into %d segments",
		req.Filename, format, len(req.Data), len(result.Segments))

	out := &SpeechResult{
		Text:     result.Text,
		Language: result.Language,
		Segments: result.Segments,
	}
	if out.Segments == nil {
		out.Segments = []transcription.Segment{}
	}

	if req.ToLanguage == "" {
		return out, nil
	}

	translated, err := s.translate(ctx, req, result)
	if err != nil {
		return nil, err
	}
	out.Translated = &translated

	return out, nil
}

func (s *SpeechService) translate(ctx context.Context, req *SpeechRequest, result *transcription.Result) (string, error) {
	if s.translator == nil {
		return "", errors.New(errors.KindTranslate, "speech.translate", "no translation backend configured")
	}

	// Prefer the language the recognizer detected over the caller's hint.
	from := result.Language
	if from == "" {
		from = req.FromLanguage
	}

	started := time.Now()
	translated, err := s.translator.Translate(ctx, result.Text, from, req.ToLanguage)
	if err != nil {
		eventbus.Publish(eventbus.EventTranslationError, eventbus.TranslationEventData{
			RequestID: req.RequestID,
			From:      from,
			To:        req.ToLanguage,
			Error:     err.Error(),
		})
		return "", err
	}

	eventbus.Publish(eventbus.EventTranslationCompleted, eventbus.TranslationEventData{
		RequestID:  req.RequestID,
		From:       from,
		To:         req.ToLanguage,
		Chars:      len(translated),
		DurationMs: float64(time.Since(started).Milliseconds()),
	})

	s.logger.InfoTag("TRANSLATE", "translated %d chars %s -> %s", len(result.Text), from, req.ToLanguage)

	return translated, nil
}
