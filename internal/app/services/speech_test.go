package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transcribe-server-go/internal/domain/audio"
	"transcribe-server-go/internal/domain/transcription"
	"transcribe-server-go/internal/platform/config"
	"transcribe-server-go/internal/platform/errors"
	platformtesting "transcribe-server-go/internal/platform/testing"
)

type stubASR struct {
	result *transcription.Result
	err    error
	gotReq *transcription.Request
}

func (s *stubASR) Initialize() error { return nil }
func (s *stubASR) Cleanup() error    { return nil }
func (s *stubASR) Transcribe(_ context.Context, req *transcription.Request) (*transcription.Result, error) {
	s.gotReq = req
	return s.result, s.err
}

type stubTranslator struct {
	out     string
	err     error
	gotFrom string
	gotTo   string
	calls   int
}

func (s *stubTranslator) Initialize() error { return nil }
func (s *stubTranslator) Cleanup() error    { return nil }
func (s *stubTranslator) Translate(_ context.Context, text, from, to string) (string, error) {
	s.calls++
	s.gotFrom = from
	s.gotTo = to
	return s.out, s.err
}

func wavPayload() []byte {
	data := append([]byte("RIFF\x24\x00\x00\x00WAVE"), make([]byte, 64)...)
	return data
}

func newService(t *testing.T, asr *stubASR, tr *stubTranslator) *SpeechService {
	t.Helper()
	logger := platformtesting.SetupTestLogger(t)
	validator := audio.NewValidator(config.UploadConfig{
		MaxFileSize:    1 << 20,
		AllowedFormats: []string{"wav", "mp3"},
	}, logger)
	return NewSpeechService(validator, asr, tr, logger)
}

func TestProcess_TranscribeOnly(t *testing.T) {
	asr := &stubASR{result: &transcription.Result{
		Text:     "hello there",
		Language: "en",
		Segments: []transcription.Segment{{Start: 0, End: 1.5, Text: "hello there"}},
	}}
	tr := &stubTranslator{out: "should not be used"}

	svc := newService(t, asr, tr)
	res, err := svc.Process(context.Background(), &SpeechRequest{
		RequestID: "r1",
		Filename:  "clip.wav",
		Data:      wavPayload(),
	})
	require.NoError(t, err)

	assert.Equal(t, "hello there", res.Text)
	assert.Equal(t, "en", res.Language)
	assert.Nil(t, res.Translated)
	assert.Len(t, res.Segments, 1)
	assert.Equal(t, 0, tr.calls, "translation must not run without a target language")
}

func TestProcess_WithTranslation(t *testing.T) {
	asr := &stubASR{result: &transcription.Result{Text: "bonjour", Language: "fr"}}
	tr := &stubTranslator{out: "hello"}

	svc := newService(t, asr, tr)
	res, err := svc.Process(context.Background(), &SpeechRequest{
		RequestID:  "r2",
		Filename:   "clip.wav",
		Data:       wavPayload(),
		ToLanguage: "en",
	})
	require.NoError(t, err)

	require.NotNil(t, res.Translated)
	assert.Equal(t, "hello", *res.Translated)
	assert.Equal(t, "fr", tr.gotFrom, "detected language wins over the hint")
	assert.Equal(t, "en", tr.gotTo)
}

func TestProcess_DetectedLanguageFallsBackToHint(t *testing.T) {
	asr := &stubASR{result: &transcription.Result{Text: "hola"}}
	tr := &stubTranslator{out: "hello"}

	svc := newService(t, asr, tr)
	_, err := svc.Process(context.Background(), &SpeechRequest{
		RequestID:    "r3",
		Filename:     "clip.wav",
		Data:         wavPayload(),
		FromLanguage: "es",
		ToLanguage:   "en",
	})
	require.NoError(t, err)
	assert.Equal(t, "es", tr.gotFrom)
}

func TestProcess_ValidationFailure(t *testing.T) {
	asr := &stubASR{}
	svc := newService(t, asr, &stubTranslator{})

	_, err := svc.Process(context.Background(), &SpeechRequest{
		RequestID: "r4",
		Filename:  "empty.wav",
		Data:      nil,
	})
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindAudio))
	assert.Nil(t, asr.gotReq, "recognition must not run on invalid uploads")
}

func TestProcess_TranscribeError(t *testing.T) {
	asr := &stubASR{err: errors.New(errors.KindTranscribe, "stub", "backend down")}
	svc := newService(t, asr, &stubTranslator{})

	_, err := svc.Process(context.Background(), &SpeechRequest{
		RequestID: "r5",
		Filename:  "clip.wav",
		Data:      wavPayload(),
	})
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindTranscribe))
}

func TestProcess_TranslateErrorSurfaces(t *testing.T) {
	asr := &stubASR{result: &transcription.Result{Text: "hi", Language: "en"}}
	tr := &stubTranslator{err: errors.New(errors.KindTranslate, "stub", "quota")}
	svc := newService(t, asr, tr)

	_, err := svc.Process(context.Background(), &SpeechRequest{
		RequestID:  "r6",
		Filename:   "clip.wav",
		Data:       wavPayload(),
		ToLanguage: "de",
	})
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindTranslate))
}

func TestProcess_NoTranslatorConfigured(t *testing.T) {
	asr := &stubASR{result: &transcription.Result{Text: "hi", Language: "en"}}
	logger := platformtesting.SetupTestLogger(t)
	validator := audio.NewValidator(config.UploadConfig{
		MaxFileSize:    1 << 20,
		AllowedFormats: []string{"wav"},
	}, logger)
	svc := NewSpeechService(validator, asr, nil, logger)

	_, err := svc.Process(context.Background(), &SpeechRequest{
		RequestID:  "r7",
		Filename:   "clip.wav",
		Data:       wavPayload(),
		ToLanguage: "de",
	})
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindTranslate))
}
