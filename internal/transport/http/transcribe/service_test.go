package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transcribe-server-go/internal/app/services"
	"transcribe-server-go/internal/domain/audio"
	"transcribe-server-go/internal/domain/transcription"
	"transcribe-server-go/internal/platform/config"
	"transcribe-server-go/internal/platform/errors"
	platformtesting "transcribe-server-go/internal/platform/testing"
)

type echoASR struct {
	err error
}

func (e *echoASR) Initialize() error { return nil }
func (e *echoASR) Cleanup() error    { return nil }

// Transcribe echoes the payload back as text so concurrent requests can be
// told apart.
func (e *echoASR) Transcribe(_ context.Context, req *transcription.Request) (*transcription.Result, error) {
	if e.err != nil {
		return nil, e.err
	}
	text := string(req.Data[44:]) // skip the wav header padding
	return &transcription.Result{
		Text:     text,
		Language: "en",
		Segments: []transcription.Segment{{Start: 0, End: 1, Text: text}},
	}, nil
}

type upperTranslator struct{}

func (upperTranslator) Initialize() error { return nil }
func (upperTranslator) Cleanup() error    { return nil }
func (upperTranslator) Translate(_ context.Context, text, from, to string) (string, error) {
	return "[" + to + "] " + text, nil
}

func setupEngine(t *testing.T, asr transcription.Provider) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := platformtesting.SetupTestLogger(t)
	validator := audio.NewValidator(config.UploadConfig{
		MaxFileSize:    1 << 20,
		AllowedFormats: []string{"wav", "mp3"},
	}, logger)
	speech := services.NewSpeechService(validator, asr, upperTranslator{}, logger)

	svc, err := NewService(speech, logger)
	require.NoError(t, err)

	engine := gin.New()
	require.NoError(t, svc.Start(context.Background(), engine, &engine.RouterGroup))
	return engine
}

func wavBody(payload string) []byte {
	header := append([]byte("RIFF\x24\x00\x00\x00WAVE"), make([]byte, 32)...)
	return append(header, []byte(payload)...)
}

func multipartUpload(t *testing.T, fields map[string]string, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if filename != "" {
		fw, err := w.CreateFormFile("audio_file", filename)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestGetTranscribe(t *testing.T) {
	engine := setupEngine(t, &echoASR{})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/transcribe", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestPostTranscribe(t *testing.T) {
	engine := setupEngine(t, &echoASR{})

	body, contentType := multipartUpload(t, nil, "clip.wav", wavBody("hello there"))
	req := httptest.NewRequest(http.MethodPost, "/transcribe", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "hello there", resp.TranscriptText)
	assert.Equal(t, "en", resp.Language)
	assert.Len(t, resp.Segments, 1)
	assert.Nil(t, resp.TranslatedText, "no translation requested")
	assert.Contains(t, rec.Body.String(), `"translated_text":null`)
}

func TestPostTranscribe_WithTranslation(t *testing.T) {
	engine := setupEngine(t, &echoASR{})

	body, contentType := multipartUpload(t, map[string]string{"to_language": "de"}, "clip.wav", wavBody("hello"))
	req := httptest.NewRequest(http.MethodPost, "/transcribe", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.TranslatedText)
	assert.Equal(t, "[de] hello", *resp.TranslatedText)
	assert.NotEqual(t, resp.TranscriptText, *resp.TranslatedText)
}

func TestPostTranscribe_MissingFile(t *testing.T) {
	engine := setupEngine(t, &echoASR{})

	body, contentType := multipartUpload(t, map[string]string{"from_language": "en"}, "", nil)
	req := httptest.NewRequest(http.MethodPost, "/transcribe", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "audio_file is not included in the request", resp.Error)
}

func TestPostTranscribe_InvalidUpload(t *testing.T) {
	engine := setupEngine(t, &echoASR{})

	body, contentType := multipartUpload(t, nil, "junk.bin", []byte("not audio at all"))
	req := httptest.NewRequest(http.MethodPost, "/transcribe", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Less(t, rec.Code, http.StatusInternalServerError)
}

func TestPostTranscribe_BackendFailure(t *testing.T) {
	engine := setupEngine(t, &echoASR{
		err: errors.New(errors.KindTranscribe, "stub", "recognition backend unreachable"),
	})

	body, contentType := multipartUpload(t, nil, "clip.wav", wavBody("hello"))
	req := httptest.NewRequest(http.MethodPost, "/transcribe", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "recognition backend unreachable", resp.Error)
}

func TestPostTranscribe_Concurrent(t *testing.T) {
	engine := setupEngine(t, &echoASR{})

	const workers = 16
	var wg sync.WaitGroup
	results := make([]string, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			payload := fmt.Sprintf("payload-%02d", i)
			body, contentType := multipartUpload(t, nil, "clip.wav", wavBody(payload))
			req := httptest.NewRequest(http.MethodPost, "/transcribe", body)
			req.Header.Set("Content-Type", contentType)

			rec := httptest.NewRecorder()
			engine.ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				return
			}
			var resp Response
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err == nil {
				results[i] = resp.TranscriptText
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		assert.Equal(t, fmt.Sprintf("payload-%02d", i), results[i], "responses must not cross requests")
	}
}

func TestOptionsTranscribe(t *testing.T) {
	engine := setupEngine(t, &echoASR{})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/transcribe", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}