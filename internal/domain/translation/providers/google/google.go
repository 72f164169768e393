package google

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"transcribe-server-go/internal/domain/translation"
	"transcribe-server-go/internal/platform/config"
	"transcribe-server-go/internal/platform/errors"
	"transcribe-server-go/internal/platform/logging"
	"transcribe-server-go/internal/platform/observability"
)

func init() {
	translation.RegisterFactory("google", NewProvider)
}

const defaultBaseURL = "https://translate.googleapis.com"

// Provider uses the unauthenticated web translate endpoint, the same one
// the py-googletrans library wraps. No API key, no quota guarantees.
type Provider struct {
	baseURL string
	client  *http.Client
	logger  *logging.Logger
}

func NewProvider(cfg config.TranslateConfig, logger *logging.Logger) (translation.Provider, error) {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Provider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}, nil
}

func (p *Provider) Initialize() error {
	p.logger.InfoTag("TRANSLATE", "google translate backend ready at %s", p.baseURL)
	return nil
}

func (p *Provider) Cleanup() error {
	return nil
}

// Translate posts the text to /translate_a/single and stitches the
// translated chunks back together. The endpoint answers with a nested
// array, not an object: [[["chunk","orig",...],...],...,"detected"].
func (p *Provider) Translate(ctx context.Context, text, from, to string) (string, error) {
	if from == "" {
		from = "auto"
	}

	spanCtx, spanEnd := observability.StartSpan(ctx, "translate.google", "translate")

	endpoint := fmt.Sprintf("%s/translate_a/single?client=gtx&dt=t&sl=%s&tl=%s",
		p.baseURL, url.QueryEscape(from), url.QueryEscape(to))

	form := url.Values{"q": {text}}
	req, err := http.NewRequestWithContext(spanCtx, http.MethodPost, endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		spanEnd(err)
		return "", errors.Wrap(errors.KindTranslate, "google.translate", "build request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		spanEnd(err)
		return "", errors.Wrap(errors.KindTranslate, "google.translate", "translation backend unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		spanEnd(err)
		return "", errors.Wrap(errors.KindTranslate, "google.translate", "read response", err)
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("status %d: %s", resp.StatusCode, truncate(body, 200))
		spanEnd(err)
		return "", errors.Wrap(errors.KindTranslate, "google.translate", "translation backend error", err)
	}

	translated, err := parseResponse(body)
	if err != nil {
		spanEnd(err)
		return "", errors.Wrap(errors.KindTranslate, "google.translate", "unexpected response shape", err)
	}
	spanEnd(nil)

	return translated, nil
}

// parseResponse walks the nested-array payload and concatenates the
// translated chunks from the first element.
func parseResponse(body []byte) (string, error) {
	var raw []interface{}
	if err := sonic.Unmarshal(body, &raw); err != nil {
		return "", err
	}
	if len(raw) == 0 {
		return "", fmt.Errorf("empty payload")
	}

	chunks, ok := raw[0].([]interface{})
	if !ok {
		return "", fmt.Errorf("first element is not an array")
	}

	var sb strings.Builder
	for _, c := range chunks {
		chunk, ok := c.([]interface{})
		if !ok || len(chunk) == 0 {
			continue
		}
		if s, ok := chunk[0].(string); ok {
			sb.WriteString(s)
		}
	}
	return sb.String(), nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
