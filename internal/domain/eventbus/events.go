package eventbus

const (
	EventTranscriptionStarted   = "transcription:started"
	EventTranscriptionCompleted = "transcription:completed"
	EventTranscriptionError     = "transcription:error"

	EventTranslationCompleted = "translation:completed"
	EventTranslationError     = "translation:error"
)

// TranscriptionEventData carries the per-request facts the subscribers log
// and meter. Nothing in the request path depends on these events.
type TranscriptionEventData struct {
	RequestID    string  `json:"request_id"`
	Filename     string  `json:"filename"`
	AudioBytes   int     `json:"audio_bytes"`
	Language     string  `json:"language,omitempty"`
	SegmentCount int     `json:"segment_count,omitempty"`
	DurationMs   float64 `json:"duration_ms,omitempty"`
	Error        string  `json:"error,omitempty"`
}

type TranslationEventData struct {
	RequestID  string  `json:"request_id"`
	From       string  `json:"from"`
	To         string  `json:"to"`
	Chars      int     `json:"chars"`
	DurationMs float64 `json:"duration_ms,omitempty"`
	Error      string  `json:"error,omitempty"`
}
