package transcribe

import "transcribe-server-go/internal/domain/transcription"

// Response is the flat body returned by the transcribe endpoint. It keeps
// the field names existing clients already parse, so no envelope here.
// TranslatedText is null when the caller did not ask for a translation.
type Response struct {
	TranscriptText string                  `json:"transcript_text"`
	TranslatedText *string                 `json:"translated_text"`
	Segments       []transcription.Segment `json:"segments"`
	Language       string                  `json:"language"`
}

// ErrorResponse mirrors the flat error body of the transcribe endpoint.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
