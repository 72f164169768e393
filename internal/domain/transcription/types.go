package transcription

// Segment is a time-bounded span of transcript text, offsets in seconds.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Request carries one upload into a provider.
type Request struct {
	Filename string
	Data     []byte
	// Language is the optional source-language hint; empty means the
	// backend auto-detects.
	Language string
}

// Result is what a provider returns for one upload.
type Result struct {
	Text     string
	Language string
	Segments []Segment
}
