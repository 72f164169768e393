package audio

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/hajimehoshi/go-mp3"

	"transcribe-server-go/internal/platform/config"
	"transcribe-server-go/internal/platform/errors"
	"transcribe-server-go/internal/platform/logging"
)

// Format is a container format detected from magic bytes.
type Format string

const (
	FormatMP3     Format = "mp3"
	FormatWAV     Format = "wav"
	FormatOGG     Format = "ogg"
	FormatFLAC    Format = "flac"
	FormatM4A     Format = "m4a"
	FormatWebM    Format = "webm"
	FormatUnknown Format = ""
)

// DetectFormat sniffs the container format from the first bytes of the
// upload. Codec handling stays with the speech backend; this only decides
// whether the blob looks like audio at all.
func DetectFormat(data []byte) Format {
	if len(data) < 12 {
		return FormatUnknown
	}
	switch {
	case bytes.HasPrefix(data, []byte("ID3")):
		return FormatMP3
	case data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return FormatMP3
	case bytes.HasPrefix(data, []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
		return FormatWAV
	case bytes.HasPrefix(data, []byte("OggS")):
		return FormatOGG
	case bytes.HasPrefix(data, []byte("fLaC")):
		return FormatFLAC
	case bytes.Equal(data[4:8], []byte("ftyp")):
		return FormatM4A
	case bytes.HasPrefix(data, []byte{0x1A, 0x45, 0xDF, 0xA3}):
		return FormatWebM
	}
	return FormatUnknown
}

// Validator screens uploads before they reach the speech backend so that
// obviously broken requests fail fast with a client error.
type Validator struct {
	maxSize int64
	allowed map[Format]bool
	logger  *logging.Logger
}

func NewValidator(cfg config.UploadConfig, logger *logging.Logger) *Validator {
	allowed := make(map[Format]bool, len(cfg.AllowedFormats))
	for _, f := range cfg.AllowedFormats {
		allowed[Format(strings.ToLower(f))] = true
	}
	return &Validator{
		maxSize: cfg.MaxFileSize,
		allowed: allowed,
		logger:  logger,
	}
}

// Validate reports the detected format or a client-kind error. MP3 uploads
// additionally get a header decode pass, since that is the format the
// desktop clients send and go-mp3 catches truncated files cheaply.
func (v *Validator) Validate(filename string, data []byte) (Format, error) {
	if len(data) == 0 {
		return FormatUnknown, errors.New(errors.KindAudio, "audio.validate", "uploaded audio file is empty")
	}
	if v.maxSize > 0 && int64(len(data)) > v.maxSize {
		return FormatUnknown, errors.Wrap(errors.KindAudio, "audio.validate", "uploaded audio file too large",
			fmt.Errorf("%d bytes exceeds limit of %d", len(data), v.maxSize))
	}

	format := DetectFormat(data)
	if format == FormatUnknown {
		return FormatUnknown, errors.Wrap(errors.KindAudio, "audio.validate", "unsupported or unrecognised audio format",
			fmt.Errorf("file %q did not match any known container", filename))
	}
	if len(v.allowed) > 0 && !v.allowed[format] {
		return format, errors.Wrap(errors.KindAudio, "audio.validate", "audio format not allowed",
			fmt.Errorf("format %s is disabled in upload config", format))
	}

	if format == FormatMP3 {
		if _, err := mp3.NewDecoder(bytes.NewReader(data)); err != nil {
			return format, errors.Wrap(errors.KindAudio, "audio.validate", "unreadable mp3 audio", err)
		}
	}

	v.logger.DebugTag("AUDIO", "upload %s sniffed as %s (%d bytes)", filename, format, len(data))
	return format, nil
}
