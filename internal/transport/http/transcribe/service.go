package transcribe

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"transcribe-server-go/internal/app/services"
	"transcribe-server-go/internal/platform/errors"
	"transcribe-server-go/internal/platform/logging"
	httptransport "transcribe-server-go/internal/transport/http"
)

// Service registers the transcribe endpoint and bridges uploads into the
// speech pipeline.
type Service struct {
	speech *services.SpeechService
	logger *logging.Logger
}

func NewService(speech *services.SpeechService, logger *logging.Logger) (*Service, error) {
	if speech == nil {
		return nil, errors.New(errors.KindBootstrap, "transcribe.new", "speech service is required")
	}
	return &Service{speech: speech, logger: logger}, nil
}

// Start registers the transcribe routes on the root group.
func (s *Service) Start(ctx context.Context, engine *gin.Engine, root *gin.RouterGroup) error {
	root.GET("/transcribe", s.handleGet)
	root.POST("/transcribe", s.handlePost)
	root.OPTIONS("/transcribe", s.handleOptions)

	s.logger.InfoTag("HTTP", "transcribe routes registered")
	return nil
}

// handleGet is a liveness probe kept on the same path as the upload
// endpoint so clients can check reachability with a plain GET.
// @Summary Transcribe endpoint liveness
// @Description Confirms the transcribe endpoint is reachable
// @Tags Transcribe
// @Produce json
// @Success 200 {object} map[string]string
// @Router /transcribe [get]
func (s *Service) handleGet(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handlePost accepts one multipart upload and returns the recognition
// result, optionally translated.
// @Summary Transcribe an audio upload
// @Description Runs speech recognition on the uploaded file and optionally translates the transcript
// @Tags Transcribe
// @Accept multipart/form-data
// @Produce json
// @Param audio_file formData file true "audio recording"
// @Param from_language formData string false "language hint for recognition"
// @Param to_language formData string false "translation target, translation is skipped when absent"
// @Success 200 {object} Response
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /transcribe [post]
func (s *Service) handlePost(c *gin.Context) {
	fileHeader, err := c.FormFile("audio_file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "audio_file is not included in the request",
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		s.respondError(c, errors.Wrap(errors.KindTransport, "transcribe.post", "failed to open upload", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(c, errors.Wrap(errors.KindTransport, "transcribe.post", "failed to read upload", err))
		return
	}

	result, err := s.speech.Process(c.Request.Context(), &services.SpeechRequest{
		RequestID:    c.GetString(httptransport.RequestIDKey),
		Filename:     fileHeader.Filename,
		Data:         data,
		FromLanguage: c.PostForm("from_language"),
		ToLanguage:   c.PostForm("to_language"),
	})
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		TranscriptText: result.Text,
		TranslatedText: result.Translated,
		Segments:       result.Segments,
		Language:       result.Language,
	})
}

func (s *Service) handleOptions(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	c.Header("Access-Control-Allow-Headers", "Content-Type")
	c.Status(http.StatusNoContent)
}

func (s *Service) respondError(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)

	body := ErrorResponse{Error: "transcription failed"}
	var typed *errors.Error
	if errors.As(err, &typed) {
		body.Error = typed.Message
		if typed.Cause != nil {
			body.Details = typed.Cause.Error()
		}
	} else {
		body.Details = err.Error()
	}

	s.logger.ErrorTag("HTTP", "transcribe request failed (%d): %v", status, err)
	c.JSON(status, body)
}
