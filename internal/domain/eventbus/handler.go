package eventbus

import (
	"context"

	"transcribe-server-go/internal/platform/logging"
	"transcribe-server-go/internal/platform/observability"
)

// SetupEventHandlers subscribes the logging/metric observers. Called once
// during bootstrap, after the logger is ready.
func SetupEventHandlers() {
	_ = SubscribeAsync(EventTranscriptionCompleted, func(data TranscriptionEventData) {
		logging.DefaultLogger.InfoTag("EVENT",
			"transcription completed request=%s lang=%s segments=%d in %.0fms",
			data.RequestID, data.Language, data.SegmentCount, data.DurationMs)
		observability.RecordMetric(context.Background(), "transcription.duration_ms",
			data.DurationMs, map[string]string{"language": data.Language})
	})

	_ = SubscribeAsync(EventTranscriptionError, func(data TranscriptionEventData) {
		logging.DefaultLogger.WarnTag("EVENT",
			"transcription failed request=%s: %s", data.RequestID, data.Error)
		observability.RecordMetric(context.Background(), "transcription.errors",
			1, map[string]string{})
	})

	_ = SubscribeAsync(EventTranslationCompleted, func(data TranslationEventData) {
		logging.DefaultLogger.InfoTag("EVENT",
			"translation completed request=%s %s->%s chars=%d in %.0fms",
			data.RequestID, data.From, data.To, data.Chars, data.DurationMs)
		observability.RecordMetric(context.Background(), "translation.duration_ms",
			data.DurationMs, map[string]string{"to": data.To})
	})

	_ = SubscribeAsync(EventTranslationError, func(data TranslationEventData) {
		logging.DefaultLogger.WarnTag("EVENT",
			"translation failed request=%s: %s", data.RequestID, data.Error)
		observability.RecordMetric(context.Background(), "translation.errors",
			1, map[string]string{})
	})
}
