package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	// LogRetentionDays bounds how many daily archives are kept.
	LogRetentionDays = 7
)

// DefaultLogger is set by the first Logger created and used by packages that
// have no logger wired in (event handlers, registries).
var DefaultLogger *Logger

// Config captures logging configuration options.
type Config struct {
	Level string `yaml:"log_level" json:"log_level"`
	Dir   string `yaml:"log_dir" json:"log_dir"`
	File  string `yaml:"log_file" json:"log_file"`
}

var (
	colorReset = "\x1b[0m"
	colorTime  = "\x1b[90m"
	colorDebug = "\x1b[36m"
	colorInfo  = "\x1b[32m"
	colorWarn  = "\x1b[33m"
	colorError = "\x1b[31m"
)

// moduleColors maps the tag prefixes used across the server onto console
// colors so the interleaved request logs stay readable.
var moduleColors = map[string]string{
	"[BOOT]":      "\x1b[96m",
	"[HTTP]":      "\x1b[95m",
	"[ASR]":       "\x1b[35m",
	"[TRANSLATE]": "\x1b[34m",
	"[AUDIO]":     "\x1b[94m",
	"[SYSTEM]":    "\x1b[97m",
	"[EVENT]":     "\x1b[92m",
}

// consoleHandler renders colored single-line log output for the terminal.
type consoleHandler struct {
	writer io.Writer
	level  slog.Level
	mu     sync.Mutex
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	timeStr := r.Time.Format("2006-01-02 15:04:05.000")

	var levelStr, levelColor string
	switch r.Level {
	case slog.LevelDebug:
		levelStr, levelColor = "DEBUG", colorDebug
	case slog.LevelInfo:
		levelStr, levelColor = "INFO", colorInfo
	case slog.LevelWarn:
		levelStr, levelColor = "WARN", colorWarn
	case slog.LevelError:
		levelStr, levelColor = "ERROR", colorError
	default:
		levelStr, levelColor = "INFO", colorReset
	}

	msg := r.Message
	var moduleColor string
	for prefix, color := range moduleColors {
		if strings.HasPrefix(msg, prefix) {
			moduleColor = color
			break
		}
	}

	var output string
	if moduleColor != "" {
		output = fmt.Sprintf("%s[%s]%s %s%s%s",
			colorTime, timeStr, colorReset,
			moduleColor, msg, colorReset)
	} else {
		output = fmt.Sprintf("%s[%s]%s %s[%s]%s %s",
			colorTime, timeStr, colorReset,
			levelColor, levelStr, colorReset,
			msg)
	}

	if r.NumAttrs() > 0 {
		output += " {"
		r.Attrs(func(a slog.Attr) bool {
			output += fmt.Sprintf(" %s=%v", a.Key, a.Value)
			return true
		})
		output += " }"
	}
	output += "\n"

	_, err := h.writer.Write([]byte(output))
	return err
}

func (h *consoleHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *consoleHandler) WithGroup(string) slog.Handler      { return h }

// Logger writes every record twice: JSON to a daily-rotated file and colored
// text to stdout.
type Logger struct {
	config      *Config
	jsonLogger  *slog.Logger
	textLogger  *slog.Logger
	logFile     *os.File
	currentDate string
	mu          sync.RWMutex
	ticker      *time.Ticker
	stopCh      chan struct{}
}

func configLevelToSlogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates a logger backed by cfg.Dir/cfg.File plus stdout.
func New(cfg Config) (*Logger, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	logPath := filepath.Join(cfg.Dir, cfg.File)
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	slogLevel := configLevelToSlogLevel(cfg.Level)

	jsonHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: slogLevel})
	textHandler := &consoleHandler{writer: os.Stdout, level: slogLevel}

	logger := &Logger{
		config:      &cfg,
		jsonLogger:  slog.New(jsonHandler),
		textLogger:  slog.New(textHandler),
		logFile:     file,
		currentDate: time.Now().Format("2006-01-02"),
		stopCh:      make(chan struct{}),
	}

	logger.startRotationChecker()
	if DefaultLogger == nil {
		DefaultLogger = logger
	}

	return logger, nil
}

func (l *Logger) startRotationChecker() {
	l.ticker = time.NewTicker(1 * time.Minute)
	go func() {
		for {
			select {
			case <-l.ticker.C:
				l.checkAndRotate()
			case <-l.stopCh:
				return
			}
		}
	}()
}

func (l *Logger) checkAndRotate() {
	today := time.Now().Format("2006-01-02")
	if today != l.currentDate {
		l.rotateLogFile(today)
		l.cleanOldLogs()
	}
}

func (l *Logger) rotateLogFile(newDate string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.logFile != nil {
		l.logFile.Close()
	}

	logDir := l.config.Dir
	currentLogPath := filepath.Join(logDir, l.config.File)

	baseFileName := strings.TrimSuffix(l.config.File, filepath.Ext(l.config.File))
	ext := filepath.Ext(l.config.File)
	archivedLogPath := filepath.Join(logDir, fmt.Sprintf("%s-%s%s", baseFileName, l.currentDate, ext))

	if _, err := os.Stat(currentLogPath); err == nil {
		if err := os.Rename(currentLogPath, archivedLogPath); err != nil {
			l.textLogger.Error("failed to archive log file", slog.String("error", err.Error()))
		}
	}

	file, err := os.OpenFile(currentLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		l.textLogger.Error("failed to create new log file", slog.String("error", err.Error()))
		return
	}

	l.logFile = file
	l.currentDate = newDate

	slogLevel := configLevelToSlogLevel(l.config.Level)
	l.jsonLogger = slog.New(slog.NewJSONHandler(file, &slog.HandlerOptions{Level: slogLevel}))

	l.textLogger.Info("log file rotated", slog.String("new_date", newDate))
}

func (l *Logger) cleanOldLogs() {
	logDir := l.config.Dir

	entries, err := os.ReadDir(logDir)
	if err != nil {
		l.textLogger.Error("failed to read log directory", slog.String("error", err.Error()))
		return
	}

	cutoffDate := time.Now().AddDate(0, 0, -LogRetentionDays)
	baseFileName := strings.TrimSuffix(l.config.File, filepath.Ext(l.config.File))
	ext := filepath.Ext(l.config.File)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		fileName := entry.Name()
		if !strings.HasPrefix(fileName, baseFileName+"-") || !strings.HasSuffix(fileName, ext) {
			continue
		}

		dateStr := strings.TrimPrefix(fileName, baseFileName+"-")
		dateStr = strings.TrimSuffix(dateStr, ext)

		fileDate, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			continue
		}

		if fileDate.Before(cutoffDate) {
			if err := os.Remove(filepath.Join(logDir, fileName)); err != nil {
				l.textLogger.Error("failed to delete old log file",
					slog.String("file", fileName),
					slog.String("error", err.Error()))
			}
		}
	}
}

// Close stops the rotation checker and closes the log file.
func (l *Logger) Close() error {
	if l.ticker != nil {
		l.ticker.Stop()
	}
	close(l.stopCh)
	if l.logFile != nil {
		return l.logFile.Close()
	}
	return nil
}

func (l *Logger) log(level slog.Level, msg string, fields ...interface{}) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var attrs []slog.Attr
	if len(fields) > 0 && fields[0] != nil {
		if fieldsMap, ok := fields[0].(map[string]interface{}); ok {
			keys := make([]string, 0, len(fieldsMap))
			for k := range fieldsMap {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				attrs = append(attrs, slog.Any(k, fieldsMap[k]))
			}
		} else {
			attrs = append(attrs, slog.Any("fields", fields[0]))
		}
	}

	ctx := context.Background()
	l.jsonLogger.LogAttrs(ctx, level, msg, attrs...)
	l.textLogger.LogAttrs(ctx, level, msg, attrs...)
}

func containsFormatPlaceholders(s string) bool {
	return strings.Contains(s, "%")
}

// FormatLog builds a tagged log message, e.g. FormatLog("BOOT", "started")
// -> "[BOOT] started". Messages already starting with "[" pass through.
func FormatLog(tag, message string) string {
	tag = strings.TrimSpace(tag)
	message = strings.TrimSpace(message)
	if tag == "" {
		return message
	}
	if strings.HasPrefix(message, "[") {
		return message
	}
	return fmt.Sprintf("[%s] %s", tag, message)
}

func (l *Logger) logWithTag(level slog.Level, tag, msg string, args ...interface{}) {
	switch level {
	case slog.LevelDebug:
		l.Debug(FormatLog(tag, msg), args...)
	case slog.LevelWarn:
		l.Warn(FormatLog(tag, msg), args...)
	case slog.LevelError:
		l.Error(FormatLog(tag, msg), args...)
	default:
		l.Info(FormatLog(tag, msg), args...)
	}
}

// Debug logs at debug level. Printf-style when args are given and the
// message carries placeholders, structured otherwise.
func (l *Logger) Debug(msg string, args ...interface{}) {
	if configLevelToSlogLevel(l.config.Level) > slog.LevelDebug {
		return
	}
	if len(args) > 0 && containsFormatPlaceholders(msg) {
		l.log(slog.LevelDebug, fmt.Sprintf(msg, args...))
	} else {
		l.log(slog.LevelDebug, msg, args...)
	}
}

func (l *Logger) Info(msg string, args ...interface{}) {
	if len(args) > 0 && containsFormatPlaceholders(msg) {
		l.log(slog.LevelInfo, fmt.Sprintf(msg, args...))
	} else {
		l.log(slog.LevelInfo, msg, args...)
	}
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	if len(args) > 0 && containsFormatPlaceholders(msg) {
		l.log(slog.LevelWarn, fmt.Sprintf(msg, args...))
	} else {
		l.log(slog.LevelWarn, msg, args...)
	}
}

func (l *Logger) Error(msg string, args ...interface{}) {
	if len(args) > 0 && containsFormatPlaceholders(msg) {
		l.log(slog.LevelError, fmt.Sprintf(msg, args...))
	} else {
		l.log(slog.LevelError, msg, args...)
	}
}

// DebugTag logs a tagged debug message.
func (l *Logger) DebugTag(tag, msg string, args ...interface{}) {
	if l == nil {
		return
	}
	l.logWithTag(slog.LevelDebug, tag, msg, args...)
}

// InfoTag logs a tagged info message.
func (l *Logger) InfoTag(tag, msg string, args ...interface{}) {
	if l == nil {
		return
	}
	l.logWithTag(slog.LevelInfo, tag, msg, args...)
}

// WarnTag logs a tagged warning.
func (l *Logger) WarnTag(tag, msg string, args ...interface{}) {
	if l == nil {
		return
	}
	l.logWithTag(slog.LevelWarn, tag, msg, args...)
}

// ErrorTag logs a tagged error.
func (l *Logger) ErrorTag(tag, msg string, args ...interface{}) {
	if l == nil {
		return
	}
	l.logWithTag(slog.LevelError, tag, msg, args...)
}

// Slog exposes the underlying console slog logger for structured integrations.
func (l *Logger) Slog() *slog.Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.textLogger
}
