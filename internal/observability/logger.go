package observability

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options задаёт уровень логирования и ротацию файла
type Options struct {
	LogPath    string
	LogLevel   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type Logger struct {
	slog *slog.Logger
	file *lumberjack.Logger
}

// NewLogger пишет в stdout и, если задан LogPath, в файл с ротацией
func NewLogger(opts Options) *Logger {
	var out io.Writer = os.Stdout
	var file *lumberjack.Logger

	if opts.LogPath != "" {
		if dir := filepath.Dir(opts.LogPath); dir != "" {
			_ = os.MkdirAll(dir, 0o755)
		}
		file = &lumberjack.Logger{
			Filename:   opts.LogPath,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   true,
		}
		out = io.MultiWriter(os.Stdout, file)
	}

	return newWithWriter(out, opts.LogLevel, file)
}

// NewWriterLogger используется в тестах и утилитах
func NewWriterLogger(w io.Writer, level string) *Logger {
	return newWithWriter(w, level, nil)
}

// Discard возвращает логгер, который ничего не пишет
func Discard() *Logger {
	return newWithWriter(io.Discard, "error", nil)
}

func newWithWriter(w io.Writer, level string, file *lumberjack.Logger) *Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseLevel(level)})
	return &Logger{slog: slog.New(handler), file: file}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *Logger) Debug(msg string, fields ...interface{}) {
	l.slog.Debug(msg, fields...)
}

func (l *Logger) Info(msg string, fields ...interface{}) {
	l.slog.Info(msg, fields...)
}

func (l *Logger) Warn(msg string, fields ...interface{}) {
	l.slog.Warn(msg, fields...)
}

func (l *Logger) Error(msg string, fields ...interface{}) {
	l.slog.Error(msg, fields...)
}

// Printf нужен для chromedp.WithLogf и подобных колбэков
func (l *Logger) Printf(format string, args ...interface{}) {
	l.slog.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// Close закрывает файл лога
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
