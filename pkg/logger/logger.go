// Package logger, uygulama genelinde kullanılan slog logger'ını kurar.
//
// Çıktı iki handler'a fan-out edilir:
//   - stdout: insan okunur text format
//   - LOG_FILE (opsiyonel): lumberjack ile döndürülen JSON dosyası
//
// Setup, logger'ı slog.SetDefault ile global yapar; bileşenler
// slog.With("component", "...") ile kendi alt logger'larını türetir.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	multi "github.com/samber/slog-multi"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options, logger kurulum ayarları.
type Options struct {
	Level  string    // debug, info, warn, error
	File   string    // boş → sadece stdout
	Stdout io.Writer // nil → os.Stdout
}

// Logger, kurulmuş slog.Logger ve açık dosya handle'ı.
type Logger struct {
	*slog.Logger
	level *slog.LevelVar
	file  *lumberjack.Logger
}

// Setup, logger'ı oluşturur ve default slog logger olarak ayarlar.
func Setup(opts Options) *Logger {
	l := &Logger{level: &slog.LevelVar{}}
	l.SetLevel(opts.Level)

	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	handlerOpts := &slog.HandlerOptions{Level: l.level}
	handlers := []slog.Handler{slog.NewTextHandler(stdout, handlerOpts)}

	if opts.File != "" {
		l.file = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    64, // MB
			MaxBackups: 32,
			MaxAge:     30, // gün
			Compress:   true,
		}
		handlers = append(handlers, slog.NewJSONHandler(l.file, handlerOpts))
	}

	l.Logger = slog.New(multi.Fanout(handlers...))
	slog.SetDefault(l.Logger)

	return l
}

// SetLevel, log seviyesini çalışırken değiştirir. Bilinmeyen değer → info.
func (l *Logger) SetLevel(level string) {
	switch strings.ToLower(level) {
	case "debug":
		l.level.Set(slog.LevelDebug)
	case "warn":
		l.level.Set(slog.LevelWarn)
	case "error":
		l.level.Set(slog.LevelError)
	default:
		l.level.Set(slog.LevelInfo)
	}
}

// Close, log dosyası açıksa kapatır.
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
