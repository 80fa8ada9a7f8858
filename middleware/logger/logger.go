package logger

import (
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/sweetpotato0/gov-allin/middleware"
	"github.com/sweetpotato0/gov-allin/pkg/logging"
)

// RequestLogger logs each generation call with its size and latency.
type RequestLogger struct {
	logger *slog.Logger
}

// NewRequestLogger creates a request logging middleware. A nil logger uses
// the "llm" component logger.
func NewRequestLogger(logger *slog.Logger) *RequestLogger {
	if logger == nil {
		logger = logging.WithComponent("llm")
	}
	return &RequestLogger{logger: logger}
}

// Name returns the middleware name
func (m *RequestLogger) Name() string {
	return "RequestLogger"
}

// Execute logs the call after it returns.
func (m *RequestLogger) Execute(ctx *middleware.Context, next middleware.Handler) error {
	start := time.Now()
	err := next(ctx)
	attrs := []any{
		"prompt_runes", utf8.RuneCountInString(ctx.Prompt),
		"response_runes", utf8.RuneCountInString(ctx.Response),
		"duration", time.Since(start),
	}
	if err != nil {
		m.logger.WarnContext(ctx.Context(), "generation failed", append(attrs, "error", err)...)
		return err
	}
	m.logger.DebugContext(ctx.Context(), "generation finished",
		append(attrs, "response", logging.Trim(ctx.Response, 120))...)
	return nil
}
