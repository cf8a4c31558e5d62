package logging

import (
	"context"
	"log"
	"strings"
)

type ctxKey struct{}

var debugEnabled bool

// SetLevel enables debug output when level is "debug".
func SetLevel(level string) {
	debugEnabled = strings.EqualFold(strings.TrimSpace(level), "debug")
}

// WithRequestID returns a context carrying the request id used as the log prefix.
func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, ctxKey{}, rid)
}

// RequestID returns the request id stored in ctx, or "".
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if rid, ok := ctx.Value(ctxKey{}).(string); ok {
		return rid
	}
	return ""
}

// Logger writes key=value lines tagged with the request id.
type Logger struct {
	requestID string
}

func New(ctx context.Context) *Logger {
	rid := RequestID(ctx)
	if rid == "" {
		rid = "-"
	}
	return &Logger{requestID: rid}
}

func (l *Logger) Info(operation, message string) {
	log.Printf("[info] request_id=%s operation=%s message=%s", l.requestID, operation, message)
}

func (l *Logger) Infof(operation, format string, args ...any) {
	log.Printf("[info] request_id=%s operation=%s "+format, append([]any{l.requestID, operation}, args...)...)
}

func (l *Logger) Warn(operation, message string) {
	log.Printf("[warn] request_id=%s operation=%s message=%s", l.requestID, operation, message)
}

func (l *Logger) Warnf(operation, format string, args ...any) {
	log.Printf("[warn] request_id=%s operation=%s "+format, append([]any{l.requestID, operation}, args...)...)
}

func (l *Logger) Error(operation string, err error) {
	log.Printf("[error] request_id=%s operation=%s error=%v", l.requestID, operation, err)
}

func (l *Logger) Errorf(operation, format string, args ...any) {
	log.Printf("[error] request_id=%s operation=%s "+format, append([]any{l.requestID, operation}, args...)...)
}

func (l *Logger) Debugf(operation, format string, args ...any) {
	if !debugEnabled {
		return
	}
	log.Printf("[debug] request_id=%s operation=%s "+format, append([]any{l.requestID, operation}, args...)...)
}
