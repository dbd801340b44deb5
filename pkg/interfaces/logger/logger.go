package logger

import "context"

// Field represents a structured logging key/value pair.
type Field struct {
	Key   string
	Value any
}

// Logger is the minimal contract expected by go-widgets services.
// Implementations may forward to go-logger, zap, logrus, etc.
type Logger interface {
	With(fields ...Field) Logger
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Nop is a no-op logger implementation useful for tests.
type Nop struct{}

// Ensure Nop satisfies Logger.
var _ Logger = (*Nop)(nil)

func (n *Nop) With(fields ...Field) Logger       { return n }
func (n *Nop) Debug(msg string, fields ...Field) {}
func (n *Nop) Info(msg string, fields ...Field)  {}
func (n *Nop) Warn(msg string, fields ...Field)  {}
func (n *Nop) Error(msg string, fields ...Field) {}

type ctxKey struct{}

// WithLogger stores lgr in ctx so request scoped fields follow the call chain.
func WithLogger(ctx context.Context, lgr Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey{}, lgr)
}

// FromContext returns the logger stored in ctx, or fallback when none is set.
// A nil fallback yields Nop.
func FromContext(ctx context.Context, fallback Logger) Logger {
	if ctx != nil {
		if lgr, ok := ctx.Value(ctxKey{}).(Logger); ok && lgr != nil {
			return lgr
		}
	}
	if fallback == nil {
		return &Nop{}
	}
	return fallback
}
