package localization

import "context"

type functionsKey struct{}

// WithFunctions stores bound translation functions in ctx.
func WithFunctions(ctx context.Context, fns *Functions) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, functionsKey{}, fns)
}

// FromContext returns the functions stored in ctx. When none are set the
// returned value passes text through untranslated.
func FromContext(ctx context.Context) *Functions {
	if ctx != nil {
		if fns, ok := ctx.Value(functionsKey{}).(*Functions); ok && fns != nil {
			return fns
		}
	}
	return &Functions{}
}
