package tool

import "context"

// UpdateFunc receives progress messages emitted while a tool runs, so the
// caller can surface "searching documents..." style feedback before the
// final answer arrives.
type UpdateFunc func(ctx context.Context, message string)

type contextKey struct{}

// WithUpdate installs fn as the progress sink for tool calls under ctx
func WithUpdate(ctx context.Context, fn UpdateFunc) context.Context {
	return context.WithValue(ctx, contextKey{}, fn)
}

// Update reports one progress message to the sink installed in ctx. With
// no sink installed it does nothing.
func Update(ctx context.Context, message string) {
	if fn, ok := ctx.Value(contextKey{}).(UpdateFunc); ok {
		fn(ctx, message)
	}
}
