package mechauth

import "context"

type originContextKey struct{}

// DefaultOrigin is the origin key used when the caller attaches none. A
// single-operator deployment behind one client can run entirely on it; the
// HTTP layer should attach the client IP for per-origin lockout.
const DefaultOrigin = "default"

// WithOrigin attaches the caller's origin key (typically the client IP) to
// ctx. The engine uses it for login throttling and audit records.
func WithOrigin(ctx context.Context, origin string) context.Context {
	return context.WithValue(ctx, originContextKey{}, origin)
}

func originFromContext(ctx context.Context) string {
	if ctx == nil {
		return DefaultOrigin
	}

	origin, _ := ctx.Value(originContextKey{}).(string)
	if origin == "" {
		return DefaultOrigin
	}

	return origin
}
