package middleware

import (
	"context"
	"net/http"

	mechauth "github.com/mechtrack/mechauth"
)

type subjectContextKey struct{}

// SubjectFromContext returns the subject injected by [Guard] for the current
// request, or "" when the request did not pass through the guard.
func SubjectFromContext(ctx context.Context) string {
	subject, _ := ctx.Value(subjectContextKey{}).(string)
	return subject
}

// Guard returns middleware that rejects requests whose Authorization header
// does not carry a valid access token. The request context handed to the
// wrapped handler carries the authenticated subject and the caller's origin
// key (the remote address) for downstream engine calls.
func Guard(engine *mechauth.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := mechauth.WithOrigin(r.Context(), r.RemoteAddr)

			result, err := engine.Validate(ctx, r.Header.Get("Authorization"))
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx = context.WithValue(ctx, subjectContextKey{}, result.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
