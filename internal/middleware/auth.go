package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

// TokenParser verifies a bearer token and returns the caller's user id.
type TokenParser interface {
	Parse(token string) (string, error)
}

type callerKey struct{}

type callerHolderKey struct{}

// callerHolder lets an outer middleware see the caller id resolved by an
// inner RequireAuth.
type callerHolder struct {
	userID string
}

func withCallerHolder(ctx context.Context, h *callerHolder) context.Context {
	return context.WithValue(ctx, callerHolderKey{}, h)
}

// WithCallerID returns a copy of ctx carrying the authenticated user id.
func WithCallerID(ctx context.Context, userID string) context.Context {
	if h, ok := ctx.Value(callerHolderKey{}).(*callerHolder); ok {
		h.userID = userID
	}
	return context.WithValue(ctx, callerKey{}, userID)
}

// CallerID returns the authenticated user id placed by RequireAuth.
func CallerID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(callerKey{}).(string)
	return id, ok && id != ""
}

// RequireAuth rejects requests without a valid bearer token with 401.
// On success the caller id is available through CallerID.
func RequireAuth(parser TokenParser, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r.Header.Get("Authorization"))
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", err.Error())
				return
			}
			userID, err := parser.Parse(token)
			if err != nil {
				log.DebugContext(r.Context(), "token rejected", "error", err)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithCallerID(r.Context(), userID)))
		})
	}
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errors.New("missing authorization header")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("authorization header must be a bearer token")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("empty bearer token")
	}
	return token, nil
}
