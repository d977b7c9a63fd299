package auth

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

type ctxKey struct{}

// WithToken returns a context carrying tok.
func WithToken(ctx context.Context, tok *Token) context.Context {
	return context.WithValue(ctx, ctxKey{}, tok)
}

// FromContext returns the token attached by Middleware, if any.
func FromContext(ctx context.Context) (*Token, bool) {
	tok, ok := ctx.Value(ctxKey{}).(*Token)
	return tok, ok
}

// Actor names the caller of r for audit entries.
func Actor(r *http.Request) string {
	if tok, ok := FromContext(r.Context()); ok {
		return "token:" + tok.Name
	}
	return "anonymous"
}

// Middleware requires a valid bearer token on every request except the
// paths listed in public. Read-scoped tokens may only use safe methods.
// Browsers cannot set headers on WebSocket upgrades, so an access_token
// query parameter is accepted on GET requests.
func Middleware(store *Store, logger *zap.Logger, public ...string) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	open := make(map[string]bool, len(public))
	for _, p := range public {
		open[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if open[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			plaintext := bearerToken(r)
			if plaintext == "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="bandobast"`)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			tok, err := store.Verify(r.Context(), plaintext)
			if err != nil {
				logger.Debug("rejected API token", zap.String("path", r.URL.Path), zap.Error(err))
				w.Header().Set("WWW-Authenticate", `Bearer realm="bandobast", error="invalid_token"`)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if !tok.Allows(r.Method) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithToken(r.Context(), tok)))
		})
	}
}

func bearerToken(r *http.Request) string {
	if plaintext, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(plaintext)
	}
	if r.Method == http.MethodGet {
		return r.URL.Query().Get("access_token")
	}
	return ""
}
