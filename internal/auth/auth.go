package auth

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey int

const keyID ctxKey = 0

// Store is a static in-memory key store: secret -> keyID.
//
// It classifies rather than gates: a request with a recognized key gets
// its key ID attached to the context (putting it in the authenticated
// rate-limit class), everything else passes through untagged. Rejecting
// bad keys is left to whatever sits behind the limiter.
type Store struct {
	header   string
	bySecret map[string]string
}

// NewStatic creates a key store reading secrets from the given header
// (e.g. "X-API-Key").
func NewStatic(header string, pairs map[string]string) *Store {
	h := header
	if h == "" {
		h = "X-API-Key"
	}
	return &Store{header: h, bySecret: pairs}
}

// WithKeyID injects the key ID into context.
func WithKeyID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyID, id)
}

// KeyIDFrom extracts the key ID from context (if present).
func KeyIDFrom(ctx context.Context) (string, bool) {
	v := ctx.Value(keyID)
	if v == nil {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

// Tag returns middleware that attaches the key ID for requests carrying
// a recognized secret. Unknown or missing secrets are not an error; the
// request simply stays in the anonymous class.
func (s *Store) Tag() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			secret := strings.TrimSpace(r.Header.Get(s.header))
			if secret != "" {
				if id, ok := s.bySecret[secret]; ok {
					r = r.WithContext(WithKeyID(r.Context(), id))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
