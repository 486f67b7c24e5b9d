package middleware

import (
	"context"
	"net/http"
	"strings"

	jwtinfra "github.com/go-blog-nosql/internal/infrastructure/jwt"
)

type contextKey string

const (
	claimsKey    contextKey = "claims"
	anonymousKey contextKey = "anonymous"
)

// TokenCookie is the cookie that carries the identity token.
const TokenCookie = "Token"

// TokenVerifier checks a raw token string.
type TokenVerifier interface {
	Verify(token string) (*jwtinfra.Claims, error)
}

// AllowAnonymous marks the route as reachable without identity. Identify
// skips token inspection entirely for marked requests.
func AllowAnonymous(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), anonymousKey, true)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IsAnonymousRoute reports whether AllowAnonymous ran for this request.
func IsAnonymousRoute(ctx context.Context) bool {
	v, _ := ctx.Value(anonymousKey).(bool)
	return v
}

// Identify establishes caller identity from the Token cookie or the
// Authorization header. Requests without a token pass through unidentified;
// requests with a token that fails verification get a 401.
func Identify(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if IsAnonymousRoute(r.Context()) {
				next.ServeHTTP(w, r)
				return
			}
			token, present := tokenFromRequest(r)
			if !present {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := verifier.Verify(token)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, MsgInvalidToken)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// tokenFromRequest prefers the cookie: a Token cookie that is present wins
// even when empty, and then fails verification. A header value without the
// "Bearer " prefix is used as-is; a bare "Bearer" counts as no token.
func tokenFromRequest(r *http.Request) (string, bool) {
	if c, err := r.Cookie(TokenCookie); err == nil {
		return c.Value, true
	}
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if h == "" || h == "Bearer" {
		return "", false
	}
	if rest, ok := strings.CutPrefix(h, "Bearer "); ok {
		rest = strings.TrimSpace(rest)
		return rest, rest != ""
	}
	return h, true
}

// RequireIdentity rejects requests that Identify left unidentified.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ClaimsFromContext(r.Context()); !ok {
			writeJSONError(w, http.StatusUnauthorized, MsgLoginRequired)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithClaims stores verified claims in ctx.
func WithClaims(ctx context.Context, claims *jwtinfra.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext extracts JWT claims from the request context.
func ClaimsFromContext(ctx context.Context) (*jwtinfra.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*jwtinfra.Claims)
	return c, ok && c != nil
}
