package middleware

import "net/http"

// RequireVerified rejects identified callers whose token says the email is
// not verified. Must run after RequireIdentity.
func RequireVerified(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			writeJSONError(w, http.StatusUnauthorized, MsgLoginRequired)
			return
		}
		if !claims.Verified {
			writeJSONError(w, http.StatusUnauthorized, MsgNotVerified)
			return
		}
		next.ServeHTTP(w, r)
	})
}
