package daemon

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"clipper/internal/api"
)

const kindUnauthorized = "unauthorized"

// requireToken wraps next with bearer-token validation. An empty token
// disables authentication; otherwise requests must carry
// "Authorization: Bearer <token>".
func (s *apiServer) requireToken(token string, next http.HandlerFunc) http.HandlerFunc {
	if token == "" {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		supplied, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(supplied), []byte(token)) != 1 {
			s.writeJSON(w, http.StatusUnauthorized, api.ErrorResponse{Error: "missing or invalid API token", Kind: kindUnauthorized})
			return
		}
		next(w, r)
	}
}
