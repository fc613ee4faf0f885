// mdserver/middlewares/auth.go
package middlewares

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"mdserver/mdserver/config"
	"mdserver/mdserver/utils/types"
)

// APIKeyMiddleware enforces the static bearer key. When no key is
// configured the server is open and the middleware is a pass-through.
func APIKeyMiddleware(cfg config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.APIKey == "" {
				next.ServeHTTP(w, r)
				return
			}
			auth := r.Header.Get("Authorization")
			parts := strings.SplitN(auth, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" ||
				subtle.ConstantTimeCompare([]byte(parts[1]), []byte(cfg.APIKey)) != 1 {
				writeUnauthorized(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(types.ConvertResponse{
		Success: false,
		Error: &types.ErrorBody{
			Code:    "UNAUTHORIZED",
			Message: "missing or invalid API key",
			Suggestions: []string{
				"Send the API key as: Authorization: Bearer <key>",
			},
		},
	})
}
