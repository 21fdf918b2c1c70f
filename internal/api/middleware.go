package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/agentgw/agentgw/internal/logx"
)

// APIKeyMiddleware rejects requests without the expected bearer key.
func APIKeyMiddleware(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(key)) != 1 {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logID := chiMiddleware.GetReqID(r.Context())
		logx.Log.Debug().Str("log_id", logID).Str("method", r.Method).Str("path", r.URL.Path).Msg("request")
		next.ServeHTTP(w, r)
	})
}
