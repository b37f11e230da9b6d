package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/absensi-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/jwt"
)

// Limiter decides whether one more request for key may proceed.
type Limiter interface {
	Allow(key string) bool
}

// RateLimitByEmployee throttles requests per authenticated employee,
// falling back to the remote address when no claims are present.
func RateLimitByEmployee(limiter Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.RemoteAddr
			if claims, err := jwt.FromContext(r.Context()); err == nil {
				key = claims.EmployeeID
			}

			if !limiter.Allow(key) {
				w.Header().Set("Retry-After", "60")
				response.TooManyRequests(w, "Too many attendance requests, please try again later")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
