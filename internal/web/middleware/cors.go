// Package middleware provides HTTP middleware for the attendance API.
package middleware

import (
	"net/http"
)

// CORS returns middleware that allows any origin to call the API with
// GET, POST, or OPTIONS. The attendance UI is served from arbitrary
// hosts (kiosk devices, local files), so the surface is deliberately
// permissive. Preflight requests are answered with 200 and an empty body.
func CORS() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, X-Requested-With")
			w.Header().Set("Access-Control-Max-Age", "86400")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
