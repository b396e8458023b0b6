/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package i18n

import "net/http"

// Middleware stores a localizer for the request's Accept-Language header
// in the request context. A "lang" query parameter takes precedence.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		loc := NewLocalizer(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"))

		next.ServeHTTP(w, r.WithContext(WithLocalizer(r.Context(), loc)))
	})
}
