package middleware

import (
	"net/http"
	"strings"
)

// SecurityHeadersMiddleware sets the security headers every page carries.
type SecurityHeadersMiddleware struct {
	isSecure bool
	csp      string
}

// NewSecurityHeadersMiddleware enables HSTS when isSecure is set.
func NewSecurityHeadersMiddleware(isSecure bool) *SecurityHeadersMiddleware {
	return &SecurityHeadersMiddleware{
		isSecure: isSecure,
		csp:      buildCSP(),
	}
}

func (m *SecurityHeadersMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if m.isSecure {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		h.Set("Content-Security-Policy", m.csp)
		h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		// Ask for the colour-scheme hint so the first render picks the right theme.
		h.Set("Accept-CH", "Sec-CH-Prefers-Color-Scheme")
		h.Add("Vary", "Sec-CH-Prefers-Color-Scheme")

		next.ServeHTTP(w, r)
	})
}

// buildCSP allows Bootstrap from jsDelivr and htmx
// from unpkg. Resort links open in new tabs and never load in frames.
func buildCSP() string {
	return strings.Join([]string{
		"default-src 'self'",
		"script-src 'self' https://unpkg.com https://cdn.jsdelivr.net",
		"style-src 'self' https://cdn.jsdelivr.net 'unsafe-inline'",
		"img-src 'self' data: https:",
		"font-src 'self' https://cdn.jsdelivr.net",
		"connect-src 'self'",
		"frame-ancestors 'none'",
		"base-uri 'self'",
		"form-action 'self'",
	}, "; ")
}
