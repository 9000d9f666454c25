// Package theme resolves the light/dark colour scheme of a page view.
//
// The choice is kept in the "theme" cookie. Without a stored choice the
// browser's prefers-color-scheme hint decides, and when that is missing too
// the page renders light.
package theme

import (
	"net/http"
	"strings"
)

// Theme is a colour scheme.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

const (
	// CookieName is the cookie holding an explicit choice.
	CookieName   = "theme"
	cookieMaxAge = 365 * 24 * 60 * 60

	lightColor = "#f8fafc"
	darkColor  = "#0f172a"

	// prefersHeader is the client hint carrying prefers-color-scheme.
	prefersHeader = "Sec-CH-Prefers-Color-Scheme"
)

// Parse maps a stored value onto a Theme. Anything else yields "".
func Parse(raw string) Theme {
	switch Theme(strings.ToLower(strings.TrimSpace(raw))) {
	case Light:
		return Light
	case Dark:
		return Dark
	default:
		return ""
	}
}

// Resolve picks the theme: a stored choice wins, otherwise the preference.
func Resolve(stored Theme, prefersDark bool) Theme {
	if stored == Light || stored == Dark {
		return stored
	}
	if prefersDark {
		return Dark
	}
	return Light
}

// Toggle flips between light and dark. Anything but dark becomes dark.
func Toggle(current Theme) Theme {
	if current == Dark {
		return Light
	}
	return Dark
}

// ThemeColor returns the value for the theme-color meta tag.
func ThemeColor(t Theme) string {
	if t == Dark {
		return darkColor
	}
	return lightColor
}

// FromRequest resolves the theme for r from its cookie and client hint.
func FromRequest(r *http.Request) Theme {
	return Resolve(Stored(r), PrefersDark(r))
}

// Stored returns the explicit choice saved in the cookie, or "".
func Stored(r *http.Request) Theme {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return Parse(c.Value)
}

// PrefersDark reports whether the browser asked for a dark scheme.
func PrefersDark(r *http.Request) bool {
	return strings.EqualFold(strings.Trim(r.Header.Get(prefersHeader), `"`), "dark")
}

// SetCookie stores t as the explicit choice.
func SetCookie(w http.ResponseWriter, t Theme, isSecure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    string(t),
		Path:     "/",
		MaxAge:   cookieMaxAge,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Explicit resolves the theme only when r carries a cookie or a client hint.
// Otherwise it returns "" and the page is left to follow the browser.
func Explicit(r *http.Request) Theme {
	if Stored(r) == "" && r.Header.Get(prefersHeader) == "" {
		return ""
	}
	return FromRequest(r)
}
