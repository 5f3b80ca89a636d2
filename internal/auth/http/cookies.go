package http

import (
	"net/http"
	"time"
)

const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"
)

// cookieWriter stamps the token pair cookies. Secure is configurable so the
// pair still round-trips in plain-HTTP local setups; production keeps it on.
type cookieWriter struct {
	secure bool
}

func (cw cookieWriter) setTokenCookies(w http.ResponseWriter, accessToken, refreshToken string, accessTTL, refreshTTL time.Duration) {
	http.SetCookie(w, cw.tokenCookie(accessTokenCookie, accessToken, accessTTL))
	http.SetCookie(w, cw.tokenCookie(refreshTokenCookie, refreshToken, refreshTTL))
}

func (cw cookieWriter) clearTokenCookies(w http.ResponseWriter) {
	http.SetCookie(w, cw.tokenCookie(accessTokenCookie, "", -time.Second))
	http.SetCookie(w, cw.tokenCookie(refreshTokenCookie, "", -time.Second))
}

func (cw cookieWriter) tokenCookie(name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   cw.secure,
		SameSite: http.SameSiteStrictMode,
	}
}
