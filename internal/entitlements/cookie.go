package entitlements

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/golden-vcr/openaccess"
)

// CookieName is the cookie in which the storefront reads the user's entitlements
const CookieName = "entitlements"

// cookieLifetime is long enough that the cookie is effectively permanent: while the
// user is not linked to Spotify, it is the only record of their subscriptions
const cookieLifetime = 10 * 365 * 24 * time.Hour

// ReadCookie returns the entitlements cached in the request's cookie. ok is false if
// the cookie is absent or can not be decoded.
func ReadCookie(req *http.Request) (e openaccess.Entitlements, ok bool) {
	cookie, err := req.Cookie(CookieName)
	if err != nil {
		return openaccess.Entitlements{}, false
	}
	return decodeCookieValue(cookie.Value)
}

// WriteCookie overwrites the entitlements cookie. The value is a URI-encoded JSON
// array that browser-side code can read directly.
func WriteCookie(res http.ResponseWriter, e openaccess.Entitlements) error {
	value, err := encodeCookieValue(e)
	if err != nil {
		return err
	}
	http.SetCookie(res, &http.Cookie{
		Name:   CookieName,
		Value:  value,
		Path:   "/",
		MaxAge: int(cookieLifetime.Seconds()),
	})
	return nil
}

func encodeCookieValue(e openaccess.Entitlements) (string, error) {
	data, err := json.Marshal(e.Normalize())
	if err != nil {
		return "", err
	}
	return url.PathEscape(string(data)), nil
}

func decodeCookieValue(value string) (openaccess.Entitlements, bool) {
	unescaped, err := url.PathUnescape(value)
	if err != nil {
		return openaccess.Entitlements{}, false
	}
	var e openaccess.Entitlements
	if err := json.Unmarshal([]byte(unescaped), &e); err != nil {
		return openaccess.Entitlements{}, false
	}
	return e.Normalize(), true
}
