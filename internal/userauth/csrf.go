package userauth

import (
	"crypto/rand"
	"errors"
	"math/big"
	"net/http"
	"path"
	"time"

	"github.com/golden-vcr/openaccess/internal/signing"
)

// StateCookieName is the cookie that carries the signed CSRF token between the start
// of the authorization flow and the callback
const StateCookieName = "spotify_auth_state"

const stateTTL = 15 * time.Minute

const stateLength = 16
const stateAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

var (
	ErrMissingStateParam = errors.New("'state' value not found in URL query params")
	ErrMissingState      = errors.New("state cookie not present")
	ErrInvalidState      = errors.New("state cookie could not be verified")
	ErrStateMismatch     = errors.New("state does not match stored value")
)

// stateCodec issues CSRF tokens and verifies that the 'state' value returned from the
// authorization server is the one we issued to the same browser. Rather than keeping
// issued tokens in memory, we hand the browser a signed copy of the token in a cookie.
type stateCodec struct {
	signer   *signing.Signer
	generate func() string
}

func newStateCodec(signer *signing.Signer) *stateCodec {
	return &stateCodec{
		signer:   signer,
		generate: generateRandomString,
	}
}

// issue generates a new CSRF token, stores a signed copy in the state cookie, and
// returns the token so it can be sent to the authorization server as 'state'
func (c *stateCodec) issue(res http.ResponseWriter, req *http.Request) (string, error) {
	state := c.generate()
	signed, err := c.signer.Sign(state, stateTTL)
	if err != nil {
		return "", err
	}
	http.SetCookie(res, &http.Cookie{
		Name:     StateCookieName,
		Value:    signed,
		Path:     flowPath(req),
		MaxAge:   int(stateTTL.Seconds()),
		HttpOnly: true,
		Secure:   true,
	})
	return state, nil
}

// verify checks the 'state' query param against the value stored in the state cookie
func (c *stateCodec) verify(req *http.Request) error {
	state := req.URL.Query().Get("state")
	if state == "" {
		return ErrMissingStateParam
	}
	cookie, err := req.Cookie(StateCookieName)
	if err != nil || cookie.Value == "" {
		return ErrMissingState
	}
	stored, err := c.signer.Verify(cookie.Value)
	if err != nil {
		return ErrInvalidState
	}
	if stored != state {
		return ErrStateMismatch
	}
	return nil
}

func clearStateCookie(res http.ResponseWriter, req *http.Request) {
	http.SetCookie(res, &http.Cookie{
		Name:     StateCookieName,
		Value:    "",
		Path:     flowPath(req),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
	})
}

// flowPath scopes the state cookie to the directory that holds the entrypoint and
// callback routes, e.g. /api for /api/entrypoint and /api/callback
func flowPath(req *http.Request) string {
	dir := path.Dir(req.URL.Path)
	if dir == "." || dir == "" {
		return "/"
	}
	return dir
}

func generateRandomString() string {
	max := big.NewInt(int64(len(stateAlphabet)))
	b := make([]byte, stateLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(err)
		}
		b[i] = stateAlphabet[n.Int64()]
	}
	return string(b)
}
