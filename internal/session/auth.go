package session

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/golden-vcr/openaccess/internal/signing"
)

// Cookie names used to carry the user's identity
const (
	IdentityCookieName      = "lunar_industries__user"
	AuthenticatedCookieName = "is_authenticated"
)

// identityTTL is how long a login remains valid
const identityTTL = 15 * time.Minute

// LoginPath is where unauthenticated clients are sent
const LoginPath = "/login.html"

var (
	ErrMissingIdentity = errors.New("identity cookie not present")
	ErrInvalidIdentity = errors.New("identity cookie could not be verified")
)

type contextKey int

const userIdContextKey contextKey = iota

// Authenticator resolves the identity of the user making a request
type Authenticator struct {
	signer *signing.Signer
}

func NewAuthenticator(signer *signing.Signer) *Authenticator {
	return &Authenticator{signer: signer}
}

// Identify returns the ID of the user that the request is authenticated as
func (a *Authenticator) Identify(req *http.Request) (string, error) {
	cookie, err := req.Cookie(IdentityCookieName)
	if err != nil || cookie.Value == "" {
		return "", ErrMissingIdentity
	}
	userId, err := a.signer.Verify(cookie.Value)
	if err != nil || userId == "" {
		return "", ErrInvalidIdentity
	}
	return userId, nil
}

// RequireAuth wraps a handler so that it's only invoked for authenticated requests,
// with the user's ID available via GetUserId: unauthenticated clients are redirected
// to the login page
func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		userId, err := a.Identify(req)
		if err != nil {
			res.Header().Set("location", LoginPath+"?redirect_to="+url.QueryEscape(req.URL.RequestURI()))
			res.WriteHeader(http.StatusFound)
			return
		}
		next.ServeHTTP(res, req.WithContext(WithUserId(req.Context(), userId)))
	})
}

// WithUserId returns a copy of ctx carrying the given authenticated user ID
func WithUserId(ctx context.Context, userId string) context.Context {
	return context.WithValue(ctx, userIdContextKey, userId)
}

// GetUserId returns the ID of the authenticated user, as established by RequireAuth
func GetUserId(ctx context.Context) (string, bool) {
	userId, ok := ctx.Value(userIdContextKey).(string)
	return userId, ok && userId != ""
}
