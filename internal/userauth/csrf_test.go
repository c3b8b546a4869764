package userauth

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/golden-vcr/openaccess/internal/signing"
)

func Test_generateRandomString(t *testing.T) {
	a := generateRandomString()
	b := generateRandomString()
	assert.Regexp(t, regexp.MustCompile(`^[A-Za-z0-9]{16}$`), a)
	assert.Regexp(t, regexp.MustCompile(`^[A-Za-z0-9]{16}$`), b)
	assert.NotEqual(t, a, b)
}

func Test_stateCodec_issue(t *testing.T) {
	c := newStateCodec(signing.NewSigner("local-secret"))
	c.generate = func() string { return "mockedRandomString" }

	req := httptest.NewRequest(http.MethodGet, "/api/entrypoint", nil)
	res := httptest.NewRecorder()
	state, err := c.issue(res, req)
	require.NoError(t, err)
	assert.Equal(t, "mockedRandomString", state)

	cookie := findCookie(res.Result(), StateCookieName)
	require.NotNil(t, cookie)
	assert.NotEqual(t, "mockedRandomString", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, "/api", cookie.Path)
	assert.Equal(t, int((15 * time.Minute).Seconds()), cookie.MaxAge)
}

func Test_stateCodec_verify(t *testing.T) {
	signer := signing.NewSigner("local-secret")
	otherSigner := signing.NewSigner("some-other-secret")
	signedState, err := signer.Sign("mockedRandomString", time.Minute)
	require.NoError(t, err)
	signedOther, err := signer.Sign("someOtherString", time.Minute)
	require.NoError(t, err)
	signedWithOtherSecret, err := otherSigner.Sign("mockedRandomString", time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name    string
		query   string
		cookie  string
		wantErr error
	}{
		{
			"matching state is accepted",
			"?state=mockedRandomString&code=abc",
			signedState,
			nil,
		},
		{
			"missing state param is rejected",
			"?code=abc",
			signedState,
			ErrMissingStateParam,
		},
		{
			"missing cookie is rejected",
			"?state=mockedRandomString",
			"",
			ErrMissingState,
		},
		{
			"unsigned cookie is rejected",
			"?state=mockedRandomString",
			"mockedRandomString",
			ErrInvalidState,
		},
		{
			"cookie signed with another secret is rejected",
			"?state=mockedRandomString",
			signedWithOtherSecret,
			ErrInvalidState,
		},
		{
			"mismatched state is rejected",
			"?state=mockedRandomString",
			signedOther,
			ErrStateMismatch,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newStateCodec(signer)
			req := httptest.NewRequest(http.MethodGet, "/callback"+tt.query, nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: StateCookieName, Value: tt.cookie})
			}
			err := c.verify(req)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func Test_stateCodec_roundTrip(t *testing.T) {
	c := newStateCodec(signing.NewSigner("local-secret"))

	res := httptest.NewRecorder()
	state, err := c.issue(res, httptest.NewRequest(http.MethodGet, "/api/entrypoint", nil))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/callback?state="+state, nil)
	req.AddCookie(findCookie(res.Result(), StateCookieName))
	assert.NoError(t, c.verify(req))
}

func Test_clearStateCookie(t *testing.T) {
	res := httptest.NewRecorder()
	clearStateCookie(res, httptest.NewRequest(http.MethodGet, "/api/callback?code=abc", nil))

	cookie := findCookie(res.Result(), StateCookieName)
	require.NotNil(t, cookie)
	assert.Equal(t, "", cookie.Value)
	assert.Equal(t, "/api", cookie.Path)
	assert.Less(t, cookie.MaxAge, 0)
}

func Test_flowPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/entrypoint", "/api"},
		{"/api/callback", "/api"},
		{"/entrypoint", "/"},
		{"/v1/storefront/callback", "/v1/storefront"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			assert.Equal(t, tt.want, flowPath(req))
		})
	}
}

func findCookie(res *http.Response, name string) *http.Cookie {
	for _, c := range res.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
