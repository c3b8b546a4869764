package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/golden-vcr/openaccess"
	"github.com/golden-vcr/openaccess/internal/token"
)

const (
	testPartnerId     = "lunar-industries"
	testClientSecret  = "client-secret"
	testPartnerUserId = "69a69a69a69a69a69a69a69a69a69a69a69a69a6b5"
)

type mockTokenClient struct {
	err            error
	requestedScope []string
}

func (m *mockTokenClient) AuthorizeURL(state string) string {
	return "https://accounts.spotify.com/authorize?state=" + state
}

func (m *mockTokenClient) RequestUserAccessToken(ctx context.Context, code, state string) (*token.Token, error) {
	return nil, fmt.Errorf("not mocked")
}

func (m *mockTokenClient) RequestClientAccessToken(ctx context.Context, scope string) (*token.Token, error) {
	m.requestedScope = append(m.requestedScope, scope)
	if m.err != nil {
		return nil, m.err
	}
	return &token.Token{AccessToken: "client-token-" + scope, TokenType: "bearer"}, nil
}

type receivedCall struct {
	path          string
	authorization string
	contentType   string
	claims        payloadClaims
}

func newOpenAccessServer(t *testing.T, status int, body string) (*httptest.Server, *[]receivedCall) {
	calls := make([]receivedCall, 0)
	srv := httptest.NewServer(http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		signed, err := io.ReadAll(req.Body)
		assert.NoError(t, err)
		var claims payloadClaims
		_, err = jwt.ParseWithClaims(string(signed), &claims, func(tok *jwt.Token) (interface{}, error) {
			return []byte(testClientSecret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		assert.NoError(t, err)
		calls = append(calls, receivedCall{
			path:          req.URL.Path,
			authorization: req.Header.Get("authorization"),
			contentType:   req.Header.Get("content-type"),
			claims:        claims,
		})
		res.WriteHeader(status)
		res.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func Test_client_RegisterUser(t *testing.T) {
	srv, calls := newOpenAccessServer(t, http.StatusOK, `{"completion_url":"https://success-page.com?a=1&b=2"}`)
	tokens := &mockTokenClient{}
	c := NewClient(srv.Client(), srv.URL+"/api/v1/", tokens, testPartnerId, testClientSecret)

	got, err := c.RegisterUser(context.Background(), "user-token", testPartnerUserId, openaccess.DefaultEntitlements)
	assert.NoError(t, err)
	assert.Equal(t, "https://success-page.com?a=1&b=2", got)
	assert.Empty(t, tokens.requestedScope)

	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.Equal(t, "/api/v1/register-user", call.path)
	assert.Equal(t, "Bearer user-token", call.authorization)
	assert.Equal(t, "text/plain", call.contentType)
	assert.Equal(t, testPartnerId, call.claims.PartnerId)
	assert.Equal(t, testPartnerUserId, call.claims.PartnerUserId)
	require.NotNil(t, call.claims.Entitlements)
	assert.Equal(t, openaccess.Entitlements{openaccess.TierBonus, openaccess.TierPremium}, *call.claims.Entitlements)
	assert.NotNil(t, call.claims.IssuedAt)
}

func Test_client_RegisterUser_missingCompletionUrl(t *testing.T) {
	srv, _ := newOpenAccessServer(t, http.StatusOK, `{}`)
	c := NewClient(srv.Client(), srv.URL, &mockTokenClient{}, testPartnerId, testClientSecret)

	_, err := c.RegisterUser(context.Background(), "user-token", testPartnerUserId, openaccess.DefaultEntitlements)
	assert.Error(t, err)
	assert.Equal(t, KindUpstreamUnexpected, KindOf(err))
}

func Test_client_GetEntitlements(t *testing.T) {
	srv, calls := newOpenAccessServer(t, http.StatusOK, `{"entitlements":["premium-tier-subscribers"]}`)
	tokens := &mockTokenClient{}
	c := NewClient(srv.Client(), srv.URL, tokens, testPartnerId, testClientSecret)

	got, err := c.GetEntitlements(context.Background(), testPartnerUserId)
	assert.NoError(t, err)
	assert.Equal(t, openaccess.Entitlements{openaccess.TierPremium}, got)
	assert.Equal(t, []string{token.ScopeManageEntitlements}, tokens.requestedScope)

	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.Equal(t, "/get-entitlements", call.path)
	assert.Equal(t, "Bearer client-token-soa-manage-entitlements", call.authorization)
	assert.Nil(t, call.claims.Entitlements)
}

func Test_client_GetEntitlements_nullIsEmpty(t *testing.T) {
	srv, _ := newOpenAccessServer(t, http.StatusOK, `{"entitlements":null}`)
	c := NewClient(srv.Client(), srv.URL, &mockTokenClient{}, testPartnerId, testClientSecret)

	got, err := c.GetEntitlements(context.Background(), testPartnerUserId)
	assert.NoError(t, err)
	assert.Equal(t, openaccess.Entitlements{}, got)
}

func Test_client_ReplaceEntitlements_emptyListIsSent(t *testing.T) {
	srv, calls := newOpenAccessServer(t, http.StatusOK, ``)
	c := NewClient(srv.Client(), srv.URL, &mockTokenClient{}, testPartnerId, testClientSecret)

	err := c.ReplaceEntitlements(context.Background(), testPartnerUserId, nil)
	assert.NoError(t, err)

	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.Equal(t, "/replace-entitlements", call.path)
	require.NotNil(t, call.claims.Entitlements)
	assert.Equal(t, openaccess.Entitlements{}, *call.claims.Entitlements)
}

func Test_client_UnlinkUser_usesUnlinkScope(t *testing.T) {
	srv, calls := newOpenAccessServer(t, http.StatusOK, ``)
	tokens := &mockTokenClient{}
	c := NewClient(srv.Client(), srv.URL, tokens, testPartnerId, testClientSecret)

	err := c.UnlinkUser(context.Background(), testPartnerUserId)
	assert.NoError(t, err)
	assert.Equal(t, []string{token.ScopeUnlink}, tokens.requestedScope)

	require.Len(t, *calls, 1)
	assert.Equal(t, "/unlink-user", (*calls)[0].path)
	assert.Equal(t, "Bearer client-token-soa-unlink", (*calls)[0].authorization)
}

func Test_client_tokenFailureIsUnexpected(t *testing.T) {
	srv, calls := newOpenAccessServer(t, http.StatusOK, ``)
	c := NewClient(srv.Client(), srv.URL, &mockTokenClient{err: fmt.Errorf("boom")}, testPartnerId, testClientSecret)

	err := c.AddEntitlements(context.Background(), testPartnerUserId, openaccess.Entitlements{openaccess.TierBonus})
	assert.Error(t, err)
	assert.Equal(t, KindUpstreamUnexpected, KindOf(err))
	assert.Empty(t, *calls)
}

func Test_client_statusMapping(t *testing.T) {
	operations := []struct {
		op   Operation
		call func(c Gateway) error
	}{
		{OperationRegisterUser, func(c Gateway) error {
			_, err := c.RegisterUser(context.Background(), "user-token", testPartnerUserId, openaccess.DefaultEntitlements)
			return err
		}},
		{OperationUnlinkUser, func(c Gateway) error {
			return c.UnlinkUser(context.Background(), testPartnerUserId)
		}},
		{OperationGetEntitlements, func(c Gateway) error {
			_, err := c.GetEntitlements(context.Background(), testPartnerUserId)
			return err
		}},
		{OperationAddEntitlements, func(c Gateway) error {
			return c.AddEntitlements(context.Background(), testPartnerUserId, openaccess.Entitlements{openaccess.TierBonus})
		}},
		{OperationReplaceEntitlements, func(c Gateway) error {
			return c.ReplaceEntitlements(context.Background(), testPartnerUserId, openaccess.Entitlements{openaccess.TierBonus})
		}},
		{OperationDeleteEntitlements, func(c Gateway) error {
			return c.DeleteEntitlements(context.Background(), testPartnerUserId, openaccess.Entitlements{openaccess.TierBonus})
		}},
	}
	statuses := []struct {
		status   int
		wantKind ErrorKind
	}{
		{http.StatusNotFound, KindNotLinked},
		{http.StatusForbidden, KindClientUnauthorized},
		{http.StatusBadRequest, KindMalformedRequest},
		{http.StatusInternalServerError, KindUpstreamUnexpected},
		{http.StatusTeapot, KindUpstreamUnexpected},
		{http.StatusNoContent, KindUpstreamUnexpected},
	}
	for _, o := range operations {
		for _, s := range statuses {
			t.Run(fmt.Sprintf("%s returning %d", o.op, s.status), func(t *testing.T) {
				srv, _ := newOpenAccessServer(t, s.status, `{}`)
				c := NewClient(srv.Client(), srv.URL, &mockTokenClient{}, testPartnerId, testClientSecret)
				err := o.call(c)
				assert.Error(t, err)
				assert.Equal(t, s.wantKind, KindOf(err))

				gatewayErr, ok := err.(*Error)
				require.True(t, ok)
				assert.Equal(t, o.op, gatewayErr.Operation)
				assert.Equal(t, s.status, gatewayErr.Status)
			})
		}
	}
}

func Test_KindOf(t *testing.T) {
	assert.Equal(t, KindUpstreamUnexpected, KindOf(fmt.Errorf("some other error")))
	assert.Equal(t, KindNotLinked, KindOf(fmt.Errorf("wrapped: %w", &Error{Kind: KindNotLinked})))
}
