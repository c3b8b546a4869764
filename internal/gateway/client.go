package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/golden-vcr/openaccess"
	"github.com/golden-vcr/openaccess/internal/token"
)

// DefaultBaseURL is the root of the Open Access API
const DefaultBaseURL = "https://open-access.spotify.com/api/v1"

// Operation identifies an Open Access API endpoint
type Operation string

const (
	OperationRegisterUser        Operation = "register-user"
	OperationUnlinkUser          Operation = "unlink-user"
	OperationGetEntitlements     Operation = "get-entitlements"
	OperationAddEntitlements     Operation = "add-entitlements"
	OperationReplaceEntitlements Operation = "replace-entitlements"
	OperationDeleteEntitlements  Operation = "delete-entitlements"
)

// Gateway represents the Open Access API operations used by our app
type Gateway interface {
	RegisterUser(ctx context.Context, userAccessToken string, partnerUserId string, entitlements openaccess.Entitlements) (string, error)
	UnlinkUser(ctx context.Context, partnerUserId string) error
	GetEntitlements(ctx context.Context, partnerUserId string) (openaccess.Entitlements, error)
	AddEntitlements(ctx context.Context, partnerUserId string, entitlements openaccess.Entitlements) error
	ReplaceEntitlements(ctx context.Context, partnerUserId string, entitlements openaccess.Entitlements) error
	DeleteEntitlements(ctx context.Context, partnerUserId string, entitlements openaccess.Entitlements) error
}

// payloadClaims is the body of every Open Access API request, prior to signing
type payloadClaims struct {
	PartnerId     string                   `json:"partner_id"`
	PartnerUserId string                   `json:"partner_user_id"`
	Entitlements  *openaccess.Entitlements `json:"entitlements,omitempty"`
	jwt.RegisteredClaims
}

type client struct {
	httpClient   *http.Client
	baseUrl      string
	partnerId    string
	clientSecret []byte
	tokens       token.Client
}

// NewClient initializes a Gateway that calls the Open Access API at baseUrl, signing
// requests with the given client secret and obtaining client access tokens via tokens
func NewClient(httpClient *http.Client, baseUrl string, tokens token.Client, partnerId, clientSecret string) Gateway {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &client{
		httpClient:   httpClient,
		baseUrl:      strings.TrimSuffix(baseUrl, "/"),
		partnerId:    partnerId,
		clientSecret: []byte(clientSecret),
		tokens:       tokens,
	}
}

// RegisterUser links the user to Spotify, granting the given entitlements, and returns
// the completion URL to which the user must be redirected, unmodified
func (c *client) RegisterUser(ctx context.Context, userAccessToken string, partnerUserId string, entitlements openaccess.Entitlements) (string, error) {
	body, err := c.call(ctx, OperationRegisterUser, userAccessToken, c.payload(partnerUserId, &entitlements))
	if err != nil {
		return "", err
	}
	var result struct {
		CompletionUrl string `json:"completion_url"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", unexpected(OperationRegisterUser, fmt.Errorf("failed to decode response body: %w", err))
	}
	if result.CompletionUrl == "" {
		return "", unexpected(OperationRegisterUser, fmt.Errorf("response did not include a completion_url"))
	}
	return result.CompletionUrl, nil
}

// UnlinkUser removes the link between the user and Spotify
func (c *client) UnlinkUser(ctx context.Context, partnerUserId string) error {
	_, err := c.callWithClientToken(ctx, OperationUnlinkUser, token.ScopeUnlink, c.payload(partnerUserId, nil))
	return err
}

// GetEntitlements returns the entitlements that Spotify currently holds for the user
func (c *client) GetEntitlements(ctx context.Context, partnerUserId string) (openaccess.Entitlements, error) {
	body, err := c.callWithClientToken(ctx, OperationGetEntitlements, token.ScopeManageEntitlements, c.payload(partnerUserId, nil))
	if err != nil {
		return nil, err
	}
	var result struct {
		Entitlements openaccess.Entitlements `json:"entitlements"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, unexpected(OperationGetEntitlements, fmt.Errorf("failed to decode response body: %w", err))
	}
	return result.Entitlements.Normalize(), nil
}

// AddEntitlements grants the given entitlements to the user, in addition to any they
// already have
func (c *client) AddEntitlements(ctx context.Context, partnerUserId string, entitlements openaccess.Entitlements) error {
	_, err := c.callWithClientToken(ctx, OperationAddEntitlements, token.ScopeManageEntitlements, c.payload(partnerUserId, &entitlements))
	return err
}

// ReplaceEntitlements sets the user's entitlements to exactly the given list: an empty
// list removes all entitlements
func (c *client) ReplaceEntitlements(ctx context.Context, partnerUserId string, entitlements openaccess.Entitlements) error {
	_, err := c.callWithClientToken(ctx, OperationReplaceEntitlements, token.ScopeManageEntitlements, c.payload(partnerUserId, &entitlements))
	return err
}

// DeleteEntitlements revokes the given entitlements from the user
func (c *client) DeleteEntitlements(ctx context.Context, partnerUserId string, entitlements openaccess.Entitlements) error {
	_, err := c.callWithClientToken(ctx, OperationDeleteEntitlements, token.ScopeManageEntitlements, c.payload(partnerUserId, &entitlements))
	return err
}

func (c *client) payload(partnerUserId string, entitlements *openaccess.Entitlements) *payloadClaims {
	if entitlements != nil {
		normalized := entitlements.Normalize()
		entitlements = &normalized
	}
	return &payloadClaims{
		PartnerId:     c.partnerId,
		PartnerUserId: partnerUserId,
		Entitlements:  entitlements,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
}

// callWithClientToken obtains a fresh client access token with the given scope, then
// makes the request
func (c *client) callWithClientToken(ctx context.Context, op Operation, scope string, claims *payloadClaims) ([]byte, error) {
	t, err := c.tokens.RequestClientAccessToken(ctx, scope)
	if err != nil {
		requestsTotal.WithLabelValues(string(op), KindUpstreamUnexpected.String()).Inc()
		return nil, unexpected(op, err)
	}
	return c.call(ctx, op, t.AccessToken, claims)
}

// call signs the payload, POSTs it to the endpoint for the given operation, and returns
// the response body if the request was successful
func (c *client) call(ctx context.Context, op Operation, accessToken string, claims *payloadClaims) ([]byte, error) {
	body, err := c.doCall(ctx, op, accessToken, claims)
	outcome := "ok"
	if err != nil {
		outcome = KindOf(err).String()
	}
	requestsTotal.WithLabelValues(string(op), outcome).Inc()
	return body, err
}

func (c *client) doCall(ctx context.Context, op Operation, accessToken string, claims *payloadClaims) ([]byte, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.clientSecret)
	if err != nil {
		return nil, unexpected(op, fmt.Errorf("failed to sign payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseUrl+"/"+string(op), strings.NewReader(signed))
	if err != nil {
		return nil, unexpected(op, err)
	}
	req.Header.Set("authorization", "Bearer "+accessToken)
	req.Header.Set("content-type", "text/plain")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, unexpected(op, err)
	}
	defer res.Body.Close()

	if err := checkStatus(op, res.StatusCode); err != nil {
		return nil, err
	}
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, unexpected(op, fmt.Errorf("failed to read response body: %w", err))
	}
	return body, nil
}
