package token

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/oauth2/spotify"
)

// Scopes requested from the Spotify Accounts service
const (
	ScopeLink               = "user-soa-link"
	ScopeManageEntitlements = "soa-manage-entitlements"
	ScopeUnlink             = "soa-unlink"
)

// Token is the parsed response from the token endpoint
type Token struct {
	AccessToken string
	TokenType   string
	Expiry      time.Time
	Scope       string
}

// Client requests access tokens on behalf of our app
type Client interface {
	AuthorizeURL(state string) string
	RequestUserAccessToken(ctx context.Context, code, state string) (*Token, error)
	RequestClientAccessToken(ctx context.Context, scope string) (*Token, error)
}

// NewClient initializes a Client that talks to the real Spotify Accounts service
func NewClient(httpClient *http.Client, clientId, clientSecret, callbackUrl string) Client {
	return newClient(spotify.Endpoint, httpClient, clientId, clientSecret, callbackUrl)
}

func newClient(endpoint oauth2.Endpoint, httpClient *http.Client, clientId, clientSecret, callbackUrl string) *client {
	endpoint.AuthStyle = oauth2.AuthStyleInHeader
	return &client{
		httpClient: httpClient,
		userConfig: &oauth2.Config{
			ClientID:     clientId,
			ClientSecret: clientSecret,
			Endpoint:     endpoint,
			RedirectURL:  callbackUrl,
			Scopes:       []string{ScopeLink},
		},
		clientId:     clientId,
		clientSecret: clientSecret,
		tokenUrl:     endpoint.TokenURL,
	}
}

type client struct {
	httpClient   *http.Client
	userConfig   *oauth2.Config
	clientId     string
	clientSecret string
	tokenUrl     string
}

// AuthorizeURL returns the URL to which the user should be redirected in order to
// begin the Authorization Code flow, with the given CSRF token carried as 'state'
func (c *client) AuthorizeURL(state string) string {
	return c.userConfig.AuthCodeURL(state)
}

// RequestUserAccessToken exchanges an authorization code for a User Access Token
func (c *client) RequestUserAccessToken(ctx context.Context, code, state string) (*Token, error) {
	t, err := c.userConfig.Exchange(c.withHTTPClient(ctx), code, oauth2.SetAuthURLParam("state", state))
	if err != nil {
		tokenRequestsTotal.WithLabelValues("authorization_code", "error").Inc()
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	tokenRequestsTotal.WithLabelValues("authorization_code", "ok").Inc()
	return parseToken(t), nil
}

// RequestClientAccessToken obtains an app access token with the requested scope, via
// the Client Credentials flow
func (c *client) RequestClientAccessToken(ctx context.Context, scope string) (*Token, error) {
	config := &clientcredentials.Config{
		ClientID:     c.clientId,
		ClientSecret: c.clientSecret,
		TokenURL:     c.tokenUrl,
		Scopes:       []string{scope},
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	t, err := config.Token(c.withHTTPClient(ctx))
	if err != nil {
		tokenRequestsTotal.WithLabelValues("client_credentials", "error").Inc()
		return nil, fmt.Errorf("failed to request client access token with scope '%s': %w", scope, err)
	}
	tokenRequestsTotal.WithLabelValues("client_credentials", "ok").Inc()
	return parseToken(t), nil
}

// withHTTPClient makes the oauth2 package use our own HTTP client, so that outbound
// requests are subject to its timeout
func (c *client) withHTTPClient(ctx context.Context) context.Context {
	if c.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

func parseToken(t *oauth2.Token) *Token {
	scope, _ := t.Extra("scope").(string)
	return &Token{
		AccessToken: t.AccessToken,
		TokenType:   t.TokenType,
		Expiry:      t.Expiry,
		Scope:       scope,
	}
}
