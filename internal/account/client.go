package account

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/golden-vcr/openaccess"
	"github.com/golden-vcr/openaccess/internal/entitlements"
)

// ErrNotAuthenticated is returned when the server redirects us to the login page
var ErrNotAuthenticated = errors.New("not logged in")

// Client makes storefront API requests on behalf of a single user
type Client struct {
	httpClient *http.Client
	apiUrl     string
	cookies    *CookieStore
}

// NewClient initializes a client that sends requests to the storefront API at apiUrl
// (e.g. http://localhost:3000/api), using and updating the given cookies
func NewClient(httpClient *http.Client, apiUrl string, cookies *CookieStore) *Client {
	// Redirects are meaningful responses from the storefront API, so we never follow
	// them
	c := *httpClient
	c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &Client{
		httpClient: &c,
		apiUrl:     strings.TrimSuffix(apiUrl, "/"),
		cookies:    cookies,
	}
}

// Login identifies as the given user
func (c *Client) Login(ctx context.Context, userId string) error {
	res, err := c.do(ctx, http.MethodPost, "/login", map[string]string{"userId": userId})
	if err != nil {
		return err
	}
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("login failed with status %d", res.StatusCode)
	}
	return nil
}

// Logout clears the user's identity
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/logout", nil)
	return err
}

// Probe determines whether the user is linked to Spotify and returns their current
// subscriptions
func (c *Client) Probe(ctx context.Context) (Account, error) {
	res, err := c.do(ctx, http.MethodGet, "/user-spotify-entitlements", nil)
	if err != nil {
		return nil, err
	}
	if err := checkAuthenticated(res); err != nil {
		return nil, err
	}
	if res.StatusCode == http.StatusOK {
		return &Linked{client: c, entitlements: c.cachedEntitlements()}, nil
	}
	return &Unlinked{client: c, entitlements: c.cachedEntitlements()}, nil
}

// Unlink removes the link between the user and Spotify. The user's subscriptions are
// kept in the cookie, so the returned account is unlinked with the same entitlements.
func (c *Client) Unlink(ctx context.Context) (Account, error) {
	if err := c.expect(ctx, "/user-spotify-unlink", nil, http.StatusNoContent); err != nil {
		return nil, err
	}
	return &Unlinked{client: c, entitlements: c.cachedEntitlements()}, nil
}

// LinkURL returns the URL at which a logged-in browser can start linking to Spotify
func (c *Client) LinkURL() string {
	return c.apiUrl + "/entrypoint"
}

// mutateLinked sends a change to Spotify, then refreshes the account from the cookie
// the server wrote upon accepting it
func (c *Client) mutateLinked(ctx context.Context, path string, requested openaccess.Entitlements) (Account, error) {
	body := map[string]openaccess.Entitlements{"entitlements": requested}
	if err := c.expect(ctx, path, body, http.StatusNoContent); err != nil {
		return nil, err
	}
	return &Linked{client: c, entitlements: c.cachedEntitlements()}, nil
}

// updateUnlinked stores the given subscriptions in the cookie
func (c *Client) updateUnlinked(ctx context.Context, next openaccess.Entitlements) (Account, error) {
	body := map[string]openaccess.Entitlements{"entitlements": next.Normalize()}
	if err := c.expect(ctx, "/update-subscription", body, http.StatusNoContent); err != nil {
		return nil, err
	}
	return &Unlinked{client: c, entitlements: c.cachedEntitlements()}, nil
}

// cachedEntitlements reads the entitlements cookie, yielding an empty set if we don't
// have one
func (c *Client) cachedEntitlements() openaccess.Entitlements {
	value, ok := c.cookies.Get(entitlements.CookieName)
	if !ok {
		return openaccess.Entitlements{}
	}
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: entitlements.CookieName, Value: value})
	e, _ := entitlements.ReadCookie(req)
	return e
}

// expect sends a POST request and returns an error unless we get the expected status
func (c *Client) expect(ctx context.Context, path string, body interface{}, wantStatus int) error {
	res, err := c.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	if err := checkAuthenticated(res); err != nil {
		return err
	}
	if res.StatusCode != wantStatus {
		return fmt.Errorf("got response %d from %s: %s", res.StatusCode, path, readErrorMessage(res))
	}
	return nil
}

// do sends a request with our cookies, records any cookies set in response, and
// returns the response with its body fully read into memory
func (c *Client) do(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.apiUrl+path, r)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("content-type", "application/json")
	}
	c.cookies.apply(req)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	res.Body = io.NopCloser(bytes.NewReader(data))

	c.cookies.update(res)
	return res, nil
}

func checkAuthenticated(res *http.Response) error {
	if res.StatusCode == http.StatusFound && strings.Contains(res.Header.Get("location"), "redirect_to=") {
		return ErrNotAuthenticated
	}
	return nil
}

func readErrorMessage(res *http.Response) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil || payload.Error == "" {
		return http.StatusText(res.StatusCode)
	}
	return payload.Error
}
