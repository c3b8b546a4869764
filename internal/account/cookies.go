package account

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
)

// CookieStore holds the cookies that the server has given us. Unlike a cookiejar.Jar,
// it sends Secure cookies over plain HTTP, so that it can be used against a server
// running locally, and its contents can be saved to disk between invocations.
type CookieStore struct {
	mu      sync.Mutex
	cookies map[string]string
}

func NewCookieStore() *CookieStore {
	return &CookieStore{cookies: make(map[string]string)}
}

// LoadCookieStore reads cookies previously saved to the given path; a missing file
// yields an empty store
func LoadCookieStore(path string) (*CookieStore, error) {
	s := NewCookieStore()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, &s.cookies); err != nil {
		return nil, fmt.Errorf("failed to parse cookie file %s: %w", path, err)
	}
	if s.cookies == nil {
		s.cookies = make(map[string]string)
	}
	return s, nil
}

// Save writes all cookies to the given path
func (s *CookieStore) Save(path string) error {
	s.mu.Lock()
	data, err := json.MarshalIndent(s.cookies, "", "  ")
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// Get returns the value of the named cookie, if we have it
func (s *CookieStore) Get(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.cookies[name]
	return value, ok
}

// update records every cookie set by the response, discarding any that it expires
func (s *CookieStore) update(res *http.Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range res.Cookies() {
		if c.MaxAge < 0 || c.Value == "" {
			delete(s.cookies, c.Name)
			continue
		}
		s.cookies[c.Name] = c.Value
	}
}

// apply adds all stored cookies to the request
func (s *CookieStore) apply(req *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, value := range s.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
}
