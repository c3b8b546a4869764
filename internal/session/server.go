package session

import (
	"encoding/json"
	"net/http"

	"github.com/golden-vcr/server-common/entry"
	"github.com/gorilla/mux"

	"github.com/golden-vcr/openaccess"
	"github.com/golden-vcr/openaccess/internal/signing"
)

type Server struct {
	signer *signing.Signer
}

func NewServer(signer *signing.Signer) *Server {
	return &Server{signer: signer}
}

func (s *Server) RegisterRoutes(r *mux.Router) {
	r.Path("/login").Methods("POST").HandlerFunc(s.handleLogin)
	r.Path("/logout").Methods("GET").HandlerFunc(s.handleLogout)
}

// handleLogin (POST /login) accepts a JSON body of the form {"userId": "..."} and, if
// the user ID is valid, stores it in a signed identity cookie
func (s *Server) handleLogin(res http.ResponseWriter, req *http.Request) {
	logger := entry.Log(req)

	var payload struct {
		UserId string `json:"userId"`
	}
	if req.Body == nil {
		res.WriteHeader(http.StatusBadRequest)
		return
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		res.WriteHeader(http.StatusBadRequest)
		return
	}
	if !openaccess.IsValidUserId(payload.UserId) {
		res.WriteHeader(http.StatusBadRequest)
		return
	}

	signed, err := s.signer.Sign(payload.UserId, identityTTL)
	if err != nil {
		logger.Error("Failed to sign user ID", "error", err)
		http.Error(res, "failed to log in", http.StatusInternalServerError)
		return
	}

	http.SetCookie(res, &http.Cookie{
		Name:     IdentityCookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(identityTTL.Seconds()),
		HttpOnly: true,
		Secure:   true,
	})
	http.SetCookie(res, &http.Cookie{
		Name:   AuthenticatedCookieName,
		Value:  "true",
		Path:   "/",
		MaxAge: int(identityTTL.Seconds()),
	})
	res.WriteHeader(http.StatusOK)
}

// handleLogout (GET /logout) clears the identity cookie and sends the user back to the
// storefront's home page
func (s *Server) handleLogout(res http.ResponseWriter, req *http.Request) {
	http.SetCookie(res, &http.Cookie{
		Name:     IdentityCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
	})
	http.SetCookie(res, &http.Cookie{
		Name:   AuthenticatedCookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	res.Header().Set("location", "/")
	res.WriteHeader(http.StatusFound)
}
