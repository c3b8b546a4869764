package userauth

import (
	"encoding/json"
	"net/http"

	"github.com/golden-vcr/server-common/entry"
	"github.com/gorilla/mux"

	"github.com/golden-vcr/openaccess"
	"github.com/golden-vcr/openaccess/internal/entitlements"
	"github.com/golden-vcr/openaccess/internal/events"
	"github.com/golden-vcr/openaccess/internal/gateway"
	"github.com/golden-vcr/openaccess/internal/session"
	"github.com/golden-vcr/openaccess/internal/signing"
	"github.com/golden-vcr/openaccess/internal/token"
)

// ErrorPath is where the browser is sent when linking fails after the authorization
// code has been accepted
const ErrorPath = "/error.html"

type Server struct {
	tokens   token.Client
	gateway  gateway.Gateway
	state    *stateCodec
	producer events.Producer
}

func NewServer(tokens token.Client, g gateway.Gateway, signer *signing.Signer, producer events.Producer) *Server {
	return &Server{
		tokens:   tokens,
		gateway:  g,
		state:    newStateCodec(signer),
		producer: producer,
	}
}

func (s *Server) RegisterRoutes(a *session.Authenticator, r *mux.Router) {
	r.Path("/entrypoint").Methods("GET").Handler(a.RequireAuth(http.HandlerFunc(s.handleEntrypoint)))
	r.Path("/callback").Methods("GET").Handler(a.RequireAuth(http.HandlerFunc(s.handleCallback)))
}

// handleEntrypoint (GET /entrypoint) starts the authorization code flow by sending the
// user to Spotify's authorization page
func (s *Server) handleEntrypoint(res http.ResponseWriter, req *http.Request) {
	state, err := s.state.issue(res, req)
	if err != nil {
		entry.Log(req).Error("Failed to issue CSRF token", "error", err)
		http.Error(res, "failed to start authorization", http.StatusInternalServerError)
		return
	}
	res.Header().Set("location", s.tokens.AuthorizeURL(state))
	res.WriteHeader(http.StatusFound)
}

// handleCallback (GET /callback) completes the flow: Spotify redirects the user here
// with an authorization code once they've granted access
func (s *Server) handleCallback(res http.ResponseWriter, req *http.Request) {
	logger := entry.Log(req)

	// Verify the CSRF token carried in the 'state' parameter before looking at anything
	// else in the request
	if err := s.state.verify(req); err != nil {
		logger.Warn("Rejected authorization callback", "error", err)
		writeCallbackError(res, "state_mismatch")
		return
	}

	code := req.URL.Query().Get("code")
	if code == "" {
		writeCallbackError(res, "missing_code")
		return
	}

	t, err := s.tokens.RequestUserAccessToken(req.Context(), code, req.URL.Query().Get("state"))
	if err != nil {
		logger.Error("Failed to exchange authorization code", "error", err)
		s.fail(res, req)
		return
	}

	userId, _ := session.GetUserId(req.Context())
	partnerUserId, err := openaccess.PartnerUserId(userId)
	if err != nil {
		logger.Error("Failed to resolve partner user ID", "error", err)
		s.fail(res, req)
		return
	}

	// Grant whatever the user selected while unlinked, or the default tiers if they've
	// never made a selection
	granted, ok := entitlements.ReadCookie(req)
	if !ok {
		granted = openaccess.DefaultEntitlements
	}

	completionUrl, err := s.gateway.RegisterUser(req.Context(), t.AccessToken, partnerUserId, granted)
	if err != nil {
		logger.Error("Failed to register user", "error", err, "partnerUserId", partnerUserId)
		s.fail(res, req)
		return
	}

	if err := entitlements.WriteCookie(res, granted); err != nil {
		logger.Error("Failed to write entitlements cookie", "error", err)
	}
	clearStateCookie(res, req)

	logger.Info("Linked user", "partnerUserId", partnerUserId, "entitlements", granted)
	if err := s.producer.Send(req.Context(), events.Event{
		Type:          events.TypeUserLinked,
		PartnerUserId: partnerUserId,
		Entitlements:  granted,
	}); err != nil {
		logger.Error("Failed to publish event", "error", err, "eventType", events.TypeUserLinked)
	}

	res.Header().Set("location", completionUrl)
	res.WriteHeader(http.StatusFound)
}

func (s *Server) fail(res http.ResponseWriter, req *http.Request) {
	clearStateCookie(res, req)
	res.Header().Set("location", ErrorPath)
	res.WriteHeader(http.StatusFound)
}

func writeCallbackError(res http.ResponseWriter, code string) {
	res.Header().Set("content-type", "application/json")
	res.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(res).Encode(map[string]string{"error": code})
}
