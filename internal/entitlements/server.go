package entitlements

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/golden-vcr/server-common/entry"
	"github.com/gorilla/mux"

	"github.com/golden-vcr/openaccess"
	"github.com/golden-vcr/openaccess/internal/events"
	"github.com/golden-vcr/openaccess/internal/gateway"
	"github.com/golden-vcr/openaccess/internal/session"
)

type Server struct {
	gateway  gateway.Gateway
	producer events.Producer
}

func NewServer(g gateway.Gateway, producer events.Producer) *Server {
	return &Server{
		gateway:  g,
		producer: producer,
	}
}

func (s *Server) RegisterRoutes(a *session.Authenticator, r *mux.Router) {
	routes := []struct {
		path    string
		method  string
		handler http.HandlerFunc
	}{
		{"/user-spotify-entitlements", "GET", s.handleGetEntitlements},
		{"/user-spotify-add-entitlements", "POST", s.handleAddEntitlements},
		{"/user-spotify-replace-entitlements", "POST", s.handleReplaceEntitlements},
		{"/user-spotify-delete-entitlements", "POST", s.handleDeleteEntitlements},
		{"/user-spotify-unlink", "POST", s.handleUnlink},
		{"/update-subscription", "POST", s.handleUpdateSubscription},
	}
	for _, route := range routes {
		r.Path(route.path).Methods(route.method).Handler(a.RequireAuth(route.handler))
	}
}

// handleGetEntitlements (GET /user-spotify-entitlements) returns the user's current
// entitlements as recorded by Spotify, and caches them in the entitlements cookie. A
// 404 response indicates that the user is not linked.
func (s *Server) handleGetEntitlements(res http.ResponseWriter, req *http.Request) {
	logger := entry.Log(req)

	partnerUserId, err := resolvePartnerUserId(req)
	if err != nil {
		logger.Error("Failed to resolve partner user ID", "error", err)
		writeError(res, http.StatusInternalServerError, "Failed to resolve user")
		return
	}

	e, err := s.gateway.GetEntitlements(req.Context(), partnerUserId)
	if err != nil {
		logger.Error("Failed to get entitlements", "error", err, "partnerUserId", partnerUserId)
		writeGatewayError(res, err)
		return
	}

	if err := WriteCookie(res, e); err != nil {
		logger.Error("Failed to write entitlements cookie", "error", err)
		writeError(res, http.StatusInternalServerError, "Failed to cache entitlements")
		return
	}
	res.Header().Set("content-type", "application/json")
	json.NewEncoder(res).Encode(struct {
		Entitlements openaccess.Entitlements `json:"entitlements"`
	}{e})
}

// handleAddEntitlements (POST /user-spotify-add-entitlements) grants the requested
// entitlements in addition to the user's existing ones
func (s *Server) handleAddEntitlements(res http.ResponseWriter, req *http.Request) {
	s.handleMutation(res, req, gateway.OperationAddEntitlements, s.gateway.AddEntitlements, func(cached, requested openaccess.Entitlements) openaccess.Entitlements {
		return cached.Union(requested)
	})
}

// handleReplaceEntitlements (POST /user-spotify-replace-entitlements) sets the user's
// entitlements to exactly the requested list
func (s *Server) handleReplaceEntitlements(res http.ResponseWriter, req *http.Request) {
	s.handleMutation(res, req, gateway.OperationReplaceEntitlements, s.gateway.ReplaceEntitlements, func(cached, requested openaccess.Entitlements) openaccess.Entitlements {
		return requested
	})
}

// handleDeleteEntitlements (POST /user-spotify-delete-entitlements) revokes the
// requested entitlements
func (s *Server) handleDeleteEntitlements(res http.ResponseWriter, req *http.Request) {
	s.handleMutation(res, req, gateway.OperationDeleteEntitlements, s.gateway.DeleteEntitlements, func(cached, requested openaccess.Entitlements) openaccess.Entitlements {
		return cached.Without(requested)
	})
}

// handleUnlink (POST /user-spotify-unlink) removes the link between the user and
// Spotify. The entitlements cookie is left intact so that the user's selection survives
// if they link again later.
func (s *Server) handleUnlink(res http.ResponseWriter, req *http.Request) {
	logger := entry.Log(req)

	partnerUserId, err := resolvePartnerUserId(req)
	if err != nil {
		logger.Error("Failed to resolve partner user ID", "error", err)
		writeError(res, http.StatusInternalServerError, "Failed to resolve user")
		return
	}

	if err := s.gateway.UnlinkUser(req.Context(), partnerUserId); err != nil {
		logger.Error("Failed to unlink user", "error", err, "partnerUserId", partnerUserId)
		writeGatewayError(res, err)
		return
	}

	logger.Info("Unlinked user", "partnerUserId", partnerUserId)
	s.publish(req, events.Event{
		Type:          events.TypeUserUnlinked,
		PartnerUserId: partnerUserId,
	})
	res.WriteHeader(http.StatusNoContent)
}

// handleUpdateSubscription (POST /update-subscription) stores the requested
// entitlements in the cookie without contacting Spotify: the storefront uses this while
// the user is not linked
func (s *Server) handleUpdateSubscription(res http.ResponseWriter, req *http.Request) {
	logger := entry.Log(req)

	requested, err := parseRequestedEntitlements(req)
	if err != nil {
		writeError(res, http.StatusBadRequest, err.Error())
		return
	}
	if err := WriteCookie(res, requested); err != nil {
		logger.Error("Failed to write entitlements cookie", "error", err)
		writeError(res, http.StatusInternalServerError, "Failed to cache entitlements")
		return
	}
	res.WriteHeader(http.StatusNoContent)
}

// handleMutation sends the requested change to Spotify and, if it's accepted, writes
// the entitlements cookie with the value computed by nextCached from the previously
// cached entitlements and the requested ones
func (s *Server) handleMutation(
	res http.ResponseWriter,
	req *http.Request,
	op gateway.Operation,
	mutate func(ctx context.Context, partnerUserId string, e openaccess.Entitlements) error,
	nextCached func(cached, requested openaccess.Entitlements) openaccess.Entitlements,
) {
	logger := entry.Log(req).With("operation", op)

	requested, err := parseRequestedEntitlements(req)
	if err != nil {
		writeError(res, http.StatusBadRequest, err.Error())
		return
	}

	partnerUserId, err := resolvePartnerUserId(req)
	if err != nil {
		logger.Error("Failed to resolve partner user ID", "error", err)
		writeError(res, http.StatusInternalServerError, "Failed to resolve user")
		return
	}

	if err := mutate(req.Context(), partnerUserId, requested); err != nil {
		logger.Error("Failed to update entitlements", "error", err, "partnerUserId", partnerUserId)
		writeGatewayError(res, err)
		return
	}

	cached, _ := ReadCookie(req)
	next := nextCached(cached, requested).Normalize()
	if err := WriteCookie(res, next); err != nil {
		logger.Error("Failed to write entitlements cookie", "error", err)
		writeError(res, http.StatusInternalServerError, "Failed to cache entitlements")
		return
	}

	logger.Info("Updated entitlements", "partnerUserId", partnerUserId, "requested", requested)
	s.publish(req, events.Event{
		Type:          events.TypeEntitlementsChanged,
		PartnerUserId: partnerUserId,
		Entitlements:  next,
	})
	res.WriteHeader(http.StatusNoContent)
}

func (s *Server) publish(req *http.Request, ev events.Event) {
	if err := s.producer.Send(req.Context(), ev); err != nil {
		entry.Log(req).Error("Failed to publish event", "error", err, "eventType", ev.Type)
	}
}

// resolvePartnerUserId derives the Partner User ID for the authenticated user
func resolvePartnerUserId(req *http.Request) (string, error) {
	userId, ok := session.GetUserId(req.Context())
	if !ok {
		return "", fmt.Errorf("request is not authenticated")
	}
	return openaccess.PartnerUserId(userId)
}

// parseRequestedEntitlements decodes a request body of the form {"entitlements": [...]}
func parseRequestedEntitlements(req *http.Request) (openaccess.Entitlements, error) {
	var payload struct {
		Entitlements *openaccess.Entitlements `json:"entitlements"`
	}
	if req.Body == nil {
		return nil, fmt.Errorf("request body is required")
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("invalid request body")
	}
	if payload.Entitlements == nil {
		return nil, fmt.Errorf("'entitlements' is required")
	}
	return payload.Entitlements.Normalize(), nil
}
