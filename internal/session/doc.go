// Package session implements a deliberately naive form of user authentication: a
// client logs in by POSTing its user ID, and we store that user ID, signed with our
// local secret, in an HTTP-only cookie. Any request that carries a valid identity
// cookie is considered to be authenticated as that user.
//
// This stands in for a real login system; the storefront's login page obtains the
// user ID from a third-party identity provider before calling /login.
package session
