// Package gateway is a client for the Spotify Open Access API, which lets a partner
// register (link) its users with Spotify, unlink them, and manage the set of
// entitlements that determine which partner content a linked user can access on Spotify.
//
// Every request carries a JSON payload identifying the partner and the user, signed as
// an HS256 JWT with our client secret and sent as 'text/plain'. Registering a user is
// authorized with the User Access Token obtained through the Authorization Code flow;
// all other operations are authorized with a Client Access Token whose scope depends on
// the operation.
//
// The API signals failures through a small, fixed set of status codes, which this
// package reports as an *Error carrying an ErrorKind.
//
// See https://developer.spotify.com/documentation/open-access/reference/
package gateway
