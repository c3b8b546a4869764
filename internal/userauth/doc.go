// Package userauth contains code used to link a user's account to Spotify: we redirect
// the user to a Spotify-hosted OAuth challenge where they can grant our application the
// 'user-soa-link' scope, and Spotify redirects them back to our callback URL with an
// authorization code.
//
// The flow is described here:
//
// - https://developer.spotify.com/documentation/general/guides/authorization/code-flow/
//
// Upon receiving the callback, we verify that the 'state' value matches the CSRF token
// that we issued to the same browser, exchange the code for a User Access Token, and use
// that token to register the user with Spotify Open Access. If registration succeeds,
// Spotify gives us a completion URL: the user must be redirected there, unmodified, to
// finish linking. Any failure along the way ends the flow; the user has to start over.
//
// - https://developer.spotify.com/documentation/open-access/reference/#/operations/register-user
package userauth
