// Package token obtains access tokens from the Spotify Accounts service.
//
// Two grant types are used:
//
//   - The Authorization Code flow exchanges the code that Spotify sends to our callback
//     URL for a User Access Token with the 'user-soa-link' scope. That token authorizes
//     us to register the user with Open Access.
//     https://developer.spotify.com/documentation/general/guides/authorization/code-flow/
//
//   - The Client Credentials flow yields a token that identifies our app itself, which
//     we use for server-to-server calls that manage entitlements or unlink a user.
//     https://developer.spotify.com/documentation/general/guides/authorization/client-credentials/
//
// Both requests are authenticated with HTTP Basic auth built from our client ID and
// secret. Tokens are requested whenever they're needed and are never cached.
package token
