// Package account is a client for the storefront API, modeling the user's account the
// way the browser-side storefront does.
//
// An account is either Linked or Unlinked. We find out which by asking the server for
// the user's Spotify entitlements: a 200 response means the user is linked, and any
// other response is treated as unlinked. While unlinked, the entitlements cookie is the
// only record of the user's subscriptions, so changes are computed locally and stored
// via /update-subscription. While linked, changes are sent to Spotify, and the account
// is then refreshed from the cookie that the server wrote in response.
package account
