// Package entitlements exposes the HTTP endpoints that the storefront uses to view and
// change a user's subscriptions, and keeps the browser's entitlements cookie in step
// with them.
//
// When the user has linked their account to Spotify, the Open Access API holds the
// authoritative set of entitlements: every change is sent there first, and the cookie is
// only updated once Spotify has accepted it. For add and delete, the new cookie value is
// computed from the previous cookie value rather than re-read from Spotify, so two
// concurrent requests from the same browser can leave the cookie out of step with
// Spotify until the next GET.
//
// When the user is not linked, the cookie is the only record of their subscriptions,
// and the storefront writes it directly via /update-subscription.
package entitlements
