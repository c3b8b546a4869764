// Package events announces changes to a user's link and entitlement state, so that
// other services can react to them without polling the Open Access API.
//
// Events are JSON-encoded and published to a fanout exchange on an AMQP broker.
// Publishing is best-effort: the state of record lives with Spotify, and a failure to
// announce a change never causes the change itself to be reported as failed.
package events
