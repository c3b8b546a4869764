package account

import (
	"context"
	"fmt"
	"strings"

	"github.com/golden-vcr/openaccess"
)

// Account is the storefront's view of a user's subscriptions. It's either *Linked, in
// which case Spotify holds the authoritative entitlements and every change is sent
// there, or *Unlinked, in which case the entitlements cookie is the only record and
// changes are computed locally.
type Account interface {
	IsLinked() bool
	Entitlements() openaccess.Entitlements
	Subscribe(ctx context.Context, tier string) (Account, error)
	Unsubscribe(ctx context.Context, tier string) (Account, error)
	UnsubscribeAll(ctx context.Context) (Account, error)
	String() string
}

// Linked is an account whose subscriptions are managed by Spotify. After every change,
// the account is refreshed from the cookie the server wrote, never from a local
// computation.
type Linked struct {
	client       *Client
	entitlements openaccess.Entitlements
}

func (a *Linked) IsLinked() bool                        { return true }
func (a *Linked) Entitlements() openaccess.Entitlements { return a.entitlements }
func (a *Linked) String() string                        { return describe("linked", a.entitlements) }

func (a *Linked) Subscribe(ctx context.Context, tier string) (Account, error) {
	return a.client.mutateLinked(ctx, "/user-spotify-add-entitlements", openaccess.Entitlements{tier})
}

func (a *Linked) Unsubscribe(ctx context.Context, tier string) (Account, error) {
	return a.client.mutateLinked(ctx, "/user-spotify-delete-entitlements", openaccess.Entitlements{tier})
}

func (a *Linked) UnsubscribeAll(ctx context.Context) (Account, error) {
	return a.client.mutateLinked(ctx, "/user-spotify-replace-entitlements", openaccess.Entitlements{})
}

// Unlinked is an account whose subscriptions exist only in the entitlements cookie
type Unlinked struct {
	client       *Client
	entitlements openaccess.Entitlements
}

func (a *Unlinked) IsLinked() bool                        { return false }
func (a *Unlinked) Entitlements() openaccess.Entitlements { return a.entitlements }
func (a *Unlinked) String() string                        { return describe("unlinked", a.entitlements) }

func (a *Unlinked) Subscribe(ctx context.Context, tier string) (Account, error) {
	return a.client.updateUnlinked(ctx, a.entitlements.Union(openaccess.Entitlements{tier}))
}

func (a *Unlinked) Unsubscribe(ctx context.Context, tier string) (Account, error) {
	return a.client.updateUnlinked(ctx, a.entitlements.Without(openaccess.Entitlements{tier}))
}

func (a *Unlinked) UnsubscribeAll(ctx context.Context) (Account, error) {
	return a.client.updateUnlinked(ctx, openaccess.Entitlements{})
}

func describe(state string, e openaccess.Entitlements) string {
	if len(e) == 0 {
		return fmt.Sprintf("%s, no subscriptions", state)
	}
	return fmt.Sprintf("%s, subscribed to %s", state, strings.Join(e, ", "))
}
