package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/golden-vcr/openaccess"
	"github.com/golden-vcr/openaccess/internal/account"
)

var subscribeTier string
var unsubscribeTier string

func initSubscribeCommand(cmd *flag.FlagSet) {
	cmd.StringVar(&subscribeTier, "tier", openaccess.TierPremium, "Entitlement to subscribe to")
}

func initUnsubscribeCommand(cmd *flag.FlagSet) {
	cmd.StringVar(&unsubscribeTier, "tier", openaccess.TierPremium, "Entitlement to unsubscribe from")
}

func runStatusCommand(ctx context.Context, c *account.Client) error {
	a, err := c.Probe(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Account is %s\n", a)
	return nil
}

func runSubscribeCommand(ctx context.Context, c *account.Client) error {
	return update(ctx, c, func(a account.Account) (account.Account, error) {
		return a.Subscribe(ctx, subscribeTier)
	})
}

func runUnsubscribeCommand(ctx context.Context, c *account.Client) error {
	return update(ctx, c, func(a account.Account) (account.Account, error) {
		return a.Unsubscribe(ctx, unsubscribeTier)
	})
}

func runUnsubscribeAllCommand(ctx context.Context, c *account.Client) error {
	return update(ctx, c, func(a account.Account) (account.Account, error) {
		return a.UnsubscribeAll(ctx)
	})
}

// update probes the account to find out whether it's linked, then applies the change
// the way the storefront would in that state
func update(ctx context.Context, c *account.Client, f func(a account.Account) (account.Account, error)) error {
	a, err := c.Probe(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Account was %s\n", a)
	a, err = f(a)
	if err != nil {
		return err
	}
	fmt.Printf("Account is now %s\n", a)
	return nil
}
