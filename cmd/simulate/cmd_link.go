package main

import (
	"context"
	"fmt"

	"github.com/golden-vcr/openaccess/internal/account"
)

// Linking requires the user to grant access on Spotify's site, so we can only point
// the way: the URL must be opened in a browser that's logged in to the storefront
func runLinkCommand(ctx context.Context, c *account.Client) error {
	fmt.Printf("To link this account to Spotify, log in to the storefront in a browser and visit:\n\n  %s\n\n", c.LinkURL())
	return nil
}

func runUnlinkCommand(ctx context.Context, c *account.Client) error {
	a, err := c.Unlink(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Unlinked from Spotify; account is now %s\n", a)
	return nil
}
