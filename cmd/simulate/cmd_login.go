package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/golden-vcr/openaccess/internal/account"
)

var loginUserId string

func initLoginCommand(cmd *flag.FlagSet) {
	cmd.StringVar(&loginUserId, "user-id", "aaaaaaaaaaaaaaaaaaaaaaaaaaa1", "28-character ID of the user to log in as")
}

func runLoginCommand(ctx context.Context, c *account.Client) error {
	if err := c.Login(ctx, loginUserId); err != nil {
		return err
	}
	fmt.Printf("Logged in as %s\n", loginUserId)
	return runStatusCommand(ctx, c)
}

func runLogoutCommand(ctx context.Context, c *account.Client) error {
	if err := c.Logout(ctx); err != nil {
		return err
	}
	fmt.Println("Logged out")
	return nil
}
