package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/codingconcepts/env"
	"github.com/joho/godotenv"

	"github.com/golden-vcr/openaccess/internal/account"
)

type Config struct {
	StorefrontURL string `env:"STOREFRONT_URL" default:"http://localhost:3000/api"`
	CookieFile    string `env:"STOREFRONT_COOKIE_FILE" default:".storefront-cookies.json"`
}

type Command struct {
	name     string
	initFunc func(cmd *flag.FlagSet)
	runFunc  func(ctx context.Context, c *account.Client) error
}

var commands = []Command{
	{"login", initLoginCommand, runLoginCommand},
	{"logout", initNoFlags, runLogoutCommand},
	{"status", initNoFlags, runStatusCommand},
	{"subscribe", initSubscribeCommand, runSubscribeCommand},
	{"unsubscribe", initUnsubscribeCommand, runUnsubscribeCommand},
	{"unsubscribe-all", initNoFlags, runUnsubscribeAllCommand},
	{"link", initNoFlags, runLinkCommand},
	{"unlink", initNoFlags, runUnlinkCommand},
}

func main() {
	// Parse config from environment variables
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.Fatalf("error loading .env file: %v", err)
	}
	config := Config{}
	if err := env.Set(&config); err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	// Parse the subcommand that we want to run, or print usage if no match
	var command *Command
	commandName := ""
	if len(os.Args) > 1 {
		commandName = os.Args[1]
	}
	for i := range commands {
		if commands[i].name == commandName {
			command = &commands[i]
			break
		}
	}
	if command == nil {
		commandNames := make([]string, 0, len(commands))
		for i := range commands {
			commandNames = append(commandNames, commands[i].name)
		}
		log.Fatalf("Usage: simulate [%s]", strings.Join(commandNames, "|"))
	}

	// Initialize command-line flags for the chosen subcommand
	flagSet := flag.NewFlagSet(command.name, flag.ExitOnError)
	command.initFunc(flagSet)
	if err := flagSet.Parse(os.Args[2:]); err != nil {
		log.Fatalf("Parse error: %v", err)
	}

	// Our cookies persist between invocations, just as they would in a browser
	cookies, err := account.LoadCookieStore(config.CookieFile)
	if err != nil {
		log.Fatalf("error loading cookies: %v", err)
	}
	c := account.NewClient(&http.Client{Timeout: 30 * time.Second}, config.StorefrontURL, cookies)

	// Run the subcommand, then save whatever cookies the server gave us
	runErr := command.runFunc(context.Background(), c)
	if err := cookies.Save(config.CookieFile); err != nil {
		log.Fatalf("error saving cookies: %v", err)
	}
	if runErr != nil {
		log.Fatalf("%s failed: %v", command.name, runErr)
	}
}

func initNoFlags(cmd *flag.FlagSet) {}
