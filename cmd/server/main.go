package main

import (
	"net/http"
	"os"
	"time"

	"github.com/codingconcepts/env"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/golden-vcr/openaccess/internal/entitlements"
	"github.com/golden-vcr/openaccess/internal/events"
	"github.com/golden-vcr/openaccess/internal/gateway"
	"github.com/golden-vcr/openaccess/internal/session"
	"github.com/golden-vcr/openaccess/internal/signing"
	"github.com/golden-vcr/openaccess/internal/token"
	"github.com/golden-vcr/openaccess/internal/userauth"
	"github.com/golden-vcr/server-common/entry"
	"github.com/golden-vcr/server-common/rmq"
)

type Config struct {
	BindAddr   string `env:"BIND_ADDR"`
	ListenPort uint16 `env:"LISTEN_PORT" default:"3000"`
	PublicDir  string `env:"PUBLIC_DIR"`

	PartnerId    string `env:"PARTNER_ID" required:"true"`
	ClientId     string `env:"CLIENT_ID" required:"true"`
	ClientSecret string `env:"CLIENT_SECRET" required:"true"`
	CallbackURL  string `env:"CALLBACK_URL" required:"true"`
	LocalSecret  string `env:"LOCAL_SECRET" required:"true"`

	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT" default:"10s"`

	RmqHost     string `env:"RMQ_HOST"`
	RmqPort     int    `env:"RMQ_PORT" default:"5672"`
	RmqVhost    string `env:"RMQ_VHOST" default:"/"`
	RmqUser     string `env:"RMQ_USER" default:"guest"`
	RmqPassword string `env:"RMQ_PASSWORD" default:"guest"`
	RmqExchange string `env:"RMQ_EXCHANGE" default:"open-access-events"`
}

func main() {
	app := entry.NewApplication("openaccess")
	defer app.Stop()

	// Parse config from environment variables
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		app.Fail("Failed to load .env file", err)
	}
	config := Config{}
	if err := env.Set(&config); err != nil {
		app.Fail("Failed to load config", err)
	}

	// If an AMQP server is configured, publish an event whenever a user is linked or
	// unlinked or their entitlements change
	var producer events.Producer = events.NoopProducer{}
	if config.RmqHost != "" {
		amqpConn, err := amqp.Dial(rmq.FormatConnectionString(config.RmqHost, config.RmqPort, config.RmqVhost, config.RmqUser, config.RmqPassword))
		if err != nil {
			app.Fail("Failed to connect to AMQP server", err)
		}
		defer amqpConn.Close()
		producer, err = events.NewProducer(amqpConn, config.RmqExchange)
		if err != nil {
			app.Fail("Failed to initialize AMQP producer", err)
		}
		app.Log().Info("Publishing events to AMQP", "exchange", config.RmqExchange)
	}

	// All calls to Spotify share a single HTTP client with a timeout, so that an
	// unresponsive upstream can't hold a request open indefinitely
	httpClient := &http.Client{Timeout: config.UpstreamTimeout}
	tokenClient := token.NewClient(httpClient, config.ClientId, config.ClientSecret, config.CallbackURL)
	gatewayClient := gateway.NewClient(httpClient, gateway.DefaultBaseURL, tokenClient, config.PartnerId, config.ClientSecret)

	// Cookies that identify the user and carry the CSRF token through the OAuth flow
	// are signed with our local secret
	signer := signing.NewSigner(config.LocalSecret)

	r := newRouter(signer, tokenClient, gatewayClient, producer, config.PublicDir)

	// Handle incoming HTTP connections until the application is stopped, at which point
	// shut down cleanly
	entry.RunServer(app, r, config.BindAddr, int(config.ListenPort))
}

// newRouter builds the HTTP handler for the entire app: the storefront API is served
// under /api, and static files (if publicDir is set) from everywhere else
func newRouter(signer *signing.Signer, tokenClient token.Client, gatewayClient gateway.Gateway, producer events.Producer, publicDir string) *mux.Router {
	authenticator := session.NewAuthenticator(signer)

	// Start setting up our HTTP handlers, using gorilla/mux for routing
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.Path("/_ping").Methods("GET").HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		res.WriteHeader(http.StatusNoContent)
	})

	// The storefront can POST /api/login to identify as a user, and GET /api/logout to
	// stop doing so
	sessionServer := session.NewServer(signer)
	sessionServer.RegisterRoutes(api)

	// A logged-in user can GET /api/entrypoint to link their account to Spotify: once
	// they've granted access, Spotify sends them back to GET /api/callback, where we
	// register them with Spotify Open Access
	userauthServer := userauth.NewServer(tokenClient, gatewayClient, signer, producer)
	userauthServer.RegisterRoutes(authenticator, api)

	// A logged-in user can view and modify their Spotify entitlements, unlink their
	// account, or (while unlinked) update the subscriptions we hold in their cookie
	entitlementsServer := entitlements.NewServer(gatewayClient, producer)
	entitlementsServer.RegisterRoutes(authenticator, api)

	// Expose counters of calls to Spotify for Prometheus to scrape
	r.Path("/metrics").Methods("GET").Handler(promhttp.Handler())

	// If configured, serve the storefront's static files as well
	if publicDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(publicDir)))
	}
	return r
}
