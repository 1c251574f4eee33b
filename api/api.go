// Package api exposes the checkout endpoints used by the shop frontends and
// the webhook endpoint called by Stripe.
package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/vocdoni/checkout-backend/errors"
	"github.com/vocdoni/checkout-backend/stripe"
	"github.com/vocdoni/checkout-backend/validator"
	"go.vocdoni.io/dvote/log"
)

// Config type represents the configuration for the API HTTP server
type Config struct {
	Host string
	Port int
	// BaseURL is the public URL of the shop. When set it is the origin of
	// the default success and cancel URLs, otherwise the origin is taken from
	// the request.
	BaseURL string
	// Stripe is the payment service. It is always set, even when no API key
	// is configured, so that the endpoints can report it.
	Stripe *stripe.Service
}

// API type represents the API HTTP server.
type API struct {
	host      string
	port      int
	baseURL   string
	router    *chi.Mux
	stripe    *stripe.Service
	validator *validator.Validator
}

// New creates a new API HTTP server. It does not start the server. Use Start() for that.
func New(conf *Config) *API {
	if conf == nil {
		return nil
	}
	return &API{
		host:      conf.Host,
		port:      conf.Port,
		baseURL:   strings.TrimRight(conf.BaseURL, "/"),
		stripe:    conf.Stripe,
		validator: validator.New(),
	}
}

// Router creates the router and returns it as an http.Handler, ready to be
// served or tested.
func (a *API) Router() http.Handler {
	return a.initRouter()
}

// Start starts the API HTTP server (non blocking).
func (a *API) Start() {
	go func() {
		if err := http.ListenAndServe(fmt.Sprintf("%s:%d", a.host, a.port), a.initRouter()); err != nil {
			log.Fatalf("failed to start the API server: %v", err)
		}
	}()
}

// initRouter creates the router with all the routes and middleware.
func (a *API) initRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Requested-With"},
		MaxAge:         300, // Maximum value not ignored by any of major browsers
	}).Handler)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	// limit the number of concurrent requests
	r.Use(middleware.Throttle(100))
	// throttle to a max number of requests per second, with a backlog
	r.Use(middleware.ThrottleBacklog(5000, 40000, 60*time.Second))
	// set a timeout of 45 seconds, slow provider calls included
	r.Use(middleware.Timeout(45 * time.Second))

	// every error, routing ones included, is a JSON document
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		errors.ErrMethodNotAllowed.Write(w)
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		errors.ErrNotFound.Write(w)
	})

	r.Get(pingEndpoint, func(w http.ResponseWriter, _ *http.Request) {
		if _, err := w.Write([]byte(".")); err != nil {
			log.Warnw("failed to write ping response", "error", err)
		}
	})
	// checkout routes
	log.Infow("new route", "method", "POST", "path", createCheckoutSessionEndpoint)
	r.Post(createCheckoutSessionEndpoint, a.createCheckoutSessionHandler)
	log.Infow("new route", "method", "GET", "path", checkoutRedirectEndpoint)
	r.Get(checkoutRedirectEndpoint, a.checkoutRedirectHandler)
	log.Infow("new route", "method", "POST", "path", checkoutRedirectEndpoint)
	r.Post(checkoutRedirectEndpoint, a.checkoutRedirectHandler)
	log.Infow("new route", "method", "GET", "path", checkoutSessionEndpoint)
	r.Get(checkoutSessionEndpoint, a.checkoutSessionStatusHandler)
	// stripe routes
	log.Infow("new route", "method", "POST", "path", stripeWebhookEndpoint)
	r.Post(stripeWebhookEndpoint, a.stripeWebhookHandler)

	a.router = r
	return r
}
