// Package api provides the HTTP API for the Token Arena backend.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/jwtauth/v5"
	"github.com/tokenarena/arena-backend/db"
	"github.com/tokenarena/arena-backend/notifications"
	"github.com/tokenarena/arena-backend/stripe"
	"go.vocdoni.io/dvote/log"
)

type Config struct {
	Host        string
	Port        int
	Secret      string
	DB          *db.MongoStorage
	Stripe      *stripe.Service
	MailService notifications.NotificationService
	SMSService  notifications.NotificationService
}

// API type represents the API HTTP server with JWT authentication capabilities.
type API struct {
	db     *db.MongoStorage
	auth   *jwtauth.JWTAuth
	host   string
	port   int
	router *chi.Mux
	stripe *stripe.Service
	mail   notifications.NotificationService
	sms    notifications.NotificationService
	secret string
}

// New creates a new API HTTP server. It does not start the server. Use Start() for that.
func New(conf *Config) *API {
	if conf == nil {
		return nil
	}
	return &API{
		db:     conf.DB,
		auth:   jwtauth.New("HS256", []byte(conf.Secret), nil),
		host:   conf.Host,
		port:   conf.Port,
		stripe: conf.Stripe,
		mail:   conf.MailService,
		sms:    conf.SMSService,
		secret: conf.Secret,
	}
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
	// Create the router with a basic middleware stack
	r := chi.NewRouter()
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}).Handler)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Throttle(100))
	r.Use(middleware.ThrottleBacklog(5000, 40000, 60*time.Second))
	r.Use(middleware.Timeout(45 * time.Second))

	// protected routes
	r.Group(func(r chi.Router) {
		// seek, verify and validate JWT tokens
		r.Use(jwtauth.Verifier(a.auth))
		// handle valid JWT tokens
		r.Use(a.authenticator)
		// refresh the token
		log.Infow("new route", "method", "POST", "path", authRefreshTokenEndpoint)
		r.Post(authRefreshTokenEndpoint, a.refreshTokenHandler)
		// get user information
		log.Infow("new route", "method", "GET", "path", usersMeEndpoint)
		r.Get(usersMeEndpoint, a.userInfoHandler)
		// get user token ledger
		log.Infow("new route", "method", "GET", "path", usersMeTransactionsEndpoint)
		r.Get(usersMeTransactionsEndpoint, a.userTransactionsHandler)
		// create a token purchase payment intent
		log.Infow("new route", "method", "POST", "path", paymentsIntentEndpoint)
		r.Post(paymentsIntentEndpoint, a.createPaymentIntentHandler)
		// create a VIP subscription
		log.Infow("new route", "method", "POST", "path", paymentsSubscriptionEndpoint)
		r.Post(paymentsSubscriptionEndpoint, a.createSubscriptionHandler)
		// tip tokens to another user
		log.Infow("new route", "method", "POST", "path", tokensTipEndpoint)
		r.Post(tokensTipEndpoint, a.tipTokensHandler)
		// withdraw tokens
		log.Infow("new route", "method", "POST", "path", tokensWithdrawEndpoint)
		r.Post(tokensWithdrawEndpoint, a.withdrawTokensHandler)
		// create a wager match
		log.Infow("new route", "method", "POST", "path", matchesEndpoint)
		r.Post(matchesEndpoint, a.createMatchHandler)
		// join an open match
		log.Infow("new route", "method", "POST", "path", matchJoinEndpoint)
		r.Post(matchJoinEndpoint, a.joinMatchHandler)
		// settle an active match
		log.Infow("new route", "method", "POST", "path", matchSettleEndpoint)
		r.Post(matchSettleEndpoint, a.settleMatchHandler)
		// cancel an open match
		log.Infow("new route", "method", "POST", "path", matchCancelEndpoint)
		r.Post(matchCancelEndpoint, a.cancelMatchHandler)
	})

	// Public routes
	r.Group(func(r chi.Router) {
		r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
			if _, err := w.Write([]byte(".")); err != nil {
				log.Warnw("failed to write ping response", "error", err)
			}
		})
		log.Infow("new route", "method", "GET", "path", "/health")
		r.Get("/health", a.healthHandler)
		// login
		log.Infow("new route", "method", "POST", "path", authLoginEndpoint)
		r.Post(authLoginEndpoint, a.authLoginHandler)
		// register user
		log.Infow("new route", "method", "POST", "path", usersEndpoint)
		r.Post(usersEndpoint, a.registerHandler)
		// handle stripe webhook
		log.Infow("new route", "method", "POST", "path", paymentsWebhookEndpoint)
		r.Post(paymentsWebhookEndpoint, a.handleWebhook)
		// list open matches
		log.Infow("new route", "method", "GET", "path", matchesEndpoint)
		r.Get(matchesEndpoint, a.openMatchesHandler)
		// get match information
		log.Infow("new route", "method", "GET", "path", matchEndpoint)
		r.Get(matchEndpoint, a.matchInfoHandler)
		// get the leaderboard
		log.Infow("new route", "method", "GET", "path", leaderboardEndpoint)
		r.Get(leaderboardEndpoint, a.leaderboardHandler)
	})
	a.router = r
	return r
}
