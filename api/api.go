// Package api exposes the kitty lifecycle and exchange operations over REST.
package api

import (
	"context"
	"net/http"
	"time"

	"kitty-services/db"
	"kitty-services/kitties"
	"kitty-services/kittylog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Config for the API server.
type Config struct {
	Addr        string
	Environment string
}

// API is the REST server fronting the lifecycle engine.
type API struct {
	Log    *zerolog.Logger
	Addr   string
	Routes chi.Router

	engine      *kitties.Engine
	store       *db.Store
	environment string
}

func NewAPI(log *zerolog.Logger, engine *kitties.Engine, store *db.Store, cfg *Config) *API {
	api := &API{
		Log:         log,
		Addr:        cfg.Addr,
		Routes:      chi.NewRouter(),
		engine:      engine,
		store:       store,
		environment: cfg.Environment,
	}

	api.Routes.Use(middleware.RequestID)
	api.Routes.Use(middleware.RealIP)
	api.Routes.Use(cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}).Handler)
	api.Routes.Use(kittylog.ChiLogger(zerolog.DebugLevel))

	api.Routes.Handle("/metrics", promhttp.Handler())

	api.Routes.Route("/api", func(r chi.Router) {
		r.Get("/health_check", WithError(api.HealthCheck))

		r.Route("/kitties", func(r chi.Router) {
			r.Post("/", WithError(api.KittyCreate))
			r.Post("/breed", WithError(api.KittyBreed))
			r.Get("/{kitty_id}", WithError(api.KittyGet))
			r.Post("/{kitty_id}/transfer", WithError(api.KittyTransfer))
			r.Put("/{kitty_id}/price", WithError(api.KittyUpdatePrice))
			r.Post("/{kitty_id}/buy", WithError(api.KittyBuy))
		})

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/{account_id}/kitties", WithError(api.AccountKitties))
			r.Get("/{account_id}/balance", WithError(api.AccountBalance))
			if api.environment == "development" || api.environment == "testing" {
				r.Post("/{account_id}/faucet", WithError(api.AccountFaucet))
			}
		})

		r.Get("/listings", WithError(api.ListingsList))
	})

	return api
}

// Run the API server until the context is cancelled.
func (api *API) Run(ctx context.Context) error {
	api.Log.Info().Str("addr", api.Addr).Msg("starting API")

	server := &http.Server{
		Addr:    api.Addr,
		Handler: api.Routes,
	}

	go func() {
		<-ctx.Done()
		api.Log.Info().Msg("stopping API")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := server.Shutdown(shutdownCtx)
		if err != nil {
			api.Log.Err(err).Msg("api shutdown")
		}
	}()

	return server.ListenAndServe()
}
