package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/susu3304/epicgambler/internal/catalog"
	"github.com/susu3304/epicgambler/internal/config"
	"github.com/susu3304/epicgambler/internal/ledger"
)

const discordUserURL = "https://discord.com/api/users/@me"

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type API struct {
	router      *mux.Router
	store       Pinger
	catalog     *catalog.Service
	ledger      *ledger.Service
	config      *config.Config
	metrics     http.Handler
	oauthConfig *oauth2.Config
	jwtSecret   []byte
	userURL     string
	httpClient  *http.Client
	server      *http.Server
}

func New(cfg *config.Config, c *catalog.Service, l *ledger.Service, store Pinger, metrics http.Handler) *API {
	api := &API{
		router:     mux.NewRouter(),
		store:      store,
		catalog:    c,
		ledger:     l,
		config:     cfg,
		metrics:    metrics,
		jwtSecret:  []byte(cfg.JWTSecret),
		userURL:    discordUserURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.DiscordClientID,
			ClientSecret: cfg.DiscordClientSecret,
			RedirectURL:  cfg.DiscordRedirectURI,
			Scopes:       []string{"identify"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://discord.com/api/oauth2/authorize",
				TokenURL: "https://discord.com/api/oauth2/token",
			},
		},
	}

	api.setupRoutes()
	return api
}

func (a *API) setupRoutes() {
	a.router.HandleFunc("/", a.handleRoot).Methods("GET", "HEAD")
	a.router.HandleFunc("/healthz", a.handleHealthz).Methods("GET")
	if a.metrics != nil {
		a.router.Handle("/metrics", a.metrics).Methods("GET")
	}

	a.router.HandleFunc("/api/public/shop", a.handlePublicShop).Methods("GET")

	if !a.config.ConsoleEnabled() {
		return
	}

	// Auth endpoints
	a.router.HandleFunc("/api/auth/login", a.handleLogin).Methods("GET")
	a.router.HandleFunc("/api/auth/callback", a.handleCallback).Methods("GET")

	// Operator endpoints
	protected := a.router.PathPrefix("/api").Subrouter()
	protected.Use(a.authMiddleware)

	protected.HandleFunc("/shop", a.handleAddItem).Methods("POST")
	protected.HandleFunc("/accounts/{user_id}", a.handleAccount).Methods("GET")
}

// Handler returns the router wrapped with CORS.
func (a *API) Handler() http.Handler {
	// Bearer tokens are sent explicitly, so credentials stay disabled with a wildcard origin.
	corsOptions := cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
	}
	return cors.New(corsOptions).Handler(a.router)
}

// Start serves until Shutdown is called.
func (a *API) Start() error {
	a.server = &http.Server{
		Addr:              a.config.WebBind,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.WithField("bind", a.config.WebBind).Info("api: listening")
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *API) Shutdown(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}
