// internal/handlers/router.go
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
	"github.com/tectoast/wizard/internal/middleware"
)

// RouterOptions collects what the HTTP surface serves. Nil Accounts disables /login and
// /register; nil Metrics disables /metrics.
type RouterOptions struct {
	Logger         *logrus.Logger
	Production     bool
	AllowedOrigins []string
	Game           *GameServer
	Accounts       *Accounts
	Metrics        http.Handler
}

// NewRouter builds the chi router.
func NewRouter(opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.LogMiddleware(opts.Logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Heartbeat("/ping"))

	origins := []string{"https://*", "http://*"}
	if opts.Production {
		origins = opts.AllowedOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ws", opts.Game.GameWSHandler)

	if opts.Accounts != nil {
		r.Post("/login", opts.Accounts.LoginHandler)
		r.Post("/register", opts.Accounts.RegisterHandler)
	} else {
		unavailable := func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "accounts unavailable", http.StatusServiceUnavailable)
		}
		r.Post("/login", unavailable)
		r.Post("/register", unavailable)
	}

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}
	return r
}
