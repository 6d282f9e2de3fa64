package http

import (
	"log/slog"
	"net/http"

	"daily-guess-service/internal/app"
	"github.com/gorilla/mux"
)

// RouterConfig holds what the API router needs.
type RouterConfig struct {
	Logger  *slog.Logger
	Guesses *app.GuessService
	Admin   *app.AdminService
}

// NewRouter wires every route behind logging, recovery and CORS.
func NewRouter(cfg RouterConfig) http.Handler {
	guesses := NewGuessHandler(cfg.Guesses, cfg.Logger)
	admin := NewAdminHandler(cfg.Admin, cfg.Guesses, cfg.Logger)

	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/guesses", guesses.Submit).Methods(http.MethodPost)
	api.HandleFunc("/today", guesses.Today).Methods(http.MethodGet)
	api.HandleFunc("/days/{day}/items", guesses.DayItems).Methods(http.MethodGet)
	api.HandleFunc("/players/{name}/days/{day}", guesses.PlayerDay).Methods(http.MethodGet)
	api.HandleFunc("/leaderboard", guesses.Leaderboard).Methods(http.MethodGet)

	api.HandleFunc("/admin/verify", admin.Verify).Methods(http.MethodPost)
	api.HandleFunc("/admin/items", admin.Items).Methods(http.MethodPost)
	api.HandleFunc("/admin/stats", admin.Stats).Methods(http.MethodPost)

	var h http.Handler = r
	h = CORS(h)
	h = Recovery(cfg.Logger)(h)
	h = Logging(cfg.Logger)(h)
	return h
}
