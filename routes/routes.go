package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/swayamn72/aegis-sub001/docs" // регистрирует swagger spec
	"github.com/swayamn72/aegis-sub001/handlers"
	"github.com/swayamn72/aegis-sub001/middleware"
)

type Options struct {
	JWTSecret           string
	AllowedOrigins      []string
	ExportRatePerMinute int
}

type Handlers struct {
	Standings   *handlers.StandingsHandler
	Advancement *handlers.AdvancementHandler
	Matches     *handlers.MatchHandler
	Export      *handlers.ExportHandler
	WebSocket   *handlers.WebSocketHandler
}

func SetupRoutes(router chi.Router, opts Options, h Handlers) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Results-Revision"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	organizerOnly := func(r chi.Router) {
		r.Use(middleware.Authenticate(opts.JWTSecret))
		r.Use(middleware.RequireRole(middleware.RoleOrganizer, middleware.RoleAdmin))
	}
	exportLimit := middleware.RateLimit(opts.ExportRatePerMinute, burstFor(opts.ExportRatePerMinute))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Get("/swagger/*", httpSwagger.WrapHandler)

	router.Route("/tournaments/{tournamentID}", func(r chi.Router) {
		// Публичные маршруты
		r.Get("/standings", h.Standings.GetStandings)
		r.With(exportLimit).Get("/standings/export", h.Export.DownloadStandings)
		r.Get("/phases/{phaseName}/advancement", h.Advancement.PreviewAdvancement)
		r.Get("/matches", h.Matches.ListMatches)

		// Только организаторы
		r.Group(func(r chi.Router) {
			organizerOnly(r)
			r.Post("/standings/export", h.Export.PublishStandings)
			r.Post("/phases/{phaseName}/advance", h.Advancement.AdvancePhase)
			r.Post("/phases/{phaseName}/standings/snapshot", h.Standings.SnapshotGroupStandings)
			r.Post("/finalize", h.Standings.FinalizeTournament)
		})
	})

	router.Group(func(r chi.Router) {
		organizerOnly(r)
		r.Patch("/matches/{matchID}/results", h.Matches.RecordResults)
	})

	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)
}

func burstFor(perMinute int) int {
	if perMinute < 5 {
		return 1
	}
	return perMinute / 5
}
