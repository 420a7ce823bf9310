package routes

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"

	"github.com/Dosada05/championship/handlers"
	"github.com/Dosada05/championship/middleware"
	"github.com/Dosada05/championship/models"
)

type Options struct {
	JWTSecret      []byte
	AllowedOrigins []string
	Logger         *slog.Logger
}

func SetupRoutes(
	router chi.Router,
	opts Options,
	tournamentHandler *handlers.TournamentHandler,
	matchHandler *handlers.MatchHandler,
	webSocketHandler *handlers.WebSocketHandler,
	healthHandler *handlers.HealthHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/healthz", healthHandler.Healthz)
	// websocket живёт вне таймаута, иначе соединение оборвётся
	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)

	authenticate := middleware.Authenticate(opts.JWTSecret, opts.Logger)

	router.Group(func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(30 * time.Second))

		r.Route("/tournaments", func(r chi.Router) {
			r.With(authenticate, middleware.RequireRole(models.RoleOrganizer, models.RoleAdmin)).
				Post("/", tournamentHandler.CreateHandler)

			r.Route("/{tournamentID}", func(r chi.Router) {
				// Публичные маршруты
				r.Get("/", tournamentHandler.GetOverviewHandler)
				r.Get("/standings", tournamentHandler.GetStandingsHandler)
				r.Get("/rounds/{roundNumber}/matches", tournamentHandler.GetRoundMatchesHandler)

				r.Group(func(r chi.Router) {
					r.Use(authenticate)
					r.With(middleware.RequireRole(models.RoleAdmin)).
						Post("/rounds/{roundNumber}/reset", tournamentHandler.ResetRoundHandler)
					r.With(middleware.RequireRole(models.RoleAdmin)).
						Post("/reconcile", tournamentHandler.ReconcileHandler)
					r.With(middleware.RequireRole(models.RoleOrganizer, models.RoleAdmin)).
						Post("/participants/{participantID}/withdraw", tournamentHandler.WithdrawParticipantHandler)
				})
			})
		})

		// события от сервиса игр
		r.Route("/matches/{matchID}", func(r chi.Router) {
			r.Use(authenticate)
			r.Use(middleware.RequireRole(models.RoleService, models.RoleAdmin))
			r.Post("/start", matchHandler.StartHandler)
			r.Post("/result", matchHandler.ResultHandler)
		})
	})
}
