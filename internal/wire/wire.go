package wire

import (
	"context"
	"net/http"
	"time"

	"bus-booking/internal/adaptor"
	"bus-booking/internal/data/entity"
	"bus-booking/internal/data/repository"
	"bus-booking/internal/usecase"
	"bus-booking/pkg/broker"
	"bus-booking/pkg/database"
	"bus-booking/pkg/middleware"
	"bus-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// App holds the wired router and the services behind it
type App struct {
	Router  *chi.Mux
	Service *usecase.Service
}

// Deps are the infrastructure handles built in main
type Deps struct {
	DB        database.PgxIface
	Repo      *repository.Repository
	Redis     *redis.Client // nil disables rate limiting
	Publisher broker.Publisher
}

// guards are the route middlewares shared by every wireX function
type guards struct {
	auth      func(http.Handler) http.Handler
	admin     func(http.Handler) http.Handler
	staff     func(http.Handler) http.Handler
	rateLimit func(http.Handler) http.Handler
}

// Wiring builds services, handlers and the router
func Wiring(deps Deps, config *utils.Config, logger *zap.Logger) *App {
	service := usecase.NewService(deps.Repo, deps.Publisher, config, logger)
	handler := adaptor.NewHandler(service, logger)

	g := &guards{
		auth:      middleware.Auth(service.Auth, logger),
		admin:     middleware.RequireRole(logger, string(entity.RoleAdmin)),
		staff:     middleware.RequireRole(logger, string(entity.RoleDriver), string(entity.RoleAdmin)),
		rateLimit: middleware.RateLimit(deps.Redis, config.RateLimit, logger),
	}

	router := setupRouter(handler, deps.DB, g, config, logger)

	return &App{
		Router:  router,
		Service: service,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	db database.PgxIface,
	g *guards,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())

	r.Route("/api", func(r chi.Router) {
		wireAuth(r, handler.Auth, g, config, logger)
		wireUser(r, handler.User, g, config, logger)
		wireTrip(r, handler.Trip, g, config, logger)
		wireBooking(r, handler.Booking, g, config, logger)
	})

	r.Get("/health", healthCheck(db, logger))

	return r
}

func healthCheck(db database.PgxIface, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db == nil {
			utils.ResponseSuccess(w, "OK", nil)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			logger.Error("Health check failed", zap.Error(err))
			utils.ResponseJSON(w, http.StatusServiceUnavailable, false, "Database unavailable", nil, nil)
			return
		}
		utils.ResponseSuccess(w, "OK", nil)
	}
}
