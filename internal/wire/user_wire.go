package wire

import (
	"bus-booking/internal/adaptor"
	"bus-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// wireUser configures admin user management routes
func wireUser(
	r chi.Router,
	userHandler *adaptor.UserHandler,
	g *guards,
	config *utils.Config,
	log *zap.Logger,
) {
	r.With(g.auth, g.admin).Route("/users", func(r chi.Router) {
		r.Get("/", userHandler.GetAllUsers)       // GET /api/users?page=1&per_page=10
		r.Get("/drivers", userHandler.GetDrivers) // GET /api/users/drivers
		r.Get("/{id}", userHandler.GetUserByID)   // GET /api/users/{id}
		r.Put("/{id}", userHandler.UpdateUser)    // PUT /api/users/{id}
		r.Delete("/{id}", userHandler.DeleteUser) // DELETE /api/users/{id}
	})
}
