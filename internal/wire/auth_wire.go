package wire

import (
	"bus-booking/internal/adaptor"
	"bus-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireAuth(
	r chi.Router,
	authHandler *adaptor.AuthHandler,
	g *guards,
	config *utils.Config,
	log *zap.Logger,
) {
	r.Route("/auth", func(r chi.Router) {
		// public
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)

		// authenticated
		r.With(g.auth).Post("/logout", authHandler.Logout)
		r.With(g.auth).Get("/profile", authHandler.Profile)
	})
}
