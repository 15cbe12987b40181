package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/wavythought/relay/docs" //nolint:revive,nolintlint
)

func NewRouter(h *Handler, mw *Middleware) http.Handler {
	router := chi.NewRouter()

	router.Use(mw.Recover, mw.WithIP, mw.Log, mw.Cors)

	router.NotFound(h.NotFound)
	router.MethodNotAllowed(h.MethodNotAllowed)

	router.Get("/health", h.Health)
	router.Get("/swagger/*", httpSwagger.WrapHandler)

	router.Post("/api/contact", h.Contact)

	return router
}
