package routes

import (
	"github.com/go-chi/chi/v5"

	"raindrop-mcp/internal/httpserver/deps"
	"raindrop-mcp/internal/httpserver/handlers"
)

func init() { Register(registerHealthz) }

func registerHealthz(r chi.Router, d deps.Deps) {
	r.Get("/healthz", handlers.Healthz(d))
}
