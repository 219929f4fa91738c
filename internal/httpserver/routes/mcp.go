package routes

import (
	"github.com/go-chi/chi/v5"

	"raindrop-mcp/internal/httpserver/deps"
	"raindrop-mcp/internal/httpserver/handlers"
)

func init() { Register(registerMCP) }

func registerMCP(r chi.Router, d deps.Deps) {
	r.Post("/mcp", handlers.MCP(d))
}
