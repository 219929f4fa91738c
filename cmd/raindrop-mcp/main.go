package main

import (
	"log"

	"github.com/joho/godotenv"

	"raindrop-mcp/internal/app"
)

func main() {
	// A local .env is a convenience for development; absence is fine.
	_ = godotenv.Load()

	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ raindrop-mcp failed: %v", err)
	}
}
