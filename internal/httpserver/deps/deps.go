package deps

import (
	"time"

	"raindrop-mcp/internal/logger"
	"raindrop-mcp/internal/mcp"
)

type Deps struct {
	Logger     logger.Logger
	StartTime  time.Time
	Version    string
	Commit     string
	BuildDate  string
	GoVersion  string
	Dispatcher *mcp.Server // shared protocol dispatcher (same instance as stdio)
}
