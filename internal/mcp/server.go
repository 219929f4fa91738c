package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"raindrop-mcp/internal/logger"
	"raindrop-mcp/internal/raindrop"
	"raindrop-mcp/internal/version"
)

// BookmarkService is the slice of the Raindrop.io client the dispatcher needs.
// *raindrop.Client satisfies it; tests substitute a stub.
type BookmarkService interface {
	GetBookmark(ctx context.Context, id int64) (*raindrop.Bookmark, error)
	SearchBookmarks(ctx context.Context, f raindrop.SearchFilter) (*raindrop.SearchResult, error)
	CreateBookmark(ctx context.Context, p raindrop.CreateBookmarkParams) (*raindrop.Bookmark, error)
	UpdateBookmark(ctx context.Context, id int64, p raindrop.UpdateBookmarkParams) (*raindrop.Bookmark, error)
	DeleteBookmark(ctx context.Context, id int64) error
	ListCollections(ctx context.Context) ([]raindrop.Collection, error)
	GetCollection(ctx context.Context, id int64) (*raindrop.Collection, error)
	CreateCollection(ctx context.Context, p raindrop.CreateCollectionParams) (*raindrop.Collection, error)
	UpdateCollection(ctx context.Context, id int64, p raindrop.UpdateCollectionParams) (*raindrop.Collection, error)
	DeleteCollection(ctx context.Context, id int64) error
	ListTags(ctx context.Context) ([]raindrop.Tag, error)
	RenameTag(ctx context.Context, oldName, newName string) error
	DeleteTag(ctx context.Context, name string) error
	GetCurrentUser(ctx context.Context) (map[string]interface{}, error)
}

// Server is the protocol-facing dispatcher. It is transport-agnostic: the
// stdio loop and the HTTP handler both feed requests through Handle. Shutdown
// state is an explicit per-instance value, so independent servers can coexist
// in tests.
type Server struct {
	service BookmarkService
	log     logger.Logger

	mu           sync.Mutex
	shuttingDown bool
}

func NewServer(service BookmarkService, log logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	return &Server{service: service, log: log}
}

// BeginShutdown flips the server into its drain state: tools/list starts
// failing outright and tools/call returns do-not-retry error responses. The
// caller owns the grace window and the eventual process exit.
func (s *Server) BeginShutdown() {
	s.mu.Lock()
	s.shuttingDown = true
	s.mu.Unlock()
	s.log.Info("dispatcher draining: new tool calls will be refused")
}

func (s *Server) draining() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shuttingDown
}

// Draining reports whether the server has begun refusing new tool calls. The
// HTTP transport's health endpoint surfaces it.
func (s *Server) Draining() bool { return s.draining() }

// Handle dispatches one protocol request and never panics: any failure becomes
// a response. Returns nil for notifications (no reply expected).
func (s *Server) Handle(ctx context.Context, req *Request) *Response {
	if req.ID == nil {
		// notifications/initialized and friends: nothing to do.
		return nil
	}

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "ping":
		return rpcResult(req.ID, map[string]interface{}{})
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	default:
		return rpcErr(req.ID, codeMethodNotFound, "Method not found: "+req.Method)
	}
}

func (s *Server) handleInitialize(req *Request) *Response {
	return rpcResult(req.ID, map[string]interface{}{
		"protocolVersion": protocolVersion,
		"capabilities": map[string]interface{}{
			"tools": map[string]interface{}{},
		},
		"serverInfo": map[string]interface{}{
			"name":    serverName,
			"version": version.Version,
		},
	})
}

func (s *Server) handleToolsList(req *Request) *Response {
	if s.draining() {
		return rpcErr(req.ID, codeShuttingDown, "Server is shutting down")
	}
	tools := toolDefinitions()
	s.log.Debug("tool call", logger.String("tool", "list"), logger.Int("items", len(tools)))
	return rpcResult(req.ID, map[string]interface{}{"tools": tools})
}

// handleToolsCall supervises one tool invocation. A panic anywhere below is
// contained to this request's error response, never a crash.
func (s *Server) handleToolsCall(ctx context.Context, req *Request) (resp *Response) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("panic during tool call", logger.String("panic", fmt.Sprint(r)))
			resp = rpcResult(req.ID, errorResult(fmt.Sprintf("Internal error while handling the tool call: %v", r)))
		}
	}()

	var params struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return rpcErr(req.ID, codeInvalidParams, "Invalid params: "+err.Error())
	}

	if s.draining() {
		s.log.Warn("tool call refused during drain", logger.String("tool", params.Name))
		return rpcResult(req.ID, errorResult(
			"The server is shutting down and cannot accept new tool calls. Do not retry immediately."))
	}

	result := s.dispatch(ctx, params.Name, params.Arguments)
	s.log.Info("tool call",
		logger.String("tool", params.Name),
		logger.Bool("is_error", result.IsError))
	return rpcResult(req.ID, result)
}

func unknownToolResult(name string) *CallResult {
	return errorResult(fmt.Sprintf(
		"Unknown tool %q. Valid tools are: %s. Do not retry with the same name.",
		name, strings.Join(toolNames(), ", ")))
}
