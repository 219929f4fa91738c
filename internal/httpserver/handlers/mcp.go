package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"raindrop-mcp/internal/httpserver/deps"
	"raindrop-mcp/internal/mcp"
)

// MCP serves JSON-RPC protocol frames over HTTP POST, feeding the same
// dispatcher as the stdio transport. One request per HTTP exchange;
// notifications are acknowledged with 202 and no body.
func MCP(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		}

		var req mcp.Request
		if err := json.Unmarshal(body, &req); err != nil {
			writeJSON(w, &mcp.Response{
				JSONRPC: "2.0",
				Error:   &mcp.RPCError{Code: -32700, Message: "Parse error"},
			})
			return
		}

		resp := d.Dispatcher.Handle(r.Context(), &req)
		if resp == nil {
			w.WriteHeader(http.StatusAccepted)
			return
		}
		writeJSON(w, resp)
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
