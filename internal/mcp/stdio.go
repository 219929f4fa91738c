package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"sync"
	"syscall"

	"raindrop-mcp/internal/logger"
)

// Large bookmarks plus indented JSON can get bulky; allow lines up to 10 MiB.
const maxFrameSize = 10 * 1024 * 1024

// StdioTransport carries newline-delimited JSON-RPC frames over the process's
// standard streams, one request at a time.
type StdioTransport struct {
	server *Server
	log    logger.Logger
	in     io.Reader
	out    io.Writer

	writeMu sync.Mutex
}

func NewStdioTransport(server *Server, log logger.Logger) *StdioTransport {
	if log == nil {
		log = logger.Nop()
	}
	return &StdioTransport{
		server: server,
		log:    log,
		in:     os.Stdin,
		out:    os.Stdout,
	}
}

// Run serves requests until stdin closes or an unrecoverable transport error
// occurs. Context cancellation does not stop the loop: during the shutdown
// drain window the dispatcher must still answer every frame (with its refusal
// for new tool calls), and the app owns the eventual exit. A broken pipe on
// the output means the client went away mid-write: that is a normal
// termination, not an error.
func (t *StdioTransport) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(t.in)
	scanner.Buffer(make([]byte, 64*1024), maxFrameSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			t.log.Warn("discarding malformed frame", logger.Error(err))
			if werr := t.write(rpcErr(nil, codeParseError, "Parse error")); werr != nil {
				return t.terminal(werr)
			}
			continue
		}
		if req.Method == "" {
			if werr := t.write(rpcErr(req.ID, codeInvalidRequest, "Invalid request: missing method")); werr != nil {
				return t.terminal(werr)
			}
			continue
		}

		resp := t.server.Handle(ctx, &req)
		if resp == nil {
			continue // notification
		}
		if werr := t.write(resp); werr != nil {
			return t.terminal(werr)
		}
	}

	if err := scanner.Err(); err != nil {
		return err
	}
	t.log.Info("stdin closed, transport done")
	return nil
}

func (t *StdioTransport) write(resp *Response) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	payload, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	payload = append(payload, '\n')
	_, err = t.out.Write(payload)
	return err
}

// terminal decides whether a write failure ends the process cleanly. A closed
// output pipe means the client disconnected; everything else propagates.
func (t *StdioTransport) terminal(err error) error {
	if errors.Is(err, syscall.EPIPE) || errors.Is(err, io.ErrClosedPipe) {
		t.log.Info("client disconnected (broken pipe), exiting cleanly")
		return nil
	}
	return err
}
