package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	mcpgo "github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/cal2prompt/internal/calendar"
	"github.com/teemow/cal2prompt/internal/config"
	"github.com/teemow/cal2prompt/internal/google"
	"github.com/teemow/cal2prompt/internal/logging"
)

const (
	protocolVersion = "2024-11-05"

	// messageBuffer decouples the stdin reader from the serial message
	// loop so a slow tool call does not stall the pipe.
	messageBuffer = 100

	// maxLineBytes bounds a single incoming message.
	maxLineBytes = 10 * 1024 * 1024
)

// ToolHandlerFunc executes one tool call. Returned errors are mapped to
// JSON-RPC error responses by the server; a *Error is sent as-is.
type ToolHandlerFunc func(ctx context.Context, request mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error)

// Server speaks newline-delimited JSON-RPC 2.0 over a byte stream,
// usually stdin/stdout. Messages are processed one at a time: a reader
// goroutine feeds a buffered channel and the serve loop consumes it, so
// tool calls, credential refreshes and output writes never interleave.
type Server struct {
	name    string
	version string
	cfg     *config.Config
	logger  *slog.Logger

	in  io.Reader
	out io.Writer

	outMu sync.Mutex
	w     *bufio.Writer

	initialized bool

	tools    []mcpgo.Tool
	handlers map[string]ToolHandlerFunc
}

// NewServer creates a stdio server. Tools are registered with AddTool
// before Serve is called.
func NewServer(name, version string, cfg *config.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		name:     name,
		version:  version,
		cfg:      cfg,
		logger:   logger,
		handlers: make(map[string]ToolHandlerFunc),
	}
}

// AddTool registers a tool and its handler. Catalog order is the order
// tools were added.
func (s *Server) AddTool(tool mcpgo.Tool, handler ToolHandlerFunc) {
	s.tools = append(s.tools, tool)
	s.handlers[tool.Name] = handler
}

// Tools returns the registered tool definitions in catalog order.
func (s *Server) Tools() []mcpgo.Tool {
	return s.tools
}

// Serve reads messages until EOF or ctx cancellation. Transport-level
// problems with a single line never stop the loop.
func (s *Server) Serve(ctx context.Context) error {
	if s.in == nil {
		s.in = os.Stdin
	}
	if s.out == nil {
		s.out = os.Stdout
	}
	s.w = bufio.NewWriter(s.out)

	lines := make(chan string, messageBuffer)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(s.in)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			scanErr <- err
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			s.handleLine(ctx, line)
		}
	}
}

func (s *Server) handleLine(ctx context.Context, line string) {
	if strings.TrimSpace(line) == "" {
		return
	}

	var req request
	if err := json.Unmarshal([]byte(line), &req); err != nil {
		s.logger.Warn("discarding unparseable message", logging.Err(err))
		return
	}

	// Responses are only ever written by this side. A client echoing one
	// back is noise, not an error.
	if req.Method == "" {
		s.logger.Debug("ignoring message without a method")
		return
	}

	if isNotification(req.ID) {
		s.logger.Debug("notification received", logging.Method(req.Method))
		return
	}

	s.logger.Debug("request received", logging.Method(req.Method))

	if !s.initialized && req.Method != "initialize" {
		s.logger.Warn("request before initialize", logging.Method(req.Method))
		s.writeError(req.ID, Errorf(CodeInvalidRequest, "Server not initialized. Send 'initialize' request first."))
		return
	}

	switch req.Method {
	case "initialize":
		s.initialized = true
		s.writeResult(req.ID, initializeResult{
			ProtocolVersion: protocolVersion,
			Capabilities:    defaultCapabilities(),
			ServerInfo:      serverInfo{Name: s.name, Version: s.version},
		})
	case "tools/list":
		s.writeResult(req.ID, toolsListResult{Tools: s.catalog()})
	case "tools/call":
		s.handleToolCall(ctx, req)
	default:
		s.writeError(req.ID, Errorf(CodeMethodNotFound, "Method not found: %s", req.Method))
	}
}

func (s *Server) handleToolCall(ctx context.Context, req request) {
	var callReq mcpgo.CallToolRequest
	if len(req.Params) == 0 {
		s.writeError(req.ID, Errorf(CodeInvalidParams, "Missing tool call parameters"))
		return
	}
	if err := json.Unmarshal(req.Params, &callReq.Params); err != nil {
		s.writeError(req.ID, Errorf(CodeInvalidParams, "Invalid tool call parameters: %v", err))
		return
	}

	name := callReq.Params.Name
	handler, ok := s.handlers[name]
	if !ok {
		s.writeError(req.ID, Errorf(CodeInvalidParams, "Unknown tool: %s", name))
		return
	}

	result, err := handler(ctx, callReq)
	if err != nil {
		rpcErr := s.mapError(err)
		s.logger.Warn("tool call failed",
			logging.Tool(name),
			logging.Status(logging.StatusError),
			logging.Err(err))
		s.writeError(req.ID, rpcErr)
		return
	}

	s.logger.Info("tool call completed",
		logging.Tool(name),
		logging.Status(logging.StatusSuccess))
	s.writeResult(req.ID, result)
}

// mapError turns a handler error into the JSON-RPC error the client sees.
// Named conditions keep their distinct codes; everything else is an
// internal error.
func (s *Server) mapError(err error) *Error {
	var rpcErr *Error
	switch {
	case errors.As(err, &rpcErr):
		return rpcErr
	case errors.Is(err, google.ErrPortInUse):
		return Errorf(CodePortInUse,
			"Port %d is already in use. Another instance of cal2prompt or Windsurf may be running.",
			s.cfg.OAuth.Port())
	case errors.Is(err, config.ErrUnknownAccount):
		return Errorf(CodeUnknownAccount, "%s", err)
	case errors.Is(err, calendar.ErrNoCalendarID), errors.Is(err, calendar.ErrInvalidTime):
		return Errorf(CodeInvalidParams, "%s", err)
	default:
		return Errorf(CodeInternalError, "%s", err)
	}
}

func (s *Server) catalog() []toolInfo {
	infos := make([]toolInfo, 0, len(s.tools))
	for _, t := range s.tools {
		infos = append(infos, toolInfo{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.InputSchema,
		})
	}
	return infos
}

func (s *Server) writeResult(id json.RawMessage, result any) {
	s.write(response{JSONRPC: "2.0", ID: id, Result: result})
}

func (s *Server) writeError(id json.RawMessage, rpcErr *Error) {
	s.write(response{JSONRPC: "2.0", ID: id, Error: rpcErr})
}

func (s *Server) write(resp response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("failed to marshal response", logging.Err(err))
		return
	}

	s.outMu.Lock()
	defer s.outMu.Unlock()
	s.w.Write(data)
	s.w.WriteByte('\n')
	if err := s.w.Flush(); err != nil {
		s.logger.Error("failed to write response", logging.Err(err))
	}
}

func isNotification(id json.RawMessage) bool {
	return len(id) == 0 || string(id) == "null"
}

type serverInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type listChangedCapability struct {
	ListChanged bool `json:"listChanged"`
}

type resourcesCapability struct {
	ListChanged bool `json:"listChanged"`
	Subscribe   bool `json:"subscribe"`
}

// serverCapabilities is spelled out field by field so false values stay
// on the wire instead of being dropped by omitempty.
type serverCapabilities struct {
	Experimental map[string]any        `json:"experimental"`
	Prompts      listChangedCapability `json:"prompts"`
	Resources    resourcesCapability   `json:"resources"`
	Tools        listChangedCapability `json:"tools"`
}

func defaultCapabilities() serverCapabilities {
	return serverCapabilities{Experimental: map[string]any{}}
}

type initializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    serverCapabilities `json:"capabilities"`
	ServerInfo      serverInfo         `json:"serverInfo"`
}

type toolInfo struct {
	Name        string                `json:"name"`
	Description string                `json:"description"`
	InputSchema mcpgo.ToolInputSchema `json:"inputSchema"`
}

type toolsListResult struct {
	Tools []toolInfo `json:"tools"`
}
