package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/1broseidon/winmgr/internal/daemon"
	"github.com/1broseidon/winmgr/internal/geometry"
)

const (
	maxMessageBytes = 64 * 1024
	requestTimeout  = 5 * time.Second
)

// ErrAlreadyRunning is returned by Start when another daemon serves the endpoint.
var ErrAlreadyRunning = errors.New("winmgr daemon already running")

// Controller is the part of the dispatch loop the server exposes.
type Controller interface {
	Reload(ctx context.Context) (daemon.ReloadResult, error)
	Apply(ctx context.Context, layout geometry.Layout) (geometry.Rect, error)
	Status() daemon.Status
	Bindings() []daemon.Binding
}

// Server handles IPC requests from clients
type Server struct {
	endpoint     string
	listener     net.Listener
	ctrl         Controller
	logger       *slog.Logger
	wg           sync.WaitGroup
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a server for ctrl on endpoint (socket path or pipe name).
// An empty endpoint selects DefaultEndpoint.
func NewServer(ctrl Controller, endpoint string, logger *slog.Logger) (*Server, error) {
	if endpoint == "" {
		var err error
		if endpoint, err = DefaultEndpoint(); err != nil {
			return nil, fmt.Errorf("failed to resolve IPC endpoint: %w", err)
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		endpoint: endpoint,
		ctrl:     ctrl,
		logger:   logger,
	}, nil
}

// Endpoint returns the socket path or pipe name the server listens on.
func (s *Server) Endpoint() string {
	return s.endpoint
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := listen(s.endpoint)
	if err != nil {
		return err
	}
	s.listener = listener

	s.logger.Info("IPC server listening", "endpoint", s.endpoint)

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			stopping := s.shuttingDown
			s.shutdownMu.Unlock()
			if stopping || errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

// handleConnection serves one newline-terminated request per connection.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(2 * requestTimeout))

	reader := bufio.NewReader(io.LimitReader(conn, maxMessageBytes))
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("IPC read error", "error", err)
		return
	}
	if len(data) == 0 {
		// Liveness check from another instance.
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)
	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal IPC response", "error", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Warn("failed to send IPC response", "error", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	s.logger.Debug("IPC request", "command", req.Command)
	switch req.Command {
	case CommandReload:
		return s.handleReload()
	case CommandGetStatus:
		return ok(s.ctrl.Status())
	case CommandListKeybinds:
		return ok(s.ctrl.Bindings())
	case CommandApplyLayout:
		return s.handleApplyLayout(req.Payload)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handleReload() *Response {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	res, err := s.ctrl.Reload(ctx)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}
	return ok(res)
}

func (s *Server) handleApplyLayout(payload json.RawMessage) *Response {
	var req ApplyLayoutPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid apply payload: %v", err))
	}
	layout, err := req.Layout()
	if err != nil {
		return NewErrorResponse(err.Error())
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	rect, err := s.ctrl.Apply(ctx, layout)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to apply %s: %v", layout, err))
	}
	return ok(AppliedData{Layout: layout.String(), Rect: rect})
}

func ok(data any) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop closes the listener, waits for in-flight requests and removes the socket.
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener == nil {
		// Never started; the endpoint may belong to another daemon.
		return
	}
	s.listener.Close()
	s.wg.Wait()
	cleanup(s.endpoint)
}
