package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"path/filepath"
	"sync"

	"hitqueue/internal/api"
	"hitqueue/internal/daemon"
	"hitqueue/internal/logging"
	"hitqueue/internal/privacy"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "ipc")

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create socket directory: %w", err)
	}
	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	svc := &service{daemon: d, logger: logger, ctx: ctx}
	if err := rpcServer.RegisterName(ServiceName, svc); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				if errors.Is(err, net.ErrClosed) {
					return
				}
				logging.WarnWithContext(s.logger, "accept failed", "ipc_accept_failed",
					logging.Error(err),
					logging.String(logging.FieldImpact, "IPC clients may fail to connect"),
					logging.String(logging.FieldErrorHint, "check socket permissions and restart the daemon if needed"))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file. Open client connections
// finish their current call before the server returns.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		logging.WarnWithContext(s.logger, "failed to remove socket", "ipc_socket_cleanup_failed",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "stale IPC socket may block future starts"),
			logging.String(logging.FieldErrorHint, "remove the socket file manually"))
	}
}

// Path returns the socket path.
func (s *Server) Path() string {
	return s.path
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) scope(meta RequestMeta) (context.Context, *slog.Logger) {
	ctx := s.ctx
	if meta.CorrelationID != "" {
		ctx = logging.WithCorrelationID(ctx, meta.CorrelationID)
	}
	return ctx, logging.WithContext(ctx, s.logger)
}

func (s *service) Status(req StatusRequest, resp *StatusResponse) error {
	*resp = s.daemon.Status().ToAPI()
	return nil
}

func (s *service) Enqueue(req EnqueueRequest, resp *EnqueueResponse) error {
	ctx, logger := s.scope(req.RequestMeta)
	if req.Payload == "" {
		resp.Message = "hit payload is empty"
		return nil
	}
	rec, err := s.daemon.Enqueue(ctx, req.Payload)
	if err != nil {
		resp.Message = err.Error()
		return nil
	}
	resp.Accepted = true
	resp.ID = rec.ID
	logger.Debug("hit queued via IPC", logging.String(logging.FieldHitID, rec.ID))
	return nil
}

func (s *service) Peek(req PeekRequest, resp *PeekResponse) error {
	ctx, _ := s.scope(req.RequestMeta)
	if req.Limit <= 0 {
		return fmt.Errorf("invalid peek limit %d", req.Limit)
	}
	resp.Hits = api.FromRecords(s.daemon.Peek(ctx, req.Limit))
	return nil
}

func (s *service) Clear(req ClearRequest, resp *ClearResponse) error {
	_, logger := s.scope(req.RequestMeta)
	before := s.daemon.Status().Scheduler.Count
	s.daemon.Clear()
	resp.Removed = before
	logger.Info("queue cleared via IPC",
		logging.Int("removed_count", before),
		logging.String(logging.FieldEventType, "queue_clear"))
	return nil
}

func (s *service) Suspend(req SuspendRequest, resp *SuspendResponse) error {
	_, logger := s.scope(req.RequestMeta)
	s.daemon.Suspend()
	resp.State = s.daemon.Status().Scheduler.State.String()
	logger.Info("delivery suspended via IPC", logging.String(logging.FieldEventType, "delivery_suspend"))
	return nil
}

func (s *service) Resume(req ResumeRequest, resp *ResumeResponse) error {
	_, logger := s.scope(req.RequestMeta)
	if err := s.daemon.Resume(); err != nil {
		resp.Message = err.Error()
	} else {
		resp.Resumed = true
		logger.Info("delivery resumed via IPC", logging.String(logging.FieldEventType, "delivery_resume"))
	}
	resp.State = s.daemon.Status().Scheduler.State.String()
	return nil
}

func (s *service) Privacy(req PrivacyRequest, resp *PrivacyResponse) error {
	_, logger := s.scope(req.RequestMeta)
	status, err := privacy.Parse(req.Status)
	if err != nil {
		return err
	}
	s.daemon.SetPrivacy(status)
	summary := s.daemon.Status().Scheduler
	resp.Status = status.String()
	resp.State = summary.State.String()
	resp.Count = summary.Count
	logger.Info("privacy status changed via IPC",
		logging.String("privacy_status", status.String()),
		logging.String(logging.FieldEventType, "privacy_change"))
	return nil
}

func (s *service) DatabaseHealth(req DatabaseHealthRequest, resp *DatabaseHealthResponse) error {
	ctx, _ := s.scope(req.RequestMeta)
	health, err := s.daemon.DatabaseHealth(ctx)
	*resp = api.FromDatabaseHealth(health)
	if err != nil && resp.Error == "" {
		resp.Error = err.Error()
	}
	return nil
}
