// Package transport is the ambient TCP front door spec.md §1 keeps out of
// core scope: it accepts connections, frames requests and responses with
// wire.ReadFrame/WriteFrame and rpcfacade.Decode/Encode, and hands each
// decoded Request to a kernel.Kernel. Grounded on the teacher's
// coreengine/grpc/server.go GracefulServer lifecycle (Start/StartBackground/
// GracefulStop), translated from a gRPC listener to a raw length-prefixed
// TCP one since spec.md §6 defines its own framing rather than reusing
// gRPC/HTTP2.
package transport

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jeeves-cluster-organization/missionrpc/activity"
	"github.com/jeeves-cluster-organization/missionrpc/kernel"
	"github.com/jeeves-cluster-organization/missionrpc/logging"
	"github.com/jeeves-cluster-organization/missionrpc/rpcfacade"
	"github.com/jeeves-cluster-organization/missionrpc/wire"
)

// Server accepts TCP connections and drives each one's requests through a
// kernel.Kernel, one connection per client id.
type Server struct {
	logger  logging.Logger
	kernel  *kernel.Kernel
	address string

	shutdownMu sync.Mutex
	isShutdown bool
	listener   net.Listener
}

// NewServer creates a Server that will listen on address once started.
func NewServer(logger logging.Logger, k *kernel.Kernel, address string) *Server {
	return &Server{logger: logger, kernel: k, address: address}
}

// Start listens and serves connections until ctx is cancelled, then closes
// the listener and returns ctx.Err(). It blocks the calling goroutine.
func (s *Server) Start(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.listener = lis
	if s.logger != nil {
		s.logger.Info("transport_started", "address", s.address)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.acceptLoop(lis)
	}()

	select {
	case <-ctx.Done():
		s.Stop()
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// StartBackground starts Start in a goroutine and returns immediately,
// mirroring the teacher's GracefulServer.StartBackground.
func (s *Server) StartBackground(ctx context.Context) <-chan error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.Start(ctx) }()
	return errCh
}

// Stop closes the listener, ending acceptLoop. Safe to call more than
// once or concurrently with Start.
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	defer s.shutdownMu.Unlock()
	if s.isShutdown || s.listener == nil {
		return
	}
	s.isShutdown = true
	s.listener.Close()
	if s.logger != nil {
		s.logger.Info("transport_stopped", "address", s.address)
	}
}

func (s *Server) acceptLoop(lis net.Listener) error {
	for {
		conn, err := lis.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			shuttingDown := s.isShutdown
			s.shutdownMu.Unlock()
			if shuttingDown {
				return nil
			}
			return err
		}
		go s.serveConn(conn)
	}
}

func (s *Server) serveConn(conn net.Conn) {
	clientID := uuid.NewString()
	defer conn.Close()
	defer s.kernel.Disconnect(clientID)

	s.kernel.Connect(clientID)
	if s.logger != nil {
		s.logger.Info("client_connected", "client_id", clientID, "remote", conn.RemoteAddr().String())
	}

	reader := bufio.NewReader(conn)
	currentContext := activity.Flight

	for {
		payload, err := wire.ReadFrame(reader)
		if err != nil {
			if s.logger != nil {
				s.logger.Debug("client_disconnected", "client_id", clientID, "reason", err.Error())
			}
			return
		}

		req, err := rpcfacade.DecodeRequest(payload)
		if err != nil {
			resp := rpcfacade.Response{Time: float64(time.Now().UnixNano()) / 1e9, Error: err.Error()}
			if writeErr := wire.WriteFrame(conn, rpcfacade.EncodeResponse(resp)); writeErr != nil {
				return
			}
			continue
		}

		resp := s.kernel.Call(clientID, currentContext, req)
		if err := wire.WriteFrame(conn, rpcfacade.EncodeResponse(resp)); err != nil {
			return
		}
	}
}
