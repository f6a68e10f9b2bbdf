// Package tcp implements the terminal-facing side of the bank server: a
// listening acceptor and the per-connection session state machine.
package tcp

import (
	"context"
	"net"

	"github.com/sbayu21/Secure-banking-system/internal/keys"
	"github.com/sbayu21/Secure-banking-system/internal/logging"
	"github.com/sbayu21/Secure-banking-system/internal/server/accounts"
)

// Server accepts terminal connections and runs one session per connection.
type Server struct {
	address    string
	accounts   *accounts.Service
	ring       *keys.Ring
	amountMode string
	logger     logging.Logger
}

func NewServer(address string, l logging.Logger, svc *accounts.Service, ring *keys.Ring, amountMode string) *Server {
	return &Server{
		address:    address,
		accounts:   svc,
		ring:       ring,
		amountMode: amountMode,
		logger:     l.With("module", "tcp_server"),
	}
}

// Run listens on the configured address and serves until ctx is cancelled.
// Each accepted connection gets its own goroutine; there is no connection
// limit and no backpressure, so a flood of peers means a flood of
// goroutines. Known scalability gap.
func (s *Server) Run(ctx context.Context) error {

	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping TCP server...")
		listen.Close()
	}()

	s.logger.Info(ctx, "Starting TCP server", "address", s.address)

	for {
		conn, err := listen.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		go s.Handle(ctx, conn)
	}
}

// Handle runs one session on conn. Exported so tests can drive sessions
// over net.Pipe without a listener.
func (s *Server) Handle(ctx context.Context, conn net.Conn) {
	sess := newSession(conn, s.accounts, s.ring, s.amountMode, s.logger)
	sess.run(ctx)
}
