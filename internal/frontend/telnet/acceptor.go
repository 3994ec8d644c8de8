package telnet

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/fate/internal/config"
)

// SessionHandler runs the command loop for one session. It must return when
// ctx is cancelled or conn fails.
type SessionHandler interface {
	HandleSession(ctx context.Context, conn *Conn) error
}

// Acceptor accepts Telnet connections and runs each on its own goroutine.
type Acceptor struct {
	cfg     config.TelnetConfig
	handler SessionHandler
	logger  *zap.Logger

	ready chan struct{}
	wg    sync.WaitGroup

	mu       sync.Mutex
	listener net.Listener
	conns    map[string]*Conn
}

// NewAcceptor creates an Acceptor.
//
// Precondition: handler and logger must be non-nil.
func NewAcceptor(cfg config.TelnetConfig, handler SessionHandler, logger *zap.Logger) *Acceptor {
	return &Acceptor{
		cfg:     cfg,
		handler: handler,
		logger:  logger,
		ready:   make(chan struct{}),
		conns:   make(map[string]*Conn),
	}
}

// Ready is closed once the listener is bound.
func (a *Acceptor) Ready() <-chan struct{} { return a.ready }

// Addr returns the bound address, or "" before Ready.
func (a *Acceptor) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener == nil {
		return ""
	}
	return a.listener.Addr().String()
}

// Serve accepts connections until ctx is cancelled, then closes every open
// session and waits for its handler to return.
//
// Postcondition: Returns nil after a clean shutdown or the listen error.
func (a *Acceptor) Serve(ctx context.Context) error {
	lc := net.ListenConfig{}
	listener, err := lc.Listen(ctx, "tcp", a.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", a.cfg.Addr(), err)
	}
	a.mu.Lock()
	a.listener = listener
	a.mu.Unlock()
	close(a.ready)
	a.logger.Info("telnet listening", zap.String("addr", listener.Addr().String()))

	stop := context.AfterFunc(ctx, func() { listener.Close() })
	defer stop()

	for {
		raw, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			a.logger.Error("accepting connection", zap.Error(err))
			continue
		}
		conn := NewConn(raw, a.cfg.ReadTimeout, a.cfg.WriteTimeout)
		a.track(conn)
		a.wg.Add(1)
		go a.serveConn(ctx, conn)
	}

	a.mu.Lock()
	for _, c := range a.conns {
		c.Close()
	}
	a.mu.Unlock()
	a.wg.Wait()
	a.logger.Info("telnet stopped")
	return nil
}

func (a *Acceptor) track(c *Conn) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.conns[c.ID()] = c
}

func (a *Acceptor) untrack(c *Conn) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.conns, c.ID())
}

func (a *Acceptor) serveConn(ctx context.Context, conn *Conn) {
	defer a.wg.Done()
	defer a.untrack(conn)
	defer conn.Close()

	start := time.Now()
	log := a.logger.With(
		zap.String("session", conn.ID()),
		zap.String("remote_addr", conn.RemoteAddr().String()),
	)
	log.Info("client connected")

	if err := conn.Negotiate(); err != nil {
		log.Warn("telnet negotiation failed", zap.Error(err))
		return
	}
	if err := a.handler.HandleSession(ctx, conn); err != nil {
		log.Debug("session ended", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return
	}
	log.Info("session ended cleanly", zap.Duration("duration", time.Since(start)))
}
