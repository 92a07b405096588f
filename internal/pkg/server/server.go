package server

import (
	"context"
	"net"
	"sync"
	"time"

	"robonav/internal/pkg/frame"
	"robonav/internal/pkg/handler"
	"robonav/internal/pkg/metrics"
	"robonav/internal/pkg/session"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/netutil"
)

var logger logrus.FieldLogger = logrus.StandardLogger()

// Server accepts robot connections and runs one handler per connection.
type Server struct {
	addr        string
	listener    net.Listener
	maxConns    int
	store       session.Store
	metrics     *metrics.Metrics
	logger      logrus.FieldLogger
	handlerCfgs []handler.HandlerCfg

	ready chan struct{}
	wg    sync.WaitGroup
}

// Cfg configures a Server.
type Cfg func(*Server) error

// WithAddr sets the address to listen on.
func WithAddr(addr string) Cfg {
	return func(s *Server) error {
		s.addr = addr
		return nil
	}
}

// WithListener serves on an existing listener instead of opening one.
func WithListener(l net.Listener) Cfg {
	return func(s *Server) error {
		s.listener = l
		return nil
	}
}

// WithMaxConnections caps the number of concurrently served connections.
// Connections beyond the cap wait in the accept backlog. Zero means unlimited.
func WithMaxConnections(n int) Cfg {
	return func(s *Server) error {
		if n < 0 {
			return errors.Errorf("max connections must not be negative, got %d", n)
		}
		s.maxConns = n
		return nil
	}
}

// WithSessionStore sets the session store for the server.
func WithSessionStore(store session.Store) Cfg {
	return func(s *Server) error {
		s.store = store
		return nil
	}
}

// WithMetrics sets the counters shared by all connections.
func WithMetrics(m *metrics.Metrics) Cfg {
	return func(s *Server) error {
		s.metrics = m
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Cfg {
	return func(s *Server) error {
		s.logger = l
		return nil
	}
}

// WithHandlerCfgs adds configuration applied to every connection handler.
func WithHandlerCfgs(cfgs ...handler.HandlerCfg) Cfg {
	return func(s *Server) error {
		s.handlerCfgs = append(s.handlerCfgs, cfgs...)
		return nil
	}
}

// NewServer creates a new Server with the given configuration.
func NewServer(cfgs ...Cfg) (*Server, error) {
	server := &Server{
		store:   session.NewMemoryStore(),
		metrics: &metrics.Metrics{},
		logger:  logger,
		ready:   make(chan struct{}),
	}
	for _, cfg := range cfgs {
		if err := cfg(server); err != nil {
			return nil, errors.Wrap(err, "apply Server cfg failed")
		}
	}
	return server, nil
}

// Store returns the live session registry.
func (s *Server) Store() session.Store {
	return s.store
}

// Metrics returns the server counters.
func (s *Server) Metrics() *metrics.Metrics {
	return s.metrics
}

// Addr blocks until the server is listening and returns its address.
func (s *Server) Addr(ctx context.Context) (net.Addr, error) {
	select {
	case <-s.ready:
		return s.listener.Addr(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Serve accepts connections until ctx is cancelled. In-flight sessions are
// interrupted on cancel and waited for before Serve returns.
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		l, err := net.Listen("tcp", s.addr)
		if err != nil {
			return errors.Wrapf(err, "listen on %s failed", s.addr)
		}
		s.listener = l
	}
	if s.maxConns > 0 {
		s.listener = netutil.LimitListener(s.listener, s.maxConns)
	}
	close(s.ready)
	s.logger.WithFields(logrus.Fields{
		"addr":            s.listener.Addr().String(),
		"max_connections": s.maxConns,
	}).Info("server listening")

	go func() {
		<-ctx.Done()
		if err := s.listener.Close(); err != nil {
			s.logger.WithError(err).Warn("close listener failed")
		}
	}()
	defer s.wg.Wait()

	var backoff time.Duration
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				backoff = nextBackoff(backoff)
				s.logger.WithError(err).Warnf("accept failed, retrying in %s", backoff)
				time.Sleep(backoff)
				continue
			}
			return errors.Wrap(err, "accept failed")
		}
		backoff = 0
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handle(ctx, conn)
		}()
	}
}

func nextBackoff(d time.Duration) time.Duration {
	if d == 0 {
		return 5 * time.Millisecond
	}
	if d *= 2; d > time.Second {
		return time.Second
	}
	return d
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	id := uuid.New()
	remote := conn.RemoteAddr().String()
	l := s.logger.WithFields(logrus.Fields{
		"session": id.String(),
		"remote":  remote,
	})
	defer closeConn(l, conn)

	s.metrics.IncAccepted()
	s.metrics.IncActive()
	defer s.metrics.DecActive()

	if err := s.store.New(id, remote); err != nil {
		l.WithError(err).Error("register session failed")
		return
	}
	defer func() {
		if err := s.store.Clear(id); err != nil {
			l.WithError(err).Warn("clear session failed")
		}
	}()

	l.Info("robot connected")
	cfgs := append(append([]handler.HandlerCfg(nil), s.handlerCfgs...),
		handler.WithSessionID(id),
		handler.WithSessionStore(s.store),
		handler.WithMetrics(s.metrics),
		handler.WithLogger(s.logger.WithField("remote", remote)),
	)
	h, err := handler.NewHandler(conn, cfgs...)
	if err != nil {
		l.WithError(err).Error("create handler failed")
		return
	}
	start := time.Now()
	err = h.Run(ctx)
	l = l.WithField("duration", time.Since(start).String())
	switch {
	case err == nil:
		l.Info("robot logged out")
	case errors.Is(err, context.Canceled):
		l.Info("session interrupted by shutdown")
	case errors.Is(err, frame.ErrConnectionClosed):
		l.WithField("state", h.State().Name()).Info("robot disconnected")
	default:
		l.WithError(err).WithFields(logrus.Fields{
			"fault": handler.Classify(err).String(),
			"state": h.State().Name(),
		}).Warn("session failed")
	}
}

type halfCloser interface {
	CloseRead() error
	CloseWrite() error
}

// closeConn shuts down both directions and releases conn. Failures are logged only.
func closeConn(l logrus.FieldLogger, conn net.Conn) {
	if hc, ok := conn.(halfCloser); ok {
		if err := hc.CloseWrite(); err != nil {
			l.WithError(err).Debug("close write failed")
		}
		if err := hc.CloseRead(); err != nil {
			l.WithError(err).Debug("close read failed")
		}
	}
	if err := conn.Close(); err != nil {
		l.WithError(err).Debug("close connection failed")
	}
}
