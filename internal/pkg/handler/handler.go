// Package handler drives the robot protocol over one connection.
package handler

import (
	"context"
	"io"
	"sync/atomic"
	"time"

	"robonav/internal/pkg/frame"
	"robonav/internal/pkg/log"
	"robonav/internal/pkg/message"
	"robonav/internal/pkg/metrics"
	"robonav/internal/pkg/session"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var logger logrus.FieldLogger = logrus.StandardLogger()

// Conn is the transport a handler runs on. net.Conn satisfies it.
type Conn interface {
	io.Reader
	io.Writer
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
}

// Timeouts are the per-read and per-write deadlines.
type Timeouts struct {
	Normal    time.Duration
	Refilling time.Duration
}

// DefaultTimeouts are used unless WithTimeouts overrides them.
var DefaultTimeouts = Timeouts{
	Normal:    time.Second,
	Refilling: 5 * time.Second,
}

// deadlineConn arms a fresh deadline before every read and write.
type deadlineConn struct {
	Conn
	timeout     time.Duration
	now         func() time.Time
	interrupted atomic.Bool
}

func (c *deadlineConn) Read(p []byte) (int, error) {
	if err := c.Conn.SetReadDeadline(c.now().Add(c.timeout)); err != nil {
		return 0, err
	}
	// checked after arming so that a concurrent interrupt is never overwritten
	if c.interrupted.Load() {
		return 0, context.Canceled
	}
	return c.Conn.Read(p)
}

// interrupt fails the pending read and every later one.
func (c *deadlineConn) interrupt() error {
	c.interrupted.Store(true)
	return c.Conn.SetReadDeadline(time.Now())
}

func (c *deadlineConn) Write(p []byte) (int, error) {
	if err := c.Conn.SetWriteDeadline(c.now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Write(p)
}

// Handler runs one robot session to completion.
type Handler struct {
	id                uuid.UUID
	conn              *deadlineConn
	reader            *frame.Reader
	store             session.Store
	metrics           *metrics.Metrics
	logger            logrus.FieldLogger
	timeouts          Timeouts
	chargingViolation message.ServerKind
	state             session.State
}

// HandlerCfg configures a Handler.
type HandlerCfg func(*Handler) error

// WithSessionStore sets the store the handler reports its phase to.
// The session must already have been created under the handler's id.
func WithSessionStore(store session.Store) HandlerCfg {
	return func(h *Handler) error {
		h.store = store
		return nil
	}
}

// WithSessionID sets the session id.
func WithSessionID(id uuid.UUID) HandlerCfg {
	return func(h *Handler) error {
		h.id = id
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) HandlerCfg {
	return func(h *Handler) error {
		if l == nil {
			return errors.New("logger is nil")
		}
		h.logger = l
		return nil
	}
}

// WithTimeouts sets the normal and refilling deadlines.
func WithTimeouts(t Timeouts) HandlerCfg {
	return func(h *Handler) error {
		if t.Normal <= 0 || t.Refilling <= 0 {
			return errors.Errorf("timeouts must be positive, got %s and %s", t.Normal, t.Refilling)
		}
		h.timeouts = t
		return nil
	}
}

// WithChargingViolation sets the reply sent when the recharge protocol is broken.
func WithChargingViolation(kind message.ServerKind) HandlerCfg {
	return func(h *Handler) error {
		if kind != message.LoginFailed && kind != message.LogicError {
			return errors.Errorf("charging violation reply must be %s or %s, got %s",
				message.LoginFailed, message.LogicError, kind)
		}
		h.chargingViolation = kind
		return nil
	}
}

// WithMetrics sets the counters the handler updates.
func WithMetrics(m *metrics.Metrics) HandlerCfg {
	return func(h *Handler) error {
		h.metrics = m
		return nil
	}
}

// NewHandler creates a handler for conn.
func NewHandler(conn Conn, cfgs ...HandlerCfg) (*Handler, error) {
	h := &Handler{
		id:                uuid.New(),
		metrics:           &metrics.Metrics{},
		logger:            logger,
		timeouts:          DefaultTimeouts,
		chargingViolation: message.LoginFailed,
		state:             session.Initial(),
	}
	for _, cfg := range cfgs {
		if err := cfg(h); err != nil {
			return nil, errors.Wrap(err, "apply handler cfg failed")
		}
	}
	h.logger = h.logger.WithField("session", h.id.String())
	h.conn = &deadlineConn{Conn: conn, timeout: h.timeouts.Normal, now: time.Now}
	h.reader = frame.NewReader(h.conn)
	return h, nil
}

// ID returns the session id.
func (h *Handler) ID() uuid.UUID {
	return h.id
}

// State returns the current session state.
func (h *Handler) State() session.State {
	return h.state
}

// Run exchanges messages until the secret has been delivered or the session
// fails. A protocol failure is announced to the robot before it is returned.
// Cancelling ctx interrupts a blocked read.
func (h *Handler) Run(ctx context.Context) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			if err := h.conn.interrupt(); err != nil {
				h.logger.WithError(err).Debug("interrupt read failed")
			}
		case <-stop:
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		body, err := h.reader.Read(h.state.MaxLen())
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return h.fail(errors.Wrapf(err, "read frame in %s failed", h.state.Name()))
		}
		msg, err := message.Parse(body, h.state.Expect())
		if err != nil {
			return h.fail(errors.Wrapf(err, "parse %q failed", body))
		}
		h.logger.WithFields(log.ClientMessageToFields(msg)).Debug("received message")

		res, err := session.Next(h.state, msg)
		if err != nil {
			return h.fail(errors.Wrapf(err, "handle message in %s failed", h.state.Name()))
		}
		h.observe(res)
		h.state = res.State
		h.logger.WithFields(log.StateToFields(h.state)).Trace("transitioned")
		switch res.Timeout {
		case session.TimeoutNormal:
			h.conn.timeout = h.timeouts.Normal
		case session.TimeoutRefilling:
			h.conn.timeout = h.timeouts.Refilling
		}
		if h.store != nil {
			if err := h.store.Set(h.id, h.state); err != nil {
				return errors.Wrap(err, "set session failed")
			}
		}
		for _, reply := range res.Replies {
			if err := h.send(reply); err != nil {
				return h.fail(err)
			}
		}
		if res.Done {
			h.logger.WithField("secret", res.Secret).Info("secret retrieved")
			return nil
		}
	}
}

func (h *Handler) observe(res session.Result) {
	switch st := res.State.(type) {
	case session.Charging:
		if _, ok := h.state.(session.Charging); !ok {
			h.metrics.IncRecharge()
			h.logger.WithField("suspended", st.Previous.Name()).Debug("robot recharging")
		}
	case session.Navigating:
		if _, ok := h.state.(session.AwaitingConfirmation); ok {
			h.metrics.IncLoginOK()
			h.logger.Info("robot authenticated")
		}
	}
	if res.Done {
		h.metrics.IncSecret()
	}
}

func (h *Handler) send(msg message.Server) error {
	if err := frame.Write(h.conn, msg.Body()); err != nil {
		return errors.Wrapf(err, "send %s failed", msg.Kind)
	}
	h.logger.WithFields(log.ServerMessageToFields(msg)).Debug("sent message")
	return nil
}

// fail records err and announces it to the robot when the channel is still usable.
func (h *Handler) fail(err error) error {
	fault := Classify(err)
	h.metrics.IncError(fault.String())
	if fault == FaultLoginFailed {
		h.metrics.IncLoginFailed()
	}
	resp, ok := Response(err, h.chargingViolation)
	if !ok {
		return err
	}
	if sendErr := h.send(resp); sendErr != nil {
		h.logger.WithError(sendErr).Warn("send error response failed")
	}
	return err
}
