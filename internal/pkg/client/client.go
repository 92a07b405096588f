package client

import (
	"context"
	"net"
	"time"

	"robonav/internal/pkg/checksum"
	"robonav/internal/pkg/frame"
	"robonav/internal/pkg/log"
	"robonav/internal/pkg/message"
	"robonav/internal/pkg/nav"
	"robonav/internal/pkg/world"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var logger logrus.FieldLogger = logrus.StandardLogger()

// DefaultSecret is what the robot finds at the origin unless WithSecret overrides it.
const DefaultSecret = "Tajny vzkaz."

// Client is a simulated robot that logs in and follows the server's commands
// across a World.
type Client struct {
	serverAddr    string
	username      string
	keyIndex      int
	secret        string
	rechargeEvery int
	timeout       time.Duration
	world         *world.World

	conn     net.Conn
	reader   *frame.Reader
	commands int
	done     bool
}

// Cfg configures a Client.
type Cfg func(*Client) error

// WithServerAddr sets the server address to connect to.
func WithServerAddr(addr string) Cfg {
	return func(c *Client) error {
		c.serverAddr = addr
		return nil
	}
}

// WithConn runs the client over an established connection.
func WithConn(conn net.Conn) Cfg {
	return func(c *Client) error {
		c.conn = conn
		return nil
	}
}

// WithUsername sets the login name.
func WithUsername(name string) Cfg {
	return func(c *Client) error {
		if len(name) > message.KindUsername.MaxLen()-2 {
			return errors.Errorf("username %q longer than %d bytes", name, message.KindUsername.MaxLen()-2)
		}
		c.username = name
		return nil
	}
}

// WithKeyIndex sets the secret pair index the robot claims.
func WithKeyIndex(i int) Cfg {
	return func(c *Client) error {
		c.keyIndex = i
		return nil
	}
}

// WithSecret sets the message the robot finds at the origin.
func WithSecret(secret string) Cfg {
	return func(c *Client) error {
		if len(secret) > message.KindSecret.MaxLen()-2 {
			return errors.Errorf("secret longer than %d bytes", message.KindSecret.MaxLen()-2)
		}
		c.secret = secret
		return nil
	}
}

// WithRechargeEvery makes the robot recharge before answering every n-th command.
func WithRechargeEvery(n int) Cfg {
	return func(c *Client) error {
		if n < 0 {
			return errors.Errorf("recharge interval must not be negative, got %d", n)
		}
		c.rechargeEvery = n
		return nil
	}
}

// WithTimeout bounds every exchange with the server.
func WithTimeout(d time.Duration) Cfg {
	return func(c *Client) error {
		c.timeout = d
		return nil
	}
}

// WithWorld sets the grid the robot moves across.
func WithWorld(w *world.World) Cfg {
	return func(c *Client) error {
		c.world = w
		return nil
	}
}

// NewClient creates a new Client with the given configuration.
func NewClient(cfgs ...Cfg) (*Client, error) {
	client := &Client{
		username: "Mnau!",
		secret:   DefaultSecret,
		timeout:  10 * time.Second,
	}
	for _, cfg := range cfgs {
		if err := cfg(client); err != nil {
			return nil, errors.Wrap(err, "apply Client cfg failed")
		}
	}
	if client.world == nil {
		client.world = world.New(nav.Position{X: 3, Y: -2}, nav.North)
	}
	return client, nil
}

// World returns the grid the robot moves across.
func (c *Client) World() *world.World {
	return c.world
}

// Connect establishes the connection to the server.
func (c *Client) Connect(ctx context.Context) error {
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			return errors.Wrap(err, "close client connection failed")
		}
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.serverAddr)
	if err != nil {
		return errors.Wrapf(err, "connect to %s failed", c.serverAddr)
	}
	c.conn = conn
	return nil
}

// Close releases the connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return errors.Wrap(c.conn.Close(), "close client connection failed")
}

func (c *Client) send(msg message.Client) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return errors.Wrap(err, "set write deadline failed")
	}
	if _, err := c.conn.Write(message.Encode(msg)); err != nil {
		return errors.Wrapf(err, "send %s failed", msg.Kind())
	}
	logger.WithFields(log.ClientMessageToFields(msg)).Debug("sent message")
	return nil
}

func (c *Client) recv() (message.Server, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return message.Server{}, errors.Wrap(err, "set read deadline failed")
	}
	body, err := c.reader.Read(message.KindSecret.MaxLen())
	if err != nil {
		return message.Server{}, errors.Wrap(err, "read frame failed")
	}
	msg, err := message.ParseServer(body)
	if err != nil {
		return message.Server{}, errors.Wrap(err, "parse server message failed")
	}
	logger.WithFields(log.ServerMessageToFields(msg)).Debug("received message")
	switch msg.Kind {
	case message.LoginFailed, message.SyntaxError, message.LogicError, message.KeyOutOfRange:
		return msg, &ServerError{Kind: msg.Kind}
	}
	return msg, nil
}

func (c *Client) expect(kind message.ServerKind) (message.Server, error) {
	msg, err := c.recv()
	if err != nil {
		return msg, err
	}
	if msg.Kind != kind {
		return msg, errors.Wrapf(ErrUnexpectedMessage, "expected %s, got %s", kind, msg.Kind)
	}
	return msg, nil
}

// login authenticates and verifies that the server holds the same secret pair.
func (c *Client) login() error {
	if err := c.send(message.Username{Name: c.username}); err != nil {
		return err
	}
	if _, err := c.expect(message.KeyRequest); err != nil {
		return errors.Wrap(err, "await key request failed")
	}
	if err := c.send(message.KeyIndex{Index: c.keyIndex}); err != nil {
		return err
	}
	confirm, err := c.expect(message.Confirm)
	if err != nil {
		return errors.Wrap(err, "await confirmation failed")
	}
	pair, ok := checksum.Lookup(c.keyIndex)
	if !ok {
		return errors.Wrapf(ErrServerHashMismatch, "server accepted unknown key index %d", c.keyIndex)
	}
	server, client := checksum.LoginHash(c.username, pair)
	if confirm.Hash != server {
		return errors.Wrapf(ErrServerHashMismatch, "expected %d, got %d", server, confirm.Hash)
	}
	if err := c.send(message.Confirmation{Hash: int(client)}); err != nil {
		return err
	}
	if _, err := c.expect(message.OK); err != nil {
		return errors.Wrap(err, "await login result failed")
	}
	return nil
}

// report answers a command with the robot's position, recharging first when due.
func (c *Client) report() error {
	c.commands++
	if c.rechargeEvery > 0 && c.commands%c.rechargeEvery == 0 {
		if err := c.send(message.Recharging{}); err != nil {
			return err
		}
		if err := c.send(message.FullPower{}); err != nil {
			return err
		}
	}
	p := c.world.Position()
	return c.send(message.Position{X: p.X, Y: p.Y})
}

// Run logs in, follows commands until the secret is requested, hands it over
// and waits for LOGOUT.
func (c *Client) Run(ctx context.Context) error {
	if c.conn == nil {
		return ErrNotConnected
	}
	c.reader = frame.NewReader(c.conn)
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = c.conn.SetDeadline(time.Now())
		case <-stop:
		}
	}()

	if err := c.login(); err != nil {
		return errors.Wrap(err, "login failed")
	}
	logger.WithField("username", c.username).Info("logged in")
	for {
		msg, err := c.recv()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return errors.Wrap(err, "await command failed")
		}
		switch msg.Kind {
		case message.Move:
			c.world.Apply(nav.Move)
		case message.TurnLeft:
			c.world.Apply(nav.TurnLeft)
		case message.TurnRight:
			c.world.Apply(nav.TurnRight)
		case message.GetMessage:
			return c.finish()
		default:
			return errors.Wrapf(ErrUnexpectedMessage, "got %s while navigating", msg.Kind)
		}
		if err := c.report(); err != nil {
			return err
		}
	}
}

func (c *Client) finish() error {
	if p := c.world.Position(); p != nav.Origin {
		return errors.Wrapf(ErrNotAtOrigin, "robot at %s", p)
	}
	if err := c.send(message.Secret{Text: c.secret}); err != nil {
		return err
	}
	if _, err := c.expect(message.Logout); err != nil {
		return errors.Wrap(err, "await logout failed")
	}
	c.done = true
	logger.WithFields(logrus.Fields{
		"moves":    c.world.Moves,
		"turns":    c.world.Turns,
		"blocked":  c.world.Blocked,
		"commands": c.commands,
	}).Info("secret delivered")
	return nil
}

// Done reports whether the secret was delivered and the server logged the robot out.
func (c *Client) Done() bool {
	return c.done
}
