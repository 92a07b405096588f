package apps

import (
	"context"
	"math/rand"
	"net"
	"strconv"
	"time"

	"robonav/internal"
	"robonav/internal/pkg/client"
	"robonav/internal/pkg/validate"
	"robonav/internal/pkg/world"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var logger logrus.FieldLogger = logrus.StandardLogger()

// ClientAppCfg configures a ClientApp.
type ClientAppCfg interface {
	ApplyClientApp(*ClientApp) error
}

// ClientApp is the simulated robot application.
type ClientApp struct {
	Host          string `validate:"required"`
	Port          uint16 `validate:"required"`
	Username      string `validate:"required,max=18"`
	KeyIndex      int
	RechargeEvery int   `validate:"min=0"`
	Seed          int64 `validate:"min=0"`
	Radius        int   `validate:"min=1,max=1000"`
	Obstacles     int   `validate:"min=0"`
}

// NewClientApp creates a new ClientApp.
func NewClientApp(cfgs ...ClientAppCfg) (*ClientApp, error) {
	app := &ClientApp{
		Host:      "127.0.0.1",
		Username:  "Mnau!",
		Radius:    10,
		Obstacles: 8,
	}
	for _, cfg := range cfgs {
		if err := cfg.ApplyClientApp(app); err != nil {
			return nil, errors.Wrap(err, "apply ClientApp cfg failed")
		}
	}
	if app.Port == 0 {
		app.Port = uint16(internal.Port)
	}
	if err := validate.Validate().Struct(app); err != nil {
		return nil, errors.Wrap(err, "validate ClientApp failed")
	}
	return app, nil
}

// Run plays one robot session against the server.
func (app *ClientApp) Run(ctx context.Context, _ []string) error {
	seed := app.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	w := world.Random(rand.New(rand.NewSource(seed)), app.Radius, app.Obstacles) // nolint: gosec // simulation only
	logger.WithFields(logrus.Fields{
		"seed":     seed,
		"start":    w.Position().String(),
		"heading":  w.Heading().String(),
		"username": app.Username,
	}).Info("robot starting")

	c, err := client.NewClient(
		client.WithServerAddr(net.JoinHostPort(app.Host, strconv.Itoa(int(app.Port)))),
		client.WithUsername(app.Username),
		client.WithKeyIndex(app.KeyIndex),
		client.WithRechargeEvery(app.RechargeEvery),
		client.WithWorld(w),
	)
	if err != nil {
		return errors.Wrap(err, "create client failed")
	}
	if err := c.Connect(ctx); err != nil {
		return errors.Wrap(err, "connect client failed")
	}
	defer func() {
		if err := c.Close(); err != nil {
			logger.WithError(err).Debug("close client failed")
		}
	}()
	if err := c.Run(ctx); err != nil {
		return errors.Wrap(err, "run client failed")
	}
	return nil
}
