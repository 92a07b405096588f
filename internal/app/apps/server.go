package apps

import (
	"context"
	"net"
	"strconv"
	"sync"
	"time"

	"robonav/internal"
	"robonav/internal/pkg/handler"
	"robonav/internal/pkg/message"
	"robonav/internal/pkg/server"
	"robonav/internal/pkg/validate"

	"github.com/pkg/errors"
)

// Charging violation policies.
const (
	ChargingViolationLoginFailed = "login_failed"
	ChargingViolationLogicError  = "logic_error"
)

// ServerAppCfg configures a ServerApp.
type ServerAppCfg interface {
	ApplyServerApp(*ServerApp) error
}

// ServerApp is the robot navigation server application.
type ServerApp struct {
	Host              string        `validate:"required"`
	Port              uint16        `validate:"required"`
	HealthPort        uint16        `validate:"nefield=Port"`
	MaxConnections    int           `validate:"min=0"`
	NormalTimeout     time.Duration `validate:"gt=0"`
	RefillingTimeout  time.Duration `validate:"gtefield=NormalTimeout"`
	ChargingViolation string        `validate:"oneof=login_failed logic_error"`

	// ready, when set, receives the protocol server once it is created.
	ready chan<- *server.Server
}

// NewServerApp creates a new ServerApp.
func NewServerApp(cfgs ...ServerAppCfg) (*ServerApp, error) {
	app := &ServerApp{
		Host:              "127.0.0.1",
		NormalTimeout:     handler.DefaultTimeouts.Normal,
		RefillingTimeout:  handler.DefaultTimeouts.Refilling,
		ChargingViolation: ChargingViolationLoginFailed,
	}
	for _, cfg := range cfgs {
		if err := cfg.ApplyServerApp(app); err != nil {
			return nil, errors.Wrap(err, "apply ServerApp cfg failed")
		}
	}
	if app.Port == 0 {
		app.Port = uint16(internal.Port)
	}
	if err := validate.Validate().Struct(app); err != nil {
		return nil, errors.Wrap(err, "validate ServerApp failed")
	}
	return app, nil
}

func (app *ServerApp) chargingViolationKind() message.ServerKind {
	if app.ChargingViolation == ChargingViolationLogicError {
		return message.LogicError
	}
	return message.LoginFailed
}

// Run serves robots until ctx is cancelled.
func (app *ServerApp) Run(ctx context.Context, _ []string) error {
	s, err := server.NewServer(
		server.WithAddr(net.JoinHostPort(app.Host, strconv.Itoa(int(app.Port)))),
		server.WithMaxConnections(app.MaxConnections),
		server.WithHandlerCfgs(
			handler.WithTimeouts(handler.Timeouts{
				Normal:    app.NormalTimeout,
				Refilling: app.RefillingTimeout,
			}),
			handler.WithChargingViolation(app.chargingViolationKind()),
		),
	)
	if err != nil {
		return errors.Wrap(err, "create server failed")
	}
	if app.ready != nil {
		app.ready <- s
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	errs := make(chan error, 2)
	var wg sync.WaitGroup
	if app.HealthPort != 0 {
		l, err := net.Listen("tcp", net.JoinHostPort(app.Host, strconv.Itoa(int(app.HealthPort))))
		if err != nil {
			return errors.Wrap(err, "listen for health failed")
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.ServeHealth(ctx, l); err != nil {
				errs <- err
				cancel()
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := s.Serve(ctx); err != nil {
			errs <- errors.Wrap(err, "serve failed")
			cancel()
		}
	}()
	wg.Wait()
	close(errs)
	return <-errs
}
