package cfg

import (
	"bytes"
	"os"
	"time"

	"robonav/internal/app/apps"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// FileCfg is configuration loaded from a TOML file. Keys left out of the
// file leave the app's current value untouched.
type FileCfg struct {
	Host              *string `toml:"host"`
	Port              *uint16 `toml:"port"`
	HealthPort        *uint16 `toml:"health_port"`
	MaxConnections    *int    `toml:"max_connections"`
	NormalTimeout     *string `toml:"normal_timeout"`
	RefillingTimeout  *string `toml:"refilling_timeout"`
	ChargingViolation *string `toml:"charging_violation"`
}

// LoadFile reads a FileCfg from path.
func LoadFile(path string) (*FileCfg, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s failed", path)
	}
	return ParseFile(b)
}

// ParseFile decodes a FileCfg from TOML. Unknown keys are rejected.
func ParseFile(b []byte) (*FileCfg, error) {
	var cfg FileCfg
	dec := toml.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config failed")
	}
	return &cfg, nil
}

func parseDuration(key string, s *string, dst *time.Duration) error {
	if s == nil {
		return nil
	}
	d, err := time.ParseDuration(*s)
	if err != nil {
		return errors.Wrapf(err, "parse %s failed", key)
	}
	*dst = d
	return nil
}

// ApplyServerApp applies the FileCfg to a ServerApp.
func (cfg FileCfg) ApplyServerApp(app *apps.ServerApp) error {
	if cfg.Host != nil {
		app.Host = *cfg.Host
	}
	if cfg.Port != nil {
		app.Port = *cfg.Port
	}
	if cfg.HealthPort != nil {
		app.HealthPort = *cfg.HealthPort
	}
	if cfg.MaxConnections != nil {
		app.MaxConnections = *cfg.MaxConnections
	}
	if cfg.ChargingViolation != nil {
		app.ChargingViolation = *cfg.ChargingViolation
	}
	if err := parseDuration("normal_timeout", cfg.NormalTimeout, &app.NormalTimeout); err != nil {
		return err
	}
	return parseDuration("refilling_timeout", cfg.RefillingTimeout, &app.RefillingTimeout)
}

// ApplyClientApp applies the FileCfg to a ClientApp.
func (cfg FileCfg) ApplyClientApp(app *apps.ClientApp) error {
	if cfg.Host != nil {
		app.Host = *cfg.Host
	}
	if cfg.Port != nil {
		app.Port = *cfg.Port
	}
	return nil
}
