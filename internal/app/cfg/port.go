// Package cfg implements functionality to configure an app.
//
// The configuration objects defined here need only be implemented once,
// but can be applied to multiple types.
//
// In order to add support for a new type, the configuration
// need only implement an ApplyX method.
package cfg

import (
	"robonav/internal"
	"robonav/internal/app/apps"
)

// AddrCfg is configuration for the protocol address.
type AddrCfg struct {
	host string
	port uint16
}

// NewAddrCfg creates a new AddrCfg from the given host and port.
func NewAddrCfg(host string, port uint16) *AddrCfg {
	return &AddrCfg{
		host: host,
		port: port,
	}
}

// AddrFromEnv creates a new AddrCfg from the current environment.
func AddrFromEnv() *AddrCfg {
	return &AddrCfg{
		host: internal.Host,
		port: uint16(internal.Port),
	}
}

func (cfg AddrCfg) apply(host *string, port *uint16) {
	if cfg.host != "" {
		*host = cfg.host
	}
	if cfg.port != 0 {
		*port = cfg.port
	}
}

// ApplyClientApp applies the AddrCfg to a ClientApp.
func (cfg AddrCfg) ApplyClientApp(app *apps.ClientApp) error {
	cfg.apply(&app.Host, &app.Port)
	return nil
}

// ApplyServerApp applies the AddrCfg to a ServerApp.
func (cfg AddrCfg) ApplyServerApp(app *apps.ServerApp) error {
	cfg.apply(&app.Host, &app.Port)
	return nil
}
