package cfg

import (
	"robonav/internal"
	"robonav/internal/app/apps"
)

// ServerCfg is configuration for the server's auxiliary listeners and limits.
type ServerCfg struct {
	healthPort     uint16
	maxConnections int
}

// NewServerCfg creates a new ServerCfg.
func NewServerCfg(healthPort uint16, maxConnections int) *ServerCfg {
	return &ServerCfg{
		healthPort:     healthPort,
		maxConnections: maxConnections,
	}
}

// ServerFromEnv creates a new ServerCfg from the current environment.
func ServerFromEnv() *ServerCfg {
	return NewServerCfg(uint16(internal.HealthPort), int(internal.MaxConnections))
}

// ApplyServerApp applies the ServerCfg to a ServerApp.
func (cfg ServerCfg) ApplyServerApp(app *apps.ServerApp) error {
	app.HealthPort = cfg.healthPort
	app.MaxConnections = cfg.maxConnections
	return nil
}

// RobotCfg is configuration for the simulated robot.
type RobotCfg struct {
	username      string
	keyIndex      int
	rechargeEvery int
	seed          int64
}

// NewRobotCfg creates a new RobotCfg.
func NewRobotCfg(username string, keyIndex, rechargeEvery int, seed int64) *RobotCfg {
	return &RobotCfg{
		username:      username,
		keyIndex:      keyIndex,
		rechargeEvery: rechargeEvery,
		seed:          seed,
	}
}

// RobotFromEnv creates a new RobotCfg from the current environment.
func RobotFromEnv() *RobotCfg {
	return NewRobotCfg(
		internal.ClientUsername,
		internal.ClientKeyIndex,
		int(internal.ClientRechargeGap),
		int64(internal.ClientSeed),
	)
}

// ApplyClientApp applies the RobotCfg to a ClientApp.
func (cfg RobotCfg) ApplyClientApp(app *apps.ClientApp) error {
	if cfg.username != "" {
		app.Username = cfg.username
	}
	app.KeyIndex = cfg.keyIndex
	app.RechargeEvery = cfg.rechargeEvery
	app.Seed = cfg.seed
	return nil
}
