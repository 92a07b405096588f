// Package internal holds the process environment shared by all robonav commands.
//
// Every setting is exposed both as a command line flag and as an environment variable.
// The environment variable, when set, provides the flag's default value.
package internal

import (
	"fmt"
	"os"
	"strconv"

	"robonav/internal/pkg/validate"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Environment values populated from flags and environment variables.
var (
	Env            string
	LogLevel       string
	LogFile        string
	ConfigFile     string
	Host           string
	Port           uint
	HealthPort     uint
	MaxConnections uint

	ClientUsername    string
	ClientKeyIndex    int
	ClientRechargeGap uint
	ClientSeed        int
)

// Flag describes a single setting.
type Flag struct {
	Name    string
	Env     string
	Usage   string
	Default string
	target  interface{}
}

var (
	EnvFlag = Flag{
		Name:    "env",
		Env:     "ROBONAV_ENV",
		Usage:   "deployment environment (development, test, production)",
		Default: "development",
		target:  &Env,
	}
	LogLevelFlag = Flag{
		Name:    "log-level",
		Env:     "LOG_LEVEL",
		Usage:   "log level (trace, debug, info, warn, error)",
		Default: "info",
		target:  &LogLevel,
	}
	LogFileFlag = Flag{
		Name:   "log-file",
		Env:    "LOG_FILE",
		Usage:  "write logs to a rolling file instead of stderr",
		target: &LogFile,
	}
	ConfigFileFlag = Flag{
		Name:   "config",
		Env:    "CONFIG_FILE",
		Usage:  "optional TOML configuration file",
		target: &ConfigFile,
	}
	HostFlag = Flag{
		Name:    "host",
		Env:     "HOST",
		Usage:   "host the server listens on, or the client dials",
		Default: "127.0.0.1",
		target:  &Host,
	}
	PortFlag = Flag{
		Name:    "port",
		Env:     "PORT",
		Usage:   "protocol port",
		Default: "42069",
		target:  &Port,
	}
	HealthPortFlag = Flag{
		Name:    "health-port",
		Env:     "HEALTH_PORT",
		Usage:   "port for /healthz and /metrics, 0 disables it",
		Default: "0",
		target:  &HealthPort,
	}
	MaxConnectionsFlag = Flag{
		Name:    "max-connections",
		Env:     "MAX_CONNECTIONS",
		Usage:   "maximum number of concurrent robot connections, 0 means unlimited",
		Default: "0",
		target:  &MaxConnections,
	}
	ClientUsernameFlag = Flag{
		Name:    "username",
		Env:     "CLIENT_USERNAME",
		Usage:   "username the simulated robot logs in with",
		Default: "Mnau!",
		target:  &ClientUsername,
	}
	ClientKeyIndexFlag = Flag{
		Name:    "key-index",
		Env:     "CLIENT_KEY_INDEX",
		Usage:   "secret pair index the simulated robot claims",
		Default: "0",
		target:  &ClientKeyIndex,
	}
	ClientRechargeGapFlag = Flag{
		Name:    "recharge-every",
		Env:     "CLIENT_RECHARGE_EVERY",
		Usage:   "inject a recharge cycle every N replies, 0 disables it",
		Default: "0",
		target:  &ClientRechargeGap,
	}
	ClientSeedFlag = Flag{
		Name:    "seed",
		Env:     "CLIENT_SEED",
		Usage:   "seed for the simulated robot's grid, 0 picks one at random",
		Default: "0",
		target:  &ClientSeed,
	}
)

// RegisterCommandFlags registers the given flags as persistent flags of cmd.
func RegisterCommandFlags(cmd *cobra.Command, flags []*Flag) error {
	for _, f := range flags {
		def := f.Default
		if v, ok := os.LookupEnv(f.Env); ok {
			def = v
		}
		if err := register(cmd.PersistentFlags(), f, def); err != nil {
			return errors.Wrapf(err, "register flag %s failed", f.Name)
		}
	}
	return nil
}

func register(fs *pflag.FlagSet, f *Flag, def string) error {
	usage := fmt.Sprintf("%s [$%s]", f.Usage, f.Env)
	switch t := f.target.(type) {
	case *string:
		fs.StringVar(t, f.Name, def, usage)
	case *uint:
		v, err := parseUint(def)
		if err != nil {
			return errors.Wrap(err, "parse default failed")
		}
		fs.UintVar(t, f.Name, v, usage)
	case *int:
		v, err := parseInt(def)
		if err != nil {
			return errors.Wrap(err, "parse default failed")
		}
		fs.IntVar(t, f.Name, v, usage)
	default:
		return errors.Errorf("unsupported target type %T", f.target)
	}
	return nil
}

func parseUint(s string) (uint, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(s, 10, 0)
	return uint(v), err
}

func parseInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

type environment struct {
	Env        string `validate:"oneof=development test production"`
	LogLevel   string `validate:"oneof=trace debug info warn error"`
	Port       uint   `validate:"min=1,max=65535"`
	HealthPort uint   `validate:"max=65535"`
}

// ValidateEnv checks that the populated environment is usable.
func ValidateEnv() error {
	env := environment{
		Env:        Env,
		LogLevel:   LogLevel,
		Port:       Port,
		HealthPort: HealthPort,
	}
	if err := validate.Validate().Struct(env); err != nil {
		return errors.Wrap(err, "invalid environment")
	}
	return nil
}
