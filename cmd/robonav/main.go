// Package main is the robonav application entrypoint.
package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"robonav/internal"
	"robonav/internal/app/apps"
	"robonav/internal/app/cfg"
	"robonav/internal/pkg/log"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// CLI command definitions.
var (
	logger logrus.FieldLogger = logrus.StandardLogger()

	logCloser io.Closer

	rootCmd = &cobra.Command{
		Use:          "robonav",
		Short:        "Guides remote robots to the origin and collects their secrets.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	clientCmd = &cobra.Command{
		Use:   "client",
		Short: "Runs a simulated robot against a robonav server.",
		Args:  cobra.NoArgs,
		RunE:  runCmd,
	}

	serverCmd = &cobra.Command{
		Use:   "server",
		Short: "Starts a robonav server.",
		Args:  cobra.NoArgs,
		RunE:  runCmd,
	}
)

func newApp(_ context.Context, cmd *cobra.Command, args []string) (apps.App, []string, error) {
	var file *cfg.FileCfg
	if internal.ConfigFile != "" {
		var err error
		file, err = cfg.LoadFile(internal.ConfigFile)
		if err != nil {
			return nil, nil, errors.Wrap(err, "load config file failed")
		}
	}
	switch cmd.Name() {
	case "client":
		cfgs := []apps.ClientAppCfg{cfg.AddrFromEnv(), cfg.RobotFromEnv()}
		if file != nil {
			cfgs = append(cfgs, file)
		}
		app, err := apps.NewClientApp(cfgs...)
		if err != nil {
			return nil, nil, errors.Wrap(err, "new client app failed")
		}
		return app, append([]string{cmd.Name()}, args...), nil
	case "server":
		cfgs := []apps.ServerAppCfg{cfg.AddrFromEnv(), cfg.ServerFromEnv()}
		if file != nil {
			cfgs = append(cfgs, file)
		}
		app, err := apps.NewServerApp(cfgs...)
		if err != nil {
			return nil, nil, errors.Wrap(err, "new server app failed")
		}
		return app, append([]string{cmd.Name()}, args...), nil
	default:
		return nil, nil, fmt.Errorf("unknown command: %s", cmd.Name())
	}
}

func runCmd(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	if err := chainedCheck(
		ctx,
		envCheck,
		logCheck,
	); err != nil {
		return errors.Wrap(err, "chained check failed")
	}
	defer func() {
		if err := logCloser.Close(); err != nil {
			logger.WithError(err).Warn("close log file failed")
		}
	}()
	app, args, err := newApp(ctx, cmd, args)
	if err != nil {
		return errors.Wrapf(err, "new %s app failed", cmd.Name())
	}
	return errors.Wrap(app.Run(ctx, args), "run app failed")
}

func envCheck(context.Context) error {
	if err := internal.ValidateEnv(); err != nil {
		return errors.Wrap(err, "validate env failed")
	}
	log.SetLogger(internal.LogLevel)
	return nil
}

func logCheck(context.Context) error {
	logCloser = log.SetOutput(internal.LogFile)
	return nil
}

func chainedCheck(ctx context.Context, checks ...func(context.Context) error) error {
	for _, check := range checks {
		err := check(ctx)
		if err != nil {
			return err
		}
	}
	return nil
}

func init() {
	err := internal.RegisterCommandFlags(rootCmd, []*internal.Flag{
		&internal.EnvFlag,
		&internal.LogLevelFlag,
		&internal.LogFileFlag,
		&internal.ConfigFileFlag,

		&internal.HostFlag,
		&internal.PortFlag,
	})
	if err != nil {
		logger.Fatalln(err)
	}

	err = internal.RegisterCommandFlags(clientCmd, []*internal.Flag{
		&internal.ClientUsernameFlag,
		&internal.ClientKeyIndexFlag,
		&internal.ClientRechargeGapFlag,
		&internal.ClientSeedFlag,
	})
	if err != nil {
		logger.Fatalln(err)
	}

	err = internal.RegisterCommandFlags(serverCmd, []*internal.Flag{
		&internal.HealthPortFlag,
		&internal.MaxConnectionsFlag,
	})
	if err != nil {
		logger.Fatalln(err)
	}

	rootCmd.AddCommand(
		clientCmd,
		serverCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Fatal(errors.Wrap(err, "execute root command failed"))
	}
}
