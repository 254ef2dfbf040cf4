package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joeydtaylor/switchboard/pkg/builder"
)

var (
	// Version is filled in by ldflags.
	Version string
)

// state is shared by the subcommands once the root has loaded the configuration.
type state struct {
	cfg    *builder.Config
	logger builder.Logger
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// NewRootCommand builds the switchboard command tree. The configuration is loaded before any
// subcommand runs, from --config, SWITCHBOARD_* variables and flags.
func NewRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	if Version == "" {
		Version = "v0.0.0"
	}
	st := &state{stdin: stdin, stdout: stdout, stderr: stderr}

	var configFile string
	rc := &cobra.Command{
		Use:           "switchboard",
		Short:         "switchboard - deliver records to search, graph, file and stream sinks",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v, err := builder.NewConfigReader(configFile)
			if err != nil {
				return err
			}
			if err := builder.BindConfigFlags(v, cmd.Flags()); err != nil {
				return err
			}
			cfg, err := builder.DecodeConfig(v)
			if err != nil {
				return err
			}
			logger, err := builder.LoggerFromConfig(cfg)
			if err != nil {
				return err
			}
			st.cfg, st.logger = cfg, logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if st.logger != nil {
				_ = st.logger.Flush()
			}
		},
	}
	rc.SetIn(stdin)
	rc.SetOut(stdout)
	rc.SetErr(stderr)

	flags := rc.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", os.Getenv(builder.ConfigEnvPrefix+"_CONFIG"), "path to the YAML configuration file")
	builder.AddConfigFlags(flags)

	rc.AddCommand(
		newIndexCommand(st),
		newValidateCommand(st),
		newServeCommand(st),
	)
	return rc
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
