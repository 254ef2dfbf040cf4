package main

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/joeydtaylor/switchboard/pkg/builder"
)

func newValidateCommand(st *state) *cobra.Command {
	var skipLoader bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration and mapping and ping the loader and every sink",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()
			return runValidate(ctx, st, skipLoader)
		},
	}
	cmd.Flags().BoolVar(&skipLoader, "skip-loader", false, "do not connect to the record database")
	return cmd
}

func runValidate(ctx context.Context, st *state, skipLoader bool) error {
	var errs *multierror.Error
	report := func(what string, err error) {
		if err != nil {
			fmt.Fprintf(st.stdout, "%-24s FAIL %v\n", what, err)
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", what, err))
			return
		}
		fmt.Fprintf(st.stdout, "%-24s ok\n", what)
	}

	_, err := builder.MapperFromConfig(st.cfg)
	report("mapping", err)

	loader := builder.LoaderFromConfig(st.cfg, st.logger)
	defer loader.Close()
	err = loader.Validate()
	if err == nil && !skipLoader {
		err = loader.Ping(ctx)
	}
	report("loader", err)

	sinks, err := builder.SinksFromConfig(ctx, st.cfg, st.logger)
	if err != nil {
		report("sinks", err)
		return errs.ErrorOrNil()
	}
	defer builder.CloseSinks(sinks)

	for _, s := range sinks {
		var err error
		if pinger, ok := s.Client.(builder.Pinger); ok {
			err = pinger.Ping(ctx)
		}
		report("sink "+s.Name, err)
	}
	return errs.ErrorOrNil()
}
