package main

import (
	"context"
	"errors"

	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/joeydtaylor/switchboard/pkg/builder"
)

func newServeCommand(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the pipeline behind an HTTP API until interrupted",
		Long: `Serve starts the pipeline and listens on http.listen with:

  POST /index    {"ids": ["..."]}
  POST /flush
  GET  /stats
  GET  /healthz
  GET  /metrics

On SIGINT or SIGTERM the server stops accepting requests and the pipeline is
drained and closed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()
			return runServe(ctx, st)
		},
	}
}

func runServe(ctx context.Context, st *state) error {
	reg := prometheus.NewRegistry()
	// The pipeline outlives ctx so Close can still drain after a signal.
	p, err := builder.PipelineFromConfig(context.WithoutCancel(ctx), st.cfg, st.logger, reg)
	if err != nil {
		return err
	}

	srv := builder.NewHTTPServer(p,
		builder.HTTPServerWithAddress(st.cfg.HTTP.Listen),
		builder.HTTPServerWithTimeout(st.cfg.HTTP.Timeout),
		builder.HTTPServerWithGatherer(reg),
		builder.HTTPServerWithLogger(st.logger),
	)

	var errs *multierror.Error
	if err := srv.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		errs = multierror.Append(errs, err)
	}
	if err := p.Close(); err != nil {
		errs = multierror.Append(errs, err)
	}
	return errs.ErrorOrNil()
}
