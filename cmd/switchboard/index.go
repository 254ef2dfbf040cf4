package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/joeydtaylor/switchboard/pkg/builder"
	"github.com/joeydtaylor/switchboard/pkg/logschema"
)

func newIndexCommand(st *state) *cobra.Command {
	var failOnError bool
	cmd := &cobra.Command{
		Use:   "index [record-id...]",
		Short: "Index records by id and print the final stats as JSON",
		Long: `Index submits every record id given as an argument, or read one per line from stdin
when there are none, then flushes and closes the pipeline. Blank lines and lines
starting with # are ignored.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()
			return runIndex(ctx, st, args, failOnError)
		},
	}
	cmd.Flags().BoolVar(&failOnError, "fail-on-error", true, "exit non-zero when a record or sink write failed")
	return cmd
}

func runIndex(ctx context.Context, st *state, args []string, failOnError bool) error {
	reg := prometheus.NewRegistry()
	p, err := builder.PipelineFromConfig(ctx, st.cfg, st.logger, reg)
	if err != nil {
		return err
	}

	if addr := st.cfg.Metrics.Listen; addr != "" {
		stopMetrics := serveMetrics(addr, reg, st.logger)
		defer stopMetrics()
	}

	var errs *multierror.Error
	submitted, err := submitIDs(ctx, p, args, st.stdin)
	if err != nil {
		errs = multierror.Append(errs, err)
	}
	if err := p.Close(); err != nil {
		errs = multierror.Append(errs, err)
	}

	stats := p.Stats()
	enc := json.NewEncoder(st.stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(stats); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("write stats: %w", err))
	}

	st.logger.Info("Index run finished",
		logschema.FieldEvent, "Index",
		"submitted", submitted,
		"completed", stats.TasksCompleted,
		"failed", stats.TasksFailed,
	)

	if failOnError {
		if stats.TasksFailed > 0 || stats.FailedPermanently > 0 {
			errs = multierror.Append(errs, fmt.Errorf("%d records failed conversion, %d payload writes failed",
				stats.TasksFailed, stats.FailedPermanently))
		}
	}
	return errs.ErrorOrNil()
}

// submitIDs indexes the ids in args, or from r when args is empty, and returns how many were
// accepted. It stops at the first rejected submission.
func submitIDs(ctx context.Context, p builder.Indexer, args []string, r io.Reader) (int, error) {
	submitted := 0
	submit := func(id string) error {
		if err := p.Index(ctx, id); err != nil {
			return fmt.Errorf("index %s: %w", id, err)
		}
		submitted++
		return nil
	}

	if len(args) > 0 {
		for _, id := range args {
			if err := submit(id); err != nil {
				return submitted, err
			}
		}
		return submitted, nil
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		id := strings.TrimSpace(scanner.Text())
		if id == "" || strings.HasPrefix(id, "#") {
			continue
		}
		if err := submit(id); err != nil {
			return submitted, err
		}
	}
	if err := scanner.Err(); err != nil {
		return submitted, fmt.Errorf("read record ids: %w", err)
	}
	return submitted, nil
}

// serveMetrics exposes reg on addr until the returned function is called.
func serveMetrics(addr string, reg *prometheus.Registry, logger builder.Logger) func() {
	srv := &http.Server{
		Addr:              addr,
		Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("Metrics endpoint stopped",
				logschema.FieldEvent, "ServeMetrics",
				logschema.FieldResult, logschema.ResultFailure,
				logschema.FieldError, err,
			)
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
