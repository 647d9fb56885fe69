/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/NVIDIA/k8s-ephem/pkg/defaults"
	"github.com/NVIDIA/k8s-ephem/pkg/logging"
	"github.com/NVIDIA/k8s-ephem/pkg/poller"
	"github.com/NVIDIA/k8s-ephem/pkg/report"
	"github.com/NVIDIA/k8s-ephem/pkg/server"
)

func pollCmd() *cli.Command {
	return &cli.Command{
		Name:                  "poll",
		EnableShellCompletion: true,
		Usage:                 "Query repeatedly and write one timestamped report per iteration",
		Description: `Runs the query in a loop. Each iteration writes its report to
<directory>/<UTC timestamp>-ephem.<ext>. The interval is measured from the start
of one query to the start of the next; if a query takes longer than the
interval the next one starts after one second. There is no wait after the
last iteration.

By default a failed query stops the poller. With --continue-on-error the
failure is logged and the next iteration runs as scheduled.

With --listen the latest report and the query metrics are also served over
HTTP:

  GET /health      liveness
  GET /ready       200 once the first query succeeded
  GET /v1/report   latest report
  GET /metrics     Prometheus metrics

# Examples

Poll every ten minutes for a day:
  ephemctl poll --dir ./reports --interval 600 --loops 144

Serve the latest report on port 8080:
  ephemctl poll --dir ./reports --listen :8080`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "directory",
				Aliases: []string{"d", "dir"},
				Value:   defaults.PollDirectory,
				Usage:   "directory receiving the report files",
				Sources: cli.EnvVars("K8S_EPHEM_DIR"),
			},
			&cli.IntFlag{
				Name:    "interval",
				Aliases: []string{"i"},
				Value:   int(defaults.PollInterval.Seconds()),
				Usage:   "seconds between the start of two queries (min 1)",
				Sources: cli.EnvVars("K8S_EPHEM_INTERVAL"),
			},
			&cli.IntFlag{
				Name:    "loops",
				Aliases: []string{"l"},
				Value:   defaults.PollLoops,
				Usage:   "number of queries to run (min 1)",
				Sources: cli.EnvVars("K8S_EPHEM_LOOPS"),
			},
			&cli.BoolFlag{
				Name:    "continue-on-error",
				Usage:   "log failed queries and keep polling",
				Sources: cli.EnvVars("K8S_EPHEM_CONTINUE_ON_ERROR"),
			},
			&cli.StringFlag{
				Name:    "listen",
				Usage:   "serve the latest report on this address, e.g. :8080",
				Sources: cli.EnvVars("K8S_EPHEM_LISTEN"),
			},
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			cfg, err := pipelineConfig(cmd)
			if err != nil {
				return err
			}

			q, err := newQuerier(cfg)
			if err != nil {
				return err
			}

			pc := poller.Config{
				Querier:         q,
				Directory:       cmd.String("directory"),
				Interval:        intervalSeconds(cmd.Int("interval")),
				Loops:           clampLoops(cmd.Int("loops")),
				Format:          outFormat,
				ContinueOnError: cmd.Bool("continue-on-error"),
			}

			listen := cmd.String("listen")
			if listen == "" {
				return poller.New(pc).Run(ctx)
			}
			return pollAndServe(ctx, cmd, pc, listen)
		},
	}
}

// pollAndServe runs the poller and the HTTP server together. The server
// stops once the poller finishes.
func pollAndServe(ctx context.Context, cmd *cli.Command, pc poller.Config, listen string) error {
	srvCfg := server.DefaultConfig()
	srvCfg.Name = name
	srvCfg.Version = version
	if err := srvCfg.SetListen(listen); err != nil {
		return fmt.Errorf("invalid --listen: %w", err)
	}

	if cmd.Bool("log-json") {
		logging.SetDefaultStructuredLoggerWithLevel(name, version, logLevel(cmd))
	}

	store := &report.Store{}
	pc.Store = store
	srv := server.New(server.WithConfig(srvCfg), server.WithReportSource(store))

	g, gctx := errgroup.WithContext(ctx)
	serveCtx, cancel := context.WithCancel(gctx)
	defer cancel()

	g.Go(func() error {
		defer cancel()
		return poller.New(pc).Run(gctx)
	})
	g.Go(func() error {
		return srv.Run(serveCtx)
	})

	err := g.Wait()
	slog.Debug("poll finished", slog.Bool("failed", err != nil))
	return err
}
