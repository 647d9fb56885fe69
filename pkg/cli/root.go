/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/k8s-ephem/pkg/collector"
	"github.com/NVIDIA/k8s-ephem/pkg/defaults"
	"github.com/NVIDIA/k8s-ephem/pkg/logging"
)

const name = "ephemctl"

var (
	// overridden at build time with ldflags
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Execute runs the root command and exits the process on error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().Run(ctx, os.Args)
	if err == nil {
		return
	}
	slog.Error("command failed", slog.String("error", err.Error()))
	code := exitCode(ctx, err)
	stop()
	os.Exit(code)
}

// exitCode maps a command error to the process exit status.
func exitCode(ctx context.Context, err error) int {
	switch {
	case err == nil:
		return 0
	case ctx.Err() != nil, errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return 2
	default:
		return 1
	}
}

func versionString() string {
	return fmt.Sprintf("%s (commit: %s, date: %s)", version, commit, date)
}

func newRootCmd() *cli.Command {
	return &cli.Command{
		Name:                  name,
		Usage:                 "Report ephemeral storage usage of Kubernetes nodes",
		Version:               versionString(),
		EnableShellCompletion: true,
		ShellComplete:         commandLister,
		Description: `Queries every node of the current cluster for the ephemeral storage used by
its pods and the container images it holds, and writes one report per node.

  ephemctl query --file report.json
  ephemctl poll --dir ./reports --interval 600 --loops 144`,
		Flags: globalFlags(),
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logging.SetDefaultCLILogger(logLevel(cmd), cmd.Bool("log-json"))
			return ctx, nil
		},
		Commands: []*cli.Command{
			queryCmd(),
			pollCmd(),
			versionCmd(),
		},
	}
}

// globalFlags are available to every subcommand.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "backend",
			Value:   string(collector.BackendKubectl),
			Usage:   fmt.Sprintf("how the cluster is queried %v", collector.Backends),
			Sources: cli.EnvVars("K8S_EPHEM_BACKEND"),
		},
		&cli.StringFlag{
			Name:    "images",
			Value:   string(collector.ImageSourceNodeStatus),
			Usage:   fmt.Sprintf("where node image inventories come from %v", collector.ImageSources),
			Sources: cli.EnvVars("K8S_EPHEM_IMAGES"),
		},
		&cli.StringFlag{
			Name:    "kubectl",
			Value:   defaults.KubectlBinary,
			Usage:   "kubectl binary used by the kubectl backend",
			Sources: cli.EnvVars("K8S_EPHEM_KUBECTL"),
		},
		kubeconfigFlag(),
		&cli.StringFlag{
			Name:    "debug-image",
			Value:   defaults.DebugImage,
			Usage:   "image of the node debug pod used by the runtime image source",
			Sources: cli.EnvVars("K8S_EPHEM_DEBUG_IMAGE"),
		},
		&cli.StringFlag{
			Name:    "debug-namespace",
			Value:   defaults.DebugNamespace,
			Usage:   "namespace of node debug pods (runtime image source)",
			Sources: cli.EnvVars("K8S_EPHEM_DEBUG_NAMESPACE"),
		},
		&cli.DurationFlag{
			Name:    "debug-timeout",
			Value:   defaults.DebugPodTimeout,
			Usage:   "how long the api backend waits for a debug pod to finish",
			Sources: cli.EnvVars("K8S_EPHEM_DEBUG_TIMEOUT"),
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "enable debug logging",
		},
		&cli.BoolFlag{
			Name:  "log-json",
			Usage: "write logs as JSON",
		},
	}
}

func kubeconfigFlag() cli.Flag {
	// No env source: KUBECONFIG may be a path list, which only the
	// client-go loading rules and kubectl itself understand.
	return &cli.StringFlag{
		Name:  "kubeconfig",
		Usage: "path to a single kubeconfig file (default: $KUBECONFIG, ~/.kube/config, then in-cluster)",
	}
}

// logLevel is debug with --debug, otherwise LOG_LEVEL.
func logLevel(cmd *cli.Command) slog.Level {
	if cmd.Bool("debug") {
		return slog.LevelDebug
	}
	return logging.ParseLogLevel(os.Getenv(logging.EnvLogLevel))
}

// commandLister prints the visible subcommands for shell completion.
func commandLister(_ context.Context, cmd *cli.Command) {
	if cmd == nil {
		return
	}
	var w io.Writer = os.Stdout
	if cmd.Root() != nil && cmd.Root().Writer != nil {
		w = cmd.Root().Writer
	}
	for _, c := range cmd.Commands {
		if c.Hidden {
			continue
		}
		fmt.Fprintln(w, c.Name)
	}
}
