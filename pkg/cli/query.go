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

	"github.com/NVIDIA/k8s-ephem/pkg/serializer"
)

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"t"},
		Value:   string(serializer.FormatJSON),
		Usage:   fmt.Sprintf("output format %v", serializer.SupportedFormats()),
		Sources: cli.EnvVars("K8S_EPHEM_FORMAT"),
	}
}

func queryCmd() *cli.Command {
	return &cli.Command{
		Name:                  "query",
		EnableShellCompletion: true,
		Usage:                 "Query all nodes once and write the report",
		Description: `Lists the nodes of the cluster, reads the kubelet stats summary and the image
inventory of each node, and writes one report per node that runs at least one
pod using ephemeral storage.

Nodes are queried one at a time; the first failure aborts the query and nothing
is written.

# Examples

Print the report to stdout:
  ephemctl query

Write YAML to a file (format inferred from the extension):
  ephemctl query --file report.yaml

Store the report in a ConfigMap:
  ephemctl query --file cm://monitoring/ephem-report`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "output file path or cm://namespace/name (default: stdout)",
				Sources: cli.EnvVars("K8S_EPHEM_FILE"),
			},
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			file := cmd.String("file")

			outFormat := serializer.FormatFromPath(file)
			if cmd.IsSet("format") || file == "" {
				f, err := parseOutputFormat(cmd)
				if err != nil {
					return err
				}
				outFormat = f
			}

			cfg, err := pipelineConfig(cmd)
			if err != nil {
				return err
			}

			q, err := newQuerier(cfg)
			if err != nil {
				return err
			}

			results, err := q.Run(ctx)
			if err != nil {
				return fmt.Errorf("query failed: %w", err)
			}
			slog.Debug("query complete", slog.Int("nodes", len(results)))

			return writeResult(ctx, outFormat, file, cfg.Kubeconfig, results)
		},
	}
}
