/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/k8s-ephem/pkg/collector"
	"github.com/NVIDIA/k8s-ephem/pkg/query"
	"github.com/NVIDIA/k8s-ephem/pkg/serializer"
)

// maxSuggestDistance is the largest edit distance still offered as a suggestion.
const maxSuggestDistance = 3

// newQuerier builds the query run by the query and poll commands.
var newQuerier = func(cfg query.Config) (query.Querier, error) {
	p, err := query.NewPipeline(cfg)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// parseOutputFormat extracts and validates the output format from CLI flags.
// Returns the validated format or an error if the format is unknown.
func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	outFormat := serializer.Format(strings.ToLower(cmd.String("format")))
	if outFormat.IsUnknown() {
		return "", unknownValue("output format", string(outFormat), serializer.SupportedFormats())
	}
	return outFormat, nil
}

func parseBackend(cmd *cli.Command) (collector.Backend, error) {
	b := collector.Backend(strings.ToLower(cmd.String("backend")))
	names := make([]string, 0, len(collector.Backends))
	for _, known := range collector.Backends {
		if b == known {
			return b, nil
		}
		names = append(names, string(known))
	}
	return "", unknownValue("backend", string(b), names)
}

func parseImageSource(cmd *cli.Command) (collector.ImageSource, error) {
	s := collector.ImageSource(strings.ToLower(cmd.String("images")))
	names := make([]string, 0, len(collector.ImageSources))
	for _, known := range collector.ImageSources {
		if s == known {
			return s, nil
		}
		names = append(names, string(known))
	}
	return "", unknownValue("image source", string(s), names)
}

func unknownValue(kind, value string, valid []string) error {
	msg := fmt.Sprintf("unknown %s: %q, valid values are: %s", kind, value, strings.Join(valid, ", "))
	if s := suggest(value, valid); s != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", s)
	}
	return errors.New(msg)
}

// suggest returns the candidate closest to value, or "" if none is close.
func suggest(value string, candidates []string) string {
	if value == "" {
		return ""
	}
	best, bestDist := "", maxSuggestDistance+1
	for _, c := range candidates {
		if d := levenshtein.ComputeDistance(value, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// pipelineConfig reads the global backend flags.
func pipelineConfig(cmd *cli.Command) (query.Config, error) {
	backend, err := parseBackend(cmd)
	if err != nil {
		return query.Config{}, err
	}
	images, err := parseImageSource(cmd)
	if err != nil {
		return query.Config{}, err
	}
	return query.Config{
		Backend:        backend,
		ImageSource:    images,
		KubectlBinary:  cmd.String("kubectl"),
		Kubeconfig:     cmd.String("kubeconfig"),
		DebugImage:     cmd.String("debug-image"),
		DebugNamespace: cmd.String("debug-namespace"),
		DebugTimeout:   cmd.Duration("debug-timeout"),
	}, nil
}

// intervalSeconds converts the --interval value, raising it to one second.
func intervalSeconds(n int) time.Duration {
	return time.Duration(max(n, 1)) * time.Second
}

// clampLoops raises the --loops value to one.
func clampLoops(n int) int {
	return max(n, 1)
}

// writeResult serializes v to path ("" for stdout) and closes the destination.
// ConfigMap destinations go to the cluster selected by kubeconfig.
func writeResult(ctx context.Context, format serializer.Format, path, kubeconfig string, v any) (err error) {
	w, err := serializer.NewFileWriterOrStdout(format, path, serializer.WithKubeconfig(kubeconfig))
	if err != nil {
		return err
	}
	if c, ok := w.(serializer.Closer); ok {
		defer func() {
			if cerr := c.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("failed to close output: %w", cerr)
			}
		}()
	}
	if err := w.Serialize(ctx, v); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
