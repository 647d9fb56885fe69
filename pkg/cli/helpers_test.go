/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/k8s-ephem/pkg/collector"
	"github.com/NVIDIA/k8s-ephem/pkg/query"
	"github.com/NVIDIA/k8s-ephem/pkg/serializer"
)

// runFlags parses args against flags and hands the parsed command to fn.
func runFlags(t *testing.T, flags []cli.Flag, args []string, fn func(*cli.Command) error) error {
	t.Helper()
	cmd := &cli.Command{
		Name:  "test",
		Flags: flags,
		Action: func(_ context.Context, c *cli.Command) error {
			return fn(c)
		},
	}
	return cmd.Run(context.Background(), append([]string{"test"}, args...))
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    serializer.Format
		wantErr string
	}{
		{name: "default", want: serializer.FormatJSON},
		{name: "yaml", args: []string{"--format", "yaml"}, want: serializer.FormatYAML},
		{name: "short flag", args: []string{"-t", "table"}, want: serializer.FormatTable},
		{name: "upper case", args: []string{"--format", "YAML"}, want: serializer.FormatYAML},
		{name: "typo", args: []string{"--format", "jsn"}, wantErr: `did you mean "json"?`},
		{name: "unknown", args: []string{"--format", "protobuf"}, wantErr: "unknown output format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got serializer.Format
			err := runFlags(t, []cli.Flag{formatFlag()}, tt.args, func(cmd *cli.Command) error {
				var err error
				got, err = parseOutputFormat(cmd)
				return err
			})
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPipelineConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		var cfg query.Config
		err := runFlags(t, globalFlags(), nil, func(cmd *cli.Command) error {
			var err error
			cfg, err = pipelineConfig(cmd)
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, collector.BackendKubectl, cfg.Backend)
		assert.Equal(t, collector.ImageSourceNodeStatus, cfg.ImageSource)
		assert.Equal(t, "kubectl", cfg.KubectlBinary)
		assert.Equal(t, 5*time.Minute, cfg.DebugTimeout)
	})

	t.Run("flags", func(t *testing.T) {
		var cfg query.Config
		args := []string{"--backend", "api", "--images", "runtime", "--kubectl", "/opt/bin/kubectl",
			"--kubeconfig", "/tmp/kc", "--debug-image", "busybox:latest",
			"--debug-namespace", "ops", "--debug-timeout", "90s"}
		err := runFlags(t, globalFlags(), args, func(cmd *cli.Command) error {
			var err error
			cfg, err = pipelineConfig(cmd)
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, query.Config{
			Backend:        collector.BackendAPI,
			ImageSource:    collector.ImageSourceRuntime,
			KubectlBinary:  "/opt/bin/kubectl",
			Kubeconfig:     "/tmp/kc",
			DebugImage:     "busybox:latest",
			DebugNamespace: "ops",
			DebugTimeout:   90 * time.Second,
		}, cfg)
	})

	t.Run("environment", func(t *testing.T) {
		t.Setenv("K8S_EPHEM_IMAGES", "runtime")
		t.Setenv("K8S_EPHEM_BACKEND", "api")

		var cfg query.Config
		err := runFlags(t, globalFlags(), nil, func(cmd *cli.Command) error {
			var err error
			cfg, err = pipelineConfig(cmd)
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, collector.BackendAPI, cfg.Backend)
		assert.Equal(t, collector.ImageSourceRuntime, cfg.ImageSource)
	})

	t.Run("flag overrides environment", func(t *testing.T) {
		t.Setenv("K8S_EPHEM_IMAGES", "runtime")

		var cfg query.Config
		err := runFlags(t, globalFlags(), []string{"--images", "node-status"}, func(cmd *cli.Command) error {
			var err error
			cfg, err = pipelineConfig(cmd)
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, collector.ImageSourceNodeStatus, cfg.ImageSource)
	})

	t.Run("unknown backend", func(t *testing.T) {
		err := runFlags(t, globalFlags(), []string{"--backend", "kubctl"}, func(cmd *cli.Command) error {
			_, err := pipelineConfig(cmd)
			return err
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown backend: "kubctl"`)
		assert.Contains(t, err.Error(), `did you mean "kubectl"?`)
	})

	t.Run("unknown image source", func(t *testing.T) {
		err := runFlags(t, globalFlags(), []string{"--images", "nodestatus"}, func(cmd *cli.Command) error {
			_, err := pipelineConfig(cmd)
			return err
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `did you mean "node-status"?`)
	})
}

func TestSuggest(t *testing.T) {
	candidates := []string{"node-status", "runtime"}

	tests := []struct {
		value string
		want  string
	}{
		{"node-stat", "node-status"},
		{"runtme", "runtime"},
		{"RUNTIME", ""},
		{"something-else-entirely", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, suggest(tt.value, candidates))
		})
	}
}

func TestClamping(t *testing.T) {
	assert.Equal(t, time.Second, intervalSeconds(0))
	assert.Equal(t, time.Second, intervalSeconds(-5))
	assert.Equal(t, 600*time.Second, intervalSeconds(600))

	assert.Equal(t, 1, clampLoops(0))
	assert.Equal(t, 1, clampLoops(-1))
	assert.Equal(t, 43200, clampLoops(43200))
}

func TestPipelineConfig_KubeconfigPathList(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("KUBECONFIG", filepath.Join(dir, "config")+string(filepath.ListSeparator)+filepath.Join(dir, "other"))

	var cfg query.Config
	err := runFlags(t, globalFlags(), nil, func(cmd *cli.Command) error {
		var err error
		cfg, err = pipelineConfig(cmd)
		return err
	})
	require.NoError(t, err)
	assert.Empty(t, cfg.Kubeconfig, "KUBECONFIG is left to the loading rules")
}
