/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/k8s-ephem/pkg/report"
)

func TestPollCmd_CommandStructure(t *testing.T) {
	cmd := pollCmd()

	if cmd.Name != "poll" {
		t.Errorf("Name = %v, want poll", cmd.Name)
	}

	if cmd.Description == "" {
		t.Error("Description should not be empty")
	}

	wantFlags := []string{"directory", "dir", "d", "interval", "i", "loops", "l",
		"continue-on-error", "listen", "format"}
	for _, flagName := range wantFlags {
		found := false
		for _, flag := range cmd.Flags {
			if hasName(flag, flagName) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("flag %q not found", flagName)
		}
	}
}

func readDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestPollCmd_SingleLoop(t *testing.T) {
	stubQuerier(t, func(context.Context) (report.ResultSet, error) {
		return sampleResults(), nil
	})
	dir := filepath.Join(t.TempDir(), "reports")

	err := runRoot(t, "poll", "--dir", dir, "--loops", "1", "--interval", "1")
	require.NoError(t, err)

	names := readDir(t, dir)
	require.Len(t, names, 1)
	assert.True(t, strings.HasSuffix(names[0], "+00:00-ephem.json"), names[0])
}

func TestPollCmd_TableFormat(t *testing.T) {
	stubQuerier(t, func(context.Context) (report.ResultSet, error) {
		return sampleResults(), nil
	})
	dir := t.TempDir()

	require.NoError(t, runRoot(t, "poll", "-d", dir, "-l", "1", "-t", "table"))

	names := readDir(t, dir)
	require.Len(t, names, 1)
	assert.True(t, strings.HasSuffix(names[0], "-ephem.txt"), names[0])
}

func TestPollCmd_Errors(t *testing.T) {
	failing := func(context.Context) (report.ResultSet, error) {
		return nil, errors.New("node node-1: connection refused")
	}

	t.Run("stops on failure", func(t *testing.T) {
		stubQuerier(t, failing)
		dir := t.TempDir()

		err := runRoot(t, "poll", "--dir", dir, "--loops", "1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
		assert.Empty(t, readDir(t, dir))
	})

	t.Run("continue on error", func(t *testing.T) {
		stubQuerier(t, failing)
		dir := t.TempDir()

		err := runRoot(t, "poll", "--dir", dir, "--loops", "1", "--continue-on-error")
		require.NoError(t, err)
		assert.Empty(t, readDir(t, dir))
	})

	t.Run("invalid listen address", func(t *testing.T) {
		stubQuerier(t, func(context.Context) (report.ResultSet, error) {
			return sampleResults(), nil
		})

		err := runRoot(t, "poll", "--dir", t.TempDir(), "--loops", "1", "--listen", "no-port")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid --listen")
	})
}

func TestPollCmd_Listen(t *testing.T) {
	stubQuerier(t, func(context.Context) (report.ResultSet, error) {
		return sampleResults(), nil
	})
	dir := t.TempDir()

	// the server stops once the last iteration is written
	err := runRoot(t, "poll", "--dir", dir, "--loops", "1", "--listen", "127.0.0.1:0")
	require.NoError(t, err)
	assert.Len(t, readDir(t, dir), 1)
}
