// Package kubectl runs kubectl as a subprocess.
//
// The Executor interface is the seam between the collectors and the process
// that talks to the cluster. Kubectl implements it on top of
// k8s.io/utils/exec so tests can substitute a fake command runner.
package kubectl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	utilexec "k8s.io/utils/exec"

	"github.com/NVIDIA/k8s-ephem/pkg/defaults"
	ephemerrors "github.com/NVIDIA/k8s-ephem/pkg/errors"
)

// maxStderr bounds how much of stderr is copied into an error message.
const maxStderr = 1024

// Executor runs a cluster command and returns what it printed.
// A command that cannot be started or that exits non-zero returns an
// error with code ErrCodeClusterQuery.
type Executor interface {
	// Output returns the command's stdout.
	Output(ctx context.Context, args ...string) ([]byte, error)

	// CombinedOutput returns stdout and stderr interleaved as written.
	// Output captured before a failure is returned along with the error.
	CombinedOutput(ctx context.Context, args ...string) ([]byte, error)
}

// Kubectl runs kubectl commands.
type Kubectl struct {
	binary     string
	kubeconfig string
	exec       utilexec.Interface
}

// Option configures Kubectl.
type Option func(*Kubectl)

// WithBinary sets the kubectl executable name or path.
func WithBinary(binary string) Option {
	return func(k *Kubectl) {
		if binary != "" {
			k.binary = binary
		}
	}
}

// WithKubeconfig passes --kubeconfig to every command.
func WithKubeconfig(path string) Option {
	return func(k *Kubectl) {
		k.kubeconfig = path
	}
}

// WithExec replaces the command runner.
func WithExec(e utilexec.Interface) Option {
	return func(k *Kubectl) {
		k.exec = e
	}
}

// New creates a Kubectl executor.
func New(opts ...Option) *Kubectl {
	k := &Kubectl{
		binary: defaults.KubectlBinary,
		exec:   utilexec.New(),
	}
	for _, o := range opts {
		o(k)
	}
	return k
}

// Output implements Executor.
func (k *Kubectl) Output(ctx context.Context, args ...string) ([]byte, error) {
	return k.run(ctx, false, args)
}

// CombinedOutput implements Executor.
func (k *Kubectl) CombinedOutput(ctx context.Context, args ...string) ([]byte, error) {
	return k.run(ctx, true, args)
}

func (k *Kubectl) run(ctx context.Context, combined bool, args []string) ([]byte, error) {
	argv := k.argv(args)
	cmd := k.exec.CommandContext(ctx, k.binary, argv...)

	var stdout, stderr bytes.Buffer
	cmd.SetStdout(&stdout)
	if combined {
		cmd.SetStderr(&stdout)
	} else {
		cmd.SetStderr(&stderr)
	}

	start := time.Now()
	err := cmd.Run()
	slog.Debug("ran command",
		slog.String("command", k.binary),
		slog.String("args", strings.Join(argv, " ")),
		slog.Duration("duration", time.Since(start)),
		slog.Int("bytes", stdout.Len()),
	)
	if err != nil {
		cerr := k.classify(argv, err, &stdout, &stderr, combined)
		if combined {
			return stdout.Bytes(), cerr
		}
		return nil, cerr
	}

	return stdout.Bytes(), nil
}

func (k *Kubectl) argv(args []string) []string {
	if k.kubeconfig == "" {
		return args
	}
	argv := make([]string, 0, len(args)+2)
	argv = append(argv, "--kubeconfig", k.kubeconfig)
	return append(argv, args...)
}

func (k *Kubectl) classify(argv []string, err error, stdout, stderr *bytes.Buffer, combined bool) error {
	command := strings.TrimSpace(k.binary + " " + strings.Join(argv, " "))
	ctx := map[string]any{"command": command}

	if errors.Is(err, utilexec.ErrExecutableNotFound) {
		return ephemerrors.WrapWithContext(ephemerrors.ErrCodeClusterQuery,
			fmt.Sprintf("%s not found in PATH", k.binary), err, ctx)
	}

	var exitErr utilexec.ExitError
	if errors.As(err, &exitErr) {
		out := stderr
		if combined {
			out = stdout
		}
		msg := strings.TrimSpace(out.String())
		if len(msg) > maxStderr {
			msg = msg[len(msg)-maxStderr:]
		}
		ctx["exitStatus"] = exitErr.ExitStatus()
		ctx["stderr"] = msg
		return ephemerrors.WrapWithContext(ephemerrors.ErrCodeClusterQuery,
			fmt.Sprintf("%q exited with status %d: %s", command, exitErr.ExitStatus(), msg), err, ctx)
	}

	return ephemerrors.WrapWithContext(ephemerrors.ErrCodeClusterQuery,
		fmt.Sprintf("failed to run %q", command), err, ctx)
}
