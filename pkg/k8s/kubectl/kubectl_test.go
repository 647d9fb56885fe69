package kubectl

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	utilexec "k8s.io/utils/exec"
	testingexec "k8s.io/utils/exec/testing"

	ephemerrors "github.com/NVIDIA/k8s-ephem/pkg/errors"
)

// fakeRun builds a FakeExec that runs a single command with the given result.
func fakeRun(stdout, stderr string, err error) (*testingexec.FakeExec, *testingexec.FakeCmd) {
	cmd := &testingexec.FakeCmd{
		RunScript: []testingexec.FakeAction{
			func() ([]byte, []byte, error) { return []byte(stdout), []byte(stderr), err },
		},
	}
	fe := &testingexec.FakeExec{
		CommandScript: []testingexec.FakeCommandAction{
			func(c string, args ...string) utilexec.Cmd {
				return testingexec.InitFakeCmd(cmd, c, args...)
			},
		},
	}
	return fe, cmd
}

func TestKubectl_Output(t *testing.T) {
	fe, cmd := fakeRun("NAME\nnode-1\n", "warning: ignored", nil)
	k := New(WithExec(fe))

	out, err := k.Output(context.Background(), "get", "nodes")
	require.NoError(t, err)

	assert.Equal(t, "NAME\nnode-1\n", string(out), "stderr must not leak into Output")
	assert.Equal(t, []string{"kubectl", "get", "nodes"}, cmd.Argv)
	assert.Equal(t, 1, fe.CommandCalls)
}

func TestKubectl_CombinedOutput(t *testing.T) {
	fe, _ := fakeRun("IMAGE TAG IMAGE ID SIZE\n", "Creating debugging pod x.\n", nil)
	k := New(WithExec(fe))

	out, err := k.CombinedOutput(context.Background(), "debug", "node/node-1")
	require.NoError(t, err)

	assert.Contains(t, string(out), "IMAGE TAG")
	assert.Contains(t, string(out), "Creating debugging pod")
}

func TestKubectl_Options(t *testing.T) {
	fe, cmd := fakeRun("", "", nil)
	k := New(WithExec(fe), WithBinary("/usr/local/bin/kubectl"), WithKubeconfig("/tmp/kc"))

	_, err := k.Output(context.Background(), "get", "nodes")
	require.NoError(t, err)

	assert.Equal(t, []string{"/usr/local/bin/kubectl", "--kubeconfig", "/tmp/kc", "get", "nodes"}, cmd.Argv)
}

func TestKubectl_WithBinaryEmptyKeepsDefault(t *testing.T) {
	k := New(WithBinary(""))
	assert.Equal(t, "kubectl", k.binary)
}

func TestKubectl_Errors(t *testing.T) {
	tests := []struct {
		name     string
		stderr   string
		err      error
		contains string
	}{
		{
			name:     "non-zero exit",
			stderr:   "Error from server (NotFound): nodes \"ghost\" not found",
			err:      testingexec.FakeExitError{Status: 1},
			contains: "exited with status 1",
		},
		{
			name:     "binary missing",
			err:      utilexec.ErrExecutableNotFound,
			contains: "not found in PATH",
		},
		{
			name:     "other failure",
			err:      errors.New("fork/exec: permission denied"),
			contains: "failed to run",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fe, _ := fakeRun("", tt.stderr, tt.err)
			k := New(WithExec(fe))

			out, err := k.Output(context.Background(), "get", "node", "ghost")
			assert.Nil(t, out)
			require.Error(t, err)
			assert.True(t, ephemerrors.IsCode(err, ephemerrors.ErrCodeClusterQuery))
			assert.Contains(t, err.Error(), tt.contains)
			if tt.stderr != "" {
				assert.Contains(t, err.Error(), "NotFound")
			}
		})
	}
}

func TestKubectl_CombinedOutputOnFailure(t *testing.T) {
	fe, _ := fakeRun("", "Creating debugging pod node-debugger-node-1-x7k2p with container debugger on node node-1.\ncrictl: not found\n",
		testingexec.FakeExitError{Status: 127})
	k := New(WithExec(fe))

	out, err := k.CombinedOutput(context.Background(), "debug", "node/node-1")
	require.Error(t, err)
	assert.True(t, ephemerrors.IsCode(err, ephemerrors.ErrCodeClusterQuery))
	assert.Contains(t, string(out), "node-debugger-node-1-x7k2p")
}
