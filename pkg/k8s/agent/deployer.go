package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/client-go/kubernetes"

	"github.com/NVIDIA/k8s-ephem/pkg/defaults"
)

// podNamePrefix is followed by the (truncated) node name and a random suffix.
const podNamePrefix = "ephem-debug-"

// maxNodeNameInPodName keeps pod names well below the 253 character limit.
const maxNodeNameInPodName = 40

// NewDeployer creates a Deployer with a fresh pod name.
func NewDeployer(clientset kubernetes.Interface, config Config) *Deployer {
	if config.Namespace == "" {
		config.Namespace = defaults.DebugNamespace
	}
	if config.Image == "" {
		config.Image = defaults.DebugImage
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.DebugPodTimeout
	}

	node := config.NodeName
	if len(node) > maxNodeNameInPodName {
		// the cut may leave a trailing separator, which is not allowed before "-"
		node = strings.TrimRight(node[:maxNodeNameInPodName], ".-")
	}

	return &Deployer{
		clientset: clientset,
		config:    config,
		podName:   podNamePrefix + node + "-" + uuid.NewString()[:8],
	}
}

// PodName returns the name of the pod this deployer manages.
func (d *Deployer) PodName() string {
	return d.podName
}

// Run deploys the pod, waits for it to finish, returns its log and removes it.
func (d *Deployer) Run(ctx context.Context) ([]byte, error) {
	if err := d.Deploy(ctx); err != nil {
		return nil, err
	}
	defer func() {
		if err := d.Cleanup(ctx, CleanupOptions{}); err != nil {
			slog.Warn("failed to delete agent pod",
				slog.String("pod", d.podName),
				slog.String("namespace", d.config.Namespace),
				slog.String("error", err.Error()))
		}
	}()

	if err := d.WaitForCompletion(ctx, d.config.Timeout); err != nil {
		return nil, err
	}

	return d.GetOutput(ctx)
}

// Deploy creates the agent pod.
func (d *Deployer) Deploy(ctx context.Context) error {
	if d.config.NodeName == "" {
		return fmt.Errorf("agent pod requires a node name")
	}
	if err := d.ensurePod(ctx); err != nil {
		return fmt.Errorf("failed to create agent pod on node %q: %w", d.config.NodeName, err)
	}
	return nil
}

// WaitForCompletion waits for the agent pod to succeed.
// Returns error if the pod fails or does not finish within timeout.
func (d *Deployer) WaitForCompletion(ctx context.Context, timeout time.Duration) error {
	return d.waitForPodCompletion(ctx, timeout)
}

// GetOutput returns the agent container's log.
func (d *Deployer) GetOutput(ctx context.Context) ([]byte, error) {
	return d.getPodLogs(ctx)
}

// Cleanup deletes the agent pod. It runs even if ctx is already cancelled.
func (d *Deployer) Cleanup(ctx context.Context, opts CleanupOptions) error {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaults.DebugPodCleanupTimeout
	}
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := d.deletePod(cleanupCtx); err != nil {
		return fmt.Errorf("failed to delete agent pod: %w", err)
	}
	return nil
}

// ignoreNotFound returns nil if the error is "not found", otherwise returns the error.
// Used to make resource deletion idempotent.
func ignoreNotFound(err error) error {
	if errors.IsNotFound(err) {
		return nil
	}
	return err
}
