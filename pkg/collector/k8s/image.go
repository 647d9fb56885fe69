package k8s

import (
	"context"
	"fmt"
	"log/slog"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/NVIDIA/k8s-ephem/pkg/defaults"
	ephemerrors "github.com/NVIDIA/k8s-ephem/pkg/errors"
	"github.com/NVIDIA/k8s-ephem/pkg/inventory"
	"github.com/NVIDIA/k8s-ephem/pkg/k8s/agent"
	"github.com/NVIDIA/k8s-ephem/pkg/report"
)

// crictlCommand lists images from the host's container runtime.
var crictlCommand = []string{"chroot", "/host", "crictl", "images"}

// NodeStatusImages returns the images the kubelet reports in the node status.
func (k *Collector) NodeStatusImages(ctx context.Context, node string) ([]report.ImageRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := k.getClient(); err != nil {
		return nil, err
	}

	n, err := k.ClientSet.CoreV1().Nodes().Get(ctx, node, metav1.GetOptions{})
	if err != nil {
		return nil, ephemerrors.Wrap(ephemerrors.ErrCodeClusterQuery, "failed to get node "+node, err)
	}

	images := inventory.ImagesFromNodeStatus(n.Status.Images)
	slog.Debug("collected node status images",
		slog.String("node", node),
		slog.Int("count", len(images)))
	return images, nil
}

// RuntimeImages lists images with crictl from a privileged pod on node.
func (k *Collector) RuntimeImages(ctx context.Context, node string) ([]report.ImageRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	run := k.runAgent
	if run == nil {
		if err := k.getClient(); err != nil {
			return nil, err
		}
		run = k.deployAgent
	}

	pod, logs, err := run(ctx, agent.Config{
		Namespace: k.DebugNamespace,
		NodeName:  node,
		Image:     k.DebugImage,
		Command:   crictlCommand,
		Timeout:   k.DebugTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list runtime images: %w", err)
	}

	return inventory.ParseRuntimeImages(transcript(pod, node, logs))
}

func (k *Collector) deployAgent(ctx context.Context, config agent.Config) (string, []byte, error) {
	d := agent.NewDeployer(k.ClientSet, config)
	logs, err := d.Run(ctx)
	return d.PodName(), logs, err
}

// transcript renders the pod log the way kubectl debug prints it.
func transcript(pod, node string, logs []byte) string {
	return fmt.Sprintf("Creating debugging pod %s with container %s on node %s.\n%s",
		pod, defaults.DebugContainerName, node, logs)
}
