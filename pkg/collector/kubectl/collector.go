package kubectl

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/NVIDIA/k8s-ephem/pkg/defaults"
	"github.com/NVIDIA/k8s-ephem/pkg/inventory"
	kexec "github.com/NVIDIA/k8s-ephem/pkg/k8s/kubectl"
	"github.com/NVIDIA/k8s-ephem/pkg/report"
	"github.com/NVIDIA/k8s-ephem/pkg/stats"
)

// Collector reads nodes, stats and images through kubectl.
type Collector struct {
	Exec kexec.Executor

	// DebugImage is the image of the node debug pod. Empty uses the default.
	DebugImage string

	// DebugNamespace hosts the node debug pods. Empty uses the default.
	DebugNamespace string
}

// ListNodes returns node names from "kubectl get nodes".
func (c *Collector) ListNodes(ctx context.Context) ([]string, error) {
	out, err := c.Exec.Output(ctx, "get", "nodes")
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}
	nodes := inventory.ParseNodeTable(string(out))
	slog.Debug("listed nodes", slog.Int("count", len(nodes)))
	return nodes, nil
}

// FetchStats returns the kubelet stats summary of node via the API server proxy.
func (c *Collector) FetchStats(ctx context.Context, node string) (*stats.Summary, error) {
	out, err := c.Exec.Output(ctx, "get", "--raw", summaryPath(node))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stats summary: %w", err)
	}
	return stats.Decode(out)
}

// NodeStatusImages returns the images the kubelet reports in the node status.
func (c *Collector) NodeStatusImages(ctx context.Context, node string) ([]report.ImageRecord, error) {
	out, err := c.Exec.Output(ctx, "get", "node", node, "-o", "json")
	if err != nil {
		return nil, fmt.Errorf("failed to get node: %w", err)
	}
	return inventory.DecodeNodeImages(out)
}

// RuntimeImages lists images with crictl from a debug pod on node. The pod
// named in the session banner is deleted afterwards, whatever the outcome.
func (c *Collector) RuntimeImages(ctx context.Context, node string) ([]report.ImageRecord, error) {
	image := c.DebugImage
	if image == "" {
		image = defaults.DebugImage
	}
	namespace := c.DebugNamespace
	if namespace == "" {
		namespace = defaults.DebugNamespace
	}

	out, err := c.Exec.CombinedOutput(ctx,
		"debug", "node/"+node,
		"-n", namespace,
		"-i",
		"--image="+image,
		"--profile=sysadmin",
		"--", "chroot", "/host", "crictl", "images")
	if pod := inventory.DebugPodName(string(out)); pod != "" {
		defer c.deletePod(ctx, namespace, pod)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list runtime images: %w", err)
	}
	return inventory.ParseRuntimeImages(string(out))
}

// deletePod removes a finished debug pod. Failures are logged only; the
// image listing has already been read.
func (c *Collector) deletePod(ctx context.Context, namespace, pod string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaults.DebugPodCleanupTimeout)
	defer cancel()

	if _, err := c.Exec.Output(ctx, "delete", "pod", pod, "-n", namespace, "--wait=false"); err != nil {
		slog.Warn("failed to delete debug pod",
			slog.String("namespace", namespace),
			slog.String("pod", pod),
			slog.String("error", err.Error()))
		return
	}
	slog.Debug("deleted debug pod", slog.String("namespace", namespace), slog.String("pod", pod))
}

func summaryPath(node string) string {
	return "/api/v1/nodes/" + url.PathEscape(node) + "/proxy/stats/summary"
}
