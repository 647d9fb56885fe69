package k8s

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	ephemerrors "github.com/NVIDIA/k8s-ephem/pkg/errors"
	"github.com/NVIDIA/k8s-ephem/pkg/k8s/agent"
	"github.com/NVIDIA/k8s-ephem/pkg/k8s/client"
	"github.com/NVIDIA/k8s-ephem/pkg/stats"
)

// Collector reads nodes, stats and images from the Kubernetes API.
type Collector struct {
	ClientSet kubernetes.Interface

	// DebugImage, DebugNamespace and DebugTimeout configure the runtime
	// listing pod. Zero values use the package agent defaults.
	DebugImage     string
	DebugNamespace string
	DebugTimeout   time.Duration

	// ReadSummary returns the raw stats summary document of a node.
	// Nil reads it through the node proxy subresource.
	ReadSummary func(ctx context.Context, node string) ([]byte, error)

	// runAgent runs the runtime listing pod; nil uses package agent.
	runAgent func(ctx context.Context, config agent.Config) (pod string, logs []byte, err error)
}

// ListNodes returns node names in the order the API server lists them.
func (k *Collector) ListNodes(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := k.getClient(); err != nil {
		return nil, err
	}

	list, err := k.ClientSet.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, ephemerrors.Wrap(ephemerrors.ErrCodeClusterQuery, "failed to list nodes", err)
	}

	nodes := make([]string, 0, len(list.Items))
	for _, n := range list.Items {
		nodes = append(nodes, n.Name)
	}

	slog.Debug("listed nodes", slog.Int("count", len(nodes)))
	return nodes, nil
}

// FetchStats returns the kubelet stats summary of node.
func (k *Collector) FetchStats(ctx context.Context, node string) (*stats.Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	read := k.ReadSummary
	if read == nil {
		if err := k.getClient(); err != nil {
			return nil, err
		}
		read = k.proxySummary
	}

	data, err := read(ctx, node)
	if err != nil {
		return nil, ephemerrors.WrapWithContext(ephemerrors.ErrCodeClusterQuery,
			"failed to fetch stats summary", err, map[string]any{"node": node})
	}
	return stats.Decode(data)
}

func (k *Collector) proxySummary(ctx context.Context, node string) ([]byte, error) {
	return k.ClientSet.CoreV1().RESTClient().Get().
		Resource("nodes").
		Name(node).
		SubResource("proxy").
		Suffix("stats/summary").
		DoRaw(ctx)
}

func (k *Collector) getClient() error {
	if k.ClientSet != nil {
		return nil
	}
	cs, _, err := client.GetKubeClient()
	if err != nil {
		return fmt.Errorf("failed to get kubernetes client: %w", err)
	}
	k.ClientSet = cs
	return nil
}
