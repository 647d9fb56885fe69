package collector

import (
	"context"

	"github.com/NVIDIA/k8s-ephem/pkg/report"
	"github.com/NVIDIA/k8s-ephem/pkg/stats"
)

// NodeLister returns the names of all cluster nodes in listing order.
type NodeLister interface {
	ListNodes(ctx context.Context) ([]string, error)
}

// StatsFetcher returns the kubelet stats summary of one node.
type StatsFetcher interface {
	FetchStats(ctx context.Context, node string) (*stats.Summary, error)
}

// ImageFetcher returns the container images present on one node.
type ImageFetcher interface {
	FetchImages(ctx context.Context, node string) ([]report.ImageRecord, error)
}

// ImageFetcherFunc adapts a function to ImageFetcher.
type ImageFetcherFunc func(ctx context.Context, node string) ([]report.ImageRecord, error)

// FetchImages calls f(ctx, node).
func (f ImageFetcherFunc) FetchImages(ctx context.Context, node string) ([]report.ImageRecord, error) {
	return f(ctx, node)
}

// Collector is everything one query needs from the cluster.
// All methods must honor context cancellation.
type Collector interface {
	NodeLister
	StatsFetcher
	ImageFetcher
}

// ImageSource selects how image inventories are gathered.
type ImageSource string

const (
	// ImageSourceNodeStatus reads status.images from the Node object.
	ImageSourceNodeStatus ImageSource = "node-status"
	// ImageSourceRuntime lists images with crictl on the node itself.
	ImageSourceRuntime ImageSource = "runtime"
)

// ImageSources lists the supported image sources.
var ImageSources = []ImageSource{ImageSourceNodeStatus, ImageSourceRuntime}

// Backend selects how the cluster is queried.
type Backend string

const (
	// BackendKubectl runs the kubectl binary.
	BackendKubectl Backend = "kubectl"
	// BackendAPI calls the API server with client-go.
	BackendAPI Backend = "api"
)

// Backends lists the supported backends.
var Backends = []Backend{BackendKubectl, BackendAPI}
