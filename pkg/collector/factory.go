package collector

import (
	"fmt"
	"time"

	"k8s.io/client-go/kubernetes"

	"github.com/NVIDIA/k8s-ephem/pkg/collector/k8s"
	"github.com/NVIDIA/k8s-ephem/pkg/collector/kubectl"
	"github.com/NVIDIA/k8s-ephem/pkg/defaults"
	"github.com/NVIDIA/k8s-ephem/pkg/k8s/client"
	kexec "github.com/NVIDIA/k8s-ephem/pkg/k8s/kubectl"
)

// Factory creates collectors with their dependencies.
// This interface enables dependency injection for testing.
type Factory interface {
	CreateCollector() (Collector, error)
}

// DefaultFactory creates collectors with production dependencies.
type DefaultFactory struct {
	Backend     Backend
	ImageSource ImageSource

	// KubectlBinary is the kubectl executable (kubectl backend).
	KubectlBinary string

	// Kubeconfig overrides kubeconfig discovery for both backends.
	Kubeconfig string

	// DebugImage, DebugNamespace and DebugTimeout configure the runtime
	// image listing.
	DebugImage     string
	DebugNamespace string
	DebugTimeout   time.Duration

	// Executor replaces the kubectl executor (kubectl backend).
	Executor kexec.Executor

	// ClientSet replaces the discovered client (api backend).
	ClientSet kubernetes.Interface
}

// NewDefaultFactory creates a factory with default settings.
func NewDefaultFactory() *DefaultFactory {
	return &DefaultFactory{
		Backend:        BackendKubectl,
		ImageSource:    ImageSourceNodeStatus,
		KubectlBinary:  defaults.KubectlBinary,
		DebugImage:     defaults.DebugImage,
		DebugNamespace: defaults.DebugNamespace,
		DebugTimeout:   defaults.DebugPodTimeout,
	}
}

// CreateCollector builds the configured backend with the configured image source.
func (f *DefaultFactory) CreateCollector() (Collector, error) {
	switch f.ImageSource {
	case ImageSourceNodeStatus, ImageSourceRuntime:
	default:
		return nil, fmt.Errorf("unknown image source %q", f.ImageSource)
	}

	switch f.Backend {
	case BackendKubectl:
		return f.createKubectlCollector(), nil
	case BackendAPI:
		return f.createKubernetesCollector()
	default:
		return nil, fmt.Errorf("unknown backend %q", f.Backend)
	}
}

func (f *DefaultFactory) createKubectlCollector() Collector {
	exec := f.Executor
	if exec == nil {
		exec = kexec.New(kexec.WithBinary(f.KubectlBinary), kexec.WithKubeconfig(f.Kubeconfig))
	}

	c := &kubectl.Collector{
		Exec:           exec,
		DebugImage:     f.DebugImage,
		DebugNamespace: f.DebugNamespace,
	}
	return bind(c, c.NodeStatusImages, c.RuntimeImages, f.ImageSource)
}

func (f *DefaultFactory) createKubernetesCollector() (Collector, error) {
	clientset := f.ClientSet
	if clientset == nil {
		cs, _, err := client.BuildKubeClient(f.Kubeconfig)
		if err != nil {
			return nil, fmt.Errorf("failed to get kubernetes client: %w", err)
		}
		clientset = cs
	}

	c := &k8s.Collector{
		ClientSet:      clientset,
		DebugImage:     f.DebugImage,
		DebugNamespace: f.DebugNamespace,
		DebugTimeout:   f.DebugTimeout,
	}
	return bind(c, c.NodeStatusImages, c.RuntimeImages, f.ImageSource), nil
}

type backend interface {
	NodeLister
	StatsFetcher
}

// bound pairs a backend with the image strategy picked for it.
type bound struct {
	backend
	ImageFetcher
}

func bind(b backend, nodeStatus, runtime ImageFetcherFunc, source ImageSource) Collector {
	images := nodeStatus
	if source == ImageSourceRuntime {
		images = runtime
	}
	return &bound{backend: b, ImageFetcher: images}
}
