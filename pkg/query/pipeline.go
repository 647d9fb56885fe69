package query

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/NVIDIA/k8s-ephem/pkg/collector"
	"github.com/NVIDIA/k8s-ephem/pkg/report"
)

// Config selects and configures the cluster backend.
type Config struct {
	Backend     collector.Backend
	ImageSource collector.ImageSource

	KubectlBinary string
	Kubeconfig    string

	DebugImage     string
	DebugNamespace string
	DebugTimeout   time.Duration

	// Factory replaces the collector factory built from the fields above.
	Factory collector.Factory
}

// Pipeline lists nodes, fetches stats and images per node and reduces them
// into a report. Nodes are processed one at a time in listing order and the
// first error aborts the run.
type Pipeline struct {
	Collector collector.Collector
}

// NewPipeline builds the configured backend and binds its image strategy.
func NewPipeline(cfg Config) (*Pipeline, error) {
	factory := cfg.Factory
	if factory == nil {
		f := collector.NewDefaultFactory()
		if cfg.Backend != "" {
			f.Backend = cfg.Backend
		}
		if cfg.ImageSource != "" {
			f.ImageSource = cfg.ImageSource
		}
		if cfg.KubectlBinary != "" {
			f.KubectlBinary = cfg.KubectlBinary
		}
		if cfg.DebugImage != "" {
			f.DebugImage = cfg.DebugImage
		}
		if cfg.DebugNamespace != "" {
			f.DebugNamespace = cfg.DebugNamespace
		}
		if cfg.DebugTimeout > 0 {
			f.DebugTimeout = cfg.DebugTimeout
		}
		f.Kubeconfig = cfg.Kubeconfig
		factory = f
	}

	c, err := factory.CreateCollector()
	if err != nil {
		return nil, fmt.Errorf("failed to create collector: %w", err)
	}
	return &Pipeline{Collector: c}, nil
}

// Run queries every node and returns one report per node that has at least
// one pod with ephemeral storage data. On error no partial result is returned.
func (p *Pipeline) Run(ctx context.Context) (report.ResultSet, error) {
	start := time.Now()
	defer func() {
		queryDuration.Observe(time.Since(start).Seconds())
	}()

	results, err := p.run(ctx)
	if err != nil {
		queryTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	queryTotal.WithLabelValues("success").Inc()
	recordReport(results)

	slog.Debug("query complete",
		slog.Int("nodes", len(results)),
		slog.Duration("duration", time.Since(start)))
	return results, nil
}

func (p *Pipeline) run(ctx context.Context) (report.ResultSet, error) {
	stageStart := time.Now()
	nodes, err := p.Collector.ListNodes(ctx)
	stageDuration.WithLabelValues("nodes").Observe(time.Since(stageStart).Seconds())
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}

	results := report.NewResultSet()
	for _, node := range nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		r, err := p.queryNode(ctx, node)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", node, err)
		}
		if r != nil {
			results = append(results, *r)
		}
	}

	return results, nil
}

func (p *Pipeline) queryNode(ctx context.Context, node string) (*report.NodeReport, error) {
	slog.Debug("querying node", slog.String("node", node))

	stageStart := time.Now()
	summary, err := p.Collector.FetchStats(ctx, node)
	stageDuration.WithLabelValues("stats").Observe(time.Since(stageStart).Seconds())
	if err != nil {
		return nil, err
	}

	stageStart = time.Now()
	images, err := p.Collector.FetchImages(ctx, node)
	stageDuration.WithLabelValues("images").Observe(time.Since(stageStart).Seconds())
	if err != nil {
		return nil, err
	}

	return report.Reduce(node, summary, images), nil
}
