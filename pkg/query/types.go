package query

import (
	"context"

	"github.com/NVIDIA/k8s-ephem/pkg/report"
)

// Querier runs one full query of the cluster.
type Querier interface {
	Run(ctx context.Context) (report.ResultSet, error)
}

// QuerierFunc adapts a function to Querier.
type QuerierFunc func(ctx context.Context) (report.ResultSet, error)

// Run calls f(ctx).
func (f QuerierFunc) Run(ctx context.Context) (report.ResultSet, error) {
	return f(ctx)
}
