package poller

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"k8s.io/utils/clock"

	"github.com/NVIDIA/k8s-ephem/pkg/defaults"
	"github.com/NVIDIA/k8s-ephem/pkg/query"
	"github.com/NVIDIA/k8s-ephem/pkg/report"
	"github.com/NVIDIA/k8s-ephem/pkg/serializer"
)

// Config configures a Poller.
type Config struct {
	Querier query.Querier

	// Directory receives the output files. It is created if missing.
	Directory string

	// Interval between query starts. Values below one second are raised.
	Interval time.Duration

	// Loops is the number of iterations. Values below one are raised.
	Loops int

	Format serializer.Format

	// ContinueOnError skips failed iterations instead of stopping.
	ContinueOnError bool

	// Store, if set, receives every successful result.
	Store *report.Store

	// Clock defaults to the real clock.
	Clock clock.Clock
}

// Poller runs the query loop.
type Poller struct {
	cfg Config
}

// New creates a Poller, applying defaults and lower bounds.
func New(cfg Config) *Poller {
	if cfg.Directory == "" {
		cfg.Directory = defaults.PollDirectory
	}
	cfg.Interval = max(cfg.Interval, defaults.MinPollInterval)
	cfg.Loops = max(cfg.Loops, 1)
	if cfg.Format.IsUnknown() {
		cfg.Format = serializer.FormatJSON
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.RealClock{}
	}
	return &Poller{cfg: cfg}
}

// Run executes all iterations. It returns the first query or write error
// (unless ContinueOnError), or the context error if ctx ends early.
func (p *Poller) Run(ctx context.Context) error {
	if err := os.MkdirAll(p.cfg.Directory, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %q: %w", p.cfg.Directory, err)
	}

	slog.Info("polling started",
		slog.String("directory", p.cfg.Directory),
		slog.Duration("interval", p.cfg.Interval),
		slog.Int("loops", p.cfg.Loops))

	for i := 1; i <= p.cfg.Loops; i++ {
		start := p.cfg.Clock.Now()

		if err := p.iterate(ctx, i, start); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if !p.cfg.ContinueOnError {
				return fmt.Errorf("iteration %d: %w", i, err)
			}
			slog.Warn("skipping failed iteration",
				slog.Int("iteration", i),
				slog.String("error", err.Error()))
		}

		if i == p.cfg.Loops {
			break
		}

		delay := NextDelay(p.cfg.Interval, p.cfg.Clock.Since(start))
		slog.Debug("sleeping", slog.Duration("delay", delay))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.cfg.Clock.After(delay):
		}
	}

	slog.Info("polling finished", slog.Int("loops", p.cfg.Loops))
	return nil
}

func (p *Poller) iterate(ctx context.Context, i int, start time.Time) error {
	results, err := p.cfg.Querier.Run(ctx)
	if err != nil {
		return err
	}

	path := filepath.Join(p.cfg.Directory, FileName(start, p.cfg.Format))
	if err := write(ctx, p.cfg.Format, path, results); err != nil {
		return err
	}

	if p.cfg.Store != nil {
		p.cfg.Store.Set(results, start)
	}

	slog.Info("wrote report",
		slog.Int("iteration", i),
		slog.String("path", path),
		slog.Int("nodes", len(results)))
	return nil
}

func write(ctx context.Context, format serializer.Format, path string, results report.ResultSet) error {
	w, err := serializer.NewFileWriterOrStdout(format, path)
	if err != nil {
		return err
	}
	serr := w.Serialize(ctx, results)
	if c, ok := w.(serializer.Closer); ok {
		if cerr := c.Close(); cerr != nil && serr == nil {
			serr = fmt.Errorf("failed to close %q: %w", path, cerr)
		}
	}
	return serr
}

// FileName returns the output file name for a query started at t.
func FileName(t time.Time, format serializer.Format) string {
	return t.UTC().Format(defaults.OutputTimeLayout) + defaults.OutputSuffix + format.Extension()
}

// NextDelay returns how long to sleep after an iteration that took elapsed.
func NextDelay(interval, elapsed time.Duration) time.Duration {
	return max(interval-elapsed, defaults.MinPollInterval)
}
