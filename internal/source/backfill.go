package source

import (
	"context"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/clipdex/clipdex-agent/internal/library"
	"github.com/clipdex/clipdex-agent/internal/logging"
)

// Backfill walks every project under the library root at startup and
// materializes any missing canonical source video. Best effort: failures are
// logged and counted, never fatal.
type Backfill struct {
	roots        *library.RootResolver
	materializer *Materializer
	logger       *slog.Logger
	concurrency  int
}

func NewBackfill(roots *library.RootResolver, materializer *Materializer, concurrency int, logger *slog.Logger) *Backfill {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger != nil {
		logger = logging.WithComponent(logger, "backfill")
	}
	return &Backfill{roots: roots, materializer: materializer, logger: logger, concurrency: concurrency}
}

// Run performs the backfill pass. It returns the number of projects that
// were materialized during this pass.
func (b *Backfill) Run(ctx context.Context) int {
	root, err := b.roots.Root()
	if err != nil {
		if b.logger != nil {
			b.logger.Warn("backfill skipped, library root unavailable")
		}
		return 0
	}

	projects := library.DiscoverProjects(root)
	if b.logger != nil {
		b.logger.Info("backfill started", "projects", len(projects))
	}

	var materialized int
	results := make(chan string, len(projects))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for _, projectDir := range projects {
		projectDir := projectDir
		g.Go(func() error {
			dest := library.CanonicalSourcePath(projectDir)
			if _, err := os.Stat(dest); err == nil {
				return nil
			}
			outcome := b.materializer.Materialize(ctx, projectDir, dest)
			switch outcome.Status {
			case MaterializeOK:
				results <- projectDir
			case MaterializeMissingRemote:
				// Nothing recorded to download from; common and quiet.
			default:
				if b.logger != nil {
					b.logger.Warn("backfill download failed",
						"project", logging.SanitizePath(projectDir), "message", outcome.Message)
				}
			}
			return nil
		})
	}
	g.Wait()
	close(results)
	for range results {
		materialized++
	}

	if b.logger != nil {
		b.logger.Info("backfill finished", "materialized", materialized)
	}
	return materialized
}
