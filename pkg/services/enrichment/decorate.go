package enrichment

import (
	"context"

	"github.com/de-tools/changeguard/pkg/models/domain"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const DefaultConcurrency = 4

// DecorateAll decorates every alert with at most concurrency calls in flight.
// Results keep the alerts' order. The first failure cancels the remaining calls
// and no partial result is returned.
func DecorateAll(
	ctx context.Context,
	decorator Decorator,
	alerts []domain.Alert,
	concurrency int,
) ([]domain.DecoratedAlert, error) {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	decorated := make([]domain.DecoratedAlert, len(alerts))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, alert := range alerts {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			result, err := decorator.Decorate(gCtx, alert)
			if err != nil {
				return &AlertError{Index: i, LogicalID: alert.LogicalID, PolicyID: alert.PolicyID, Err: err}
			}
			decorated[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Int("alerts", len(alerts)).
		Int("concurrency", concurrency).
		Msg("alerts decorated")

	return decorated, nil
}
