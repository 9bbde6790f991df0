package connectors

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/evidence-sync/internal/core/domain"
	"github.com/custodia-labs/evidence-sync/internal/logger"
)

// ErrorCode returns the SyncError code recorded when a service unit fails.
func ErrorCode(service string) string {
	return service + "_sync_failed"
}

// Unit is one unit of work: one service, optionally bound to one fan-out
// resource such as a region.
type Unit struct {
	Service  string
	Resource string
	Run      func(ctx context.Context) (*domain.SyncResult, error)
}

// RunOptions tunes RunUnits.
type RunOptions struct {
	// MaxConcurrency bounds how many units run at once.
	// Zero or one runs units sequentially.
	MaxConcurrency int
}

// Scope carries the logging fields shared by every unit of a sync.
type Scope struct {
	Provider string
	Sync     domain.SyncContext
}

// RunUnits attempts every unit exactly once and merges the outcomes in
// declaration order.
//
// A failed unit contributes one SyncError and none of its partial output.
// When ctx is cancelled RunUnits returns ctx.Err() and no result.
func RunUnits(ctx context.Context, scope Scope, units []Unit, opts RunOptions) (*domain.SyncResult, error) {
	outcomes := make([]*domain.SyncResult, len(units))

	if opts.MaxConcurrency > 1 && len(units) > 1 {
		g := new(errgroup.Group)
		g.SetLimit(opts.MaxConcurrency)
		for i, u := range units {
			g.Go(func() error {
				if ctx.Err() != nil {
					return nil
				}
				outcomes[i] = runUnit(ctx, scope, u)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, u := range units {
			if ctx.Err() != nil {
				break
			}
			outcomes[i] = runUnit(ctx, scope, u)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := domain.NewSyncResult()
	for _, o := range outcomes {
		result.Merge(o)
	}
	return result, nil
}

func runUnit(ctx context.Context, scope Scope, u Unit) *domain.SyncResult {
	log := logger.With(
		"organization", scope.Sync.OrganizationID,
		"integration", scope.Sync.IntegrationID,
		"provider", scope.Provider,
		"service", u.Service,
	)
	if u.Resource != "" {
		log = log.With("resource", u.Resource)
	}

	start := time.Now()
	log.Debug("unit started")

	res, err := u.Run(ctx)
	if err != nil {
		log.Warn("unit failed", "error", err, "duration", time.Since(start))
		failed := domain.NewSyncResult()
		failed.AddError(ErrorCode(u.Service), err.Error(), u.Resource)
		return failed
	}
	if res == nil {
		res = domain.NewSyncResult()
	}
	log.Info("unit completed",
		"processed", res.RecordsProcessed,
		"evidence", len(res.Evidence),
		"duration", time.Since(start))
	return res
}

// Shared is a listing computed once and reused by every dependent unit.
type Shared[T any] struct {
	Items []T
	Err   error
}

// LoadShared runs load when needed is true. The listing is computed once,
// before any dependent unit runs; a failed listing is handed to each
// dependent so every one of them records its own failure.
func LoadShared[T any](ctx context.Context, needed bool, load func(context.Context) ([]T, error)) Shared[T] {
	if !needed {
		return Shared[T]{}
	}
	items, err := load(ctx)
	return Shared[T]{Items: items, Err: err}
}

// Get returns the listing or the error that prevented it.
func (s Shared[T]) Get() ([]T, error) {
	return s.Items, s.Err
}
