package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dirigent/internal/catalog"
	"dirigent/internal/signal"
)

// Engine runs the resolution pipeline. It holds no mutable state:
// concurrent Resolve calls share only the immutable catalog snapshot
// passed in, so no locking is needed.
type Engine struct {
	log *zap.Logger
}

// New creates an engine. A nil logger disables logging.
func New(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{log: log}
}

// Resolve runs match -> expand -> resolve -> sequence over one catalog
// snapshot and one signal set, returning a complete bundle or an error,
// never a partial bundle. The context is checked only at the call
// boundary; the pipeline itself is bounded and fast.
func (e *Engine) Resolve(ctx context.Context, cat *catalog.Catalog, sig *signal.Signals) (*Bundle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	runID := uuid.NewString()

	candidates := match(cat, sig)
	e.log.Debug("matched candidates",
		zap.String("run_id", runID),
		zap.Int("count", len(candidates)))

	expanded, err := expand(cat, candidates)
	if err != nil {
		return nil, err
	}

	res, err := resolve(cat, expanded)
	if err != nil {
		return nil, err
	}

	units, err := sequence(cat, res.ids)
	if err != nil {
		return nil, err
	}

	for i := range units {
		if ruler, ok := res.overriddenBy[units[i].ID]; ok {
			units[i].OverriddenBy = ruler
		}
	}

	bundle := &Bundle{
		RunID:   runID,
		Units:   units,
		Dropped: res.dropped,
	}

	e.log.Info("resolution complete",
		zap.String("run_id", runID),
		zap.Int("units", len(bundle.Units)),
		zap.Int("dropped", len(bundle.Dropped)),
		zap.Duration("took", time.Since(start)))

	return bundle, nil
}
