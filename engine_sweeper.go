package tokenauth

import (
	"context"
	"log"
	"strconv"
	"time"
)

// PurgeExpired removes revocation records whose retention horizon has
// passed and returns how many were removed. Redis already expires the
// per-token keys; this prunes the index so it cannot grow unbounded.
func (e *Engine) PurgeExpired(ctx context.Context) (int, error) {
	if e == nil || e.revocations == nil {
		return 0, ErrEngineNotReady
	}

	purged, err := e.revocations.PurgeExpiredBefore(ctx, e.now())
	if err != nil {
		return 0, err
	}

	if purged > 0 {
		e.metrics.Add(MetricRevocationPurged, uint64(purged))
	}
	e.emitAudit(ctx, auditEventRevocationSweep, true, "", "", nil, func() map[string]string {
		return map[string]string{"purged": strconv.Itoa(purged)}
	})

	return purged, nil
}

// RunSweeper purges expired revocation records every SweepInterval until
// ctx is cancelled. Run it in its own goroutine; sweep failures are
// logged and retried on the next tick rather than stopping the loop.
func (e *Engine) RunSweeper(ctx context.Context) {
	if e == nil || e.revocations == nil {
		return
	}

	ticker := time.NewTicker(e.config.Revocation.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := e.PurgeExpired(ctx); err != nil {
				log.Print("tokenauth: revocation sweep failed")
			}
		}
	}
}
