package browser

import (
	"context"
	"time"
)

// WaitStrategy polls a probe until it succeeds or the timeout passes.
type WaitStrategy struct {
	Timeout  time.Duration
	Interval time.Duration
}

// NewWaitStrategy creates a wait strategy polling every 250ms.
func NewWaitStrategy(timeout time.Duration) *WaitStrategy {
	return &WaitStrategy{
		Timeout:  timeout,
		Interval: 250 * time.Millisecond,
	}
}

// WaitForAny runs probe until it reports true. Probe errors count as "not
// yet"; a page mid-navigation commonly fails evaluation.
func (ws *WaitStrategy) WaitForAny(ctx context.Context, probe func(context.Context) (bool, error)) bool {
	timeoutCtx, cancel := context.WithTimeout(ctx, ws.Timeout)
	defer cancel()

	ticker := time.NewTicker(ws.Interval)
	defer ticker.Stop()

	for {
		if ok, err := probe(timeoutCtx); err == nil && ok {
			return true
		}
		select {
		case <-timeoutCtx.Done():
			return false
		case <-ticker.C:
		}
	}
}

// Sleep pauses for d unless ctx ends first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
