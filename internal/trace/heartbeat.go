package trace

import (
	"context"
	"runtime"
	"strconv"
	"time"
)

// Heartbeat emits a driver-scope event every interval while a batch runs.
// A heartbeat with a growing goroutine count and no new call spans usually
// means a worker is stuck.
type Heartbeat struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// StartHeartbeat starts emitting to tracer until ctx is cancelled or Stop is
// called. It returns nil when tracing is off or interval is not positive.
func StartHeartbeat(ctx context.Context, tracer Tracer, interval time.Duration) *Heartbeat {
	if tracer == nil || !tracer.Enabled() || interval <= 0 {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	h := &Heartbeat{cancel: cancel, done: make(chan struct{})}
	go h.run(ctx, tracer, interval)
	return h
}

func (h *Heartbeat) run(ctx context.Context, tracer Tracer, interval time.Duration) {
	defer close(h.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for beat := 1; ; beat++ {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			tracer.Emit(&Event{
				Time:   now,
				Kind:   KindHeartbeat,
				Scope:  ScopeDriver,
				GID:    getGoroutineID(),
				Name:   "heartbeat",
				Detail: "#" + strconv.Itoa(beat),
				Extra:  map[string]string{"goroutines": strconv.Itoa(runtime.NumGoroutine())},
			})
		}
	}
}

// Stop ends the heartbeat and waits for its goroutine. Safe on nil and
// safe to call twice.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.cancel()
	<-h.done
}
