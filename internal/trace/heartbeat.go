package trace

import (
	"context"
	"strconv"
	"sync/atomic"
	"time"
)

// Heartbeat emits periodic events while a long phase runs, so a stalled
// program under `dbc run` still shows progress in the trace.
type Heartbeat struct {
	tracer Tracer
	every  time.Duration
	count  atomic.Uint64
	stop   context.CancelFunc
	done   chan struct{}
}

// StartHeartbeat starts emitting every interval until Stop. A disabled
// tracer or non-positive interval yields a heartbeat that does nothing.
func StartHeartbeat(ctx context.Context, t Tracer, every time.Duration) *Heartbeat {
	h := &Heartbeat{tracer: t, every: every, done: make(chan struct{})}
	if t == nil || !t.Enabled() || every <= 0 {
		close(h.done)
		h.stop = func() {}
		return h
	}
	ctx, h.stop = context.WithCancel(ctx)
	go h.loop(ctx)
	return h
}

func (h *Heartbeat) loop(ctx context.Context) {
	defer close(h.done)
	tick := time.NewTicker(h.every)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			n := h.count.Add(1)
			h.tracer.Emit(&Event{
				Time:  time.Now(),
				Seq:   nextSeq.Add(1),
				Kind:  KindHeartbeat,
				Scope: ScopeDriver,
				GID:   goroutineID(),
				Name:  "heartbeat",
				Extra: map[string]string{"beat": strconv.FormatUint(n, 10)},
			})
		}
	}
}

// Stop ends the heartbeat and waits for the goroutine.
func (h *Heartbeat) Stop() {
	h.stop()
	<-h.done
}

// Beats returns how many heartbeats were emitted.
func (h *Heartbeat) Beats() uint64 { return h.count.Load() }
