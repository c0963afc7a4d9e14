package world

import (
	"context"
	"time"
)

func (w *World) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(w.cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var pendingDrives []DriveCommand
	var pendingAdmin []snapshotRequest

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case req := <-w.join:
			w.handleDriverJoin(req)
		case id := <-w.leave:
			w.handleDriverLeave(id)
		case req := <-w.observerJoin:
			w.handleObserverJoin(req)
		case req := <-w.observerSub:
			w.handleObserverSubscribe(req)
		case id := <-w.observerLeave:
			w.handleObserverLeave(id)
		case req := <-w.admin:
			pendingAdmin = append(pendingAdmin, req)
		case cmd := <-w.inbox:
			pendingDrives = append(pendingDrives, cmd)
		case <-ticker.C:
			w.stepInternal(pendingDrives)
			w.handleSnapshotRequests(pendingAdmin)
			pendingDrives = pendingDrives[:0]
			pendingAdmin = pendingAdmin[:0]
		}
	}
}

func (w *World) Stop() { close(w.stop) }

// StepOnce advances the world by a single tick using the same ordering semantics as the server.
// It is primarily intended for deterministic replays/tests.
func (w *World) StepOnce(drives []DriveCommand) (tick uint64, digest string) {
	tick = w.tick.Load()
	w.stepInternal(drives)
	return tick, w.stateDigest(tick)
}

func sendLatest(ch chan []byte, b []byte) {
	select {
	case ch <- b:
		return
	default:
	}
	// Drop one.
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
}
