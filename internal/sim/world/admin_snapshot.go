package world

import (
	"context"
	"errors"
)

type snapshotRequest struct {
	Reason string
	Resp   chan snapshotResult
}

type snapshotResult struct {
	Tick uint64
	Err  error
}

var (
	errNoSnapshotSink   = errors.New("snapshot sink not configured")
	errSnapshotBackedUp = errors.New("snapshot sink backpressure")
	errNothingStepped   = errors.New("no tick stepped yet")
)

// RequestSnapshot asks the world loop goroutine to export the state of the last stepped
// tick to the snapshot sink. Safe to call from other goroutines (e.g. HTTP handlers).
func (w *World) RequestSnapshot(ctx context.Context, reason string) (tick uint64, err error) {
	if w == nil || w.admin == nil {
		return 0, errors.New("admin snapshot not available")
	}
	resp := make(chan snapshotResult, 1)

	select {
	case w.admin <- snapshotRequest{Reason: reason, Resp: resp}:
	case <-ctx.Done():
		return 0, ctx.Err()
	}

	select {
	case r := <-resp:
		return r.Tick, r.Err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// handleSnapshotRequests runs after a step; one export serves every pending request.
func (w *World) handleSnapshotRequests(reqs []snapshotRequest) {
	if len(reqs) == 0 {
		return
	}
	var res snapshotResult
	switch cur := w.tick.Load(); {
	case cur == 0:
		res.Err = errNothingStepped
	case w.snapshotSink == nil:
		res = snapshotResult{Tick: cur - 1, Err: errNoSnapshotSink}
	default:
		res.Tick = cur - 1
		select {
		case w.snapshotSink <- w.ExportSnapshot(res.Tick):
			for _, r := range reqs {
				w.logf("snapshot requested at tick=%d (%s)", res.Tick, r.Reason)
			}
		default:
			res.Err = errSnapshotBackedUp
		}
	}
	for _, r := range reqs {
		select {
		case r.Resp <- res:
		default:
			// Requester timed out; never block the sim loop.
		}
	}
}
