package world

import "vacuumsim.ai/internal/sim/tasks"

// Event kinds. Controller kinds are forwarded unchanged; DEBRIS_COLLECTED comes from suction.
const (
	EventArrived         = string(tasks.EventArrived)
	EventVacated         = string(tasks.EventVacated)
	EventDeferred        = string(tasks.EventDeferred)
	EventSweepStarted    = string(tasks.EventSweepStarted)
	EventZoneCleaned     = string(tasks.EventZoneCleaned)
	EventChargingStarted = string(tasks.EventChargingStarted)
	EventChargingDone    = string(tasks.EventChargingDone)
	EventAllCleaned      = string(tasks.EventAllCleaned)
	EventDebrisCollected = "DEBRIS_COLLECTED"
)

type Event struct {
	Tick     uint64 `json:"tick"`
	Kind     string `json:"kind"`
	Zone     string `json:"zone,omitempty"`
	DebrisID string `json:"debris_id,omitempty"`
}

// logLifecycle writes the few transitions worth a log line.
func (w *World) logLifecycle(events []Event) {
	for _, ev := range events {
		switch ev.Kind {
		case EventZoneCleaned:
			w.logf("tick=%d zone cleaned: %s", ev.Tick, ev.Zone)
		case EventDeferred:
			w.logf("tick=%d zone occupied, deferred: %s", ev.Tick, ev.Zone)
		case EventChargingStarted:
			w.logf("tick=%d charging excursion from %s", ev.Tick, ev.Zone)
		case EventAllCleaned:
			w.logf("tick=%d all zones cleaned (debris collected=%d)", ev.Tick, w.collected)
		}
	}
}
