package tasks

import "vacuumsim.ai/internal/sim/layout"

type Phase string

const (
	PhaseMovingToEntry Phase = "MOVING_TO_ENTRY"
	PhaseScanning      Phase = "SCANNING"
	PhaseVacateWait    Phase = "VACATE_WAIT"
	PhaseSweeping      Phase = "SWEEPING"
	PhaseCharging      Phase = "CHARGING"
	PhaseReturning     Phase = "RETURNING_TO_ENTRY"
	PhaseExitDwell     Phase = "EXIT_DWELL"
	PhaseAllCleaned    Phase = "ALL_CLEANED"
)

// Pass distinguishes the fixed-order visit from the retry of deferred zones.
type Pass string

const (
	PassFixed   Pass = "FIXED"
	PassPending Pass = "PENDING"
)

type EventKind string

const (
	EventArrived         EventKind = "ZONE_ARRIVED"
	EventVacated         EventKind = "ZONE_VACATED"
	EventDeferred        EventKind = "ZONE_DEFERRED"
	EventSweepStarted    EventKind = "SWEEP_STARTED"
	EventZoneCleaned     EventKind = "ZONE_CLEANED"
	EventChargingStarted EventKind = "CHARGING_STARTED"
	EventChargingDone    EventKind = "CHARGING_DONE"
	EventAllCleaned      EventKind = "ALL_CLEANED"
)

type Event struct {
	Kind EventKind     `json:"kind"`
	Zone layout.ZoneID `json:"zone,omitempty"`
}

// Charging excursion stages.
const (
	chargeToStation = iota + 1
	chargeDwell
	chargeBack
)

// Cursor is the position of a boustrophedon sweep over a zone's cells.
type Cursor struct {
	Col  int
	Row  int
	Cols int
	Rows int
	Dir  int
	X    float64
	Z    float64
}

// State is the complete mutable context of a controller. It is plain data so it can be
// snapshotted and restored.
type State struct {
	Phase Phase
	Pass  Pass

	CurrentIndex int
	Pending      []layout.ZoneID
	PendingIndex int
	Cleaned      []layout.ZoneID

	// HalfZones counts cleaned half-zones; each unit is 0.5 of progress.
	HalfZones int
	// Wait is the dwell countdown of the current phase, in ticks.
	Wait int

	Charging   bool
	AllCleaned bool
	Battery    float64

	Sweep       Cursor
	ChargeStage int
	AfterCharge Phase
}
