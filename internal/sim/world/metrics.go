package world

// WorldMetrics is a thread-safe read-only view of key world runtime signals.
// It is updated from the world loop goroutine and read from HTTP handlers/tests.
type WorldMetrics struct {
	Tick uint64 `json:"tick"`
	Mode string `json:"mode"`

	Phase string `json:"phase"`
	Zone  string `json:"zone,omitempty"`

	Drivers   int `json:"drivers"`
	Observers int `json:"observers"`

	DebrisTotal     int `json:"debris_total"`
	DebrisRemaining int `json:"debris_remaining"`
	DebrisCollected int `json:"debris_collected"`

	ZonesCleaned int     `json:"zones_cleaned"`
	Pending      int     `json:"pending"`
	Progress     float64 `json:"progress"`
	Battery      float64 `json:"battery"`
	AllCleaned   bool    `json:"all_cleaned"`

	QueueDepths QueueDepths `json:"queue_depths"`

	StepMS float64 `json:"step_ms"`
}

type QueueDepths struct {
	Inbox int `json:"inbox"`
	Join  int `json:"join"`
	Leave int `json:"leave"`
}

func (w *World) Metrics() WorldMetrics {
	if w == nil {
		return WorldMetrics{}
	}
	v := w.metrics.Load()
	if v == nil {
		return WorldMetrics{}
	}
	m, ok := v.(WorldMetrics)
	if !ok {
		return WorldMetrics{}
	}
	return m
}
