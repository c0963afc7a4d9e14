package tasks

import "vacuumsim.ai/internal/sim/layout"

// Status is the read-only view of the controller exposed to renderers and observers.
type Status struct {
	Phase        Phase           `json:"phase"`
	Pass         Pass            `json:"pass"`
	Zone         layout.ZoneID   `json:"zone,omitempty"`
	CurrentIndex int             `json:"current_index"`
	Pending      []layout.ZoneID `json:"pending"`
	PendingIndex int             `json:"pending_index"`
	Cleaned      []layout.ZoneID `json:"cleaned"`
	Progress     float64         `json:"progress"`
	Waiting      bool            `json:"waiting"`
	WaitTicks    int             `json:"wait_ticks,omitempty"`
	Charging     bool            `json:"charging"`
	AllCleaned   bool            `json:"all_cleaned"`
	Battery      float64         `json:"battery"`
	Sweep        *Cursor         `json:"sweep,omitempty"`
}

func (c *Controller) Status() Status {
	st := c.Export()
	s := Status{
		Phase:        st.Phase,
		Pass:         st.Pass,
		Zone:         c.Zone(),
		CurrentIndex: st.CurrentIndex,
		Pending:      st.Pending,
		PendingIndex: st.PendingIndex,
		Cleaned:      st.Cleaned,
		Progress:     float64(st.HalfZones) * 0.5,
		Charging:     st.Charging,
		AllCleaned:   st.AllCleaned,
		Battery:      st.Battery,
	}
	switch st.Phase {
	case PhaseScanning, PhaseVacateWait, PhaseSweeping, PhaseExitDwell:
		s.Waiting = st.Wait > 0
		s.WaitTicks = st.Wait
	case PhaseCharging:
		s.Waiting = st.ChargeStage == chargeDwell
		s.WaitTicks = st.Wait
	}
	if st.Phase == PhaseSweeping || (st.Phase == PhaseCharging && st.AfterCharge == PhaseSweeping) {
		cur := st.Sweep
		s.Sweep = &cur
	}
	return s
}
