package main

import (
	"testing"

	"vacuumsim.ai/internal/protocol"
)

func TestDriver_TurnsAfterLegAndWhenBlocked(t *testing.T) {
	d := &driver{speed: 0.1, leg: 2}
	open := protocol.ObsMsg{Robot: protocol.RobotState{Permissions: protocol.Permissions{NegX: true, PosX: true, NegZ: true, PosZ: true}}}

	var got [][2]float64
	for i := 0; i < 4; i++ {
		m, ok := d.next(&open)
		if !ok {
			t.Fatalf("expected drive")
		}
		got = append(got, [2]float64{m.VX, m.VZ})
	}
	want := [][2]float64{{0, 0.1}, {0, 0.1}, {-0.1, 0}, {-0.1, 0}}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("step %d: got %v want %v", i, got[i], want[i])
		}
	}

	blockedObs := open
	blockedObs.Robot.Permissions.NegZ = false
	m, _ := d.next(&blockedObs)
	if m.VX != 0.1 || m.VZ != 0 {
		t.Fatalf("expected turn past blocked -Z to +X, got %+v", m)
	}
}

func TestDriver_PassiveSendsNothing(t *testing.T) {
	d := &driver{speed: 0.1, leg: 2, passive: true}
	if _, ok := d.next(&protocol.ObsMsg{}); ok {
		t.Fatalf("passive driver should not drive")
	}
}
