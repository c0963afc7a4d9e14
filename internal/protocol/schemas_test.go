package protocol_test

import (
	"encoding/json"
	"testing"

	"vacuumsim.ai/internal/protocol"
)

func TestSchemas_ValidateSamples(t *testing.T) {
	validate := func(msgType string, v any) {
		t.Helper()
		b, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if err := protocol.Validate(msgType, b); err != nil {
			t.Fatalf("validate %s: %v\n%s", msgType, err, b)
		}
	}

	validate(protocol.TypeHello, protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		ClientName:      "bot1",
		Capabilities:    protocol.HelloCapabilities{MaxQueue: 8},
	})
	validate(protocol.TypeWelcome, protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       "D1",
		Mode:            "manual",
		WorldParams:     protocol.WorldParams{TickRateHz: 60, Seed: 1337, RoomWidth: 8, RoomDepth: 8, RoomOffset: 8},
	})
	validate(protocol.TypeObs, protocol.ObsMsg{
		Type:            protocol.TypeObs,
		ProtocolVersion: protocol.Version,
		Tick:            12,
		SessionID:       "D1",
		Robot: protocol.RobotState{
			Pos:         [3]float64{0, -1.3, 0},
			Permissions: protocol.Permissions{NegX: true, PosX: true, NegZ: true, PosZ: true},
			OnFloor:     true,
		},
		DebrisRemaining: 7,
		Events:          []string{"DEBRIS_COLLECTED"},
	})
	validate(protocol.TypeDrive, protocol.DriveMsg{Type: protocol.TypeDrive, ProtocolVersion: protocol.Version, VX: 0.1, VZ: -0.1})
	validate(protocol.TypeError, protocol.NewError(protocol.ErrWrongMode, "drive requires manual mode"))
}

func TestSchemas_RejectBadMessages(t *testing.T) {
	bad := map[string]string{
		protocol.TypeDrive: `{"type":"DRIVE","protocol_version":"1.0","vx":5,"vz":0}`,
		protocol.TypeHello: `{"type":"HELLO"}`,
		protocol.TypeError: `{"type":"ERROR","protocol_version":"1.0","code":"oops"}`,
	}
	for msgType, raw := range bad {
		if err := protocol.Validate(msgType, []byte(raw)); err == nil {
			t.Fatalf("%s: expected validation error for %s", msgType, raw)
		}
	}
	if _, err := protocol.Schema("ACT"); err == nil {
		t.Fatalf("expected missing schema error")
	}
}

func TestSchemas_SubscribeEncoding(t *testing.T) {
	ok := []byte(`{"type":"SUBSCRIBE","protocol_version":"1.0","encoding":"msgpack","every":2}`)
	if err := protocol.Validate("SUBSCRIBE", ok); err != nil {
		t.Fatalf("valid subscribe rejected: %v", err)
	}
	bad := []byte(`{"type":"SUBSCRIBE","protocol_version":"1.0","encoding":"xml"}`)
	if err := protocol.Validate("SUBSCRIBE", bad); err == nil {
		t.Fatalf("unknown encoding accepted")
	}
}
