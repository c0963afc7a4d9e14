package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

const Version = 1

type Header struct {
	Version int    `json:"version"`
	WorldID string `json:"world_id"`
	Tick    uint64 `json:"tick"`
}

// SnapshotV1 is the complete simulation state after Header.Tick was stepped.
// The static layout (room geometry, debris placement) is regenerated from Seed.
type SnapshotV1 struct {
	Header Header `json:"header"`

	Seed     int64  `json:"seed"`
	TickRate int    `json:"tick_rate_hz"`
	Mode     string `json:"mode"`

	SnapshotEveryTicks int `json:"snapshot_every_ticks,omitempty"`

	Zones      []ZoneV1     `json:"zones"`
	Robot      BodyV1       `json:"robot"`
	Debris     []DebrisV1   `json:"debris"`
	Controller ControllerV1 `json:"controller"`

	Counters CountersV1 `json:"counters"`
}

type ZoneV1 struct {
	ID       string `json:"id"`
	Occupied bool   `json:"occupied"`
}

type BodyV1 struct {
	Pos     [3]float64 `json:"pos"`
	Vel     [3]float64 `json:"vel"`
	Perm    [4]bool    `json:"perm"` // -x, +x, -z, +z
	OnFloor bool       `json:"on_floor"`
}

type DebrisV1 struct {
	ID      string     `json:"id"`
	Zone    string     `json:"zone"`
	Pos     [3]float64 `json:"pos"`
	Visible bool       `json:"visible"`
}

type ControllerV1 struct {
	Phase string `json:"phase"`
	Pass  string `json:"pass"`

	CurrentIndex int      `json:"current_index"`
	Pending      []string `json:"pending,omitempty"`
	PendingIndex int      `json:"pending_index"`
	Cleaned      []string `json:"cleaned,omitempty"`

	HalfZones int `json:"half_zones"`
	Wait      int `json:"wait"`

	Charging   bool    `json:"charging"`
	AllCleaned bool    `json:"all_cleaned"`
	Battery    float64 `json:"battery"`

	Sweep       CursorV1 `json:"sweep"`
	ChargeStage int      `json:"charge_stage,omitempty"`
	AfterCharge string   `json:"after_charge,omitempty"`
}

type CursorV1 struct {
	Col  int     `json:"col"`
	Row  int     `json:"row"`
	Cols int     `json:"cols"`
	Rows int     `json:"rows"`
	Dir  int     `json:"dir"`
	X    float64 `json:"x"`
	Z    float64 `json:"z"`
}

type CountersV1 struct {
	NextDriver      uint64 `json:"next_driver"`
	DebrisCollected int    `json:"debris_collected"`
}

func WriteSnapshot(path string, snap SnapshotV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	defer enc.Close()

	bw := bufio.NewWriterSize(enc, 256*1024)
	defer bw.Flush()

	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}

	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	return nil
}

func ReadSnapshot(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)

	// Read header line (ignore it for now, gob also contains header).
	_, _ = br.ReadBytes('\n')

	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	return snap, nil
}

// ReadHeader decodes only the JSON header line.
func ReadHeader(path string) (Header, error) {
	var h Header
	f, err := os.Open(path)
	if err != nil {
		return h, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return h, err
	}
	defer dec.Close()

	line, err := bufio.NewReader(dec).ReadBytes('\n')
	if err != nil {
		return h, fmt.Errorf("header line: %w", err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, fmt.Errorf("header json: %w", err)
	}
	return h, nil
}
