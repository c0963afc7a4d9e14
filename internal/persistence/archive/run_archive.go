package archive

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"vacuumsim.ai/internal/persistence/snapshot"
)

type RunArchiveMeta struct {
	WorldID         string   `json:"world_id"`
	Seed            int64    `json:"seed"`
	Mode            string   `json:"mode"`
	EndTick         uint64   `json:"end_tick"`
	Snapshot        string   `json:"snapshot"`
	Cleaned         []string `json:"cleaned"`
	Deferred        []string `json:"deferred,omitempty"`
	DebrisCollected int      `json:"debris_collected"`
	CreatedAt       string   `json:"created_at"`
}

// ArchiveCompletedRun copies the first snapshot taken after every zone was cleaned into
// `worldDir/archives/seed_<seed>/`. Later snapshots of the same run are ignored.
func ArchiveCompletedRun(worldDir, snapshotPath string, snap snapshot.SnapshotV1) (archivedPath string, archived bool, err error) {
	if !snap.Controller.AllCleaned {
		return "", false, nil
	}
	archiveDir := filepath.Join(worldDir, "archives", fmt.Sprintf("seed_%d", snap.Seed))
	metaPath := filepath.Join(archiveDir, "meta.json")
	if _, err := os.Stat(metaPath); err == nil {
		return "", false, nil
	}
	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		return "", false, err
	}

	dst := filepath.Join(archiveDir, filepath.Base(snapshotPath))
	if err := copyFile(snapshotPath, dst); err != nil {
		return "", false, err
	}

	meta := RunArchiveMeta{
		WorldID:         snap.Header.WorldID,
		Seed:            snap.Seed,
		Mode:            snap.Mode,
		EndTick:         snap.Header.Tick,
		Snapshot:        filepath.Base(dst),
		Cleaned:         snap.Controller.Cleaned,
		Deferred:        snap.Controller.Pending,
		DebrisCollected: snap.Counters.DebrisCollected,
		CreatedAt:       time.Now().UTC().Format(time.RFC3339Nano),
	}
	b, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", false, err
	}
	if err := os.WriteFile(metaPath, b, 0o644); err != nil {
		return "", false, err
	}
	return dst, true, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
