package main

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"vacuumsim.ai/internal/persistence/indexdb"
	"vacuumsim.ai/internal/persistence/snapshot"
	"vacuumsim.ai/internal/sim/tuning"
	"vacuumsim.ai/internal/sim/world"
)

type runtimeIndex interface {
	world.TickLogger
	world.EventLogger
	Close() error
	Stats() indexdb.Stats
	UpsertRunMeta(worldID string, seed int64, tune tuning.Tuning) error
	RecordSnapshot(path string, snap snapshot.SnapshotV1)
	RecordSnapshotState(snap snapshot.SnapshotV1)
}

func openRuntimeIndex(worldDir string, disableDB bool) (runtimeIndex, error) {
	if disableDB {
		return nil, nil
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv("VC_INDEX_BACKEND"))) {
	case "none", "off", "disabled":
		return nil, nil
	}
	return indexdb.OpenSQLite(filepath.Join(worldDir, "index", "run.sqlite"))
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func defaultEnableAdminHTTP() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("DEPLOY_ENV"))) {
	case "staging", "production":
		return false
	default:
		return true
	}
}
