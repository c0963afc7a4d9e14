package indexdb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"vacuumsim.ai/internal/persistence/snapshot"
	"vacuumsim.ai/internal/sim/tuning"
	"vacuumsim.ai/internal/sim/world"
)

// SQLiteIndex is a queryable secondary index of a run. Writes are queued and applied by a
// single writer goroutine in batched transactions; the JSONL logs remain the source of truth.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropTick          atomic.Uint64
	dropEvent         atomic.Uint64
	dropSnapshot      atomic.Uint64
	dropSnapshotState atomic.Uint64
}

type reqKind int

const (
	reqTick reqKind = iota + 1
	reqEvent
	reqSnapshot
	reqSnapshotState
)

type req struct {
	kind reqKind

	tick     world.TickLogEntry
	event    world.Event
	snapshot snapshotRow
	zones    []zoneRow
}

type snapshotRow struct {
	Tick            uint64
	Path            string
	Seed            int64
	Mode            string
	Phase           string
	DebrisRemaining int
	ZonesCleaned    int
}

type zoneRow struct {
	Tick            uint64
	ZoneID          string
	Occupied        bool
	Cleaned         bool
	DebrisRemaining int
}

// Stats are drop counters of the write queue.
type Stats struct {
	DropTickTotal          uint64 `json:"drop_tick_total"`
	DropEventTotal         uint64 `json:"drop_event_total"`
	DropSnapshotTotal      uint64 `json:"drop_snapshot_total"`
	DropSnapshotStateTotal uint64 `json:"drop_snapshot_state_total"`
	QueueDepth             int    `json:"queue_depth"`
	QueueCapacity          int    `json:"queue_capacity"`
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		// One tick entry per tick plus bursts of events; a few minutes of headroom at 60 Hz.
		ch: make(chan req, 65536),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	// NORMAL is a decent durability/perf tradeoff for a secondary index.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS ticks (
			tick INTEGER PRIMARY KEY,
			digest TEXT NOT NULL,
			drives INTEGER NOT NULL,
			events INTEGER NOT NULL,
			raw_json TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS events (
			tick INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			kind TEXT NOT NULL,
			zone TEXT,
			debris_id TEXT,
			PRIMARY KEY (tick, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_kind_tick ON events(kind, tick);`,
		`CREATE INDEX IF NOT EXISTS idx_events_zone_tick ON events(zone, tick);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			tick INTEGER PRIMARY KEY,
			path TEXT NOT NULL,
			seed INTEGER NOT NULL,
			mode TEXT NOT NULL,
			phase TEXT NOT NULL,
			debris_remaining INTEGER NOT NULL,
			zones_cleaned INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS zones (
			tick INTEGER NOT NULL,
			zone_id TEXT NOT NULL,
			occupied INTEGER NOT NULL,
			cleaned INTEGER NOT NULL,
			debris_remaining INTEGER NOT NULL,
			PRIMARY KEY (tick, zone_id)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		DropTickTotal:          s.dropTick.Load(),
		DropEventTotal:         s.dropEvent.Load(),
		DropSnapshotTotal:      s.dropSnapshot.Load(),
		DropSnapshotStateTotal: s.dropSnapshotState.Load(),
		QueueDepth:             len(s.ch),
		QueueCapacity:          cap(s.ch),
	}
}

func (s *SQLiteIndex) enqueue(r req, drops *atomic.Uint64) {
	if s == nil || s.closed.Load() {
		return
	}
	select {
	case s.ch <- r:
	default:
		// Drop if the indexer falls behind.
		drops.Add(1)
	}
}

func (s *SQLiteIndex) WriteTick(entry world.TickLogEntry) error {
	s.enqueue(req{kind: reqTick, tick: entry}, &s.dropTick)
	return nil
}

func (s *SQLiteIndex) WriteEvent(ev world.Event) error {
	s.enqueue(req{kind: reqEvent, event: ev}, &s.dropEvent)
	return nil
}

func (s *SQLiteIndex) RecordSnapshot(path string, snap snapshot.SnapshotV1) {
	r := snapshotRow{
		Tick:            snap.Header.Tick,
		Path:            path,
		Seed:            snap.Seed,
		Mode:            snap.Mode,
		Phase:           snap.Controller.Phase,
		DebrisRemaining: remainingDebris(snap),
		ZonesCleaned:    len(snap.Controller.Cleaned),
	}
	s.enqueue(req{kind: reqSnapshot, snapshot: r}, &s.dropSnapshot)
}

// RecordSnapshotState stores per-zone state (occupancy, cleaned, remaining debris) as of the
// snapshot tick.
func (s *SQLiteIndex) RecordSnapshotState(snap snapshot.SnapshotV1) {
	cleaned := map[string]bool{}
	for _, id := range snap.Controller.Cleaned {
		cleaned[id] = true
	}
	left := map[string]int{}
	for _, d := range snap.Debris {
		if d.Visible {
			left[d.Zone]++
		}
	}
	rows := make([]zoneRow, 0, len(snap.Zones))
	for _, z := range snap.Zones {
		rows = append(rows, zoneRow{
			Tick:            snap.Header.Tick,
			ZoneID:          z.ID,
			Occupied:        z.Occupied,
			Cleaned:         cleaned[z.ID],
			DebrisRemaining: left[z.ID],
		})
	}
	s.enqueue(req{kind: reqSnapshotState, zones: rows}, &s.dropSnapshotState)
}

func remainingDebris(snap snapshot.SnapshotV1) int {
	n := 0
	for _, d := range snap.Debris {
		if d.Visible {
			n++
		}
	}
	return n
}

// UpsertRunMeta records the run identity and the tuning values actually applied.
// It writes synchronously and is meant to be called once at startup.
func (s *SQLiteIndex) UpsertRunMeta(worldID string, seed int64, tune tuning.Tuning) error {
	if s == nil {
		return nil
	}
	b, err := json.Marshal(tune)
	if err != nil {
		return err
	}
	sum := sha256.Sum256(b)
	rows := [][2]string{
		{"schema_version", "1"},
		{"world_id", worldID},
		{"seed", fmt.Sprint(seed)},
		{"mode", tune.Mode},
		{"tuning_json", string(b)},
		{"tuning_digest", hex.EncodeToString(sum[:])},
		{"started_at", time.Now().UTC().Format(time.RFC3339Nano)},
	}

	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO meta(key,value) VALUES(?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.Exec(r[0], r[1]); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	// Prepared statements (on db; executed within tx).
	insertTick, _ := s.db.Prepare(`INSERT OR REPLACE INTO ticks(tick,digest,drives,events,raw_json) VALUES(?,?,?,?,?)`)
	insertEvent, _ := s.db.Prepare(`INSERT OR REPLACE INTO events(tick,seq,kind,zone,debris_id) VALUES(?,?,?,?,?)`)
	insertSnapshot, _ := s.db.Prepare(`INSERT OR REPLACE INTO snapshots(tick,path,seed,mode,phase,debris_remaining,zones_cleaned) VALUES(?,?,?,?,?,?,?)`)
	insertZone, _ := s.db.Prepare(`INSERT OR REPLACE INTO zones(tick,zone_id,occupied,cleaned,debris_remaining) VALUES(?,?,?,?,?)`)
	defer func() {
		for _, st := range []*sql.Stmt{insertTick, insertEvent, insertSnapshot, insertZone} {
			if st != nil {
				_ = st.Close()
			}
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 2000
		commitMaxWait = 2 * time.Second

		lastEventTick uint64
		eventSeq      int
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			// If we can't start a tx, we can't do much; sleep a bit.
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	exec := func(st *sql.Stmt, args ...any) bool {
		if st == nil {
			return false
		}
		if _, err := tx.Stmt(st).Exec(args...); err != nil {
			rollback()
			return false
		}
		opCount++
		return true
	}

	for r := range s.ch {
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqTick:
			b, _ := json.Marshal(r.tick)
			exec(insertTick, int64(r.tick.Tick), r.tick.Digest, len(r.tick.Drives), len(r.tick.Events), string(b))

		case reqEvent:
			ev := r.event
			if ev.Tick != lastEventTick {
				lastEventTick = ev.Tick
				eventSeq = 0
			}
			seq := eventSeq
			eventSeq++
			exec(insertEvent, int64(ev.Tick), seq, ev.Kind, nullString(ev.Zone), nullString(ev.DebrisID))

		case reqSnapshot:
			sn := r.snapshot
			exec(insertSnapshot, int64(sn.Tick), sn.Path, sn.Seed, sn.Mode, sn.Phase, sn.DebrisRemaining, sn.ZonesCleaned)

		case reqSnapshotState:
			for _, z := range r.zones {
				if !exec(insertZone, int64(z.Tick), z.ZoneID, boolInt(z.Occupied), boolInt(z.Cleaned), z.DebrisRemaining) {
					break
				}
			}
		}
		if tx != nil && (opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait) {
			commit()
		}
	}

	commit()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
