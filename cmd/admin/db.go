package main

import (
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

func dbCmd(args []string) {
	fs := flag.NewFlagSet("db", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	worldID := fs.String("world", "", "world id (required unless -db)")
	dbPath := fs.String("db", "", "sqlite db path (optional)")
	tick := fs.Uint64("tick", 0, "snapshot tick for zones (optional; defaults to latest)")
	limit := fs.Int("limit", 20, "result limit")
	kind := fs.String("kind", "", "kind filter (events)")
	zone := fs.String("zone", "", "zone filter (events)")
	_ = fs.Parse(args)

	q := "snapshots"
	if fs.NArg() > 0 {
		q = strings.TrimSpace(fs.Arg(0))
	}
	if *limit <= 0 {
		*limit = 20
	}

	path := strings.TrimSpace(*dbPath)
	if path == "" {
		if strings.TrimSpace(*worldID) == "" {
			fmt.Fprintln(os.Stderr, "missing -world or -db")
			os.Exit(2)
		}
		path = filepath.Join(*dataDir, "worlds", *worldID, "index", "run.sqlite")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	defer db.Close()

	if q == "zones" && *tick == 0 {
		lt, err := latestSnapshotTick(db)
		if err != nil {
			fmt.Fprintln(os.Stderr, "latest tick:", err)
			os.Exit(1)
		}
		if lt == 0 {
			fmt.Fprintln(os.Stderr, "no snapshots found")
			os.Exit(2)
		}
		*tick = lt
	}

	var rowsErr error
	switch q {
	case "snapshots":
		rowsErr = querySnapshots(db, *limit, printJSON)
	case "ticks":
		rowsErr = queryTicks(db, *limit, printJSON)
	case "events":
		rowsErr = queryEvents(db, strings.TrimSpace(*kind), strings.TrimSpace(*zone), *limit, printJSON)
	case "zones":
		rowsErr = queryZones(db, *tick, printJSON)
	case "meta":
		rowsErr = queryMeta(db, printJSON)
	default:
		fmt.Fprintln(os.Stderr, "unknown query:", q)
		fmt.Fprintln(os.Stderr, "usage: admin db [-data ./data] [-world WORLD|-db PATH] [-tick T] [-kind K] [-zone Z] snapshots|ticks|events|zones|meta")
		os.Exit(2)
	}
	if rowsErr != nil {
		fmt.Fprintln(os.Stderr, "query:", rowsErr)
		os.Exit(1)
	}
}

type snapshotRow struct {
	Tick            int64  `json:"tick"`
	Path            string `json:"path"`
	Seed            int64  `json:"seed"`
	Mode            string `json:"mode"`
	Phase           string `json:"phase"`
	DebrisRemaining int    `json:"debris_remaining"`
	ZonesCleaned    int    `json:"zones_cleaned"`
}

func querySnapshots(db *sql.DB, limit int, emit func(any)) error {
	rows, err := db.Query(`SELECT tick,path,seed,mode,phase,debris_remaining,zones_cleaned FROM snapshots ORDER BY tick DESC LIMIT ?`, limit)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var r snapshotRow
		if err := rows.Scan(&r.Tick, &r.Path, &r.Seed, &r.Mode, &r.Phase, &r.DebrisRemaining, &r.ZonesCleaned); err != nil {
			return err
		}
		emit(r)
	}
	return rows.Err()
}

type tickRow struct {
	Tick   int64  `json:"tick"`
	Digest string `json:"digest"`
	Drives int    `json:"drives"`
	Events int    `json:"events"`
}

func queryTicks(db *sql.DB, limit int, emit func(any)) error {
	rows, err := db.Query(`SELECT tick,digest,drives,events FROM ticks ORDER BY tick DESC LIMIT ?`, limit)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var r tickRow
		if err := rows.Scan(&r.Tick, &r.Digest, &r.Drives, &r.Events); err != nil {
			return err
		}
		emit(r)
	}
	return rows.Err()
}

type eventRow struct {
	Tick     int64  `json:"tick"`
	Seq      int    `json:"seq"`
	Kind     string `json:"kind"`
	Zone     string `json:"zone,omitempty"`
	DebrisID string `json:"debris_id,omitempty"`
}

func queryEvents(db *sql.DB, kind, zone string, limit int, emit func(any)) error {
	q := `SELECT tick,seq,kind,COALESCE(zone,''),COALESCE(debris_id,'') FROM events`
	var where []string
	var args []any
	if kind != "" {
		where = append(where, "kind=?")
		args = append(args, kind)
	}
	if zone != "" {
		where = append(where, "zone=?")
		args = append(args, zone)
	}
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY tick DESC, seq DESC LIMIT ?"
	args = append(args, limit)

	rows, err := db.Query(q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var r eventRow
		if err := rows.Scan(&r.Tick, &r.Seq, &r.Kind, &r.Zone, &r.DebrisID); err != nil {
			return err
		}
		emit(r)
	}
	return rows.Err()
}

type zoneRow struct {
	Tick            uint64 `json:"tick"`
	ZoneID          string `json:"zone_id"`
	Occupied        bool   `json:"occupied"`
	Cleaned         bool   `json:"cleaned"`
	DebrisRemaining int    `json:"debris_remaining"`
}

func queryZones(db *sql.DB, tick uint64, emit func(any)) error {
	rows, err := db.Query(`SELECT zone_id,occupied,cleaned,debris_remaining FROM zones WHERE tick=? ORDER BY zone_id`, tick)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		r := zoneRow{Tick: tick}
		if err := rows.Scan(&r.ZoneID, &r.Occupied, &r.Cleaned, &r.DebrisRemaining); err != nil {
			return err
		}
		emit(r)
	}
	return rows.Err()
}

func queryMeta(db *sql.DB, emit func(any)) error {
	rows, err := db.Query(`SELECT key,value FROM meta ORDER BY key`)
	if err != nil {
		return err
	}
	defer rows.Close()
	out := map[string]json.RawMessage{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return err
		}
		if json.Valid([]byte(v)) {
			out[k] = json.RawMessage(v)
		} else {
			b, _ := json.Marshal(v)
			out[k] = b
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	emit(out)
	return nil
}

func latestSnapshotTick(db *sql.DB) (uint64, error) {
	if db == nil {
		return 0, fmt.Errorf("nil db")
	}
	var t int64
	if err := db.QueryRow(`SELECT COALESCE(MAX(tick),0) FROM snapshots`).Scan(&t); err != nil {
		return 0, err
	}
	if t < 0 {
		return 0, nil
	}
	return uint64(t), nil
}
