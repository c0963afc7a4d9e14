package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/zstd"

	"vacuumsim.ai/internal/sim/world"
)

// TickLogFiles lists the hourly tick log files of a world directory in time order.
func TickLogFiles(worldDir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(worldDir, "events", "events-*.jsonl.zst"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// ReadJSONL decodes every line of a zstd JSONL file, calling fn for each raw line.
// Iteration stops at the first error returned by fn.
func ReadJSONL(path string, fn func(line []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		if len(sc.Bytes()) == 0 {
			continue
		}
		if err := fn(sc.Bytes()); err != nil {
			return err
		}
	}
	return sc.Err()
}

// ReadTicks streams tick log entries from the given files in order.
func ReadTicks(files []string, fn func(world.TickLogEntry) error) error {
	for _, path := range files {
		err := ReadJSONL(path, func(line []byte) error {
			var e world.TickLogEntry
			if err := json.Unmarshal(line, &e); err != nil {
				return fmt.Errorf("%s: %w", filepath.Base(path), err)
			}
			return fn(e)
		})
		if err != nil {
			return err
		}
	}
	return nil
}
