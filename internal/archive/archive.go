// Package archive persists one immutable record per integrity-auditor
// run and enforces a fixed retention window. Records are individual
// JSON files named by run timestamp; the newest N survive pruning.
package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// DefaultRetain is how many audit records are kept when no explicit
// retention is configured.
const DefaultRetain = 10

const filePrefix = "integrity_"

// Sentinel values for fields the auditor never managed to compute.
const (
	UnknownVersion = "unknown"
	NoHash         = "N/A"
)

// Entry is one per-run audit record. It is written once at the end of
// a run and never mutated.
type Entry struct {
	Runtime         string `json:"runtime"`
	ManifestVersion string `json:"manifest_version"`
	SchemaHash      string `json:"schema_hash"`
	Verdict         string `json:"verdict"`
	Status          string `json:"status"`
}

// Writer appends audit records to a directory with retention pruning.
type Writer struct {
	Dir    string
	Retain int

	// now is overridable for tests.
	now func() time.Time
}

// NewWriter creates a writer for dir, retaining the most recent
// retain records (DefaultRetain when retain <= 0).
func NewWriter(dir string, retain int) *Writer {
	if retain <= 0 {
		retain = DefaultRetain
	}
	return &Writer{Dir: dir, Retain: retain, now: time.Now}
}

// Write persists entry as integrity_<UTC timestamp>.json via a
// temporary file and atomic rename, then prunes retention. Returns the
// final path of the record.
func (w *Writer) Write(entry Entry) (string, error) {
	if err := os.MkdirAll(w.Dir, 0750); err != nil {
		return "", fmt.Errorf("create archive directory: %w", err)
	}

	now := w.now
	if now == nil {
		now = time.Now
	}
	stamp := now().UTC().Format("20060102_150405")
	dst := filepath.Join(w.Dir, filePrefix+stamp+".json")
	// A re-run inside the same second must not overwrite the prior record.
	for i := 1; ; i++ {
		if _, err := os.Stat(dst); os.IsNotExist(err) {
			break
		}
		dst = filepath.Join(w.Dir, fmt.Sprintf("%s%s_%d.json", filePrefix, stamp, i))
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal audit record: %w", err)
	}

	tmp := dst + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return "", fmt.Errorf("write temp record: %w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("rename record: %w", err)
	}

	if err := w.Prune(); err != nil {
		return dst, fmt.Errorf("prune: %w", err)
	}
	return dst, nil
}

// Prune removes the oldest records (by modification time) beyond the
// retention limit. A record already removed by a concurrent pruner is
// not an error.
func (w *Writer) Prune() error {
	records, err := w.recordFiles()
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if len(records) <= w.Retain {
		return nil
	}
	for _, r := range records[w.Retain:] {
		if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// List returns the retained entries, newest first. Records that fail
// to parse are skipped rather than aborting the listing.
func (w *Writer) List() ([]Entry, error) {
	records, err := w.recordFiles()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var entries []Entry
	for _, r := range records {
		data, err := os.ReadFile(r.path)
		if err != nil {
			continue
		}
		var e Entry
		if err := json.Unmarshal(data, &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

type recordFile struct {
	path    string
	modTime time.Time
}

// recordFiles returns audit record files sorted newest first.
func (w *Writer) recordFiles() ([]recordFile, error) {
	dirEntries, err := os.ReadDir(w.Dir)
	if err != nil {
		return nil, err
	}

	var records []recordFile
	for _, e := range dirEntries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), filePrefix) || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		records = append(records, recordFile{
			path:    filepath.Join(w.Dir, e.Name()),
			modTime: info.ModTime(),
		})
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].modTime.Equal(records[j].modTime) {
			return records[i].path > records[j].path
		}
		return records[i].modTime.After(records[j].modTime)
	})
	return records, nil
}
