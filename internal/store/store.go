package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
)

var (
	// ErrStorage wraps I/O and serialization failures on the document.
	ErrStorage = errors.New("reading store failure")
	// ErrInsufficientData is returned when statistics are requested over
	// an empty subset.
	ErrInsufficientData = errors.New("insufficient data")
)

// Store persists reading records in a single JSON document. Every mutation
// loads the whole document, modifies it in memory, and writes it back in
// one pass, so the file is never left in a torn state. This trades
// throughput for simplicity and is sized for the hundreds-to-thousands of
// records the unit produces.
type Store struct {
	mu   sync.Mutex
	path string
}

// Open binds a store to the given document path, creating an empty but
// valid document when none exists.
func Open(path string) (*Store, error) {
	s := &Store{path: path}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: stat %s: %v", ErrStorage, path, err)
		}
		if err := s.save([]Record{}); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Path reports the location of the backing document.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) load() ([]Record, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrStorage, s.path, err)
	}
	var records []Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrStorage, s.path, err)
	}
	for i := range records {
		records[i] = records[i].normalize()
	}
	return records, nil
}

// save writes the whole document through a temp file and a rename, so an
// interrupted process never exposes a partial write.
func (s *Store) save(records []Record) error {
	raw, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrStorage, err)
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".readings-*.json")
	if err != nil {
		return fmt.Errorf("%w: temp file in %s: %v", ErrStorage, dir, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: write %s: %v", ErrStorage, tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: close %s: %v", ErrStorage, tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: rename to %s: %v", ErrStorage, s.path, err)
	}
	return nil
}

// Insert appends one record to the document.
func (s *Store) Insert(rec Record) error {
	return s.InsertBatch([]Record{rec})
}

// InsertBatch appends several records in order.
func (s *Store) InsertBatch(recs []Record) error {
	if len(recs) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.load()
	if err != nil {
		return err
	}
	for _, rec := range recs {
		records = append(records, rec.normalize())
	}
	return s.save(records)
}

// All returns every record in insertion order.
func (s *Store) All() ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Filter selects records by equality on one or more fields. Time bounds
// compare the ISO-8601 timestamps lexicographically, which orders them
// chronologically. An empty match is an empty slice, not an error.
type Filter struct {
	SensorID  string
	Equipment string
	From      string
	Until     string
}

// Match reports whether the record satisfies every set constraint.
func (f Filter) Match(rec Record) bool {
	if f.SensorID != "" && rec.SensorID != f.SensorID {
		return false
	}
	if f.Equipment != "" && rec.Equipment != f.Equipment {
		return false
	}
	if f.From != "" && rec.Timestamp < f.From {
		return false
	}
	if f.Until != "" && rec.Timestamp > f.Until {
		return false
	}
	return true
}

// Filter returns the ordered subsequence of records matching the filter.
func (s *Store) Filter(f Filter) ([]Record, error) {
	records, err := s.All()
	if err != nil {
		return nil, err
	}
	matched := make([]Record, 0, len(records))
	for _, rec := range records {
		if f.Match(rec) {
			matched = append(matched, rec)
		}
	}
	return matched, nil
}

// Last returns the n most recent records, fewer when the document holds
// fewer.
func (s *Store) Last(n int) ([]Record, error) {
	records, err := s.All()
	if err != nil {
		return nil, err
	}
	if n <= 0 || n >= len(records) {
		return records, nil
	}
	return records[len(records)-n:], nil
}

// Count reports the number of stored records.
func (s *Store) Count() (int, error) {
	records, err := s.All()
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// Stats summarizes the value field over the filtered subset.
type Stats struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"moyenne"`
	StdDev float64 `json:"ecart_type"`
}

// Stats computes count, min, max, mean, and sample standard deviation for
// the records matching the filter. An empty subset yields
// ErrInsufficientData.
func (s *Store) Stats(f Filter) (Stats, error) {
	records, err := s.Filter(f)
	if err != nil {
		return Stats{}, err
	}
	if len(records) == 0 {
		return Stats{}, ErrInsufficientData
	}

	stats := Stats{
		Count: len(records),
		Min:   records[0].Value,
		Max:   records[0].Value,
	}
	sum := 0.0
	for _, rec := range records {
		sum += rec.Value
		if rec.Value < stats.Min {
			stats.Min = rec.Value
		}
		if rec.Value > stats.Max {
			stats.Max = rec.Value
		}
	}
	stats.Mean = sum / float64(len(records))

	if len(records) >= 2 {
		variance := 0.0
		for _, rec := range records {
			diff := rec.Value - stats.Mean
			variance += diff * diff
		}
		stats.StdDev = math.Sqrt(variance / float64(len(records)-1))
	}
	return stats, nil
}

// Reset clears all records, leaving an empty but valid document.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save([]Record{})
}

// DeleteBySensor removes every record for one sensor and reports how many
// were dropped.
func (s *Store) DeleteBySensor(sensorID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.load()
	if err != nil {
		return 0, err
	}
	kept := records[:0]
	for _, rec := range records {
		if rec.SensorID != sensorID {
			kept = append(kept, rec)
		}
	}
	removed := len(records) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := s.save(kept); err != nil {
		return 0, err
	}
	return removed, nil
}

// Info describes the backing document.
type Info struct {
	Path          string `json:"path"`
	RecordCount   int    `json:"record_count"`
	SensorCount   int    `json:"sensor_count"`
	FileSizeBytes int64  `json:"file_size_bytes"`
}

// Info reports the document path, record count, distinct sensor count, and
// file size.
func (s *Store) Info() (Info, error) {
	records, err := s.All()
	if err != nil {
		return Info{}, err
	}
	sensors := make(map[string]struct{}, len(records))
	for _, rec := range records {
		sensors[rec.SensorID] = struct{}{}
	}
	info := Info{
		Path:        s.path,
		RecordCount: len(records),
		SensorCount: len(sensors),
	}
	if fi, err := os.Stat(s.path); err == nil {
		info.FileSizeBytes = fi.Size()
	}
	return info, nil
}
