package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// csvHeader matches the persisted record field names, in document order.
var csvHeader = []string{"sensor_id", "value", "timestamp", "unit", "type_equipement"}

// ExportCSV writes the current contents to path as CSV with a header row.
// Existing content at path is overwritten.
func (s *Store) ExportCSV(path string) error {
	records, err := s.All()
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrStorage, path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("%w: write header: %v", ErrStorage, err)
	}
	for _, rec := range records {
		row := []string{
			rec.SensorID,
			strconv.FormatFloat(rec.Value, 'f', -1, 64),
			rec.Timestamp,
			rec.Unit,
			rec.Equipment,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("%w: write row: %v", ErrStorage, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("%w: flush %s: %v", ErrStorage, path, err)
	}
	return nil
}

// ExportJSON writes the current contents to path, mirroring the persisted
// document format. Existing content at path is overwritten.
func (s *Store) ExportJSON(path string) error {
	records, err := s.All()
	if err != nil {
		return err
	}
	raw, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrStorage, err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrStorage, path, err)
	}
	return nil
}
