package store

import "time"

// DefaultUnit is assumed for persisted records that omit the unit field.
const DefaultUnit = "kW"

// Record is the flat persisted form of one reading. The document on disk
// is an ordered JSON array of these objects.
type Record struct {
	SensorID  string  `json:"sensor_id"`
	Value     float64 `json:"value"`
	Timestamp string  `json:"timestamp"`
	Unit      string  `json:"unit"`
	Equipment string  `json:"type_equipement"`
}

// NewRecord flattens a reading into its persisted form. The timestamp is
// rendered as ISO-8601.
func NewRecord(sensorID string, value float64, ts time.Time, unit, equipment string) Record {
	if unit == "" {
		unit = DefaultUnit
	}
	return Record{
		SensorID:  sensorID,
		Value:     value,
		Timestamp: ts.Format(time.RFC3339),
		Unit:      unit,
		Equipment: equipment,
	}
}

// Time parses the record timestamp. A missing timestamp yields the zero
// time without error, per the tolerant-reader contract.
func (r Record) Time() (time.Time, error) {
	if r.Timestamp == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, r.Timestamp)
}

// normalize applies the documented defaults for optional fields.
func (r Record) normalize() Record {
	if r.Unit == "" {
		r.Unit = DefaultUnit
	}
	return r
}
