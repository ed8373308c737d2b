// Package anomaly flags abnormal energy consumption in stored readings.
// Two rules apply: a fixed per-equipment ceiling and a statistical check
// against the equipment group's mean and standard deviation.
package anomaly

import (
	"math"

	"github.com/vallois/aquawatt/internal/store"
)

// Rule names recorded on flagged verdicts. The values match the tags the
// persisted reports have always used.
const (
	RuleFixedThreshold = "seuil_depasse"
	RuleStatistical    = "ecart_type"
)

// minGroupSize is the smallest equipment group the statistical rule runs
// on. Smaller groups are an insufficient sample, not an error.
const minGroupSize = 2

// Config carries the detection parameters. Both parts are overridable by
// the caller; zero values fall back to the defaults.
type Config struct {
	// Thresholds maps an equipment type to its fixed ceiling in kW.
	Thresholds map[string]float64
	// K is the standard-deviation multiplier of the statistical rule.
	K float64
}

// DefaultConfig returns the thresholds calibrated just above each
// equipment family's plausible range, with k = 2.
func DefaultConfig() Config {
	return Config{
		Thresholds: map[string]float64{
			"pompe":       3.2,
			"compresseur": 8.0,
			"eclairage":   1.7,
			"ventilation": 2.2,
		},
		K: 2.0,
	}
}

// Detector applies the two anomaly rules to reading records. It is
// stateless across calls.
type Detector struct {
	cfg Config
}

// New creates a detector. Missing config parts take the default values.
func New(cfg Config) *Detector {
	if cfg.Thresholds == nil {
		cfg.Thresholds = DefaultConfig().Thresholds
	}
	if cfg.K <= 0 {
		cfg.K = DefaultConfig().K
	}
	return &Detector{cfg: cfg}
}

// Verdict is the per-record outcome: whether the record was flagged, by
// which rule(s), and the numbers supporting the decision.
type Verdict struct {
	Record    store.Record `json:"record"`
	Flagged   bool         `json:"flagged"`
	Rules     []string     `json:"rules,omitempty"`
	Threshold float64      `json:"threshold,omitempty"`
	GroupSize int          `json:"group_size"`
	Mean      float64      `json:"mean,omitempty"`
	StdDev    float64      `json:"std_dev,omitempty"`
	Deviation float64      `json:"deviation,omitempty"`
}

type groupStats struct {
	size   int
	mean   float64
	stdDev float64
}

// Detect evaluates every record and returns one verdict per record, in
// input order. A record may be flagged by both rules at once.
func (d *Detector) Detect(records []store.Record) []Verdict {
	stats := groupByEquipment(records)

	verdicts := make([]Verdict, 0, len(records))
	for _, rec := range records {
		v := Verdict{Record: rec}

		if threshold, ok := d.cfg.Thresholds[rec.Equipment]; ok {
			v.Threshold = threshold
			if rec.Value > threshold {
				v.Flagged = true
				v.Rules = append(v.Rules, RuleFixedThreshold)
			}
		}

		if gs, ok := stats[rec.Equipment]; ok {
			v.GroupSize = gs.size
			if gs.size >= minGroupSize && gs.stdDev > 0 {
				v.Mean = gs.mean
				v.StdDev = gs.stdDev
				v.Deviation = math.Abs(rec.Value - gs.mean)
				if v.Deviation > d.cfg.K*gs.stdDev {
					v.Flagged = true
					v.Rules = append(v.Rules, RuleStatistical)
				}
			}
		}

		verdicts = append(verdicts, v)
	}
	return verdicts
}

// groupByEquipment computes per-type mean and sample standard deviation.
func groupByEquipment(records []store.Record) map[string]groupStats {
	values := make(map[string][]float64)
	for _, rec := range records {
		values[rec.Equipment] = append(values[rec.Equipment], rec.Value)
	}

	stats := make(map[string]groupStats, len(values))
	for equipment, vs := range values {
		gs := groupStats{size: len(vs)}
		sum := 0.0
		for _, v := range vs {
			sum += v
		}
		gs.mean = sum / float64(len(vs))
		if len(vs) >= minGroupSize {
			variance := 0.0
			for _, v := range vs {
				diff := v - gs.mean
				variance += diff * diff
			}
			gs.stdDev = math.Sqrt(variance / float64(len(vs)-1))
		}
		stats[equipment] = gs
	}
	return stats
}
