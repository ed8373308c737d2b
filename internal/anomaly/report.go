package anomaly

import "math"

// Report summarizes a detection pass. A record flagged by both rules
// counts once toward the total but once per rule in ByRule.
type Report struct {
	TotalReadings  int            `json:"total_readings"`
	TotalAnomalies int            `json:"total_anomalies"`
	Percentage     float64        `json:"percentage"`
	ByRule         map[string]int `json:"by_rule"`
	ByEquipment    map[string]int `json:"by_equipment"`
	BySensor       map[string]int `json:"by_sensor"`
	Flagged        []Verdict      `json:"flagged"`
}

// Report aggregates verdicts into a summary with the flagged detail list.
func (d *Detector) Report(verdicts []Verdict) Report {
	report := Report{
		TotalReadings: len(verdicts),
		ByRule:        make(map[string]int),
		ByEquipment:   make(map[string]int),
		BySensor:      make(map[string]int),
	}

	for _, v := range verdicts {
		if !v.Flagged {
			continue
		}
		report.TotalAnomalies++
		report.ByEquipment[v.Record.Equipment]++
		report.BySensor[v.Record.SensorID]++
		for _, rule := range v.Rules {
			report.ByRule[rule]++
		}
		report.Flagged = append(report.Flagged, v)
	}

	if report.TotalReadings > 0 {
		pct := float64(report.TotalAnomalies) / float64(report.TotalReadings) * 100
		report.Percentage = math.Round(pct*100) / 100
	}
	return report
}
