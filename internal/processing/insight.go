// Package processing turns anomaly reports into operator-facing text.
package processing

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/vallois/aquawatt/internal/anomaly"
	"github.com/vallois/aquawatt/internal/llm"
)

const insightSystemPrompt = "You are an operations analyst for a water-treatment " +
	"facility. You receive an anomaly report over energy-consumption readings " +
	"from pumps, compressors, lighting, and ventilation. Summarize the situation " +
	"for a plant operator in a few short sentences: which equipment is affected, " +
	"how severe the excursions are, and what to check first. Do not invent data."

// maxFlaggedInPrompt caps the detail lines sent to the model so large
// reports stay within a reasonable prompt size.
const maxFlaggedInPrompt = 40

// InsightService renders anomaly reports as text and asks the model for an
// operational summary.
type InsightService struct {
	llm *llm.Client
}

// NewInsightService wires the LLM client.
func NewInsightService(client *llm.Client) *InsightService {
	return &InsightService{llm: client}
}

// Summarize produces a short narrative for the given report.
func (s *InsightService) Summarize(ctx context.Context, report anomaly.Report) (string, error) {
	if s.llm == nil {
		return "", fmt.Errorf("LLM client not configured")
	}
	answer, err := s.llm.GenerateText(ctx, insightSystemPrompt, renderReport(report))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

// renderReport flattens the report into a compact text block for the
// prompt.
func renderReport(report anomaly.Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Total readings: %d\n", report.TotalReadings)
	fmt.Fprintf(&sb, "Anomalies: %d (%.2f%%)\n", report.TotalAnomalies, report.Percentage)

	writeCounts(&sb, "By rule", report.ByRule)
	writeCounts(&sb, "By equipment type", report.ByEquipment)
	writeCounts(&sb, "By sensor", report.BySensor)

	if len(report.Flagged) > 0 {
		sb.WriteString("Flagged readings:\n")
		flagged := report.Flagged
		if len(flagged) > maxFlaggedInPrompt {
			flagged = flagged[:maxFlaggedInPrompt]
		}
		for _, v := range flagged {
			fmt.Fprintf(&sb, "- %s (%s) value=%.2f %s rules=%s",
				v.Record.SensorID, v.Record.Equipment, v.Record.Value,
				v.Record.Unit, strings.Join(v.Rules, "+"))
			if v.Threshold > 0 {
				fmt.Fprintf(&sb, " threshold=%.2f", v.Threshold)
			}
			if v.StdDev > 0 {
				fmt.Fprintf(&sb, " mean=%.2f stddev=%.2f", v.Mean, v.StdDev)
			}
			if v.Record.Timestamp != "" {
				fmt.Fprintf(&sb, " at=%s", v.Record.Timestamp)
			}
			sb.WriteString("\n")
		}
		if len(report.Flagged) > maxFlaggedInPrompt {
			fmt.Fprintf(&sb, "... and %d more\n", len(report.Flagged)-maxFlaggedInPrompt)
		}
	}
	return sb.String()
}

func writeCounts(sb *strings.Builder, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	sb.WriteString(title + ":\n")
	for _, key := range keys {
		fmt.Fprintf(sb, "- %s: %d\n", key, counts[key])
	}
}
