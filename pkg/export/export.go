package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/plantsched/core/model"
	"github.com/kilianp07/plantsched/core/scheduler"
)

// Format selects the output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat converts user input to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV:
		return f, nil
	case "":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q", s)
	}
}

// WriteJSON writes v to w as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteCSV writes the schedule items to w, one row per item.
func WriteCSV(w io.Writer, res model.ScheduleResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"mode", "item_id", "machine_id", "job_id", "start_ts", "end_ts", "frozen", "risk_score"}); err != nil {
		return err
	}
	for _, it := range res.Items {
		rec := []string{
			res.Mode.String(),
			it.ID,
			it.MachineID,
			it.JobID,
			it.StartTs.Format(time.RFC3339),
			it.EndTs.Format(time.RFC3339),
			strconv.FormatBool(it.Frozen),
			strconv.FormatFloat(it.RiskScore, 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteComparisonCSV writes one row per KPI with both values and the delta.
func WriteComparisonCSV(w io.Writer, cmp scheduler.Comparison) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"kpi", "baseline", "risk_aware", "delta"}); err != nil {
		return err
	}
	b, r, d := cmp.Baseline.KPIs, cmp.RiskAware.KPIs, cmp.Delta
	rows := []struct {
		name        string
		base, aware float64
		delta       float64
	}{
		{"makespan", b.Makespan, r.Makespan, d.Makespan},
		{"total_lateness", b.TotalLateness, r.TotalLateness, d.TotalLateness},
		{"on_time_rate", b.OnTimeRate, r.OnTimeRate, d.OnTimeRate},
		{"changeovers", float64(b.Changeovers), float64(r.Changeovers), float64(d.Changeovers)},
		{"utilization", b.Utilization, r.Utilization, d.Utilization},
		{"risk_cost", b.RiskCost, r.RiskCost, d.RiskCost},
		{"stability", b.Stability, r.Stability, d.Stability},
	}
	for _, row := range rows {
		rec := []string{row.name, formatFloat(row.base), formatFloat(row.aware), formatFloat(row.delta)}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Write encodes a ScheduleResult or Comparison in the requested format.
func Write(w io.Writer, format Format, v any) error {
	if format != FormatCSV {
		return WriteJSON(w, v)
	}
	switch x := v.(type) {
	case model.ScheduleResult:
		return WriteCSV(w, x)
	case scheduler.Comparison:
		return WriteComparisonCSV(w, x)
	default:
		return fmt.Errorf("csv output not supported for %T", v)
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 4, 64)
}
