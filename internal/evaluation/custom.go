package evaluation

import (
	"math"
	"strings"

	"github.com/flowaudit/audit-engine/internal/checklist"
	"github.com/flowaudit/audit-engine/internal/groupquery"
)

// GroupAll is the custom aggregation group used when no groupBy fields are
// configured.
const GroupAll = "all"

// Aggregate applies a custom aggregation config to response data. Groups
// are keyed by the groupBy values joined with "/"; a blank groupBy value
// reads as Unassigned. Each group gets "<field>.sum", "<field>.avg" and
// "<field>.count" figures plus "responses", the group size.
func Aggregate(cfg *groupquery.AggregationConfig, data []checklist.Data) map[string]Figures {
	if cfg == nil {
		return nil
	}
	type acc struct {
		n      int
		sums   map[string]float64
		avgSum map[string]float64
		avgN   map[string]int
		counts map[string]int
	}
	groups := make(map[string]*acc)

	for _, d := range data {
		key := groupKey(cfg.GroupBy, d)
		g, ok := groups[key]
		if !ok {
			g = &acc{
				sums:   make(map[string]float64),
				avgSum: make(map[string]float64),
				avgN:   make(map[string]int),
				counts: make(map[string]int),
			}
			groups[key] = g
		}
		g.n++
		for _, f := range cfg.SumFields {
			if n, ok := numeric(d.Get(f)); ok {
				g.sums[f] += n
			}
		}
		for _, f := range cfg.AvgFields {
			if n, ok := numeric(d.Get(f)); ok {
				g.avgSum[f] += n
				g.avgN[f]++
			}
		}
		for _, f := range cfg.CountFields {
			if !d.Get(f).IsBlank() {
				g.counts[f]++
			}
		}
	}

	out := make(map[string]Figures, len(groups))
	for key, g := range groups {
		fig := Figures{"responses": float64(g.n)}
		for _, f := range cfg.SumFields {
			fig[f+".sum"] = g.sums[f]
		}
		for _, f := range cfg.AvgFields {
			fig[f+".avg"] = ratio(g.avgSum[f], float64(g.avgN[f]))
		}
		for _, f := range cfg.CountFields {
			fig[f+".count"] = float64(g.counts[f])
		}
		out[key] = fig
	}
	return out
}

func groupKey(fields []string, d checklist.Data) string {
	if len(fields) == 0 {
		return GroupAll
	}
	parts := make([]string, len(fields))
	for i, f := range fields {
		v := d.Get(f)
		if v.IsBlank() {
			parts[i] = Unassigned
			continue
		}
		parts[i] = v.String()
	}
	return strings.Join(parts, "/")
}

// numeric reads numbers and numeric text; blanks and anything that does not
// convert to a finite number are skipped.
func numeric(v checklist.Value) (float64, bool) {
	if n, ok := v.AsNumber(); ok {
		return n, true
	}
	if v.Kind() != checklist.KindText || v.IsBlank() {
		return 0, false
	}
	n := v.ToNumber()
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
