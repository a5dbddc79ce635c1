package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flowaudit/audit-engine/internal/checklist"
	"github.com/flowaudit/audit-engine/internal/groupquery"
)

func TestDescribe(t *testing.T) {
	t.Parallel()

	s := Describe([]float64{4, 1, 3, 2})
	assert.Equal(t, 2.5, s.Mean)
	assert.Equal(t, 2.5, s.Median)
	assert.InDelta(t, 1.118033988749895, s.StdDev, 1e-12)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 4.0, s.Max)
	assert.Equal(t, [3]float64{1.75, 2.5, 3.25}, s.Quartiles)

	assert.Equal(t, Statistics{}, Describe(nil))

	one := Describe([]float64{0.3})
	assert.Equal(t, Statistics{Mean: 0.3, Median: 0.3, Min: 0.3, Max: 0.3, Quartiles: [3]float64{0.3, 0.3, 0.3}}, one)
}

func TestDescribe_DoesNotReorderInput(t *testing.T) {
	t.Parallel()
	in := []float64{3, 1, 2}
	Describe(in)
	assert.Equal(t, []float64{3, 1, 2}, in)
}

func TestQuantile(t *testing.T) {
	t.Parallel()

	sorted := []float64{10, 20, 30, 40, 50}
	assert.Equal(t, 10.0, Quantile(sorted, 0))
	assert.Equal(t, 20.0, Quantile(sorted, 0.25))
	assert.Equal(t, 30.0, Quantile(sorted, 0.5))
	assert.Equal(t, 50.0, Quantile(sorted, 1))
	assert.Equal(t, 0.0, Quantile(nil, 0.5))
}

func TestDenseRank(t *testing.T) {
	t.Parallel()

	values := []float64{0.05, 0.02, 0.05, 0.01}
	assert.Equal(t, []int{3, 2, 3, 1}, DenseRank(values, true))
	assert.Equal(t, []int{1, 2, 1, 3}, DenseRank(values, false))
	assert.Empty(t, DenseRank(nil, true))
}

func TestClassifyTrend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		previous, last float64
		want           Trend
	}{
		{"unchanged", 0.05, 0.05, TrendStable},
		{"small rise", 0.05, 0.055, TrendStable},
		{"small drop", 0.05, 0.045, TrendStable},
		{"drop", 0.05, 0.03, TrendImproving},
		{"rise", 0.03, 0.05, TrendDeclining},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ClassifyTrend(tt.previous, tt.last, DefaultTrendBand))
		})
	}
}

func TestAnalyzeTrend(t *testing.T) {
	t.Parallel()

	assert.Nil(t, AnalyzeTrend(nil, YearFigures{Year: 2024}, DefaultTrendBand))

	ta := AnalyzeTrend(
		[]YearFigures{{Year: 2024, ErrorRate: 0.9}},
		YearFigures{Year: 2024, ErrorRate: 0.02},
		DefaultTrendBand,
	)
	assert.Equal(t, []int{2024}, ta.Years)
	assert.Equal(t, TrendStable, ta.Trend, "a single year has nothing to compare")

	ta = AnalyzeTrend([]YearFigures{{Year: 2023, ErrorRate: 0.01}}, YearFigures{Year: 2024, ErrorRate: 0.04}, DefaultTrendBand)
	assert.Equal(t, TrendDeclining, ta.Trend)
	assert.Len(t, ta.ErrorRates, 2)
	assert.Len(t, ta.Amounts, 2)
}

func TestAggregate(t *testing.T) {
	t.Parallel()

	cfg := &groupquery.AggregationConfig{
		GroupBy:     []string{"land", "fonds"},
		SumFields:   []string{"betrag"},
		AvgFields:   []string{"quote"},
		CountFields: []string{"bemerkung"},
	}
	data := []checklist.Data{
		{"land": checklist.Text("BY"), "fonds": checklist.Option("EFRE"), "betrag": checklist.Number(100), "quote": checklist.Number(0.1), "bemerkung": checklist.Text("x")},
		{"land": checklist.Text("BY"), "fonds": checklist.Option("EFRE"), "betrag": checklist.Text("50.5"), "quote": checklist.Text("n/a"), "bemerkung": checklist.Text("")},
		{"land": checklist.Text("BY"), "betrag": checklist.Number(1)},
	}

	got := Aggregate(cfg, data)
	assert.Equal(t, map[string]Figures{
		"BY/EFRE":          {"responses": 2, "betrag.sum": 150.5, "quote.avg": 0.1, "bemerkung.count": 1},
		"BY/" + Unassigned: {"responses": 1, "betrag.sum": 1, "quote.avg": 0, "bemerkung.count": 0},
	}, got)

	assert.Nil(t, Aggregate(nil, data))
	assert.Equal(t, map[string]Figures{GroupAll: {"responses": 1}},
		Aggregate(&groupquery.AggregationConfig{}, data[:1]))
}

func TestParseMetric(t *testing.T) {
	t.Parallel()

	m, err := ParseMetric("")
	assert.NoError(t, err)
	assert.Equal(t, MetricErrorRate, m)

	m, err = ParseMetric("completion")
	assert.NoError(t, err)
	assert.Equal(t, MetricCompletion, m)

	_, err = ParseMetric("median_income")
	assert.Error(t, err)
}
