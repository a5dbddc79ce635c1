package evaluation

import (
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// Sheet names of the evaluation workbook.
const (
	SheetSummary     = "Zusammenfassung"
	SheetComparisons = "Vergleich"
	SheetFunds       = "Fonds"
	SheetTrend       = "Entwicklung"
)

var comparisonHeader = []string{
	"Behörde", "Vorhaben", "Geprüfter Betrag", "Fehlerquote", "Feststellungen", "Vollständigkeit",
	"Abw. Fehlerquote", "Abw. Betrag", "Rang Fehlerquote", "Rang Volumen", "Rang Vollständigkeit",
}

// ExportXLSX writes ev as a workbook with summary, comparison and fund
// sheets, plus a trend sheet when the evaluation has one.
func ExportXLSX(ev *Evaluation, w io.Writer) error {
	f := xlsx.NewFile()

	summary, err := f.AddSheet(SheetSummary)
	if err != nil {
		return eris.Wrap(err, "xlsx: add summary sheet")
	}
	res := ev.Results
	agg := res.AggregatedData
	addStringRow(summary, "Auswertung", ev.ID)
	addStringRow(summary, "Abfrage", ev.QueryID)
	addStringRow(summary, "Erstellt", ev.CreatedAt.UTC().Format("2006-01-02 15:04"))
	addNumberRow(summary, "Behörden gesamt", float64(res.TotalAuthorities))
	addNumberRow(summary, "Antworten", float64(res.RespondedAuthorities))
	addNumberRow(summary, "Rücklaufquote", res.ResponseRate)
	addNumberRow(summary, "Vorhaben", agg.TotalOperations)
	addNumberRow(summary, "Geprüfter Betrag", agg.TotalAuditedAmount)
	addNumberRow(summary, "Fehler", agg.TotalErrors)
	addNumberRow(summary, "Gewichtete Fehlerquote", agg.WeightedErrorRate)
	addNumberRow(summary, "Mittelwert", res.Statistics.Mean)
	addNumberRow(summary, "Median", res.Statistics.Median)
	addNumberRow(summary, "Standardabweichung", res.Statistics.StdDev)
	addNumberRow(summary, "Minimum", res.Statistics.Min)
	addNumberRow(summary, "Maximum", res.Statistics.Max)
	if ev.Trends != nil {
		addStringRow(summary, "Trend", string(ev.Trends.Trend))
	}

	cmp, err := f.AddSheet(SheetComparisons)
	if err != nil {
		return eris.Wrap(err, "xlsx: add comparison sheet")
	}
	addStringRow(cmp, comparisonHeader...)
	for _, c := range ev.Comparisons {
		row := cmp.AddRow()
		row.AddCell().SetString(c.AuthorityName)
		for _, v := range []float64{
			c.Metrics.OperationsCount, c.Metrics.AuditedAmount, c.Metrics.ErrorRate,
			c.Metrics.FindingsCount, c.Metrics.CompletionRate,
			c.Deviations.ErrorRateDeviation, c.Deviations.AmountDeviation,
		} {
			row.AddCell().SetFloat(v)
		}
		row.AddCell().SetInt(c.Rankings.ByErrorRate)
		row.AddCell().SetInt(c.Rankings.ByVolume)
		row.AddCell().SetInt(c.Rankings.ByCompleteness)
	}

	funds, err := f.AddSheet(SheetFunds)
	if err != nil {
		return eris.Wrap(err, "xlsx: add fund sheet")
	}
	addStringRow(funds, "Fonds", "Vorhaben", "Betrag", "Fehler", "Fehlerquote")
	keys := make([]string, 0, len(agg.ByFund))
	for k := range agg.ByFund {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fs := agg.ByFund[k]
		row := funds.AddRow()
		row.AddCell().SetString(k)
		row.AddCell().SetFloat(fs.Operations)
		row.AddCell().SetFloat(fs.Amount)
		row.AddCell().SetFloat(fs.Errors)
		row.AddCell().SetFloat(fs.ErrorRate)
	}

	if ev.Trends != nil {
		trend, err := f.AddSheet(SheetTrend)
		if err != nil {
			return eris.Wrap(err, "xlsx: add trend sheet")
		}
		addStringRow(trend, historyHeader...)
		for i, y := range ev.Trends.Years {
			row := trend.AddRow()
			row.AddCell().SetInt(y)
			row.AddCell().SetFloat(ev.Trends.ErrorRates[i])
			row.AddCell().SetFloat(ev.Trends.OperationCounts[i])
			row.AddCell().SetFloat(ev.Trends.Amounts[i])
		}
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "xlsx: write workbook")
	}
	return nil
}

func addStringRow(sheet *xlsx.Sheet, cells ...string) {
	row := sheet.AddRow()
	for _, c := range cells {
		row.AddCell().SetString(c)
	}
}

func addNumberRow(sheet *xlsx.Sheet, label string, v float64) {
	row := sheet.AddRow()
	row.AddCell().SetString(label)
	row.AddCell().SetFloat(v)
}

var historyHeader = []string{"Jahr", "Fehlerquote", "Vorhaben", "Betrag"}

// ReadHistoryXLSX reads earlier fiscal years from the first sheet of a
// workbook laid out like the trend sheet: a header row, then year, error
// rate, operations and amount per row. Blank rows are skipped.
func ReadHistoryXLSX(path string) ([]YearFigures, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("xlsx: workbook has no sheets")
	}
	return historyFromSheet(f.Sheets[0])
}

func historyFromSheet(sheet *xlsx.Sheet) ([]YearFigures, error) {
	var out []YearFigures
	for i, row := range sheet.Rows {
		if i == 0 {
			continue
		}
		cells := make([]string, len(historyHeader))
		for j := 0; j < len(cells) && j < len(row.Cells); j++ {
			cells[j] = strings.TrimSpace(row.Cells[j].String())
		}
		if cells[0] == "" {
			continue
		}

		year, err := strconv.Atoi(cells[0])
		if err != nil {
			return nil, eris.Wrapf(err, "xlsx: row %d: year", i+1)
		}
		nums := make([]float64, 3)
		for j := range nums {
			if cells[j+1] == "" {
				continue
			}
			if nums[j], err = strconv.ParseFloat(cells[j+1], 64); err != nil {
				return nil, eris.Wrapf(err, "xlsx: row %d: %s", i+1, historyHeader[j+1])
			}
		}
		out = append(out, YearFigures{Year: year, ErrorRate: nums[0], Operations: nums[1], Amount: nums[2]})
	}
	return out, nil
}
