package reports

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	csvFlushEvery = 200
	csvBufferSize = 32 * 1024
)

type csvStreamer struct {
	buf          *bufio.Writer
	csv          *csv.Writer
	flushEvery   int
	pendingLines int
}

func newCSVStreamer(w io.Writer) *csvStreamer {
	buf := bufio.NewWriterSize(w, csvBufferSize)
	writer := csv.NewWriter(buf)
	writer.UseCRLF = true
	return &csvStreamer{buf: buf, csv: writer, flushEvery: csvFlushEvery}
}

func (s *csvStreamer) writeComment(line string) error {
	line = strings.TrimSuffix(line, "\n")
	if !strings.HasSuffix(line, "\r") {
		line += "\r"
	}
	_, err := s.buf.WriteString(line + "\n")
	return err
}

func (s *csvStreamer) writeRow(row []string) error {
	if err := s.csv.Write(row); err != nil {
		return err
	}
	s.pendingLines++
	if s.flushEvery > 0 && s.pendingLines >= s.flushEvery {
		return s.flush()
	}
	return nil
}

func (s *csvStreamer) flush() error {
	s.csv.Flush()
	if err := s.csv.Error(); err != nil {
		return err
	}
	if err := s.buf.Flush(); err != nil {
		return err
	}
	s.pendingLines = 0
	return nil
}

var agingHeader = []string{"Party", "Party Name", "Currency", "0-30", "31-60", "61-90", "90+", "Total Outstanding"}

// WriteAgingCSV streams an aging report as CSV with a comment preamble.
func WriteAgingCSV(w io.Writer, report AgingReport) error {
	streamer := newCSVStreamer(w)
	if err := streamer.writeComment(fmt.Sprintf("# Report: %s Aging", report.PartyType)); err != nil {
		return err
	}
	if err := streamer.writeComment("# Report Date: " + report.ReportDate); err != nil {
		return err
	}
	if err := streamer.writeRow(agingHeader); err != nil {
		return err
	}
	totals := agingTotals(report)
	for _, e := range report.Data {
		if err := streamer.writeRow([]string{
			e.Party,
			e.PartyName,
			e.Currency,
			formatAmount(e.Range1),
			formatAmount(e.Range2),
			formatAmount(e.Range3),
			formatAmount(e.Range4),
			formatAmount(e.TotalOutstanding),
		}); err != nil {
			return err
		}
	}
	if err := streamer.writeRow([]string{
		"Totals", "", "",
		formatAmount(totals[0]),
		formatAmount(totals[1]),
		formatAmount(totals[2]),
		formatAmount(totals[3]),
		formatAmount(totals[4]),
	}); err != nil {
		return err
	}
	return streamer.flush()
}

// agingTotals returns the four bucket sums followed by the grand total.
func agingTotals(report AgingReport) [5]decimal.Decimal {
	var out [5]decimal.Decimal
	for i := range out {
		out[i] = decimal.Zero
	}
	for _, e := range report.Data {
		out[0] = out[0].Add(e.Range1)
		out[1] = out[1].Add(e.Range2)
		out[2] = out[2].Add(e.Range3)
		out[3] = out[3].Add(e.Range4)
		out[4] = out[4].Add(e.TotalOutstanding)
	}
	return out
}

func formatAmount(v decimal.Decimal) string {
	return v.StringFixed(2)
}

var amountPrinter = message.NewPrinter(language.English)

// displayAmount groups thousands for the printable report. CSV keeps the
// plain form so spreadsheets parse it.
func displayAmount(v decimal.Decimal) string {
	return amountPrinter.Sprint(number.Decimal(v.InexactFloat64(), number.Scale(2)))
}

var agingHTML = template.Must(template.New("aging").Funcs(template.FuncMap{
	"amount": displayAmount,
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Report.PartyType}} Aging {{.Report.ReportDate}}</title>
<style>
body { font-family: sans-serif; font-size: 11px; }
table { width: 100%; border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 4px 6px; }
td.num, th.num { text-align: right; }
tfoot td { font-weight: bold; }
</style>
</head>
<body>
<h1>{{.Report.PartyType}} Aging</h1>
<p>As of {{.Report.ReportDate}}</p>
<table>
<thead>
<tr><th>Party</th><th>Party Name</th><th>Currency</th><th class="num">0-30</th><th class="num">31-60</th><th class="num">61-90</th><th class="num">90+</th><th class="num">Total</th></tr>
</thead>
<tbody>
{{- range .Report.Data}}
<tr><td>{{.Party}}</td><td>{{.PartyName}}</td><td>{{.Currency}}</td><td class="num">{{amount .Range1}}</td><td class="num">{{amount .Range2}}</td><td class="num">{{amount .Range3}}</td><td class="num">{{amount .Range4}}</td><td class="num">{{amount .TotalOutstanding}}</td></tr>
{{- end}}
</tbody>
<tfoot>
<tr><td colspan="3">Totals</td>{{range .Totals}}<td class="num">{{amount .}}</td>{{end}}</tr>
</tfoot>
</table>
</body>
</html>
`))

// RenderAgingHTML renders the printable aging document sent to the PDF engine.
func RenderAgingHTML(report AgingReport) ([]byte, error) {
	var buf bytes.Buffer
	totals := agingTotals(report)
	err := agingHTML.Execute(&buf, struct {
		Report AgingReport
		Totals []decimal.Decimal
	}{Report: report, Totals: totals[:]})
	if err != nil {
		return nil, fmt.Errorf("reports: render aging html: %w", err)
	}
	return buf.Bytes(), nil
}
