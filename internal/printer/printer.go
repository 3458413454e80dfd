// Package printer renders a timeline day for the terminal.
package printer

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/pbaille/timeline/internal/domain"
	"github.com/pbaille/timeline/internal/entrytype"
	"github.com/pbaille/timeline/internal/finance"
	"github.com/pbaille/timeline/internal/timeline"
)

const summaryWidth = 72

var (
	bold    = color.New(color.Bold, color.Underline)
	faint   = color.New(color.Faint)
	hiTime  = color.New(color.FgHiCyan, color.Bold)
	income  = color.New(color.FgGreen)
	expense = color.New(color.FgRed)
)

// Printer writes days to w.
type Printer struct {
	w      io.Writer
	ShowID bool
}

// New returns a printer for w; a nil w means color.Output.
func New(w io.Writer) *Printer {
	if w == nil {
		w = color.Output
	}
	return &Printer{w: w}
}

// Day prints the header, buckets and transactions of v.
func (p *Printer) Day(v *timeline.View) {
	_, _ = bold.Fprint(p.w, v.Label)
	_, _ = faint.Fprintf(p.w, "  %s, %s - %d %s\n\n", v.Weekday, v.Relative, v.Len(), plural(v.Len(), "entry", "entries"))

	if v.Source != "" {
		_, _ = faint.Fprintf(p.w, "source: %s\n\n", v.Source)
	}

	if len(v.Buckets) == 0 {
		_, _ = faint.Fprintln(p.w, " none")
		fmt.Fprintln(p.w)
	}
	for _, b := range v.Buckets {
		_, _ = hiTime.Fprintln(p.w, b.Title)
		fmt.Fprintln(p.w, p.bucketTable(b))
		fmt.Fprintln(p.w)
	}

	if len(v.Transactions) > 0 {
		p.Transactions(v.Transactions, v.Totals)
	}
}

func (p *Printer) bucketTable(b timeline.Bucket) *uitable.Table {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = summaryWidth
	tbl.Wrap = false
	for _, it := range b.Items {
		if it.Gallery != nil {
			tbl.AddRow(p.rowPrefix("gallery"), glyph(entrytype.Gallery), gallerySummary(it.Gallery))
			continue
		}
		label := string(it.Renderer)
		if it.PostType != "" {
			label = it.Platform + " " + strings.ToLower(it.PostType)
		}
		tbl.AddRow(p.rowPrefix(it.Entry.Key()), glyph(it.Renderer), label+": "+Summary(it.Entry))
	}
	return tbl
}

func (p *Printer) rowPrefix(id string) string {
	if !p.ShowID {
		return ""
	}
	return faint.Sprint(id)
}

// Transactions prints the unknown-time transaction list and its totals.
func (p *Printer) Transactions(entries []domain.Entry, totals finance.Totals) {
	_, _ = bold.Fprintln(p.w, "Unknown time")
	tbl := uitable.New()
	tbl.Separator = "  "
	for i := range entries {
		e := &entries[i]
		amount, _ := finance.Amount(e)
		tbl.AddRow(glyph(entrytype.Transaction), Money(amount), Summary(e))
	}
	fmt.Fprintln(p.w, tbl)
	_, _ = income.Fprintf(p.w, "income   %s (%d)\n", Money(totals.Income), totals.IncomeCount)
	_, _ = expense.Fprintf(p.w, "expenses %s (%d)\n", Money(totals.Expenses), totals.ExpenseCount)
	fmt.Fprintln(p.w)
}

// Filters prints the filter recap of v.
func (p *Printer) Filters(filters []timeline.FilterState) {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Filter"), bold.Sprint("Count"), bold.Sprint("Enabled"))
	for _, f := range filters {
		enabled := ""
		if f.Enabled {
			enabled = "yes"
		}
		tbl.AddRow(f.Name, fmt.Sprintf("%d %s", f.Count, f.Label), enabled)
	}
	fmt.Fprintln(p.w, tbl)
}

// Balance prints the running balance as a sparkline.
func (p *Printer) Balance(s finance.Series) {
	if len(s) == 0 {
		return
	}
	lo, hi := s.Bounds()
	_, _ = faint.Fprintf(p.w, "%s %s..%s\n", Sparkline(s), Money(lo), Money(hi))
}

var sparks = []rune("▁▂▃▄▅▆▇█")

// Sparkline draws one block per point.
func Sparkline(s finance.Series) string {
	var sb strings.Builder
	for _, v := range s.Normalized() {
		i := int(v * float64(len(sparks)-1))
		sb.WriteRune(sparks[i])
	}
	return sb.String()
}

// Money formats an amount with two decimals and a true minus sign.
func Money(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	if s == "-0.00" {
		s = "0.00"
	}
	return strings.Replace(s, "-", "−", 1) + " €"
}

// Summary is a one line description of an entry.
func Summary(e *domain.Entry) string {
	var s string
	switch {
	case e.Title != "":
		s = e.Title
	case e.Description != "":
		s = e.Description
	case e.DataString("otherParty") != "":
		s = e.DataString("otherParty")
	case e.FilePath != "":
		s = e.FilePath
	default:
		s = e.EntryType
	}
	s = strings.Join(strings.Fields(s), " ")
	return truncate(s, summaryWidth)
}

func gallerySummary(entries []*domain.Entry) string {
	kinds := map[string]int{}
	var order []string
	for _, e := range entries {
		c := e.Category()
		if kinds[c] == 0 {
			order = append(order, c)
		}
		kinds[c]++
	}
	parts := make([]string, 0, len(order))
	for _, c := range order {
		parts = append(parts, fmt.Sprintf("%d %s", kinds[c], plural(kinds[c], c, c+"s")))
	}
	return strings.Join(parts, ", ")
}

func glyph(p entrytype.Presentation) string {
	switch p {
	case entrytype.Gallery, entrytype.Image, entrytype.Video, entrytype.PDF:
		return "▣"
	case entrytype.Message:
		return "✉"
	case entrytype.Post:
		return "✎"
	case entrytype.Transaction:
		return "€"
	case entrytype.Commit:
		return "⎇"
	case entrytype.Activity, entrytype.Search, entrytype.Watch:
		return "◌"
	default:
		return "•"
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
