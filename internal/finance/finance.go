// Package finance summarises the transactions of a day and the running
// balance around it.
package finance

import (
	"math"
	"time"

	"github.com/pbaille/timeline/internal/domain"
)

// BalanceSpan is the number of days shown on each side of the active day.
const BalanceSpan = 14

// IsTransaction reports whether e is a money movement.
func IsTransaction(e *domain.Entry) bool {
	c := e.Category()
	return c == "transaction" || c == "finance"
}

// Amount returns the signed amount of a transaction. Flat transactions carry
// data.amount; finance.income and finance.expense carry the amount on the
// receiving or sending side.
func Amount(e *domain.Entry) (float64, bool) {
	if v, ok := e.DataFloat("amount"); ok {
		return v, true
	}
	switch e.EntryType {
	case "finance.expense":
		if v, ok := domain.Number(e.DataMap("sender")["amount"]); ok {
			return -math.Abs(v), true
		}
	case "finance.income":
		if v, ok := domain.Number(e.DataMap("recipient")["amount"]); ok {
			return v, true
		}
	}
	return 0, false
}

// Totals is the income and expense recap of a list of transactions.
type Totals struct {
	Income       float64 `json:"income"`
	IncomeCount  int     `json:"income_count"`
	Expenses     float64 `json:"expenses"`
	ExpenseCount int     `json:"expense_count"`
}

// Net is income plus (negative) expenses.
func (t Totals) Net() float64 { return t.Income + t.Expenses }

// Summarize totals the transactions among entries. Zero counts as income.
// Transactions without a readable amount are skipped.
func Summarize(entries []domain.Entry) Totals {
	var t Totals
	for i := range entries {
		e := &entries[i]
		if !IsTransaction(e) {
			continue
		}
		a, ok := Amount(e)
		if !ok {
			continue
		}
		if a >= 0 {
			t.Income += a
			t.IncomeCount++
		} else {
			t.Expenses += a
			t.ExpenseCount++
		}
	}
	return t
}

// Split partitions transactions into income and expenses, keeping order.
func Split(entries []domain.Entry) (income, expenses []domain.Entry) {
	for i := range entries {
		e := &entries[i]
		if !IsTransaction(e) {
			continue
		}
		a, ok := Amount(e)
		if !ok {
			continue
		}
		if a >= 0 {
			income = append(income, *e)
		} else {
			expenses = append(expenses, *e)
		}
	}
	return income, expenses
}

// Point is the running balance at the end of a day.
type Point struct {
	Date    string  `json:"date"`
	Balance float64 `json:"balance"`
}

// Series is a running balance over consecutive days.
type Series []Point

// BalanceSeries accumulates the daily deltas over day-span..day+span. Days
// without a delta contribute nothing. The running total starts at zero on
// the first day shown.
func BalanceSeries(deltas map[string]float64, day time.Time, span int) Series {
	if span < 0 {
		span = 0
	}
	out := make(Series, 0, 2*span+1)
	total := 0.0
	for i := -span; i <= span; i++ {
		d := day.AddDate(0, 0, i).Format("2006-01-02")
		total += deltas[d]
		out = append(out, Point{Date: d, Balance: total})
	}
	return out
}

// Bounds returns the lowest and highest balance.
func (s Series) Bounds() (lo, hi float64) {
	if len(s) == 0 {
		return 0, 0
	}
	lo, hi = s[0].Balance, s[0].Balance
	for _, p := range s[1:] {
		lo = math.Min(lo, p.Balance)
		hi = math.Max(hi, p.Balance)
	}
	return lo, hi
}

// Normalized scales the balances to [0, 1]. A flat series maps to 0.5.
func (s Series) Normalized() []float64 {
	lo, hi := s.Bounds()
	out := make([]float64, len(s))
	for i, p := range s {
		if hi == lo {
			out[i] = 0.5
			continue
		}
		out[i] = (p.Balance - lo) / (hi - lo)
	}
	return out
}
