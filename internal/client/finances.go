package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Finances maps YYYY-MM-DD to the signed balance change of that day.
type Finances map[string]float64

// Finances fetches the daily balance report.
func (c *Client) Finances(ctx context.Context) (Finances, error) {
	u := c.baseURL + "/entries/finances.json"
	body, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}
	f, err := ParseFinances(body)
	if err != nil {
		return nil, &FetchFailureError{URL: u, Err: err}
	}
	return f, nil
}

// ParseFinances decodes a finance report. Values are numbers, decimal
// strings, or per-day totals objects with income and expenses fields.
func ParseFinances(body []byte) (Finances, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode finances: %w", err)
	}
	out := make(Finances, len(raw))
	for day, v := range raw {
		delta, err := parseDelta(v)
		if err != nil {
			return nil, fmt.Errorf("decode finances for %s: %w", day, err)
		}
		out[day] = delta
	}
	return out, nil
}

func parseDelta(v json.RawMessage) (float64, error) {
	var n float64
	if err := json.Unmarshal(v, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return strconv.ParseFloat(strings.TrimSpace(s), 64)
	}
	var totals struct {
		Income   *float64 `json:"income"`
		Expenses *float64 `json:"expenses"`
		Total    *float64 `json:"total"`
	}
	if err := json.Unmarshal(v, &totals); err != nil {
		return 0, fmt.Errorf("unsupported value %s", string(v))
	}
	if totals.Total != nil {
		return *totals.Total, nil
	}
	var sum float64
	if totals.Income != nil {
		sum += *totals.Income
	}
	if totals.Expenses != nil {
		sum += *totals.Expenses
	}
	return sum, nil
}
