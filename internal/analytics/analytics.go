// Package analytics derives chart-ready series and summary aggregates from
// report history. Everything here is a pure transform over already-fetched
// records; there is no I/O.
package analytics

import (
	"sort"
	"time"

	"agua24-backend/internal/checklist"
	"agua24-backend/internal/model"
	"agua24-backend/internal/parse"
)

// Window selects how much report history feeds a chart.
type Window string

const (
	WindowLatest Window = "latest"
	Window1M     Window = "1m"
	Window3M     Window = "3m"
	Window6M     Window = "6m"
)

// ParseWindow maps a query token to a Window.
func ParseWindow(s string) (Window, bool) {
	switch Window(s) {
	case WindowLatest, Window1M, Window3M, Window6M:
		return Window(s), true
	}
	return "", false
}

func (w Window) months() int {
	switch w {
	case Window1M:
		return 1
	case Window3M:
		return 3
	case Window6M:
		return 6
	}
	return 0
}

// FilterWindow returns the reports inside the window. "latest" yields at
// most the single most recently created report; the month windows include
// every report created after now minus N months.
func FilterWindow(reports []model.Report, w Window, now time.Time) []model.Report {
	if len(reports) == 0 {
		return nil
	}
	if w == WindowLatest {
		latest := reports[0]
		for _, r := range reports[1:] {
			if r.CreatedAt.After(latest.CreatedAt) {
				latest = r
			}
		}
		return []model.Report{latest}
	}
	cutoff := now.AddDate(0, -w.months(), 0)
	var out []model.Report
	for _, r := range reports {
		if r.CreatedAt.After(cutoff) {
			out = append(out, r)
		}
	}
	return out
}

// Point is one chart sample.
type Point struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// zeroIsMissing reports whether an exact zero for this parameter is a
// never-filled sentinel rather than a measurement. A pH or TDS of 0 is not a
// plausible reading; a chlorine or hardness of 0 is.
func zeroIsMissing(itemID string) bool {
	return itemID == checklist.ItemPH || itemID == checklist.ItemTDS
}

// Series extracts the chronological samples of one chemical parameter from
// the given reports. Non-numeric values and zero sentinels are skipped, not
// plotted as zeros.
func Series(reports []model.Report, itemID string) []Point {
	var points []Point
	for _, r := range reports {
		v, ok := r.Value(itemID)
		if !ok {
			continue
		}
		num, ok := parse.Reading(v.Value.String(), zeroIsMissing(itemID))
		if !ok {
			continue
		}
		points = append(points, Point{Time: r.CreatedAt, Value: num})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
	return points
}

// Earnings sums the collected-cash field across all reports. Values are
// free-form strings; non-numeric characters are stripped and unparsable
// entries contribute zero.
func Earnings(reports []model.Report) float64 {
	var total float64
	for _, r := range reports {
		v, ok := r.Value(checklist.ItemCashBox)
		if !ok {
			continue
		}
		total += parse.Money(v.Value.String())
	}
	return total
}

// Compliance partitions reports by review status for summary display.
type Compliance struct {
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

// ComplianceCounts tallies the review states of the given reports.
func ComplianceCounts(reports []model.Report) Compliance {
	var c Compliance
	for _, r := range reports {
		switch r.Status {
		case model.StatusPending:
			c.Pending++
		case model.StatusApproved:
			c.Approved++
		case model.StatusRejected:
			c.Rejected++
		}
	}
	return c
}
