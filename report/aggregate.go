package report

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Count is one category of a frequency table.
type Count struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Frequencies counts values, most frequent first. Ties are ordered by key so
// repeated runs give identical output.
func Frequencies(values []string) []Count {
	counts := make(map[string]int)
	for _, v := range values {
		counts[v]++
	}
	out := make([]Count, 0, len(counts))
	for k, n := range counts {
		out = append(out, Count{Key: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func TopN(counts []Count, n int) []Count {
	if n >= 0 && len(counts) > n {
		return counts[:n]
	}
	return counts
}

func pluck[T any](rows []T, field func(T) string) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = field(r)
	}
	return out
}

// UserFrequency counts rows per user.
func UserFrequency[T any](rows []T, user func(T) string) []Count {
	return Frequencies(pluck(rows, user))
}

// Unique returns distinct non-empty values in first-seen order.
func Unique(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	var out []string
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func UniqueMessages(events []AlarmEvent) []string {
	return Unique(pluck(events, func(e AlarmEvent) string { return e.Message }))
}

func UniqueUsers(events []AlarmEvent) []string {
	return Unique(pluck(events, func(e AlarmEvent) string { return e.User }))
}

// HourHistogram counts rows per hour of day. All 24 buckets are always present.
func HourHistogram[T any](rows []T, hour func(T) int) [24]int {
	var h [24]int
	for _, r := range rows {
		if x := hour(r); x >= 0 && x < 24 {
			h[x]++
		}
	}
	return h
}

// TopValues ranks distinct texts by occurrence and keeps the first n.
func TopValues(rows []AuditRow, n int) []Count {
	return TopN(Frequencies(pluck(rows, auditText)), n)
}

// ActivityDay is one row of the day×hour matrix.
type ActivityDay struct {
	Date  Date    `json:"date"`
	Hours [24]int `json:"hours"`
}

// ActivityMatrix pivots row counts by date and hour of day, dates ascending,
// every hour 0-23 present and zero-filled.
func ActivityMatrix(rows []AuditRow) []ActivityDay {
	byDate := make(map[Date]*ActivityDay)
	for _, r := range rows {
		d, ok := byDate[r.Date]
		if !ok {
			d = &ActivityDay{Date: r.Date}
			byDate[r.Date] = d
		}
		if r.Hour >= 0 && r.Hour < 24 {
			d.Hours[r.Hour]++
		}
	}
	out := make([]ActivityDay, 0, len(byDate))
	for _, d := range byDate {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// ParseNumber coerces a cell to a float; the bool is false for anything that
// is not a plain decimal number. Infinities parse; hex literals and digit
// separators do not.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.Contains(s, "_") {
		return 0, false
	}
	if u := strings.ToLower(strings.TrimLeft(s, "+-")); strings.HasPrefix(u, "0x") {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// RangeChange is an audit row whose new value left the accepted range.
type RangeChange struct {
	AuditRow
	Old *float64 `json:"old"`
	New float64  `json:"new"`
}

// OutOfRangeChanges keeps rows whose new value parses as a number outside
// [lo, hi]. Unparseable new values are skipped.
func OutOfRangeChanges(rows []AuditRow, lo, hi float64) []RangeChange {
	var out []RangeChange
	for _, r := range rows {
		nv, ok := ParseNumber(r.NewValue)
		if !ok {
			continue
		}
		if nv >= lo && nv <= hi {
			continue
		}
		rc := RangeChange{AuditRow: r, New: nv}
		if ov, ok := ParseNumber(r.OldValue); ok {
			rc.Old = &ov
		}
		out = append(out, rc)
	}
	return out
}

// ChangeComparison is the analog/digital bar chart data.
func ChangeComparison(analog, digital []AuditRow) []Count {
	return []Count{
		{Key: "Analógico", Count: len(analog)},
		{Key: "Digital", Count: len(digital)},
	}
}

type AlarmSummary struct {
	TotalAlarms    int `json:"total_alarms"`
	UniqueMessages int `json:"unique_messages"`
	UniqueUsers    int `json:"unique_users"`
}

func SummarizeAlarms(events []AlarmEvent) AlarmSummary {
	return AlarmSummary{
		TotalAlarms:    len(events),
		UniqueMessages: len(UniqueMessages(events)),
		UniqueUsers:    len(UniqueUsers(events)),
	}
}
