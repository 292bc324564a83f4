package report

import "time"

// TimeRange is a closed interval: both Start and End are included.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (r TimeRange) Contains(ts *time.Time) bool {
	if ts == nil {
		return false
	}
	return !ts.Before(r.Start) && !ts.After(r.End)
}

// Clock is a time of day.
type Clock struct {
	Hour, Minute, Second int
}

func ClockOf(t time.Time) Clock {
	return Clock{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}
}

func midnight(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
}

func combine(d time.Time, c Clock) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), c.Hour, c.Minute, c.Second, 0, d.Location())
}

// DateRange builds the alarm window: both endpoints sit at midnight of the
// chosen dates.
func DateRange(startDate, endDate time.Time) TimeRange {
	return TimeRange{Start: midnight(startDate), End: midnight(endDate)}
}

// DateTimeRange builds the audit window from separately chosen dates and
// times of day.
func DateTimeRange(startDate time.Time, startClock Clock, endDate time.Time, endClock Clock) TimeRange {
	return TimeRange{Start: combine(startDate, startClock), End: combine(endDate, endClock)}
}

// AlarmBounds is the default alarm selection: the dates of the earliest and
// latest events.
func AlarmBounds(events []AlarmEvent) (TimeRange, bool) {
	if len(events) == 0 {
		return TimeRange{}, false
	}
	lo, hi := events[0].Timestamp, events[0].Timestamp
	for _, ev := range events[1:] {
		if ev.Timestamp.Before(lo) {
			lo = ev.Timestamp
		}
		if ev.Timestamp.After(hi) {
			hi = ev.Timestamp
		}
	}
	return DateRange(lo, hi), true
}

// AuditBounds is the default audit selection: the earliest and latest
// timestamps.
func AuditBounds(events []AuditEvent) (TimeRange, bool) {
	var lo, hi *time.Time
	for i := range events {
		ts := events[i].Timestamp
		if ts == nil {
			continue
		}
		if lo == nil || ts.Before(*lo) {
			lo = ts
		}
		if hi == nil || ts.After(*hi) {
			hi = ts
		}
	}
	if lo == nil {
		return TimeRange{}, false
	}
	return TimeRange{Start: *lo, End: *hi}, true
}

// Date is a calendar day rendered as YYYY-MM-DD.
type Date string

func dateOf(t time.Time) Date { return Date(t.Format("2006-01-02")) }

type AlarmRow struct {
	AlarmEvent
	Date Date `json:"date"`
	Hour int  `json:"hour"`
}

type AuditRow struct {
	AuditEvent
	Date Date `json:"date"`
	Hour int  `json:"hour"`
}

// FilterAlarms keeps events inside rng and derives date and hour from the
// timestamp that was compared.
func FilterAlarms(events []AlarmEvent, rng TimeRange) []AlarmRow {
	out := make([]AlarmRow, 0, len(events))
	for _, ev := range events {
		ts := ev.Timestamp
		if !rng.Contains(&ts) {
			continue
		}
		out = append(out, AlarmRow{AlarmEvent: ev, Date: dateOf(ts), Hour: ts.Hour()})
	}
	return out
}

// FilterAudit keeps events inside rng; nil timestamps never match.
func FilterAudit(events []AuditEvent, rng TimeRange) []AuditRow {
	out := make([]AuditRow, 0, len(events))
	for _, ev := range events {
		ts := ev.Timestamp
		if !rng.Contains(ts) {
			continue
		}
		out = append(out, AuditRow{AuditEvent: ev, Date: dateOf(*ts), Hour: ts.Hour()})
	}
	return out
}

// OutsideAudit returns the timestamped events that FilterAudit would reject.
// Events without a timestamp belong to neither set.
func OutsideAudit(events []AuditEvent, rng TimeRange) []AuditEvent {
	var out []AuditEvent
	for _, ev := range events {
		if ev.Timestamp == nil || rng.Contains(ev.Timestamp) {
			continue
		}
		out = append(out, ev)
	}
	return out
}
