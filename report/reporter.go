package report

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// Upload is one complete export file as handed over by the caller.
type Upload struct {
	Name string
	Data []byte
}

// NewIngestionRecord identifies one upload by a fresh run id and the SHA-256
// of its bytes.
func NewIngestionRecord(up Upload, at time.Time) IngestionRecord {
	sum := sha256.Sum256(up.Data)
	return IngestionRecord{
		RunID:      uuid.NewString(),
		Source:     up.Name,
		SHA256:     hex.EncodeToString(sum[:]),
		SizeBytes:  int64(len(up.Data)),
		IngestedAt: at.UTC(),
	}
}

type AlarmReport struct {
	RunID          string       `json:"run_id,omitempty"`
	Source         string       `json:"source"`
	Stats          IngestStats  `json:"stats"`
	Summary        AlarmSummary `json:"summary"`
	UniqueMessages []string     `json:"unique_messages"`
	UniqueUsers    []string     `json:"unique_users"`
	Range          TimeRange    `json:"range"`
	Rows           []AlarmRow   `json:"rows"`
	UserFrequency  []Count      `json:"user_frequency"`
	HourHistogram  [24]int      `json:"hour_histogram"`
	CriticalAlarms []AlarmRow   `json:"critical_alarms"`
	Notices        []Notice     `json:"notices,omitempty"`
}

type AuditReport struct {
	Source           string        `json:"source"`
	Stats            IngestStats   `json:"stats"`
	Columns          []string      `json:"columns"`
	Range            TimeRange     `json:"range"`
	Rows             []AuditRow    `json:"rows"`
	ActiveUsers      []string      `json:"active_users"`
	AnalogChanges    []AuditRow    `json:"analog_changes"`
	DigitalChanges   []AuditRow    `json:"digital_changes"`
	ChangeComparison []Count       `json:"change_comparison"`
	TopChanges       []Count       `json:"top_changes"`
	UserChanges      []Count       `json:"user_changes"`
	Activity         []ActivityDay `json:"activity"`
	OutsideRange     []AuditEvent  `json:"outside_range"`
	OutsideTop       []Count       `json:"outside_top,omitempty"`
	CriticalActions  []AuditRow    `json:"critical_actions"`
	OutOfRange       []RangeChange `json:"out_of_range"`
	Notices          []Notice      `json:"notices,omitempty"`
}

// Reporter runs the ingest, normalize, filter and aggregate stages for one
// upload at a time. The store is optional; without it alarm user counts are
// computed in memory.
type Reporter struct {
	cfg   *FileConfig
	loc   *time.Location
	store *Store
	now   func() time.Time
}

func NewReporter(cfg *FileConfig, store *Store) (*Reporter, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg.withDefaults()
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return &Reporter{cfg: cfg, loc: loc, store: store, now: time.Now}, nil
}

func (r *Reporter) debugf(format string, args ...any) {
	if r == nil || !r.cfg.Debug {
		return
	}
	log.Printf(format, args...)
}

// Location is the zone timestamps are parsed in.
func (r *Reporter) Location() *time.Location { return r.loc }

// RunAlarms builds the alarm report. A nil rng selects the dates of the
// earliest and latest alarms.
func (r *Reporter) RunAlarms(ctx context.Context, up Upload, rng *TimeRange) (*AlarmReport, error) {
	start := time.Now()
	table, err := IngestAlarms(up.Data, r.cfg.Alarm)
	if err != nil {
		return nil, err
	}
	events, stats, err := NormalizeAlarms(table, r.loc)
	if err != nil {
		return nil, err
	}
	r.debugf("alarms normalized source=%q read=%d retained=%d rejectedPattern=%d rejectedUser=%d", up.Name, stats.RowsRead, stats.Retained, stats.RejectedPattern, stats.RejectedUser)

	rep := &AlarmReport{
		Source:         up.Name,
		Stats:          stats,
		Summary:        SummarizeAlarms(events),
		UniqueMessages: UniqueMessages(events),
		UniqueUsers:    UniqueUsers(events),
	}

	rep.UserFrequency = r.alarmUserFrequency(ctx, up, events, rep)

	if rng != nil {
		rep.Range = *rng
	} else if b, ok := AlarmBounds(events); ok {
		rep.Range = b
	}
	rep.Rows = FilterAlarms(events, rep.Range)
	rep.HourHistogram = HourHistogram(rep.Rows, func(a AlarmRow) int { return a.Hour })
	rep.CriticalAlarms = KeywordSubset(rep.Rows, alarmMessage, r.cfg.Keywords.Critical)
	r.debugf("alarms done source=%q filtered=%d elapsed=%s", up.Name, len(rep.Rows), time.Since(start))
	return rep, nil
}

// alarmUserFrequency refreshes the cache and reads user counts from it. Cache
// failures are reported as a notice and the counts fall back to memory.
func (r *Reporter) alarmUserFrequency(ctx context.Context, up Upload, events []AlarmEvent, rep *AlarmReport) []Count {
	inMemory := func() []Count {
		return UserFrequency(events, func(e AlarmEvent) string { return e.User })
	}
	if r.store == nil {
		return inMemory()
	}
	ing := NewIngestionRecord(up, r.now())
	if err := r.store.ReplaceAlarms(ctx, ing, events); err != nil {
		log.Printf("alarm cache replace failed source=%q err=%v", up.Name, err)
		rep.Notices = append(rep.Notices, Notice{View: "user_frequency", Message: fmt.Sprintf("alarm cache unavailable: %v", err)})
		return inMemory()
	}
	rep.RunID = ing.RunID
	counts, err := r.store.UserFrequency(ctx)
	if err != nil {
		log.Printf("alarm cache query failed source=%q err=%v", up.Name, err)
		rep.Notices = append(rep.Notices, Notice{View: "user_frequency", Message: fmt.Sprintf("alarm cache query failed: %v", err)})
		return inMemory()
	}
	return counts
}

// RunAudit builds the audit report. A nil rng selects the earliest and latest
// timestamps.
func (r *Reporter) RunAudit(ctx context.Context, up Upload, rng *TimeRange) (*AuditReport, error) {
	start := time.Now()
	table, ingestStats, err := IngestAudit(up.Data, r.cfg.Audit.Markers)
	if err != nil {
		return nil, err
	}
	audit, stats, err := NormalizeAudit(table, r.cfg.Audit.Columns, r.loc)
	if err != nil {
		return nil, err
	}
	stats.RowsRead = ingestStats.RowsRead
	stats.RejectedWidth = ingestStats.RejectedWidth
	r.debugf("audit normalized source=%q read=%d retained=%d rejectedWidth=%d rejectedUser=%d nullTimestamps=%d", up.Name, stats.RowsRead, stats.Retained, stats.RejectedWidth, stats.RejectedUser, stats.NullTimestamps)

	rep := &AuditReport{Source: up.Name, Stats: stats, Columns: audit.Header}
	if rng != nil {
		rep.Range = *rng
	} else if b, ok := AuditBounds(audit.Events); ok {
		rep.Range = b
	}
	rep.Rows = FilterAudit(audit.Events, rep.Range)
	rep.OutsideRange = OutsideAudit(audit.Events, rep.Range)
	rep.Activity = ActivityMatrix(rep.Rows)

	cols := audit.Columns
	notice := func(view, format string, args ...any) {
		rep.Notices = append(rep.Notices, Notice{View: view, Message: fmt.Sprintf(format, args...)})
	}

	if cols.Has(FieldUser) {
		rep.ActiveUsers = Unique(pluck(rep.Rows, func(a AuditRow) string { return a.User }))
		rep.UserChanges = UserFrequency(rep.Rows, func(a AuditRow) string { return a.User })
	} else {
		notice("user_changes", "export has no %q column", r.cfg.Audit.Columns.User)
	}

	if cols.Has(FieldText) {
		kw := r.cfg.Keywords
		rep.AnalogChanges = KeywordSubset(rep.Rows, auditText, kw.Analog)
		rep.DigitalChanges = KeywordSubset(rep.Rows, auditText, kw.Digital)
		rep.ChangeComparison = ChangeComparison(rep.AnalogChanges, rep.DigitalChanges)
		rep.TopChanges = TopValues(rep.Rows, r.cfg.TopN)
		rep.CriticalActions = KeywordSubset(rep.Rows, auditText, kw.Critical)
		if len(rep.OutsideRange) > 0 {
			rep.OutsideTop = TopN(Frequencies(pluck(rep.OutsideRange, func(e AuditEvent) string { return e.Text })), r.cfg.TopN)
		}
	} else {
		notice("text", "export has no %q column; keyword and top-change views skipped", r.cfg.Audit.Columns.Text)
	}

	if cols.Has(FieldOldValue) && cols.Has(FieldNewValue) {
		rep.OutOfRange = OutOfRangeChanges(rep.Rows, *r.cfg.ValueRange.Min, *r.cfg.ValueRange.Max)
	} else {
		notice("out_of_range", "export has no %q/%q columns", r.cfg.Audit.Columns.OldValue, r.cfg.Audit.Columns.NewValue)
	}

	r.debugf("audit done source=%q filtered=%d outside=%d critical=%d elapsed=%s", up.Name, len(rep.Rows), len(rep.OutsideRange), len(rep.CriticalActions), time.Since(start))
	return rep, nil
}
