package report

import (
	"strings"
	"time"
)

var auditTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006 3:04:05 PM",
	"02-01-2006 15:04:05",
	"02-01-2006 15:04",
	"2006-01-02",
	"02/01/2006",
}

// IngestAudit locates the header line by its markers and keeps only the rows
// whose token count matches the header exactly.
func IngestAudit(raw []byte, markers HeaderMarkers) (*RawTable, IngestStats, error) {
	const op = "report.IngestAudit"

	var lines []string
	for _, l := range splitLines(DecodeLatin1(raw)) {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}

	headerAt := -1
	for i, l := range lines {
		if strings.Contains(l, markers.Timestamp) && strings.Contains(l, markers.Node) {
			headerAt = i
			break
		}
	}
	if headerAt < 0 {
		return nil, IngestStats{}, errorf(op, ErrHeaderNotFound, "markers %q and %q", markers.Timestamp, markers.Node)
	}

	header := splitTokens(lines[headerAt])
	table := &RawTable{Columns: header}
	stats := IngestStats{}
	for _, l := range lines[headerAt+1:] {
		stats.RowsRead++
		tokens := splitTokens(l)
		if len(tokens) != len(header) {
			stats.RejectedWidth++
			continue
		}
		table.Rows = append(table.Rows, tokens)
	}
	return table, stats, nil
}

func splitTokens(line string) []string {
	parts := strings.Split(line, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// ParseAuditTime coerces a locale-formatted timestamp; nil when no layout fits.
func ParseAuditTime(s string, loc *time.Location) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range auditTimeLayouts {
		if ts, err := time.ParseInLocation(layout, s, loc); err == nil {
			return &ts
		}
	}
	return nil
}

// NormalizeAudit types an audit table. Unparseable timestamps become nil
// rather than dropping the row; rows with an invalid user are dropped when
// the export has a user column.
func NormalizeAudit(t *RawTable, cols AuditColumns, loc *time.Location) (*AuditTable, IngestStats, error) {
	cm, err := NewColumnMap(t.Columns, cols)
	if err != nil {
		return nil, IngestStats{}, err
	}
	stats := IngestStats{RowsRead: len(t.Rows)}
	out := &AuditTable{Header: t.Columns, Columns: cm}
	hasUser := cm.Has(FieldUser)
	for _, row := range t.Rows {
		ev := AuditEvent{Cells: make(map[string]string, len(row))}
		for i, h := range t.Columns {
			if i < len(row) {
				ev.Cells[h] = row[i]
			}
		}
		raw, _ := cm.Value(row, FieldTimestamp)
		ev.Timestamp = ParseAuditTime(raw, loc)
		ev.Node, _ = cm.Value(row, FieldNode)
		ev.Text, _ = cm.Value(row, FieldText)
		ev.OldValue, _ = cm.Value(row, FieldOldValue)
		ev.NewValue, _ = cm.Value(row, FieldNewValue)

		if hasUser {
			user, ok := cm.Value(row, FieldUser)
			if !ValidUser(user, ok) {
				stats.RejectedUser++
				continue
			}
			ev.User = user
		}
		if ev.Timestamp == nil {
			stats.NullTimestamps++
		}
		out.Events = append(out.Events, ev)
	}
	stats.Retained = len(out.Events)
	return out, stats, nil
}
