package report

import (
	"encoding/csv"
	"errors"
	"io"
	"regexp"
	"strings"
	"time"
)

var (
	alarmDatePattern = regexp.MustCompile(`\d{2}-\d{2}-\d{4}`)
	// Alarm messages end with " - Por <actor>" when an operator acknowledged them.
	actorSuffix = regexp.MustCompile(`(?i)\s+-\s+por(?:\s+(.*))?$`)
)

var alarmTimeLayouts = []string{
	"02-01-2006 15:04:05",
	"02-01-2006 15:04",
	"02-01-2006T15:04:05",
	"02-01-2006 3:04:05 PM",
	"02-01-2006 03:04:05 PM",
	"02-01-2006",
}

// IngestAlarms skips the metadata preamble and reads the remaining rows into
// the fixed alarm columns.
func IngestAlarms(raw []byte, cfg AlarmConfig) (*RawTable, error) {
	const op = "report.IngestAlarms"

	lines := splitLines(DecodeLatin1(raw))
	if len(lines) < cfg.SkipLines {
		return nil, malformed(op, "file has %d lines, preamble needs %d", len(lines), cfg.SkipLines)
	}
	width := len(cfg.Columns)
	table := &RawTable{Columns: append([]string(nil), cfg.Columns...)}
	for i, line := range lines[cfg.SkipLines:] {
		if line == "" {
			continue
		}
		record, err := parseAlarmLine(line)
		if err != nil {
			return nil, malformed(op, "line %d: %v", cfg.SkipLines+i+1, err)
		}
		table.Rows = append(table.Rows, fitAlarmRow(record, width))
	}
	return table, nil
}

// parseAlarmLine reads one physical line as a CSV record. Quoted fields may
// not continue onto the next line; bare quotes inside a field are kept as
// text.
func parseAlarmLine(line string) ([]string, error) {
	if unterminatedQuote(line) {
		return nil, errors.New("quoted field not terminated")
	}
	reader := csv.NewReader(strings.NewReader(line))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	record, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []string{}, nil
	}
	return record, err
}

// unterminatedQuote reports whether a field that opens with a quote is still
// open at the end of line. A quote closes the field only when followed by a
// comma or the end of line; "" is an escaped quote.
func unterminatedQuote(line string) bool {
	fieldStart, quoted := true, false
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case quoted && c == '"':
			if i+1 < len(line) && line[i+1] == '"' {
				i++
			} else if i+1 == len(line) || line[i+1] == ',' {
				quoted = false
			}
		case quoted:
		case fieldStart && c == '"':
			quoted = true
			fieldStart = false
		case c == ',':
			fieldStart = true
		default:
			fieldStart = false
		}
	}
	return quoted
}

// fitAlarmRow pads short records and folds surplus fields back into the last
// column, where unquoted commas inside a message end up.
func fitAlarmRow(record []string, width int) []string {
	row := make([]string, width)
	if len(record) <= width {
		copy(row, record)
		return row
	}
	copy(row, record[:width-1])
	row[width-1] = strings.Join(record[width-1:], ",")
	return row
}

// ExtractUser returns the actor named by a trailing " - Por <actor>" suffix.
// The bool is false when the message has no such suffix.
func ExtractUser(message string) (string, bool) {
	m := actorSuffix.FindStringSubmatch(message)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// StripSuffix removes the " - Por <actor>" suffix, if any.
func StripSuffix(message string) string {
	return actorSuffix.ReplaceAllString(message, "")
}

// ValidUser rejects missing, blank and "none" users.
func ValidUser(user string, ok bool) bool {
	if !ok {
		return false
	}
	u := strings.TrimSpace(user)
	return u != "" && !strings.EqualFold(u, "none")
}

func parseAlarmTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range alarmTimeLayouts {
		ts, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return ts, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// NormalizeAlarms types the rows of an alarm table. Rows without a
// DD-MM-YYYY timestamp or without a valid acknowledging user are dropped;
// a gated timestamp that still fails to parse rejects the whole file.
func NormalizeAlarms(t *RawTable, loc *time.Location) ([]AlarmEvent, IngestStats, error) {
	const op = "report.NormalizeAlarms"

	if loc == nil {
		loc = time.UTC
	}
	stats := IngestStats{RowsRead: len(t.Rows)}
	events := make([]AlarmEvent, 0, len(t.Rows))
	for i, row := range t.Rows {
		if len(row) < 4 {
			return nil, stats, malformed(op, "row %d has %d columns", i, len(row))
		}
		if !alarmDatePattern.MatchString(row[0]) {
			stats.RejectedPattern++
			continue
		}
		ts, err := parseAlarmTime(row[0], loc)
		if err != nil {
			return nil, stats, malformed(op, "row %d: parse timestamp %q: %v", i, row[0], err)
		}
		user, ok := ExtractUser(row[3])
		if !ValidUser(user, ok) {
			stats.RejectedUser++
			continue
		}
		events = append(events, AlarmEvent{
			Timestamp: ts,
			AlarmType: row[1],
			AlarmCode: row[2],
			Message:   StripSuffix(row[3]),
			User:      user,
		})
	}
	stats.Retained = len(events)
	return events, stats, nil
}
