package report

import "strings"

// Field is a canonical audit column, independent of the export's header text.
type Field string

const (
	FieldTimestamp Field = "timestamp"
	FieldNode      Field = "node"
	FieldUser      Field = "user"
	FieldText      Field = "text"
	FieldOldValue  Field = "old_value"
	FieldNewValue  Field = "new_value"
)

var allFields = []Field{FieldTimestamp, FieldNode, FieldUser, FieldText, FieldOldValue, FieldNewValue}

// ColumnMap resolves canonical fields to positions in a header discovered at
// runtime. It is built once per table.
type ColumnMap struct {
	idx map[Field]int
}

func (c AuditColumns) names() map[Field]string {
	return map[Field]string{
		FieldTimestamp: c.Timestamp,
		FieldNode:      c.Node,
		FieldUser:      c.User,
		FieldText:      c.Text,
		FieldOldValue:  c.OldValue,
		FieldNewValue:  c.NewValue,
	}
}

// NewColumnMap matches header tokens to fields: an exact (case-insensitive)
// name wins, otherwise the first token containing the name. Timestamp and
// node are mandatory.
func NewColumnMap(header []string, cols AuditColumns) (ColumnMap, error) {
	names := cols.names()
	cm := ColumnMap{idx: make(map[Field]int, len(allFields))}
	used := make(map[int]bool)
	for _, f := range allFields {
		want := strings.ToLower(strings.TrimSpace(names[f]))
		if want == "" {
			continue
		}
		found := -1
		for i, h := range header {
			if !used[i] && strings.ToLower(strings.TrimSpace(h)) == want {
				found = i
				break
			}
		}
		if found < 0 {
			for i, h := range header {
				if !used[i] && strings.Contains(strings.ToLower(h), want) {
					found = i
					break
				}
			}
		}
		if found >= 0 {
			cm.idx[f] = found
			used[found] = true
		}
	}
	for _, f := range []Field{FieldTimestamp, FieldNode} {
		if _, ok := cm.idx[f]; !ok {
			return ColumnMap{}, malformed("report.NewColumnMap", "header has no %s column (want %q)", f, names[f])
		}
	}
	return cm, nil
}

func (c ColumnMap) Lookup(f Field) (int, bool) {
	i, ok := c.idx[f]
	return i, ok
}

func (c ColumnMap) Has(f Field) bool {
	_, ok := c.idx[f]
	return ok
}

// Value returns the cell for f, or false when the header has no such column
// or the row is too short.
func (c ColumnMap) Value(row []string, f Field) (string, bool) {
	i, ok := c.idx[f]
	if !ok || i >= len(row) {
		return "", false
	}
	return row[i], true
}
