package report

import "time"

// RawTable is an Ingestor result: untyped cells under known column names.
type RawTable struct {
	Columns []string
	Rows    [][]string
}

type AlarmEvent struct {
	Timestamp time.Time `json:"timestamp"`
	AlarmType string    `json:"alarm_type"`
	AlarmCode string    `json:"alarm_code"`
	Message   string    `json:"message"`
	User      string    `json:"user"`
}

type AuditEvent struct {
	// Timestamp is nil when the export's value could not be parsed.
	Timestamp *time.Time `json:"timestamp"`
	Node      string     `json:"node"`
	User      string     `json:"user"`
	Text      string     `json:"text"`
	OldValue  string     `json:"old_value,omitempty"`
	NewValue  string     `json:"new_value,omitempty"`
	// Cells keeps every column of the source row, keyed by header name.
	Cells map[string]string `json:"cells,omitempty"`
}

// AuditTable is a normalized audit export together with the column layout it
// was read with.
type AuditTable struct {
	Header  []string
	Columns ColumnMap
	Events  []AuditEvent
}

// IngestStats counts rows that were silently rejected or coerced.
type IngestStats struct {
	RowsRead        int `json:"rows_read"`
	RejectedPattern int `json:"rejected_pattern,omitempty"`
	RejectedWidth   int `json:"rejected_width,omitempty"`
	RejectedUser    int `json:"rejected_user,omitempty"`
	NullTimestamps  int `json:"null_timestamps,omitempty"`
	Retained        int `json:"retained"`
}

// AlarmRecord is one row of the replace-only alarm cache table.
type AlarmRecord struct {
	ID        uint      `gorm:"primaryKey"`
	Timestamp time.Time `gorm:"column:timestamp;index"`
	AlarmType string    `gorm:"column:tipo_de_alarma;size:255"`
	AlarmCode string    `gorm:"column:codigo_de_alarma;size:255"`
	Message   string    `gorm:"column:mensaje;type:text"`
	User      string    `gorm:"column:usuario;index;size:255"`
}

func (AlarmRecord) TableName() string { return "alarmas" }

// IngestionRecord describes the upload that produced the current cache contents.
type IngestionRecord struct {
	ID         uint      `gorm:"primaryKey"`
	RunID      string    `gorm:"size:36;uniqueIndex"`
	Source     string    `gorm:"size:1024"`
	SHA256     string    `gorm:"size:64"`
	SizeBytes  int64
	Rows       int
	IngestedAt time.Time `gorm:"index"`
}

func (IngestionRecord) TableName() string { return "ingestions" }
