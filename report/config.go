package report

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AlarmConfig describes the fixed layout of alarm exports.
type AlarmConfig struct {
	// SkipLines is the metadata preamble length before the first data row.
	SkipLines int      `yaml:"skip_lines"`
	Columns   []string `yaml:"columns"`
}

// HeaderMarkers are substrings that must both appear on the audit header line.
type HeaderMarkers struct {
	Timestamp string `yaml:"timestamp"`
	Node      string `yaml:"node"`
}

// AuditColumns maps canonical audit fields to the header names used by the export.
type AuditColumns struct {
	Timestamp string `yaml:"timestamp"`
	Node      string `yaml:"node"`
	User      string `yaml:"user"`
	Text      string `yaml:"text"`
	OldValue  string `yaml:"old_value"`
	NewValue  string `yaml:"new_value"`
}

type AuditConfig struct {
	Markers HeaderMarkers `yaml:"markers"`
	Columns AuditColumns  `yaml:"columns"`
}

type KeywordConfig struct {
	Critical []string `yaml:"critical"`
	Analog   []string `yaml:"analog"`
	Digital  []string `yaml:"digital"`
}

// ValueRange is the accepted interval for numeric setpoint changes.
type ValueRange struct {
	Min *float64 `yaml:"min"`
	Max *float64 `yaml:"max"`
}

type FileConfig struct {
	// DB is the SQLite file backing the alarm cache table.
	DB       string `yaml:"db"`
	Debug    bool   `yaml:"debug"`
	Timezone string `yaml:"timezone"`

	Alarm    AlarmConfig   `yaml:"alarm"`
	Audit    AuditConfig   `yaml:"audit"`
	Keywords KeywordConfig `yaml:"keywords"`

	TopN       int        `yaml:"top_n"`
	ValueRange ValueRange `yaml:"value_range"`
}

// Default alarm export column names, in file order.
var DefaultAlarmColumns = []string{"Timestamp", "Tipo de Alarma", "Codigo de Alarma", "Mensaje"}

func DefaultConfig() *FileConfig {
	cfg := &FileConfig{}
	cfg.withDefaults()
	return cfg
}

func (c *FileConfig) withDefaults() {
	if strings.TrimSpace(c.DB) == "" {
		c.DB = "AlarmHistory.db"
	}
	if c.Alarm.SkipLines <= 0 {
		c.Alarm.SkipLines = 5
	}
	if len(c.Alarm.Columns) == 0 {
		c.Alarm.Columns = append([]string(nil), DefaultAlarmColumns...)
	}
	m := &c.Audit.Markers
	if m.Timestamp == "" {
		m.Timestamp = "Marca de tiempo"
	}
	if m.Node == "" {
		m.Node = "Nodo"
	}
	cols := &c.Audit.Columns
	if cols.Timestamp == "" {
		cols.Timestamp = "Marca de tiempo"
	}
	if cols.Node == "" {
		cols.Node = "Nodo"
	}
	if cols.User == "" {
		cols.User = "Usuario"
	}
	if cols.Text == "" {
		cols.Text = "Texto"
	}
	if cols.OldValue == "" {
		cols.OldValue = "Antiguo"
	}
	if cols.NewValue == "" {
		cols.NewValue = "Nuevo"
	}
	if len(c.Keywords.Critical) == 0 {
		c.Keywords.Critical = append([]string(nil), CriticalKeywords...)
	}
	if len(c.Keywords.Analog) == 0 {
		c.Keywords.Analog = append([]string(nil), AnalogKeywords...)
	}
	if len(c.Keywords.Digital) == 0 {
		c.Keywords.Digital = append([]string(nil), DigitalKeywords...)
	}
	if c.TopN <= 0 {
		c.TopN = 10
	}
	if c.ValueRange.Min == nil {
		v := 0.0
		c.ValueRange.Min = &v
	}
	if c.ValueRange.Max == nil {
		v := 100.0
		c.ValueRange.Max = &v
	}
}

// Location resolves Timezone. Empty means UTC so that runs are reproducible
// across hosts.
func (c *FileConfig) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.Timezone)
	switch strings.ToLower(tz) {
	case "", "utc":
		return time.UTC, nil
	case "local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", tz, err)
	}
	return loc, nil
}

func LoadConfig(path string) (*FileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg FileConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Alarm.Columns) != 0 && len(cfg.Alarm.Columns) != len(DefaultAlarmColumns) {
		return nil, fmt.Errorf("alarm.columns must list %d names, got %d", len(DefaultAlarmColumns), len(cfg.Alarm.Columns))
	}
	cfg.withDefaults()
	return &cfg, nil
}
