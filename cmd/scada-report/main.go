package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"scada-report/report"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	os.Exit(run(os.Args[1:], os.Stdout))
}

// run returns the process exit code so deferred cleanup happens before exit.
func run(args []string, stdout io.Writer) int {
	fs := flag.NewFlagSet("scada-report", flag.ContinueOnError)

	var configPath string
	var kind string
	var inputPath string
	var fromStr string
	var toStr string
	var dbPath string
	var noCache bool
	var debug bool
	var timezone string
	var exportPath string
	var archiveDir string

	fs.StringVar(&configPath, "config", "", "YAML config file path.")
	fs.StringVar(&kind, "kind", "", "Report kind: alarm or audit.")
	fs.StringVar(&inputPath, "input", "", "Exported CSV file to report on.")
	fs.StringVar(&fromStr, "from", "", "Range start. Alarm: date (2006-01-02). Audit: '2006-01-02 15:04:05'. Defaults to the earliest event.")
	fs.StringVar(&toStr, "to", "", "Range end, same formats as --from. Defaults to the latest event.")
	fs.StringVar(&dbPath, "db", "AlarmHistory.db", "SQLite file for the alarm cache table (overrides config.db).")
	fs.BoolVar(&noCache, "no-cache", false, "Skip the alarm cache table and count users in memory.")
	fs.BoolVar(&debug, "debug", false, "Enable debug logs.")
	fs.StringVar(&timezone, "tz", "", "Timezone the exports were written in (overrides config.timezone).")
	fs.StringVar(&exportPath, "export", "", "Write the filtered alarm table as CSV to this path (alarm only).")
	fs.StringVar(&archiveDir, "archive-dir", "", "Move the input into this directory after a successful run.")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	visited := map[string]bool{}
	fs.Visit(func(f *flag.Flag) {
		visited[f.Name] = true
	})

	cfg := report.DefaultConfig()
	if configPath != "" {
		loaded, err := report.LoadConfig(configPath)
		if err != nil {
			log.Printf("load config: %v", err)
			return 1
		}
		cfg = loaded
	}
	if visited["db"] {
		cfg.DB = dbPath
	}
	if visited["debug"] {
		cfg.Debug = debug
	}
	if visited["tz"] {
		cfg.Timezone = timezone
	}

	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind != "alarm" && kind != "audit" {
		fmt.Fprintln(os.Stderr, "missing or unknown --kind (use alarm or audit)")
		return 2
	}
	if strings.TrimSpace(inputPath) == "" {
		fmt.Fprintln(os.Stderr, "missing --input")
		return 2
	}
	if (fromStr == "") != (toStr == "") {
		fmt.Fprintln(os.Stderr, "--from and --to must be given together")
		return 2
	}
	if exportPath != "" && kind != "alarm" {
		fmt.Fprintln(os.Stderr, "--export is only available for alarm reports")
		return 2
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		log.Printf("read input: %v", err)
		return 1
	}

	var store *report.Store
	if kind == "alarm" && !noCache {
		store, err = report.OpenStore(cfg.DB)
		if err != nil {
			log.Printf("open alarm cache: %v", err)
			return 1
		}
		defer store.Close()
	}

	reporter, err := report.NewReporter(cfg, store)
	if err != nil {
		log.Printf("init reporter: %v", err)
		return 1
	}

	var rng *report.TimeRange
	if fromStr != "" {
		from, err := parseRangeTime(fromStr, reporter.Location())
		if err != nil {
			log.Printf("parse --from: %v", err)
			return 1
		}
		to, err := parseRangeTime(toStr, reporter.Location())
		if err != nil {
			log.Printf("parse --to: %v", err)
			return 1
		}
		var r report.TimeRange
		if kind == "alarm" {
			r = report.DateRange(from, to)
		} else {
			r = report.DateTimeRange(from, report.ClockOf(from), to, report.ClockOf(to))
		}
		rng = &r
	}

	ctx := context.Background()
	up := report.Upload{Name: filepath.Base(inputPath), Data: data}
	ing := report.NewIngestionRecord(up, time.Now())

	var out any
	switch kind {
	case "alarm":
		rep, err := reporter.RunAlarms(ctx, up, rng)
		if err != nil {
			return runFailure(err)
		}
		if exportPath != "" {
			if err := writeExport(exportPath, rep.Rows); err != nil {
				log.Printf("export csv: %v", err)
				return 1
			}
		}
		if rep.RunID != "" {
			ing.RunID = rep.RunID
		}
		out = rep
	case "audit":
		rep, err := reporter.RunAudit(ctx, up, rng)
		if err != nil {
			return runFailure(err)
		}
		out = rep
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Printf("write report: %v", err)
		return 1
	}

	if archiveDir != "" {
		dst, err := report.ArchiveExport(inputPath, archiveDir, ing)
		if err != nil {
			log.Printf("archive input: %v", err)
			return 1
		}
		if cfg.Debug {
			log.Printf("archived input=%q to=%q", inputPath, dst)
		}
	}
	return 0
}

func runFailure(err error) int {
	if errors.Is(err, report.ErrMalformedInput) {
		fmt.Fprintf(os.Stderr, "cannot read export: %v\n", err)
		return 1
	}
	log.Printf("run report: %v", err)
	return 1
}

func writeExport(path string, rows []report.AlarmRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.WriteAlarmCSV(f, rows); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func parseRangeTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty time")
	}
	layouts := []string{
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02T15:04:05",
		"2006-01-02",
		"02-01-2006 15:04:05",
		"02-01-2006",
	}
	for _, layout := range layouts {
		if tm, err := time.ParseInLocation(layout, s, loc); err == nil {
			return tm, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported time format: %q", s)
}
