package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scada-report/report"
)

const preamble = "Exportacion de alarmas\nPlanta: Norte\nDesde: 01-02-2024\nHasta: 03-02-2024\nTimestamp,Tipo de Alarma,Codigo de Alarma,Mensaje\n"

func writeInput(t *testing.T, dir string, rows ...string) string {
	t.Helper()
	path := filepath.Join(dir, "alarmas.csv")
	if err := os.WriteFile(path, []byte(preamble+strings.Join(rows, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun_UsageErrors(t *testing.T) {
	var out bytes.Buffer
	if code := run([]string{"-input", "x.csv"}, &out); code != 2 {
		t.Fatalf("expected exit 2 without --kind, got %d", code)
	}
	if code := run([]string{"-kind", "audit", "-input", "x.csv", "-export", "y.csv"}, &out); code != 2 {
		t.Fatalf("expected exit 2 for audit export, got %d", code)
	}
}

func TestRun_MalformedAlarmExportReturnsOne(t *testing.T) {
	tmp := t.TempDir()
	input := writeInput(t, tmp,
		`01-02-2024 10:00:00,Proceso,T1,"Alta - Por ana`,
		"01-02-2024 11:00:00,Proceso,T2,Baja - Por jsmith",
	)
	dbPath := filepath.Join(tmp, "AlarmHistory.db")

	var out bytes.Buffer
	if code := run([]string{"-kind", "alarm", "-input", input, "-db", dbPath}, &out); code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no report on failure, got %q", out.String())
	}

	store, err := report.OpenStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	ing, err := store.LastIngestion(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if ing != nil {
		t.Fatalf("expected nothing cached, got %+v", ing)
	}
}

func TestRun_AlarmReportCachesAndArchives(t *testing.T) {
	tmp := t.TempDir()
	input := writeInput(t, tmp,
		"01-02-2024 08:15:00,Proceso,A100,Alta temperatura - Por jsmith",
		"01-02-2024 09:30:00,Proceso,A101,Baja presion - Por ana",
	)
	dbPath := filepath.Join(tmp, "AlarmHistory.db")
	archive := filepath.Join(tmp, "archive")

	var out bytes.Buffer
	code := run([]string{"-kind", "alarm", "-input", input, "-db", dbPath, "-archive-dir", archive}, &out)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}

	var rep report.AlarmReport
	if err := json.Unmarshal(out.Bytes(), &rep); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if rep.Summary.TotalAlarms != 2 || rep.RunID == "" {
		t.Fatalf("unexpected report: %+v", rep)
	}
	if _, err := os.Stat(input); err == nil {
		t.Fatalf("expected input moved to archive")
	}
	archived, err := filepath.Glob(filepath.Join(archive, "*", "alarmas.csv"))
	if err != nil || len(archived) != 1 {
		t.Fatalf("expected one archived export, got %v (%v)", archived, err)
	}

	store, err := report.OpenStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	ing, err := store.LastIngestion(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if ing == nil || ing.RunID != rep.RunID || ing.Rows != 2 {
		t.Fatalf("unexpected ingestion record: %+v", ing)
	}
}
