package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestArchiveExport_EmptyDirErrors(t *testing.T) {
	if _, err := ArchiveExport("x", "", IngestionRecord{}); err == nil {
		t.Fatalf("expected error for empty archive dir")
	}
}

func writeUpload(t *testing.T, dir, name, content string) (string, IngestionRecord) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	at := time.Date(2024, 2, 5, 10, 0, 0, 0, time.UTC)
	rec := NewIngestionRecord(Upload{Name: name, Data: []byte(content)}, at)
	rec.RunID = "0f1e2d3c-4b5a-6978-8796-a5b4c3d2e1f0"
	return path, rec
}

func TestArchiveExport_MonthFolderAndNameCollision(t *testing.T) {
	tmp := t.TempDir()
	uploads := filepath.Join(tmp, "uploads")
	archive := filepath.Join(tmp, "archive")
	month := filepath.Join(archive, "2024-02")
	if err := os.MkdirAll(month, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(month, "alarmas.csv"), []byte("existing"), 0o644); err != nil {
		t.Fatal(err)
	}
	srcPath, rec := writeUpload(t, uploads, "alarmas.csv", "payload")

	dstPath, err := ArchiveExport(srcPath, archive, rec)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(month, "alarmas-0f1e2d3c.csv"); dstPath != want {
		t.Fatalf("expected %s, got %s", want, dstPath)
	}
	if _, err := os.Stat(srcPath); err == nil {
		t.Fatalf("expected source removed: %s", srcPath)
	}
	b, err := os.ReadFile(dstPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "payload" {
		t.Fatalf("unexpected content: %q", string(b))
	}
}

func TestArchiveExport_SameContentIsNotDuplicated(t *testing.T) {
	tmp := t.TempDir()
	uploads := filepath.Join(tmp, "uploads")
	archive := filepath.Join(tmp, "archive")

	srcPath, rec := writeUpload(t, uploads, "auditoria.csv", "payload")
	first, err := ArchiveExport(srcPath, archive, rec)
	if err != nil {
		t.Fatal(err)
	}

	srcPath, rec = writeUpload(t, uploads, "auditoria.csv", "payload")
	rec.SHA256 = ""
	second, err := ArchiveExport(srcPath, archive, rec)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatalf("expected re-upload to resolve to %s, got %s", first, second)
	}
	if _, err := os.Stat(srcPath); err == nil {
		t.Fatalf("expected duplicate upload removed: %s", srcPath)
	}
	entries, err := os.ReadDir(filepath.Dir(first))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one archived file, got %d", len(entries))
	}
}
