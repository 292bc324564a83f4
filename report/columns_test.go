package report

import (
	"errors"
	"testing"
)

func TestColumnMap_ResolvesByNameAndReportsMissing(t *testing.T) {
	header := []string{"Nodo", " Marca de tiempo ", "Texto", "Usuario"}
	cm, err := NewColumnMap(header, DefaultConfig().Audit.Columns)
	if err != nil {
		t.Fatal(err)
	}
	if i, ok := cm.Lookup(FieldTimestamp); !ok || i != 1 {
		t.Fatalf("expected timestamp at 1, got %d %v", i, ok)
	}
	row := []string{"PLC1", "2024-02-01 08:00:00", "Arranque", "ana"}
	if v, ok := cm.Value(row, FieldText); !ok || v != "Arranque" {
		t.Fatalf("unexpected text %q %v", v, ok)
	}
	if _, ok := cm.Value(row, FieldNewValue); ok {
		t.Fatalf("expected missing new_value column")
	}
	if _, ok := cm.Value(row[:2], FieldUser); ok {
		t.Fatalf("expected short row to report a missing user")
	}
}

func TestColumnMap_FallsBackToContainedName(t *testing.T) {
	header := []string{"Marca de tiempo (UTC)", "Nodo", "Usuario"}
	cm, err := NewColumnMap(header, DefaultConfig().Audit.Columns)
	if err != nil {
		t.Fatal(err)
	}
	if i, _ := cm.Lookup(FieldTimestamp); i != 0 {
		t.Fatalf("expected timestamp at 0, got %d", i)
	}
}

func TestColumnMap_RequiresTimestampAndNode(t *testing.T) {
	_, err := NewColumnMap([]string{"Fecha", "Nodo"}, DefaultConfig().Audit.Columns)
	if !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("expected ErrMalformedInput, got %v", err)
	}
}
