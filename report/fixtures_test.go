package report

import (
	"strings"
	"testing"

	"golang.org/x/text/encoding/charmap"
)

const alarmPreamble = "Exportación de alarmas\n" +
	"Planta: Norte\n" +
	"Desde: 01-02-2024\n" +
	"Hasta: 03-02-2024\n" +
	"Timestamp,Tipo de Alarma,Codigo de Alarma,Mensaje\n"

var alarmFixtureRows = []string{
	"01-02-2024 08:15:00,Proceso,A100,Alta temperatura - Por jsmith",
	"01-02-2024 09:30:00,Proceso,A101,Baja presión - Por ana",
	"02-02-2024 00:00:00,Sistema,S001,Fallo de comunicación - Por jsmith",
	"02-02-2024 14:45:10,Sistema,S002,Reinicio - Por none",
	"03-02-2024 10:00:00,Proceso,A100,Alta temperatura - Por ana",
	"Total registros: 5,,,",
}

const auditFixture = "Informe de auditoría\n" +
	"Generado: 2024-02-05\n" +
	"\n" +
	"Marca de tiempo,Nodo,Usuario,Texto,Antiguo,Nuevo\n" +
	"2024-02-01 08:00:00,PLC1,ana,Cambio analógico setpoint,10,150\n" +
	"2024-02-01 08:30:00,PLC1,jsmith,Cambio digital bomba,0,1\n" +
	"2024-02-01 09:15:00,PLC2,ana,Fallo crítico detectado,50,-5\n" +
	"2024-02-02 22:00:00,PLC2,jsmith,Cambio analógico setpoint,20,50\n" +
	"2024-02-02 23:59:59,PLC3,none,Ignorado,1,2\n" +
	"sin fecha,PLC3,ana,Cambio analógico setpoint,1,abc\n" +
	"2024-02-03 07:00:00,PLC1,ana,Cambio digital\n"

// latin1 encodes s the way the SCADA exporter writes files.
func latin1(t *testing.T, s string) []byte {
	t.Helper()
	b, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
	if err != nil {
		t.Fatalf("encode latin1: %v", err)
	}
	return b
}

func alarmExport(t *testing.T, rows ...string) []byte {
	t.Helper()
	return latin1(t, alarmPreamble+strings.Join(rows, "\n")+"\n")
}
