package report

import (
	"encoding/csv"
	"io"
	"strconv"
)

// AlarmCSVHeader is the column order of the filtered alarm download.
var AlarmCSVHeader = []string{"Timestamp", "Tipo de Alarma", "Codigo de Alarma", "Mensaje", "Usuario", "Hora"}

const exportTimeLayout = "2006-01-02 15:04:05"

// WriteAlarmCSV renders filtered alarm rows as UTF-8 CSV with a header line.
func WriteAlarmCSV(w io.Writer, rows []AlarmRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(AlarmCSVHeader); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.Timestamp.Format(exportTimeLayout),
			r.AlarmType,
			r.AlarmCode,
			r.Message,
			r.User,
			strconv.Itoa(r.Hour),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
