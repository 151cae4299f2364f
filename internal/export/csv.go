// Package export serializes run records to interchange formats.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/qdynlab/hopsim/internal/traj"
)

var csvHeader = []string{
	"time", "q", "p",
	"ekin", "epot", "etot",
	"dekin", "depot", "detot",
	"pop_adi_0", "pop_adi_1", "pop_dia_0", "pop_dia_1",
	"state",
}

// WriteCSV writes the step records as CSV with a header row.
func WriteCSV(w io.Writer, records []traj.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	row := make([]string, len(csvHeader))
	for _, rec := range records {
		floats := []float64{
			rec.Time, rec.Q, rec.P,
			rec.Ekin, rec.Epot, rec.Etot,
			rec.DEkin, rec.DEpot, rec.DEtot,
			rec.PopAdi0, rec.PopAdi1, rec.PopDia0, rec.PopDia1,
		}
		for i, v := range floats {
			row[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		row[len(row)-1] = strconv.Itoa(rec.State)
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
