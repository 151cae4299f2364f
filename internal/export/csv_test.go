package export

import (
	"encoding/csv"
	"strings"
	"testing"

	"github.com/qdynlab/hopsim/internal/traj"
)

func TestWriteCSV(t *testing.T) {
	records := []traj.Record{
		{Time: 0, Q: 0.1, Etot: -0.019, PopAdi0: 0.5, PopAdi1: 0.5, State: 1},
		{Time: 1, Q: 0.102, Etot: -0.019, PopAdi0: 0.51, PopAdi1: 0.49, State: 0},
	}

	var sb strings.Builder
	if err := WriteCSV(&sb, records); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	rows, err := csv.NewReader(strings.NewReader(sb.String())).ReadAll()
	if err != nil {
		t.Fatalf("reading back csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header plus 2", len(rows))
	}
	if rows[0][0] != "time" || rows[0][len(rows[0])-1] != "state" {
		t.Errorf("unexpected header: %v", rows[0])
	}
	for i, row := range rows[1:] {
		if len(row) != 14 {
			t.Errorf("row %d has %d columns, want 14", i, len(row))
		}
	}
	if rows[1][13] != "1" || rows[2][13] != "0" {
		t.Errorf("state columns = %s, %s", rows[1][13], rows[2][13])
	}
	if rows[2][1] != "0.102" {
		t.Errorf("q column = %s, want 0.102", rows[2][1])
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	var sb strings.Builder
	if err := WriteCSV(&sb, nil); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	if len(lines) != 1 {
		t.Errorf("empty input should emit only the header, got %d lines", len(lines))
	}
}
