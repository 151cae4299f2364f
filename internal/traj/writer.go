package traj

import (
	"fmt"
	"os"
)

// lineFormat is the fixed 14-column step line: thirteen %8.5f floats and
// the integer active-surface index.
const lineFormat = "%8.5f %8.5f %8.5f %8.5f %8.5f %8.5f %8.5f %8.5f %8.5f %8.5f %8.5f %8.5f %8.5f %5d\n"

// Writer appends step records to a flat text file. The file is truncated
// once at the start of a run; each append opens and closes the file so a
// partial run always leaves complete lines behind.
type Writer struct {
	path string
}

// NewWriter truncates the output file and returns a writer for it.
func NewWriter(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("traj: create output: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	return &Writer{path: path}, nil
}

// Append writes one record line.
func (w *Writer) Append(rec Record) error {
	f, err := os.OpenFile(w.path, os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("traj: append output: %w", err)
	}
	defer f.Close()

	_, err = fmt.Fprintf(f, lineFormat,
		rec.Time, rec.Q, rec.P,
		rec.Ekin, rec.Epot, rec.Etot,
		rec.DEkin, rec.DEpot, rec.DEtot,
		rec.PopAdi0, rec.PopAdi1, rec.PopDia0, rec.PopDia1,
		rec.State,
	)
	return err
}
