package storage

import (
	"encoding/json"
	"os"

	"github.com/qdynlab/hopsim/internal/traj"
)

type runExport struct {
	Meta    RunMetadata   `json:"meta"`
	Records []traj.Record `json:"records"`
}

// ExportJSONStdout dumps a run's metadata and step records as indented
// JSON to stdout.
func ExportJSONStdout(meta *RunMetadata, records []traj.Record) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(runExport{Meta: *meta, Records: records})
}
