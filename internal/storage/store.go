package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/qdynlab/hopsim/internal/config"
	"github.com/qdynlab/hopsim/internal/traj"
)

// Store persists runs under a base directory, one subdirectory per run
// with a metadata file and the flat step table.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Model     int                `json:"model"`
	Rep       int                `json:"rep"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Dt        float64            `json:"dt"`
	Steps     int                `json:"steps"`
	NTraj     int                `json:"ntraj"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes metadata.json and steps.txt for a finished run and returns
// the run id.
func (s *Store) Save(cfg *config.Config, result *traj.Result) (string, error) {
	runID := fmt.Sprintf("model%d_%d", cfg.Model, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Model:     cfg.Model,
		Rep:       cfg.Rep,
		Timestamp: time.Now(),
		Seed:      cfg.Seed,
		Dt:        cfg.Dt,
		Steps:     cfg.Steps,
		NTraj:     cfg.NTraj,
		Metrics:   result.Metrics,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	w, err := traj.NewWriter(filepath.Join(runDir, "steps.txt"))
	if err != nil {
		return "", err
	}
	for _, rec := range result.Records {
		if err := w.Append(rec); err != nil {
			return "", err
		}
	}

	return runID, nil
}

// List returns the metadata of every stored run.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}
		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}
	return runs, nil
}

// Load reads one run's metadata.
func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadRecords parses the step table of a stored run.
func (s *Store) LoadRecords(runID string) ([]traj.Record, error) {
	return ParseRecords(filepath.Join(s.baseDir, runID, "steps.txt"))
}

// ParseRecords reads a flat step file: 14 whitespace-separated fields per
// line, thirteen floats and the trailing active-surface index.
func ParseRecords(path string) ([]traj.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records := make([]traj.Record, 0)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 14 {
			return nil, fmt.Errorf("storage: line %d has %d fields, want 14", len(records)+1, len(fields))
		}
		vals := make([]float64, 13)
		for i := 0; i < 13; i++ {
			if vals[i], err = strconv.ParseFloat(fields[i], 64); err != nil {
				return nil, fmt.Errorf("storage: line %d field %d: %w", len(records)+1, i, err)
			}
		}
		state, err := strconv.Atoi(fields[13])
		if err != nil {
			return nil, fmt.Errorf("storage: line %d state field: %w", len(records)+1, err)
		}
		records = append(records, traj.Record{
			Time: vals[0], Q: vals[1], P: vals[2],
			Ekin: vals[3], Epot: vals[4], Etot: vals[5],
			DEkin: vals[6], DEpot: vals[7], DEtot: vals[8],
			PopAdi0: vals[9], PopAdi1: vals[10], PopDia0: vals[11], PopDia1: vals[12],
			State: state,
		})
	}
	return records, sc.Err()
}
