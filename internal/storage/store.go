// Package storage persists analysis runs as flat files under a data
// directory: metadata.json, checkpoints.csv, and report.json per run.
// This is export-grade persistence only; the core never touches the
// filesystem.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/fracsim/internal/fracdyn"
)

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
	ID         string             `json:"id"`
	Analysis   string             `json:"analysis"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	NX         int                `json:"nx"`
	Steps      int                `json:"steps"`
	DomainSize float64            `json:"domain_size"`
	Params     fracdyn.Parameters `json:"params"`
	Stable     *bool              `json:"stable,omitempty"`
	Truncated  bool               `json:"truncated"`
}

// Save writes one analysis run. report may be any JSON-representable
// record (stability or convergence report); trace may be nil when the
// analysis kept no checkpoints worth exporting.
func (s *Store) Save(meta RunMetadata, report interface{}, trace *fracdyn.Trace) (string, error) {
	runID := fmt.Sprintf("%s_%d", meta.Analysis, time.Now().UnixNano())
	meta.ID = runID
	meta.Timestamp = time.Now()

	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if report != nil {
		if err := writeJSON(filepath.Join(runDir, "report.json"), report); err != nil {
			return "", err
		}
	}
	if trace != nil {
		if err := writeCheckpointsCSV(filepath.Join(runDir, "checkpoints.csv"), trace); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func writeJSON(path string, v interface{}) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCheckpointsCSV(path string, trace *fracdyn.Trace) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	if err := w.Write([]string{"step", "time", "max_amp", "l2_norm"}); err != nil {
		return err
	}
	for _, cp := range trace.Checkpoints {
		row := []string{
			strconv.Itoa(cp.Step),
			strconv.FormatFloat(cp.Time, 'f', 6, 64),
			strconv.FormatFloat(cp.MaxAmp, 'g', -1, 64),
			strconv.FormatFloat(cp.L2Norm, 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

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
		metaPath := filepath.Join(s.baseDir, entry.Name(), "metadata.json")
		data, err := os.ReadFile(metaPath)
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

// LoadReport reads the raw report.json of a run; callers unmarshal
// into the report type named by the metadata's Analysis field.
func (s *Store) LoadReport(runID string) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.baseDir, runID, "report.json"))
}

// LoadCheckpoints reads the scalar checkpoint series of a run.
func (s *Store) LoadCheckpoints(runID string) ([]fracdyn.Checkpoint, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "checkpoints.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []fracdyn.Checkpoint{}, nil
	}

	cps := make([]fracdyn.Checkpoint, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) < 4 {
			continue
		}
		step, err := strconv.Atoi(record[0])
		if err != nil {
			continue
		}
		t, _ := strconv.ParseFloat(record[1], 64)
		maxAmp, _ := strconv.ParseFloat(record[2], 64)
		l2, _ := strconv.ParseFloat(record[3], 64)
		cps = append(cps, fracdyn.Checkpoint{Step: step, Time: t, MaxAmp: maxAmp, L2Norm: l2})
	}
	return cps, nil
}

// ExportJSONStdout streams a stored run's report to stdout.
func (s *Store) ExportJSONStdout(runID string) error {
	data, err := s.LoadReport(runID)
	if err != nil {
		return err
	}
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
