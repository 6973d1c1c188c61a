package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/san-kum/ispsweep/internal/config"
	"github.com/san-kum/ispsweep/internal/perf"
	"github.com/san-kum/ispsweep/internal/sweep"
)

const (
	metadataFile = "metadata.json"
	tableFile    = "sweep.csv"
)

var header = []string{"of_ratio", "temperature", "molecular_weight", "gamma", "mass", "converged", "isp", "error"}

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
	ID        string        `json:"id"`
	Preset    string        `json:"preset,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Config    config.Config `json:"config"`
	Points    int           `json:"points"`
	Failed    int           `json:"failed"`
	Optimum   *perf.Optimum `json:"optimum,omitempty"`
	Elapsed   float64       `json:"elapsed_seconds"`
}

// Save writes a sweep run into its own directory and returns the run ID.
func (s *Store) Save(preset string, cfg *config.Config, table sweep.Table, curve perf.Curve, elapsed time.Duration) (string, error) {
	if len(curve) != len(table) {
		return "", fmt.Errorf("storage: table has %d points, curve has %d", len(table), len(curve))
	}

	now := time.Now()
	runID := fmt.Sprintf("sweep_%d", now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Preset:    preset,
		Timestamp: now,
		Config:    *cfg,
		Points:    len(table),
		Failed:    table.Failed(),
		Elapsed:   elapsed.Seconds(),
	}
	if opt, err := perf.FindOptimum(table, curve); err == nil {
		meta.Optimum = &opt
	}

	if err := writeMetadata(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeTable(filepath.Join(runDir, tableFile), table, curve); err != nil {
		return "", err
	}

	log.WithFields(log.Fields{"run": runID, "points": len(table), "dir": runDir}).Info("run saved")
	return runID, nil
}

func writeMetadata(path string, meta RunMetadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeTable(path string, table sweep.Table, curve perf.Curve) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for i, pt := range table {
		row := []string{
			formatFloat(pt.OF),
			formatFloat(pt.T),
			formatFloat(pt.W),
			formatFloat(pt.Gamma),
			formatFloat(pt.Mass),
			strconv.FormatBool(pt.Converged),
			formatFloat(curve[i]),
			pt.Err,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns the metadata of every stored run, oldest first.
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

		meta, err := s.Load(entry.Name())
		if err != nil {
			log.WithField("dir", entry.Name()).WithError(err).Debug("skipping directory without run metadata")
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadTable reads back the sweep table and curve of a run.
func (s *Store) LoadTable(runID string) (sweep.Table, perf.Curve, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, tableFile))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(header)

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return sweep.Table{}, perf.Curve{}, nil
	}

	table := make(sweep.Table, 0, len(records)-1)
	curve := make(perf.Curve, 0, len(records)-1)

	for i, record := range records[1:] {
		var vals [5]float64
		for j := range vals {
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("storage: row %d, column %s: %w", i+1, header[j], err)
			}
			vals[j] = v
		}
		converged, err := strconv.ParseBool(record[5])
		if err != nil {
			return nil, nil, fmt.Errorf("storage: row %d, column converged: %w", i+1, err)
		}
		isp, err := strconv.ParseFloat(record[6], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("storage: row %d, column isp: %w", i+1, err)
		}

		table = append(table, sweep.Point{
			OF:        vals[0],
			T:         vals[1],
			W:         vals[2],
			Gamma:     vals[3],
			Mass:      vals[4],
			Converged: converged,
			Err:       record[7],
		})
		curve = append(curve, isp)
	}

	return table, curve, nil
}
