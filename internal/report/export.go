package report

import (
	"encoding/json"
	"io"
	"math"
	"os"

	"github.com/san-kum/ispsweep/internal/perf"
	"github.com/san-kum/ispsweep/internal/storage"
	"github.com/san-kum/ispsweep/internal/sweep"
)

type ExportPoint struct {
	OF        float64  `json:"of_ratio"`
	T         float64  `json:"temperature"`
	W         float64  `json:"molecular_weight"`
	Gamma     float64  `json:"gamma"`
	Mass      float64  `json:"mass"`
	Converged bool     `json:"converged"`
	Isp       *float64 `json:"isp"`
	Error     string   `json:"error,omitempty"`
}

type ExportData struct {
	Run    *storage.RunMetadata `json:"run,omitempty"`
	Points []ExportPoint        `json:"points"`
	Curve  []*float64           `json:"curve"`
}

// NewExportData pairs a table with its curve. NaN values become null.
func NewExportData(meta *storage.RunMetadata, table sweep.Table, curve perf.Curve) ExportData {
	data := ExportData{
		Run:    meta,
		Points: make([]ExportPoint, len(table)),
		Curve:  make([]*float64, len(curve)),
	}
	for i, v := range curve {
		v := v
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			data.Curve[i] = &v
		}
	}
	for i, pt := range table {
		data.Points[i] = ExportPoint{
			OF:        pt.OF,
			T:         pt.T,
			W:         pt.W,
			Gamma:     pt.Gamma,
			Mass:      pt.Mass,
			Converged: pt.Converged,
			Error:     pt.Err,
		}
		if i < len(data.Curve) {
			data.Points[i].Isp = data.Curve[i]
		}
	}
	return data
}

func ExportJSON(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSONFile(path string, data ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return ExportJSON(file, data)
}
