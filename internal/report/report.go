// Package report renders sweep results for people and for other programs.
package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/san-kum/ispsweep/internal/perf"
	"github.com/san-kum/ispsweep/internal/sweep"
)

// FormatCurve prints a curve on one line as a bracketed, space separated
// list. Skipped points show as nan.
func FormatCurve(curve perf.Curve) string {
	parts := make([]string, len(curve))
	for i, v := range curve {
		if math.IsNaN(v) {
			parts[i] = "nan"
			continue
		}
		parts[i] = strconv.FormatFloat(v, 'f', 8, 64)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func formatIsp(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.2f", v)
}

// RenderTable draws one row per sweep point. The optimum row is highlighted
// and failed rows carry their error.
func RenderTable(t sweep.Table, curve perf.Curve) string {
	best := -1
	if opt, err := perf.FindOptimum(t, curve); err == nil {
		best = opt.Index
	}

	rows := make([][]string, len(t))
	for i, pt := range t {
		if !pt.Converged {
			rows[i] = []string{fmt.Sprintf("%.3f", pt.OF), "-", "-", "-", formatIsp(math.NaN()), pt.Err}
			continue
		}
		rows[i] = []string{
			fmt.Sprintf("%.3f", pt.OF),
			fmt.Sprintf("%.1f", pt.T),
			fmt.Sprintf("%.3f", pt.W),
			fmt.Sprintf("%.4f", pt.Gamma),
			formatIsp(curve[i]),
			"",
		}
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(Border).
		Headers("O/F", "T (K)", "W (kg/kmol)", "gamma", "Isp (s)", "error").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return cell.Inherit(Header)
			case row == best:
				return cell.Inherit(Best)
			case row >= 0 && row < len(t) && !t[row].Converged:
				return cell.Inherit(Failed)
			}
			return cell
		})

	return tbl.Render()
}

// Summary describes a finished sweep.
type Summary struct {
	RunID   string
	Preset  string
	Points  int
	Failed  int
	Optimum *perf.Optimum
	Refined *perf.Optimum
	// Effective exhaust velocity at the optimum, m/s.
	Velocity float64
}

func NewSummary(t sweep.Table, curve perf.Curve, c perf.Conditions) Summary {
	s := Summary{Points: len(t), Failed: t.Failed()}
	if opt, err := perf.FindOptimum(t, curve); err == nil {
		s.Optimum = &opt
		s.Velocity = perf.ExhaustVelocity(opt.Isp, c)
	}
	return s
}

// WriteSummary prints the labelled summary lines of a sweep.
func WriteSummary(w io.Writer, s Summary) error {
	line := func(label, value string) string {
		return Label.Render(fmt.Sprintf("%-10s", label)) + " " + Value.Render(value)
	}

	lines := []string{Title.Render("LH2/LOX specific impulse sweep")}
	if s.RunID != "" {
		lines = append(lines, line("run", s.RunID))
	}
	if s.Preset != "" {
		lines = append(lines, line("preset", s.Preset))
	}
	lines = append(lines, line("points", strconv.Itoa(s.Points)))
	if s.Failed > 0 {
		lines = append(lines, Label.Render(fmt.Sprintf("%-10s", "failed"))+" "+Failed.Render(strconv.Itoa(s.Failed)))
	}
	if s.Optimum != nil {
		lines = append(lines,
			line("best o/f", fmt.Sprintf("%.3f", s.Optimum.OF)),
			line("best isp", fmt.Sprintf("%.2f s", s.Optimum.Isp)),
			line("exhaust", fmt.Sprintf("%.1f m/s", s.Velocity)),
		)
	} else {
		lines = append(lines, Subtle.Render("no converged points"))
	}
	if s.Refined != nil {
		lines = append(lines,
			line("refined", fmt.Sprintf("o/f %.4f, isp %.3f s", s.Refined.OF, s.Refined.Isp)),
		)
	}

	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}
