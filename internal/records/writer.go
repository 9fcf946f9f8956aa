package records

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/cwbudde/algo-peak/measure/peak"
)

// Result is one output row.
type Result struct {
	FileName  string
	Molecule  string
	StartTime float64
	EndTime   float64

	// Detail columns, written only by detailed writers.
	ApexTime      float64
	ApexIntensity float64
	Baseline      float64
	Threshold     float64
	SignalToNoise float64
	Fallback      bool
}

// NewResult pairs a record with its detection outcome.
func NewResult(rec Record, res peak.Result) Result {
	return Result{
		FileName:      rec.FileName,
		Molecule:      rec.Molecule,
		StartTime:     res.Boundary.LeftTime,
		EndTime:       res.Boundary.RightTime,
		ApexTime:      res.Apex.Time,
		ApexIntensity: res.Apex.Intensity,
		Baseline:      res.Boundary.Baseline,
		Threshold:     res.Boundary.Threshold,
		SignalToNoise: res.SignalToNoise,
		Fallback:      res.Apex.Fallback,
	}
}

var (
	outputHeader   = []string{"FileName", "Molecule", "MinStartTime", "MaxEndTime"}
	detailedHeader = []string{"ApexTime", "ApexIntensity", "Baseline", "Threshold", "SignalToNoise", "Fallback"}
)

// Writer emits result rows with times rounded to four decimals.
type Writer struct {
	cw       *csv.Writer
	detailed bool
	count    int
}

// NewWriter writes the header immediately, so an empty batch still produces
// a valid file.
func NewWriter(w io.Writer, detailed bool) (*Writer, error) {
	rw := &Writer{cw: csv.NewWriter(w), detailed: detailed}
	header := outputHeader
	if detailed {
		header = append(append([]string(nil), outputHeader...), detailedHeader...)
	}
	if err := rw.cw.Write(header); err != nil {
		return nil, err
	}
	return rw, nil
}

// Write appends one row.
func (w *Writer) Write(r Result) error {
	row := []string{r.FileName, r.Molecule, formatFixed(r.StartTime), formatFixed(r.EndTime)}
	if w.detailed {
		row = append(row,
			formatFixed(r.ApexTime),
			formatFixed(r.ApexIntensity),
			formatFixed(r.Baseline),
			formatFixed(r.Threshold),
			formatFixed(r.SignalToNoise),
			strconv.FormatBool(r.Fallback),
		)
	}
	if err := w.cw.Write(row); err != nil {
		return err
	}
	w.count++
	return nil
}

// Count returns the number of rows written after the header.
func (w *Writer) Count() int {
	return w.count
}

// Flush writes buffered rows and reports any write error.
func (w *Writer) Flush() error {
	w.cw.Flush()
	return w.cw.Error()
}

func formatFixed(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
