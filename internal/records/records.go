// Package records reads detection requests from and writes boundary results
// to the tabular CSV layout used by upstream chromatography exports.
//
// Input rows carry one trace each:
//
//	Times, Intensities, Molecule, ExplicitRetentionTime, FileName
//
// where Times and Intensities are comma separated numbers inside a single
// quoted field.
package records

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-peak/measure/peak"
)

const minColumns = 5

// ErrMalformedRow wraps every reason a row is skipped.
var ErrMalformedRow = errors.New("records: malformed row")

// Record is one trace with its identification and expected retention time.
type Record struct {
	// Row is the 1-based line of the row in the source, header included.
	Row         int
	Times       []float64
	Intensities []float64
	Molecule    string
	ExpectedRT  float64
	FileName    string
}

// Trace validates the record samples as a peak.Trace.
func (r Record) Trace() (peak.Trace, error) {
	return peak.NewTrace(r.Times, r.Intensities)
}

// RowError describes a skipped input row.
type RowError struct {
	Row int
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e RowError) Unwrap() error {
	return e.Err
}

// Read parses all rows from r. The first row is the header and is not
// interpreted. Malformed rows are reported in the RowError slice and
// skipped; the returned error is reserved for I/O failures. An empty
// source yields no records and no error.
func Read(r io.Reader) ([]Record, []RowError, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("reading header failed: %w", err)
	}

	var (
		recs    []Record
		skipped []RowError
	)
	for row := 2; ; row++ {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				skipped = append(skipped, RowError{Row: row, Err: fmt.Errorf("%w: %v", ErrMalformedRow, perr.Err)})
				continue
			}
			return recs, skipped, fmt.Errorf("reading row %d failed: %w", row, err)
		}

		rec, err := parseRow(fields)
		if err != nil {
			skipped = append(skipped, RowError{Row: row, Err: err})
			continue
		}
		rec.Row = row
		recs = append(recs, rec)
	}
	return recs, skipped, nil
}

func parseRow(fields []string) (Record, error) {
	if len(fields) < minColumns {
		return Record{}, fmt.Errorf("%w: not enough columns (%d < %d)", ErrMalformedRow, len(fields), minColumns)
	}

	fileName := strings.TrimSpace(fields[4])
	if fileName == "" {
		return Record{}, fmt.Errorf("%w: missing FileName", ErrMalformedRow)
	}

	times, err := parseSeries(fields[0])
	if err != nil {
		return Record{}, fmt.Errorf("%w: Times: %v", ErrMalformedRow, err)
	}
	intensities, err := parseSeries(fields[1])
	if err != nil {
		return Record{}, fmt.Errorf("%w: Intensities: %v", ErrMalformedRow, err)
	}
	if len(times) != len(intensities) {
		return Record{}, fmt.Errorf("%w: Times/Intensities length mismatch (%d vs %d)",
			ErrMalformedRow, len(times), len(intensities))
	}

	rt, err := strconv.ParseFloat(strings.TrimSpace(fields[3]), 64)
	if err != nil {
		return Record{}, fmt.Errorf("%w: ExplicitRetentionTime: %v", ErrMalformedRow, err)
	}

	return Record{
		Times:       times,
		Intensities: intensities,
		Molecule:    strings.TrimSpace(fields[2]),
		ExpectedRT:  rt,
		FileName:    fileName,
	}, nil
}

// parseSeries splits a comma separated list of numbers. Empty items are
// ignored.
func parseSeries(field string) ([]float64, error) {
	parts := strings.Split(field, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// FormatSeries is the inverse of the series parsing used by Read.
func FormatSeries(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

// InputHeader is the header row of input files.
var InputHeader = []string{"Times", "Intensities", "Molecule", "ExplicitRetentionTime", "FileName"}

// WriteInput writes recs in the input layout. Row numbers are ignored.
func WriteInput(w io.Writer, recs []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(InputHeader); err != nil {
		return err
	}
	for _, rec := range recs {
		row := []string{
			FormatSeries(rec.Times),
			FormatSeries(rec.Intensities),
			rec.Molecule,
			strconv.FormatFloat(rec.ExpectedRT, 'g', -1, 64),
			rec.FileName,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
