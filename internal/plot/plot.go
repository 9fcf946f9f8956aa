// Package plot renders quality control charts of detected peaks.
package plot

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/cwbudde/algo-peak/internal/records"
	"github.com/cwbudde/algo-peak/measure/peak"
)

// Default image size in pixels.
const (
	DefaultWidth  = 1024
	DefaultHeight = 400
)

// ErrTooFewSamples is returned for traces that cannot span an axis.
var ErrTooFewSamples = errors.New("plot: need at least two samples")

// pointStyle returns a style that renders points only.
func pointStyle(col drawing.Color, width float64) chart.Style {
	return chart.Style{
		StrokeWidth: 0,
		DotWidth:    width,
		DotColor:    col,
	}
}

func lineStyle(col drawing.Color, width float64, dash ...float64) chart.Style {
	return chart.Style{
		StrokeColor:     col,
		StrokeWidth:     width,
		StrokeDashArray: dash,
	}
}

// Render draws raw and smoothed intensities with the apex, the boundary
// markers and the extension threshold as PNG to w.
func Render(w io.Writer, title string, times, raw []float64, res peak.Result) error {
	if len(times) < 2 {
		return ErrTooFewSamples
	}
	if len(raw) != len(times) || len(res.Smoothed) != len(times) {
		return fmt.Errorf("plot: length mismatch (times=%d raw=%d smoothed=%d)", len(times), len(raw), len(res.Smoothed))
	}

	lo, hi := yRange(raw, res.Smoothed)
	series := chartSeries(times, raw, res, lo, hi)

	ch := chart.Chart{
		Title:      title,
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 14}},
		XAxis:      chart.XAxis{Name: "Time"},
		YAxis:      chart.YAxis{Name: "Intensity", Range: &chart.ContinuousRange{Min: lo, Max: hi}},
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return fmt.Errorf("plot: rendering %q failed: %w", title, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// chartSeries returns the plotted series. Every series is named; the legend
// lists each visible one.
func chartSeries(times, raw []float64, res peak.Result, lo, hi float64) []chart.Series {
	b := res.Boundary
	return []chart.Series{
		chart.ContinuousSeries{Name: "Raw", XValues: times, YValues: raw, Style: pointStyle(chart.ColorAlternateGray, 2)},
		chart.ContinuousSeries{Name: "Smoothed", XValues: times, YValues: res.Smoothed, Style: lineStyle(chart.ColorBlue, 2)},
		chart.ContinuousSeries{
			Name:    "Left boundary",
			XValues: []float64{b.LeftTime, b.LeftTime},
			YValues: []float64{lo, hi},
			Style:   lineStyle(chart.ColorGreen, 1, 4, 2),
		},
		chart.ContinuousSeries{
			Name:    "Right boundary",
			XValues: []float64{b.RightTime, b.RightTime},
			YValues: []float64{lo, hi},
			Style:   lineStyle(chart.ColorGreen, 1, 4, 2),
		},
		chart.ContinuousSeries{
			Name:    "Threshold",
			XValues: []float64{times[0], times[len(times)-1]},
			YValues: []float64{b.Threshold, b.Threshold},
			Style:   lineStyle(chart.ColorOrange, 1, 2, 2),
		},
		chart.ContinuousSeries{
			Name:    "Apex",
			XValues: []float64{res.Apex.Time, res.Apex.Time},
			YValues: []float64{res.Apex.Intensity, res.Apex.Intensity},
			Style:   pointStyle(chart.ColorRed, 5),
		},
	}
}

// WriteFile renders the chart of one record into dir and returns the file
// path. The name is derived from the record's file name and molecule.
func WriteFile(dir string, rec records.Record, res peak.Result) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, FileName(rec))

	var buf bytes.Buffer
	title := fmt.Sprintf("%s | %s", rec.FileName, rec.Molecule)
	if err := Render(&buf, title, rec.Times, rec.Intensities, res); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// FileName returns a filesystem safe PNG name for rec.
func FileName(rec records.Record) string {
	name := fmt.Sprintf("%s_%s_row%d", rec.FileName, rec.Molecule, rec.Row)
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		default:
			return '_'
		}
	}, name)
	return name + ".png"
}

// yRange returns a padded, non-empty range over all finite values.
func yRange(series ...[]float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, v := range s {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if lo > hi {
		return 0, 1
	}
	if hi == lo {
		return lo - 0.5, hi + 0.5
	}
	pad := 0.05 * (hi - lo)
	return lo - pad, hi + pad
}
