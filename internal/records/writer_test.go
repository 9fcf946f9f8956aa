package records

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-peak/measure/peak"
)

func TestWriterSummary(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, false)
	require.NoError(t, err)

	require.NoError(t, w.Write(Result{FileName: "run1.raw", Molecule: "Caffeine", StartTime: 2.5, EndTime: 7.49996}))
	require.NoError(t, w.Flush())

	want := "FileName,Molecule,MinStartTime,MaxEndTime\n" +
		"run1.raw,Caffeine,2.5000,7.5000\n"
	assert.Equal(t, want, buf.String())
	assert.Equal(t, 1, w.Count())
}

func TestWriterEmptyBatchHasHeader(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, false)
	require.NoError(t, err)
	require.NoError(t, w.Flush())

	assert.Equal(t, "FileName,Molecule,MinStartTime,MaxEndTime\n", buf.String())
	assert.Zero(t, w.Count())
}

func TestWriterDetailed(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, true)
	require.NoError(t, err)

	rec := Record{FileName: "f.raw", Molecule: "M"}
	res := peak.Result{
		Apex: peak.Apex{Time: 5, Intensity: 0.99, Fallback: true},
		Boundary: peak.Boundary{
			LeftTime:  2.5,
			RightTime: 7.5,
			Baseline:  0.001,
			Threshold: 0.05,
		},
		SignalToNoise: 123.456789,
	}
	require.NoError(t, w.Write(NewResult(rec, res)))
	require.NoError(t, w.Flush())

	want := "FileName,Molecule,MinStartTime,MaxEndTime,ApexTime,ApexIntensity,Baseline,Threshold,SignalToNoise,Fallback\n" +
		"f.raw,M,2.5000,7.5000,5.0000,0.9900,0.0010,0.0500,123.4568,true\n"
	assert.Equal(t, want, buf.String())
}
