package server

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-peak/measure/peak"
)

func gaussianBody(rt float64) map[string]any {
	times := make([]float64, 101)
	ints := make([]float64, 101)
	for i := range times {
		times[i] = float64(i) / 10
		ints[i] = math.Exp(-0.5 * (times[i] - 5) * (times[i] - 5))
	}
	return map[string]any{"times": times, "intensities": ints, "expected_rt": rt}
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestDetectOK(t *testing.T) {
	s := New(Config{})
	rec := do(t, s.Handler(), http.MethodPost, "/v1/detect", gaussianBody(5))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp detectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 50, resp.Apex.Index)
	assert.InDelta(t, 5.0, resp.Apex.Time, 1e-9)
	assert.False(t, resp.Apex.Fallback)
	assert.InDelta(t, 2.5, resp.Boundary.StartTime, 1e-9)
	assert.InDelta(t, 7.5, resp.Boundary.EndTime, 1e-9)
	assert.Greater(t, resp.SignalToNoise, 0.0)
	assert.Nil(t, resp.Smoothed)
}

func TestDetectParamsOverride(t *testing.T) {
	s := New(Config{})
	body := gaussianBody(5)
	body["params"] = map[string]any{"fraction_of_apex": 0.5}
	body["include_smoothed"] = true

	rec := do(t, s.Handler(), http.MethodPost, "/v1/detect", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp detectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 38, resp.Boundary.LeftIndex)
	assert.Equal(t, 62, resp.Boundary.RightIndex)
	assert.Len(t, resp.Smoothed, 101)
}

func TestDetectErrors(t *testing.T) {
	s := New(Config{Params: peak.DefaultParams()})

	ramp := map[string]any{
		"times":       []float64{0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0, 1.1},
		"intensities": []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
		"expected_rt": 0.5,
	}
	badParams := gaussianBody(5)
	badParams["params"] = map[string]any{"fraction_of_apex": 2}

	tests := []struct {
		name string
		body any
		want int
	}{
		{name: "missing expected_rt", body: map[string]any{"times": []float64{0, 1}, "intensities": []float64{0, 1}}, want: http.StatusBadRequest},
		{name: "length mismatch", body: map[string]any{"times": []float64{0, 1}, "intensities": []float64{0}, "expected_rt": 0}, want: http.StatusBadRequest},
		{name: "too short", body: map[string]any{"times": []float64{0, 1, 2}, "intensities": []float64{0, 1, 0}, "expected_rt": 1}, want: http.StatusBadRequest},
		{name: "bad params", body: badParams, want: http.StatusBadRequest},
		{name: "no peak", body: ramp, want: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s.Handler(), http.MethodPost, "/v1/detect", tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())

			var resp map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestHealthAndMetrics(t *testing.T) {
	s := New(Config{})
	h := s.Handler()

	rec := do(t, h, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	do(t, h, http.MethodPost, "/v1/detect", gaussianBody(5))

	rec = do(t, h, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `completepeaker_records_total{status="ok"} 1`)
}
