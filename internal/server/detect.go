package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-peak/measure/peak"
)

// paramsRequest overrides the server defaults field by field.
type paramsRequest struct {
	RTHalfWindow   *float64 `json:"rt_half_window"`
	FractionOfApex *float64 `json:"fraction_of_apex"`
	MaxExtension   *int     `json:"max_extension"`
}

type detectRequest struct {
	Times           []float64      `json:"times" binding:"required"`
	Intensities     []float64      `json:"intensities" binding:"required"`
	ExpectedRT      *float64       `json:"expected_rt" binding:"required"`
	Params          *paramsRequest `json:"params"`
	IncludeSmoothed bool           `json:"include_smoothed"`
}

type apexResponse struct {
	Index        int     `json:"index"`
	Time         float64 `json:"time"`
	Intensity    float64 `json:"intensity"`
	RawIntensity float64 `json:"raw_intensity"`
	Fallback     bool    `json:"fallback"`
}

type boundaryResponse struct {
	StartTime  float64 `json:"start_time"`
	EndTime    float64 `json:"end_time"`
	LeftIndex  int     `json:"left_index"`
	RightIndex int     `json:"right_index"`
	Baseline   float64 `json:"baseline"`
	Threshold  float64 `json:"threshold"`
}

type detectResponse struct {
	Apex          apexResponse     `json:"apex"`
	Boundary      boundaryResponse `json:"boundary"`
	SignalToNoise float64          `json:"signal_to_noise"`
	Smoothed      []float64        `json:"smoothed,omitempty"`
}

func (s *Server) requestParams(req *paramsRequest) peak.Params {
	p := s.params
	if req == nil {
		return p
	}
	var opts []peak.Option
	if req.RTHalfWindow != nil {
		opts = append(opts, peak.WithHalfWindow(*req.RTHalfWindow))
	}
	if req.FractionOfApex != nil {
		opts = append(opts, peak.WithFractionOfApex(*req.FractionOfApex))
	}
	if req.MaxExtension != nil {
		opts = append(opts, peak.WithMaxExtension(*req.MaxExtension))
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

func (s *Server) handleDetect(c *gin.Context) {
	var req detectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start := time.Now()
	res, err := s.detect(req)
	s.metrics.ObserveDetection(res, err, time.Since(start))
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, peak.ErrInvalidInput):
			status = http.StatusBadRequest
		case errors.Is(err, peak.ErrNoPeakFound):
			status = http.StatusUnprocessableEntity
		}
		s.logger.Debug("detection failed", zap.Int("status", status), zap.Error(err))
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	resp := detectResponse{
		Apex: apexResponse{
			Index:        res.Apex.Index,
			Time:         res.Apex.Time,
			Intensity:    res.Apex.Intensity,
			RawIntensity: res.Apex.RawIntensity,
			Fallback:     res.Apex.Fallback,
		},
		Boundary: boundaryResponse{
			StartTime:  res.Boundary.LeftTime,
			EndTime:    res.Boundary.RightTime,
			LeftIndex:  res.Boundary.LeftIndex,
			RightIndex: res.Boundary.RightIndex,
			Baseline:   res.Boundary.Baseline,
			Threshold:  res.Boundary.Threshold,
		},
		SignalToNoise: res.SignalToNoise,
	}
	if req.IncludeSmoothed {
		resp.Smoothed = res.Smoothed
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) detect(req detectRequest) (peak.Result, error) {
	tr, err := peak.NewTrace(req.Times, req.Intensities)
	if err != nil {
		return peak.Result{}, err
	}
	return peak.Detect(tr, *req.ExpectedRT, s.requestParams(req.Params))
}
