package core

// TraceConfig defines the sampling grid shared by trace generators.
type TraceConfig struct {
	// SampleInterval is the spacing between consecutive samples in time
	// units (minutes for most chromatography exports).
	SampleInterval float64
	StartTime      float64
}

// TraceOption mutates a TraceConfig.
type TraceOption func(*TraceConfig)

// DefaultTraceConfig returns a 0.1 time-unit grid starting at zero.
func DefaultTraceConfig() TraceConfig {
	return TraceConfig{
		SampleInterval: 0.1,
		StartTime:      0,
	}
}

// WithSampleInterval sets the spacing between samples.
func WithSampleInterval(interval float64) TraceOption {
	return func(cfg *TraceConfig) {
		if interval > 0 {
			cfg.SampleInterval = interval
		}
	}
}

// WithStartTime sets the time of the first sample.
func WithStartTime(start float64) TraceOption {
	return func(cfg *TraceConfig) {
		if IsFinite(start) {
			cfg.StartTime = start
		}
	}
}

// ApplyTraceOptions applies zero or more options to the default config.
func ApplyTraceOptions(opts ...TraceOption) TraceConfig {
	cfg := DefaultTraceConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
