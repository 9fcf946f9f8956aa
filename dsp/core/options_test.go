package core

import "testing"

func TestApplyTraceOptions(t *testing.T) {
	cfg := ApplyTraceOptions(WithSampleInterval(0.05), WithStartTime(1.5))
	if cfg.SampleInterval != 0.05 {
		t.Fatalf("sample interval = %v, want 0.05", cfg.SampleInterval)
	}
	if cfg.StartTime != 1.5 {
		t.Fatalf("start time = %v, want 1.5", cfg.StartTime)
	}
}

func TestInvalidOptionsIgnored(t *testing.T) {
	cfg := ApplyTraceOptions(WithSampleInterval(0), WithSampleInterval(-1), nil)
	def := DefaultTraceConfig()
	if cfg != def {
		t.Fatalf("cfg = %#v, want %#v", cfg, def)
	}
}
