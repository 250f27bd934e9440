package taskrt

import "testing"

func TestResolveExecutorConfig_Defaults(t *testing.T) {
	c := resolveExecutorConfig(nil)
	if c.logger == nil {
		t.Fatal("expected a default logger, got nil")
	}
	if c.metrics {
		t.Fatal("expected metrics disabled by default")
	}
	if c.parkSpins != 32 {
		t.Fatalf("parkSpins = %d, want 32", c.parkSpins)
	}
}

func TestResolveExecutorConfig_AppliesOptions(t *testing.T) {
	logger := NewTextLogger(nil, LevelDebug)
	c := resolveExecutorConfig([]ExecutorOption{
		WithLogger(logger),
		WithMetrics(true),
		WithParkSpin(5),
	})
	if c.logger != Logger(logger) {
		t.Fatal("WithLogger was not applied")
	}
	if !c.metrics {
		t.Fatal("WithMetrics(true) was not applied")
	}
	if c.parkSpins != 5 {
		t.Fatalf("parkSpins = %d, want 5", c.parkSpins)
	}
}

func TestResolveExecutorConfig_IgnoresNilOption(t *testing.T) {
	c := resolveExecutorConfig([]ExecutorOption{nil, WithMetrics(true), nil})
	if !c.metrics {
		t.Fatal("expected WithMetrics(true) applied despite surrounding nils")
	}
}

func TestScalingConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ScalingConfig
		wantErr bool
	}{
		{"valid", ScalingConfig{Min: 1, Max: 4}, false},
		{"min equals max", ScalingConfig{Min: 2, Max: 2}, false},
		{"zero min ok", ScalingConfig{Min: 0, Max: 1}, false},
		{"negative min", ScalingConfig{Min: -1, Max: 4}, true},
		{"zero max", ScalingConfig{Min: 0, Max: 0}, true},
		{"min greater than max", ScalingConfig{Min: 5, Max: 2}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
