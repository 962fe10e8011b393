package otel

import (
	"context"
	"strings"
	"testing"
)

func TestSetupNoopWhenEndpointEmpty(t *testing.T) {
	t.Setenv("STAGESIM_OTEL_ENDPOINT", "")
	t.Setenv("STAGESIM_OTEL_ENABLED", "")

	shutdown, err := Setup(context.Background(), "test-service")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetupNoopWhenExplicitlyDisabled(t *testing.T) {
	t.Setenv("STAGESIM_OTEL_ENDPOINT", "http://localhost:4318")
	t.Setenv("STAGESIM_OTEL_ENABLED", "false")

	shutdown, err := Setup(context.Background(), "test-service")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetupRejectsBadEnv(t *testing.T) {
	t.Setenv("STAGESIM_OTEL_SAMPLE_RATIO", "half")

	if _, err := Setup(context.Background(), "test-service"); err == nil || !strings.Contains(err.Error(), "parse env") {
		t.Fatalf("error = %v, want parse env error", err)
	}
}

func TestSetupWithConfigCreatesProvider(t *testing.T) {
	// Non-routable address; nothing is exported without spans.
	shutdown, err := SetupWithConfig(context.Background(), "test-service", Config{
		Endpoint:    "http://192.0.2.1:4318",
		Enabled:     true,
		SampleRatio: 0.5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSampler(t *testing.T) {
	tests := []struct {
		ratio float64
		want  string
	}{
		{ratio: 1, want: "AlwaysOnSampler"},
		{ratio: 2, want: "AlwaysOnSampler"},
		{ratio: 0, want: "AlwaysOffSampler"},
		{ratio: 0.25, want: "ParentBased"},
	}
	for _, tt := range tests {
		got := sampler(tt.ratio).Description()
		if !strings.HasPrefix(got, tt.want) {
			t.Fatalf("sampler(%v) = %q, want prefix %q", tt.ratio, got, tt.want)
		}
	}
}
