package telemetry

import (
	"context"
	"testing"
)

func TestSetup_DisabledIsNoop(t *testing.T) {
	for _, cfg := range []Config{
		{Enabled: false, Endpoint: "http://localhost:4318"},
		{Enabled: true, Endpoint: ""},
	} {
		shutdown, err := Setup(context.Background(), cfg)
		if err != nil {
			t.Fatalf("Setup(%+v) returned error: %v", cfg, err)
		}
		if err := shutdown(context.Background()); err != nil {
			t.Errorf("noop shutdown returned error: %v", err)
		}
	}
}
