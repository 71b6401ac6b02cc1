package warmup

import (
	"context"
	"encoding/json"
	"testing"

	"go.uber.org/zap"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name            string
		payload         string
		wantWarmup      bool
		wantConcurrency int
	}{
		{
			name:            "warmup without concurrency",
			payload:         `{"source":"warmup"}`,
			wantWarmup:      true,
			wantConcurrency: 0,
		},
		{
			name:            "warmup with concurrency",
			payload:         `{"source":"warmup","concurrency":3}`,
			wantWarmup:      true,
			wantConcurrency: 3,
		},
		{
			name:       "other source",
			payload:    `{"source":"aws.events"}`,
			wantWarmup: false,
		},
		{
			name:       "api gateway event",
			payload:    `{"httpMethod":"GET","path":"/ping"}`,
			wantWarmup: false,
		},
		{
			name:       "not an object",
			payload:    `[1,2,3]`,
			wantWarmup: false,
		},
		{
			name:       "invalid json",
			payload:    `{`,
			wantWarmup: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, ok := Detect(json.RawMessage(tt.payload))
			if ok != tt.wantWarmup {
				t.Fatalf("Detect() ok = %v, want %v", ok, tt.wantWarmup)
			}
			if !tt.wantWarmup {
				return
			}
			if event.Concurrency != tt.wantConcurrency {
				t.Errorf("Concurrency = %d, want %d", event.Concurrency, tt.wantConcurrency)
			}
		})
	}
}

func TestHandleWithoutFanOut(t *testing.T) {
	resp, err := Handle(context.Background(), &Event{Source: Source}, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.Status != "warm" {
		t.Errorf("Status = %q, want %q", resp.Status, "warm")
	}
	if resp.InstancesWarmed != 1 {
		t.Errorf("InstancesWarmed = %d, want 1", resp.InstancesWarmed)
	}
}
