package types

import (
	"encoding/json"
	"testing"
)

func TestNewErrorEnvelopeOmitsNilDetails(t *testing.T) {
	raw, err := json.Marshal(NewErrorEnvelope("NOT_FOUND", "car not found", nil))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got := string(raw); got != `{"error":{"code":"NOT_FOUND","message":"car not found"}}` {
		t.Fatalf("unexpected envelope %s", got)
	}

	raw, err = json.Marshal(NewErrorEnvelope("VALIDATION_ERROR", "validation failed", map[string]string{"year": "is required"}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got := string(raw); got != `{"error":{"code":"VALIDATION_ERROR","message":"validation failed","details":{"year":"is required"}}}` {
		t.Fatalf("unexpected envelope %s", got)
	}
}
