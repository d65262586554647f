package payments

import (
	"testing"

	"go.uber.org/zap"
)

func TestNewRazorpay_RequiresKeyPair(t *testing.T) {
	if _, err := NewRazorpay("", "secret", zap.NewNop()); err == nil {
		t.Error("expected error for missing key_id")
	}
	if _, err := NewRazorpay("key", "", zap.NewNop()); err == nil {
		t.Error("expected error for missing key_secret")
	}
	if _, err := NewRazorpay("key", "secret", zap.NewNop()); err != nil {
		t.Errorf("expected success with both halves, got %v", err)
	}
}

func TestOrderFromMap(t *testing.T) {
	o, err := orderFromMap(map[string]interface{}{
		"id":       "order_abc123",
		"amount":   float64(49900), // SDK decodes JSON numbers as float64
		"currency": "INR",
		"receipt":  "665f1c0c8b3e2a0001a1b2c3",
		"status":   "created",
	})
	if err != nil {
		t.Fatalf("orderFromMap failed: %v", err)
	}
	if o.ID != "order_abc123" {
		t.Errorf("id: got %q", o.ID)
	}
	if o.Amount != 49900 {
		t.Errorf("amount: got %d, want 49900", o.Amount)
	}
	if o.Status != "created" {
		t.Errorf("status: got %q", o.Status)
	}
}

func TestOrderFromMap_MissingID(t *testing.T) {
	if _, err := orderFromMap(map[string]interface{}{"status": "paid"}); err == nil {
		t.Error("expected error for order without id")
	}
}
