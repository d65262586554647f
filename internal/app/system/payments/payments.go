// Package payments wraps the Razorpay order API behind the small
// Gateway interface the payment handlers depend on.
package payments

import (
	"context"
	"encoding/json"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
	"go.uber.org/zap"
)

// StatusPaid is the gateway order status that permits enrollment.
const StatusPaid = "paid"

// Order is the subset of a gateway order this app reads. Amount is in
// the gateway's minor unit (paise).
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// Gateway creates orders and re-fetches their authoritative status.
// Verification always consults the gateway, never a local copy.
type Gateway interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*Order, error)
	FetchOrder(ctx context.Context, orderID string) (*Order, error)
}

// Razorpay is the production Gateway.
type Razorpay struct {
	client *razorpay.Client
	log    *zap.Logger
}

// NewRazorpay builds the client from the key pair. Both halves are
// required; fail at startup rather than on the first checkout.
func NewRazorpay(keyID, keySecret string, logger *zap.Logger) (*Razorpay, error) {
	if keyID == "" || keySecret == "" {
		return nil, fmt.Errorf("razorpay key_id and key_secret are required")
	}
	return &Razorpay{client: razorpay.NewClient(keyID, keySecret), log: logger}, nil
}

// Disabled is the Gateway used when Razorpay credentials are not
// configured. Checkout endpoints fail with a clear error instead of a
// nil pointer.
type Disabled struct{}

func (Disabled) CreateOrder(context.Context, int64, string, string) (*Order, error) {
	return nil, fmt.Errorf("payments are disabled: razorpay is not configured")
}

func (Disabled) FetchOrder(context.Context, string) (*Order, error) {
	return nil, fmt.Errorf("payments are disabled: razorpay is not configured")
}

// CreateOrder opens a gateway order for the given amount in minor
// units (paise for INR).
func (r *Razorpay) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*Order, error) {
	data := map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	}
	body, err := r.client.Order.Create(data, nil)
	if err != nil {
		r.log.Error("razorpay order create failed",
			zap.Int64("amount", amount),
			zap.String("receipt", receipt),
			zap.Error(err))
		return nil, fmt.Errorf("create order: %w", err)
	}
	return orderFromMap(body)
}

// FetchOrder re-reads an order from the gateway.
func (r *Razorpay) FetchOrder(ctx context.Context, orderID string) (*Order, error) {
	body, err := r.client.Order.Fetch(orderID, nil, nil)
	if err != nil {
		r.log.Error("razorpay order fetch failed",
			zap.String("order_id", orderID),
			zap.Error(err))
		return nil, fmt.Errorf("fetch order: %w", err)
	}
	return orderFromMap(body)
}

// orderFromMap converts the SDK's untyped response into Order.
// Round-tripping through JSON handles the SDK's mix of float64 and
// json.Number amounts.
func orderFromMap(m map[string]interface{}) (*Order, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}
	var o Order
	if err := json.Unmarshal(raw, &o); err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}
	if o.ID == "" {
		return nil, fmt.Errorf("gateway returned order without id")
	}
	return &o, nil
}
