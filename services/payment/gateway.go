package payment

import (
	"context"

	razorpay "github.com/razorpay/razorpay-go"
	razorpayutils "github.com/razorpay/razorpay-go/utils"
)

// Gateway abstracts the payment provider. Order creation talks to the
// provider; signature verification is a local HMAC check and never does I/O.
type Gateway interface {
	CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string) (orderID string, err error)
	VerifySignature(orderID, paymentID, signature string) error
}

// RazorpayGateway implements Gateway over the Razorpay SDK.
type RazorpayGateway struct {
	client    *razorpay.Client
	keySecret string
}

// NewRazorpayGateway creates a gateway client with a bounded request timeout.
func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	client := razorpay.NewClient(keyID, keySecret)
	client.SetTimeout(10)

	return &RazorpayGateway{
		client:    client,
		keySecret: keySecret,
	}
}

// CreateOrder creates a provider order for the given amount in paise.
// Any SDK failure is surfaced as ErrGatewayUnavailable; callers decide
// whether to retry.
func (g *RazorpayGateway) CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data := map[string]interface{}{
		"amount":   amountPaise,
		"currency": currency,
		"receipt":  receipt,
	}

	order, err := g.client.Order.Create(data, nil)
	if err != nil {
		return "", ErrGatewayUnavailable
	}

	orderID, ok := order["id"].(string)
	if !ok || orderID == "" {
		return "", ErrGatewayUnavailable
	}
	return orderID, nil
}

// VerifySignature checks the checkout callback signature against the
// key secret.
func (g *RazorpayGateway) VerifySignature(orderID, paymentID, signature string) error {
	params := map[string]interface{}{
		"razorpay_order_id":   orderID,
		"razorpay_payment_id": paymentID,
	}
	if !razorpayutils.VerifyPaymentSignature(params, signature, g.keySecret) {
		return ErrInvalidSignature
	}
	return nil
}
