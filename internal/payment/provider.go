// Package payment wraps the external payment provider behind a small
// interface so handlers and tests never talk to the Mercado Pago API
// directly.
package payment

import "context"

// Payment method ids understood by the provider.
const (
	MethodPix        = "pix"
	MethodCreditCard = "credit_card"
)

// CreateRequest describes one charge to open with the provider.
type CreateRequest struct {
	Amount       float64
	Description  string
	Method       string // MethodPix or MethodCreditCard
	PayerEmail   string
	PayerCPF     string
	CardToken    string // card only, tokenized client-side
	Installments int    // card only
}

// Payment is the provider's view of a charge.
type Payment struct {
	ID           string
	Status       string // pending | approved | rejected | cancelled | ...
	StatusDetail string
	Method       string
	Amount       float64
	PayerEmail   string
	QRCode       string // PIX copy-and-paste payload
	QRCodeBase64 string // PIX QR image
	DateCreated  string
	DateUpdated  string
}

// Provider is the outbound payment surface. Implementations must be safe
// for concurrent use.
type Provider interface {
	CreatePayment(ctx context.Context, req CreateRequest) (Payment, error)
	GetPayment(ctx context.Context, id string) (Payment, error)
	CancelPayment(ctx context.Context, id string) error
}
