package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// MercadoPago talks to the Mercado Pago payments REST API. Only the three
// calls the platform needs are implemented; everything else the provider
// offers is out of scope.
type MercadoPago struct {
	BaseURL     string
	AccessToken string
	HTTPClient  *http.Client
}

// NewMercadoPago builds a client. baseURL is overridable so tests can
// point it at an httptest server.
func NewMercadoPago(baseURL, accessToken string) *MercadoPago {
	return &MercadoPago{
		BaseURL:     baseURL,
		AccessToken: accessToken,
		HTTPClient:  &http.Client{Timeout: 15 * time.Second},
	}
}

// wire types, narrowed to the fields the handlers consume.
type mpPayer struct {
	Email          string           `json:"email"`
	Identification mpIdentification `json:"identification"`
}

type mpIdentification struct {
	Type   string `json:"type"`
	Number string `json:"number"`
}

type mpCreateBody struct {
	TransactionAmount float64 `json:"transaction_amount"`
	Description       string  `json:"description"`
	PaymentMethodID   string  `json:"payment_method_id"`
	Token             string  `json:"token,omitempty"`
	Installments      int     `json:"installments,omitempty"`
	Payer             mpPayer `json:"payer"`
}

type mpPayment struct {
	ID                 json.Number `json:"id"`
	Status             string      `json:"status"`
	StatusDetail       string      `json:"status_detail"`
	PaymentMethodID    string      `json:"payment_method_id"`
	PaymentTypeID      string      `json:"payment_type_id"`
	TransactionAmount  float64     `json:"transaction_amount"`
	DateCreated        string      `json:"date_created"`
	DateLastUpdated    string      `json:"date_last_updated"`
	Payer              mpPayer     `json:"payer"`
	PointOfInteraction struct {
		TransactionData struct {
			QRCode       string `json:"qr_code"`
			QRCodeBase64 string `json:"qr_code_base64"`
		} `json:"transaction_data"`
	} `json:"point_of_interaction"`
}

func (p mpPayment) toPayment() Payment {
	method := p.PaymentMethodID
	if method == "" {
		method = p.PaymentTypeID
	}
	return Payment{
		ID:           p.ID.String(),
		Status:       p.Status,
		StatusDetail: p.StatusDetail,
		Method:       method,
		Amount:       p.TransactionAmount,
		PayerEmail:   p.Payer.Email,
		QRCode:       p.PointOfInteraction.TransactionData.QRCode,
		QRCodeBase64: p.PointOfInteraction.TransactionData.QRCodeBase64,
		DateCreated:  p.DateCreated,
		DateUpdated:  p.DateLastUpdated,
	}
}

// CreatePayment opens a charge with the provider.
func (m *MercadoPago) CreatePayment(ctx context.Context, req CreateRequest) (Payment, error) {
	body := mpCreateBody{
		TransactionAmount: req.Amount,
		Description:       req.Description,
		PaymentMethodID:   req.Method,
		Payer: mpPayer{
			Email:          req.PayerEmail,
			Identification: mpIdentification{Type: "CPF", Number: req.PayerCPF},
		},
	}
	if req.Method == MethodCreditCard {
		body.Token = req.CardToken
		body.Installments = req.Installments
		if body.Installments < 1 {
			body.Installments = 1
		}
	}
	var out mpPayment
	if err := m.do(ctx, http.MethodPost, "/v1/payments", body, &out); err != nil {
		return Payment{}, err
	}
	return out.toPayment(), nil
}

// GetPayment fetches the current state of a charge.
func (m *MercadoPago) GetPayment(ctx context.Context, id string) (Payment, error) {
	var out mpPayment
	if err := m.do(ctx, http.MethodGet, "/v1/payments/"+id, nil, &out); err != nil {
		return Payment{}, err
	}
	return out.toPayment(), nil
}

// CancelPayment moves a pending charge to cancelled.
func (m *MercadoPago) CancelPayment(ctx context.Context, id string) error {
	body := map[string]string{"status": "cancelled"}
	var out mpPayment
	return m.do(ctx, http.MethodPut, "/v1/payments/"+id, body, &out)
}

func (m *MercadoPago) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, m.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+m.AccessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := m.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("mercadopago: %s %s returned %s: %s",
			method, path, strconv.Itoa(resp.StatusCode), string(data))
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
