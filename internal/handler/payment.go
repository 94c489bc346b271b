package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/projetocarbone/roma-backend/internal/mail"
	"github.com/projetocarbone/roma-backend/internal/middleware"
	"github.com/projetocarbone/roma-backend/internal/payment"
	"github.com/projetocarbone/roma-backend/internal/validation"
)

// statusCacheTTL bounds how often the status poll hits the provider.
const statusCacheTTL = 30 * time.Second

// PaymentHandler fronts the external payment provider. Redis (optional)
// caches status polls; the mailer (optional) sends purchase confirmations.
type PaymentHandler struct {
	Provider payment.Provider
	Mailer   *mail.Mailer
	Redis    *redis.Client
}

func NewPaymentHandler(p payment.Provider, m *mail.Mailer, rdb *redis.Client) *PaymentHandler {
	return &PaymentHandler{Provider: p, Mailer: m, Redis: rdb}
}

type cartItem struct {
	ID     uint64  `json:"id"`
	Titulo string  `json:"titulo"`
	Preco  float64 `json:"preco"`
}

type dadosCartao struct {
	Token  string `json:"token"`  // tokenized client-side by the provider SDK
	Numero string `json:"numero"` // only present on the fallback non-tokenized form
}

type dadosPagamento struct {
	CPF      string      `json:"cpf"`
	Parcelas int         `json:"parcelas"`
	Cartao   dadosCartao `json:"cartao"`
}

type processarReq struct {
	Itens           []cartItem     `json:"itens"`
	MetodoPagamento string         `json:"metodoPagamento"`
	DadosPagamento  dadosPagamento `json:"dadosPagamento"`
	Cupom           string         `json:"cupom"`
	ValorTotal      float64        `json:"valorTotal"`
}

// The provider sends data.id as a number on some notification kinds and
// as a string on others, so it is kept raw and unquoted on use.
type webhookReq struct {
	Type string `json:"type"`
	Data struct {
		ID json.RawMessage `json:"id"`
	} `json:"data"`
}

type statusResp struct {
	ID              string  `json:"id"`
	Status          string  `json:"status"`
	StatusDetail    string  `json:"statusDetail"`
	MetodoPagamento string  `json:"metodoPagamento"`
	ValorTotal      float64 `json:"valorTotal"`
	DataCriacao     string  `json:"dataCriacao"`
	DataAtualizacao string  `json:"dataAtualizacao"`
}

// Processar submits a charge to the provider and shapes the response per
// payment method: PIX answers with the QR payload, approved card charges
// trigger the confirmation email.
func (h *PaymentHandler) Processar(c echo.Context) error {
	var req processarReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Corpo da requisição inválido", "")
	}
	if len(req.Itens) == 0 {
		return fail(c, http.StatusBadRequest, "Nenhum item no carrinho", "")
	}
	if req.MetodoPagamento != "pix" && req.MetodoPagamento != "cartao" {
		return fail(c, http.StatusBadRequest, "Método de pagamento inválido", "")
	}
	if !validation.ValidCPF(req.DadosPagamento.CPF) {
		return fail(c, http.StatusBadRequest, "CPF inválido", "INVALID_CPF")
	}
	if req.MetodoPagamento == "cartao" && req.DadosPagamento.Cartao.Numero != "" &&
		!validation.ValidLuhn(req.DadosPagamento.Cartao.Numero) {
		return fail(c, http.StatusBadRequest, "Número de cartão inválido", "INVALID_CARD")
	}
	if h.Provider == nil {
		return fail(c, http.StatusServiceUnavailable, "Pagamentos indisponíveis no momento", "")
	}

	method := payment.MethodPix
	if req.MetodoPagamento == "cartao" {
		method = payment.MethodCreditCard
	}
	userEmail := middleware.UserEmail(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 20*time.Second)
	defer cancel()

	p, err := h.Provider.CreatePayment(ctx, payment.CreateRequest{
		Amount:       req.ValorTotal,
		Description:  fmt.Sprintf("Compra de %d curso(s)", len(req.Itens)),
		Method:       method,
		PayerEmail:   userEmail,
		PayerCPF:     req.DadosPagamento.CPF,
		CardToken:    req.DadosPagamento.Cartao.Token,
		Installments: req.DadosPagamento.Parcelas,
	})
	if err != nil {
		log.Printf("pagamento: provider create failed: %v", err)
		return fail(c, http.StatusInternalServerError, "Erro ao processar pagamento", "")
	}

	if req.MetodoPagamento == "pix" {
		return c.JSON(http.StatusOK, echo.Map{
			"id":              p.ID,
			"status":          p.Status,
			"metodoPagamento": "pix",
			"qrCode":          p.QRCode,
			"qrCodeBase64":    p.QRCodeBase64,
			"pixCopiaECola":   p.QRCode,
			"mensagem":        "Pagamento PIX gerado com sucesso",
		})
	}

	if p.Status == "approved" {
		h.sendConfirmation(userEmail, req.Itens, req.ValorTotal, p.ID)
		return c.JSON(http.StatusOK, echo.Map{
			"id":              p.ID,
			"status":          "approved",
			"metodoPagamento": "cartao",
			"transacaoId":     p.ID,
			"mensagem":        "Pagamento aprovado com sucesso!",
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"id":              p.ID,
		"status":          p.Status,
		"statusDetail":    p.StatusDetail,
		"metodoPagamento": req.MetodoPagamento,
		"mensagem":        "Pagamento processado",
	})
}

// Status polls the provider for the current state of a charge. Responses
// are cached briefly in Redis so a polling frontend does not hammer the
// provider.
func (h *PaymentHandler) Status(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return fail(c, http.StatusBadRequest, "ID do pagamento é obrigatório", "")
	}
	if h.Provider == nil {
		return fail(c, http.StatusServiceUnavailable, "Pagamentos indisponíveis no momento", "")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	cacheKey := "pagamento:status:" + id
	if h.Redis != nil {
		if cached, err := h.Redis.Get(ctx, cacheKey).Bytes(); err == nil {
			var resp statusResp
			if json.Unmarshal(cached, &resp) == nil {
				return c.JSON(http.StatusOK, resp)
			}
		}
	}

	p, err := h.Provider.GetPayment(ctx, id)
	if err != nil {
		log.Printf("pagamento: provider get %s failed: %v", id, err)
		return fail(c, http.StatusInternalServerError, "Erro ao consultar pagamento", "")
	}
	resp := statusResp{
		ID:              p.ID,
		Status:          p.Status,
		StatusDetail:    p.StatusDetail,
		MetodoPagamento: p.Method,
		ValorTotal:      p.Amount,
		DataCriacao:     p.DateCreated,
		DataAtualizacao: p.DateUpdated,
	}
	if h.Redis != nil {
		if buf, err := json.Marshal(resp); err == nil {
			if err := h.Redis.Set(ctx, cacheKey, buf, statusCacheTTL).Err(); err != nil {
				log.Printf("pagamento: cache set failed: %v", err)
			}
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// Cancelar asks the provider to cancel a pending charge.
func (h *PaymentHandler) Cancelar(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return fail(c, http.StatusBadRequest, "ID do pagamento é obrigatório", "")
	}
	if h.Provider == nil {
		return fail(c, http.StatusServiceUnavailable, "Pagamentos indisponíveis no momento", "")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	if err := h.Provider.CancelPayment(ctx, id); err != nil {
		log.Printf("pagamento: provider cancel %s failed: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"sucesso":  false,
			"mensagem": "Erro ao cancelar pagamento",
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"sucesso":  true,
		"mensagem": "Pagamento cancelado com sucesso",
	})
}

// Webhook receives asynchronous status pushes from the provider. The
// payload only carries the payment id; the current state is always
// re-fetched from the provider rather than trusted from the push.
func (h *PaymentHandler) Webhook(c echo.Context) error {
	var req webhookReq
	if err := c.Bind(&req); err != nil {
		return c.NoContent(http.StatusBadRequest)
	}
	if req.Type != "payment" || h.Provider == nil {
		return c.NoContent(http.StatusOK)
	}
	id := strings.Trim(string(req.Data.ID), `"`)
	if id == "" {
		return c.NoContent(http.StatusBadRequest)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	p, err := h.Provider.GetPayment(ctx, id)
	if err != nil {
		log.Printf("pagamento: webhook get %s failed: %v", id, err)
		return c.NoContent(http.StatusInternalServerError)
	}
	log.Printf("pagamento: webhook update id=%s status=%s payer=%s", p.ID, p.Status, p.PayerEmail)

	if p.Status == "approved" && p.PayerEmail != "" {
		h.sendConfirmation(p.PayerEmail, nil, p.Amount, p.ID)
	}
	return c.NoContent(http.StatusOK)
}

// sendConfirmation mails the purchase summary in the background; failures
// only reach the server log.
func (h *PaymentHandler) sendConfirmation(to string, itens []cartItem, total float64, paymentID string) {
	if !h.Mailer.Enabled() {
		return
	}
	mailItens := make([]mail.Item, 0, len(itens))
	for _, it := range itens {
		mailItens = append(mailItens, mail.Item{Titulo: it.Titulo, Preco: it.Preco})
	}
	go func() {
		if err := h.Mailer.SendPurchaseConfirmation(to, "", mailItens, total, paymentID); err != nil {
			log.Printf("pagamento: confirmation mail to %s failed: %v", to, err)
		}
	}()
}
