package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/projetocarbone/roma-backend/internal/repository"
)

// CouponHandler resolves seeded discount codes against cart totals.
type CouponHandler struct {
	Coupons repository.CouponStore
}

func NewCouponHandler(cs repository.CouponStore) *CouponHandler {
	return &CouponHandler{Coupons: cs}
}

type validarCupomReq struct {
	Codigo     string  `json:"codigo"`
	ValorTotal float64 `json:"valorTotal"`
}

// Validar checks a coupon code and returns the discount it grants against
// the given cart total. The response shape (valido/cupom/desconto) is what
// the checkout page consumes.
func (h *CouponHandler) Validar(c echo.Context) error {
	var req validarCupomReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Codigo) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"valido":   false,
			"mensagem": "Código do cupom é obrigatório",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cupom, err := h.Coupons.GetByCode(ctx, req.Codigo)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{
				"valido":   false,
				"mensagem": "Cupom inválido ou expirado",
			})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"valido":   false,
			"mensagem": "Erro ao validar cupom",
		})
	}

	desconto := cupom.Discount(req.ValorTotal)
	return c.JSON(http.StatusOK, echo.Map{
		"valido":   true,
		"cupom":    cupom,
		"desconto": desconto,
		"mensagem": fmt.Sprintf("Cupom aplicado com sucesso! Desconto de R$ %.2f", desconto),
	})
}

// Listar returns the active coupon set.
func (h *CouponHandler) Listar(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cupons, err := h.Coupons.ListActive(ctx)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Erro ao listar cupons", "")
	}
	return c.JSON(http.StatusOK, echo.Map{"cupons": cupons})
}
