package repository

import (
	"context"
	"strings"

	"github.com/projetocarbone/roma-backend/internal/model"
)

// seededCoupons is the static discount set. Coupons are not created through
// any endpoint.
var seededCoupons = []model.Coupon{
	{Codigo: "BEMVINDO10", Tipo: model.CouponPercentual, Valor: 10, Descricao: "10% de desconto", Ativo: true},
	{Codigo: "PRIMEIRACOMPRA", Tipo: model.CouponPercentual, Valor: 15, Descricao: "15% de desconto na primeira compra", Ativo: true},
	{Codigo: "NATAL50", Tipo: model.CouponFixo, Valor: 50, Descricao: "R$ 50 de desconto", Ativo: true},
	{Codigo: "BLACK30", Tipo: model.CouponPercentual, Valor: 30, Descricao: "30% de desconto", Ativo: true},
}

// CouponRepo serves the seeded coupon set. Lookups are case-insensitive and
// only active coupons resolve.
type CouponRepo struct{ coupons []model.Coupon }

func NewCouponRepo() *CouponRepo { return &CouponRepo{coupons: seededCoupons} }

func (r *CouponRepo) GetByCode(_ context.Context, code string) (model.Coupon, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, c := range r.coupons {
		if c.Ativo && c.Codigo == code {
			return c, nil
		}
	}
	return model.Coupon{}, ErrNotFound
}

func (r *CouponRepo) ListActive(_ context.Context) ([]model.Coupon, error) {
	out := make([]model.Coupon, 0, len(r.coupons))
	for _, c := range r.coupons {
		if c.Ativo {
			out = append(out, c)
		}
	}
	return out, nil
}
