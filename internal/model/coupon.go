package model

// Coupon discount kinds. PERCENTUAL applies Valor as a percentage of the
// cart total; FIXO subtracts Valor in reais, clamped to the total.
const (
	CouponPercentual = "PERCENTUAL"
	CouponFixo       = "FIXO"
)

// Coupon is a seeded discount code. Coupons are not created through any
// endpoint; the set ships with the application.
type Coupon struct {
	Codigo    string  `json:"codigo"`
	Tipo      string  `json:"tipo"`
	Valor     float64 `json:"valor"`
	Descricao string  `json:"descricao"`
	Ativo     bool    `json:"ativo"`
}

// Discount computes the discount this coupon grants against a cart total.
// Fixed coupons never discount more than the total itself.
func (c Coupon) Discount(total float64) float64 {
	if c.Tipo == CouponPercentual {
		return total * c.Valor / 100
	}
	if c.Valor > total {
		return total
	}
	return c.Valor
}
