// Package pricing calcula los totales de una venta (servicio de dominio puro,
// sin reloj ni I/O). Todos los montos son unidades enteras de moneda; el
// redondeo es "half up" a la unidad y se aplica exactamente dos veces: al
// calcular el impuesto y al calcular el total final.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Pos-api/internal/domain"
)

// Line es una línea de venta para efectos de cálculo.
// TaxExempt excluye la línea de la base gravable.
type Line struct {
	UnitPrice    decimal.Decimal
	Quantity     decimal.Decimal
	ItemDiscount decimal.Decimal
	TaxExempt    bool
}

// Totals es el resultado del cálculo.
type Totals struct {
	Subtotal       decimal.Decimal
	TaxableBase    decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	ServiceCharge  decimal.Decimal
	GrandTotal     decimal.Decimal
	LineTotals     []decimal.Decimal
}

// Calculate obtiene los totales de una venta:
//
//	líneaNeta  = UnitPrice*Quantity - ItemDiscount   (nunca negativa)
//	subtotal   = Σ líneasNetas
//	impuesto   = round(baseGravable * taxRatePct/100)
//	granTotal  = round(subtotal - discount + impuesto + serviceCharge)
//
// taxRatePct es porcentaje (11 = 11%). El impuesto se calcula sobre el
// subtotal antes del descuento a nivel de venta; las líneas TaxExempt no
// aportan a la base gravable. Rechaza cantidades o montos negativos,
// descuentos de línea mayores al bruto de la línea y descuentos de venta
// mayores al subtotal.
func Calculate(lines []Line, discount, serviceCharge, taxRatePct decimal.Decimal) (Totals, error) {
	if len(lines) == 0 {
		return Totals{}, domain.ErrInvalidInput
	}
	if discount.IsNegative() || serviceCharge.IsNegative() || taxRatePct.IsNegative() {
		return Totals{}, domain.ErrInvalidInput
	}

	subtotal := decimal.Zero
	taxable := decimal.Zero
	lineTotals := make([]decimal.Decimal, 0, len(lines))
	for _, l := range lines {
		if l.Quantity.LessThanOrEqual(decimal.Zero) || l.UnitPrice.IsNegative() || l.ItemDiscount.IsNegative() {
			return Totals{}, domain.ErrInvalidInput
		}
		gross := l.UnitPrice.Mul(l.Quantity)
		if l.ItemDiscount.GreaterThan(gross) {
			return Totals{}, domain.ErrInvalidInput
		}
		net := gross.Sub(l.ItemDiscount)
		subtotal = subtotal.Add(net)
		if !l.TaxExempt {
			taxable = taxable.Add(net)
		}
		lineTotals = append(lineTotals, net)
	}
	if discount.GreaterThan(subtotal) {
		return Totals{}, domain.ErrInvalidInput
	}

	// decimal.Round redondea half-away-from-zero, que para montos no
	// negativos equivale a half-up.
	tax := taxable.Mul(taxRatePct).Div(decimal.NewFromInt(100)).Round(0)
	grand := subtotal.Sub(discount).Add(tax).Add(serviceCharge).Round(0)

	return Totals{
		Subtotal:       subtotal,
		TaxableBase:    taxable,
		DiscountAmount: discount,
		TaxAmount:      tax,
		ServiceCharge:  serviceCharge,
		GrandTotal:     grand,
		LineTotals:     lineTotals,
	}, nil
}
