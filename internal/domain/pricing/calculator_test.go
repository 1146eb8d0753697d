package pricing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Pos-api/internal/domain"
	"github.com/jhoicas/Pos-api/internal/domain/pricing"
)

// ──────────────────────────────────────────────────────────────────────────────
// TestCalculate_VectorExacto valida el escenario de referencia del cálculo de
// totales: 2 unidades a 25.000 más 1 unidad a 15.000 con IVA 11% debe producir
// subtotal 65.000, impuesto 7.150 y total 72.150. Si alguien cambia el orden de
// las operaciones o el redondeo, este test falla de inmediato.
// ──────────────────────────────────────────────────────────────────────────────

func TestCalculate_VectorExacto(t *testing.T) {
	lines := []pricing.Line{
		{UnitPrice: decimal.NewFromInt(25_000), Quantity: decimal.NewFromInt(2)},
		{UnitPrice: decimal.NewFromInt(15_000), Quantity: decimal.NewFromInt(1)},
	}

	totals, err := pricing.Calculate(lines, decimal.Zero, decimal.Zero, decimal.NewFromInt(11))
	require.NoError(t, err, "Calculate no debe retornar error con líneas válidas")

	assert.True(t, totals.Subtotal.Equal(decimal.NewFromInt(65_000)),
		"subtotal esperado 65000, obtenido %s", totals.Subtotal)
	assert.True(t, totals.TaxAmount.Equal(decimal.NewFromInt(7_150)),
		"impuesto esperado 7150, obtenido %s", totals.TaxAmount)
	assert.True(t, totals.GrandTotal.Equal(decimal.NewFromInt(72_150)),
		"total esperado 72150, obtenido %s", totals.GrandTotal)
}

// TestCalculate_RedondeoHalfUp verifica el redondeo half-up a la unidad en el
// impuesto: base 105 al 10% da 10,5 que debe redondear a 11.
func TestCalculate_RedondeoHalfUp(t *testing.T) {
	lines := []pricing.Line{
		{UnitPrice: decimal.NewFromInt(105), Quantity: decimal.NewFromInt(1)},
	}

	totals, err := pricing.Calculate(lines, decimal.Zero, decimal.Zero, decimal.NewFromInt(10))
	require.NoError(t, err)

	assert.True(t, totals.TaxAmount.Equal(decimal.NewFromInt(11)),
		"10,5 debe redondear hacia arriba a 11, obtenido %s", totals.TaxAmount)
	assert.True(t, totals.GrandTotal.Equal(decimal.NewFromInt(116)),
		"total esperado 116, obtenido %s", totals.GrandTotal)
}

// TestCalculate_DescuentosYServicio verifica la fórmula completa:
// granTotal = subtotal - descuento + impuesto + servicio, con el impuesto
// calculado sobre el subtotal antes del descuento de venta.
func TestCalculate_DescuentosYServicio(t *testing.T) {
	lines := []pricing.Line{
		{UnitPrice: decimal.NewFromInt(10_000), Quantity: decimal.NewFromInt(3), ItemDiscount: decimal.NewFromInt(2_000)},
	}

	totals, err := pricing.Calculate(lines,
		decimal.NewFromInt(3_000),  // descuento de venta
		decimal.NewFromInt(1_500),  // servicio
		decimal.NewFromInt(19))
	require.NoError(t, err)

	// línea: 30.000 - 2.000 = 28.000; impuesto: 28.000*19% = 5.320
	assert.True(t, totals.Subtotal.Equal(decimal.NewFromInt(28_000)))
	assert.True(t, totals.TaxAmount.Equal(decimal.NewFromInt(5_320)),
		"el impuesto se calcula sobre el subtotal antes del descuento de venta")
	// 28.000 - 3.000 + 5.320 + 1.500 = 31.820
	assert.True(t, totals.GrandTotal.Equal(decimal.NewFromInt(31_820)),
		"total esperado 31820, obtenido %s", totals.GrandTotal)
}

// TestCalculate_LineaExenta verifica que las líneas TaxExempt suman al
// subtotal pero no a la base gravable.
func TestCalculate_LineaExenta(t *testing.T) {
	lines := []pricing.Line{
		{UnitPrice: decimal.NewFromInt(20_000), Quantity: decimal.NewFromInt(1)},
		{UnitPrice: decimal.NewFromInt(5_000), Quantity: decimal.NewFromInt(2), TaxExempt: true},
	}

	totals, err := pricing.Calculate(lines, decimal.Zero, decimal.Zero, decimal.NewFromInt(19))
	require.NoError(t, err)

	assert.True(t, totals.Subtotal.Equal(decimal.NewFromInt(30_000)))
	assert.True(t, totals.TaxableBase.Equal(decimal.NewFromInt(20_000)))
	assert.True(t, totals.TaxAmount.Equal(decimal.NewFromInt(3_800)),
		"solo la línea gravada aporta impuesto")
}

// ── Errores de validación ─────────────────────────────────────────────────────

func TestCalculate_ErrorSinLineas(t *testing.T) {
	_, err := pricing.Calculate(nil, decimal.Zero, decimal.Zero, decimal.NewFromInt(19))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "venta sin líneas debe rechazarse")
}

func TestCalculate_ErrorCantidadCero(t *testing.T) {
	lines := []pricing.Line{{UnitPrice: decimal.NewFromInt(100), Quantity: decimal.Zero}}
	_, err := pricing.Calculate(lines, decimal.Zero, decimal.Zero, decimal.NewFromInt(19))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad cero debe rechazarse")
}

func TestCalculate_ErrorPrecioNegativo(t *testing.T) {
	lines := []pricing.Line{{UnitPrice: decimal.NewFromInt(-1), Quantity: decimal.NewFromInt(1)}}
	_, err := pricing.Calculate(lines, decimal.Zero, decimal.Zero, decimal.NewFromInt(19))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCalculate_ErrorDescuentoLineaMayorQueBruto(t *testing.T) {
	lines := []pricing.Line{
		{UnitPrice: decimal.NewFromInt(1_000), Quantity: decimal.NewFromInt(1), ItemDiscount: decimal.NewFromInt(1_500)},
	}
	_, err := pricing.Calculate(lines, decimal.Zero, decimal.Zero, decimal.NewFromInt(19))
	assert.ErrorIs(t, err, domain.ErrInvalidInput,
		"un descuento de línea mayor al bruto dejaría la línea negativa")
}

func TestCalculate_ErrorDescuentoVentaMayorQueSubtotal(t *testing.T) {
	lines := []pricing.Line{
		{UnitPrice: decimal.NewFromInt(1_000), Quantity: decimal.NewFromInt(1)},
	}
	_, err := pricing.Calculate(lines, decimal.NewFromInt(2_000), decimal.Zero, decimal.NewFromInt(19))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
