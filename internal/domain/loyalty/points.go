// Package loyalty contiene la aritmética pura del programa de fidelización:
// puntos otorgados por un monto, valor de redención y evaluación de nivel.
package loyalty

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Pos-api/internal/domain/entity"
)

// PointsForAmount calcula los puntos que otorga un monto de venta:
// floor(amount / amountPerPoint) multiplicado por el multiplicador del nivel,
// con floor final. Un multiplicador en cero se trata como 1 (sin bono).
// Retorna 0 ante configuraciones sin sentido (amountPerPoint <= 0).
func PointsForAmount(amount, amountPerPoint, multiplier decimal.Decimal) int64 {
	if amountPerPoint.LessThanOrEqual(decimal.Zero) || amount.LessThanOrEqual(decimal.Zero) {
		return 0
	}
	if multiplier.LessThanOrEqual(decimal.Zero) {
		multiplier = decimal.NewFromInt(1)
	}
	base := amount.Div(amountPerPoint).Floor()
	return base.Mul(multiplier).Floor().IntPart()
}

// RedemptionValue calcula el valor en moneda de redimir points puntos:
// floor(points * rate/100 * multiplier), donde rate es el valor de 100 puntos
// y multiplier el del nivel vigente (cero o negativo se trata como 1).
// Nunca negativa.
func RedemptionValue(points int64, rate, multiplier decimal.Decimal) decimal.Decimal {
	if points <= 0 || rate.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	if multiplier.LessThanOrEqual(decimal.Zero) {
		multiplier = decimal.NewFromInt(1)
	}
	value := decimal.NewFromInt(points).
		Mul(rate).
		Div(decimal.NewFromInt(100)).
		Mul(multiplier)
	return value.Floor()
}

// TierFor devuelve el nivel que corresponde a un saldo de puntos: el de mayor
// MinPoints cuyo umbral no supere el saldo. La evaluación es idempotente (el
// mismo saldo siempre produce el mismo nivel). Retorna false cuando el
// programa no define niveles o ninguno aplica.
func TierFor(balance int64, tiers []entity.LoyaltyTier) (entity.LoyaltyTier, bool) {
	var best entity.LoyaltyTier
	found := false
	for _, t := range tiers {
		if t.MinPoints > balance {
			continue
		}
		if !found || t.MinPoints > best.MinPoints {
			best = t
			found = true
		}
	}
	return best, found
}
