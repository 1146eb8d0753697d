package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de transacción de fidelización.
const (
	LoyaltyTypeEarned   = "earned"
	LoyaltyTypeRedeemed = "redeemed"
	LoyaltyTypeAdjusted = "adjusted" // corrección manual con signo
	LoyaltyTypeExpired  = "expired"
)

// LoyaltyProgram es la configuración del programa de fidelización del negocio.
// Se mantiene a lo sumo un programa activo a la vez.
type LoyaltyProgram struct {
	ID             string
	Name           string
	IsActive       bool
	AmountPerPoint decimal.Decimal // monto de venta que otorga 1 punto base
	RedemptionRate decimal.Decimal // valor de 100 puntos en moneda al redimir
	Tiers          []LoyaltyTier
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// LoyaltyTier es un nivel del programa. El nivel de un cliente es el de mayor
// MinPoints cuyo umbral no supere su saldo; los empates se resuelven hacia el
// MinPoints mayor.
type LoyaltyTier struct {
	ID              string
	ProgramID       string
	Name            string
	MinPoints       int64
	PointMultiplier decimal.Decimal // multiplica los puntos base al acumular
}

// LoyaltyTransaction es una entrada del libro de puntos. Append-only; Points
// lleva signo (negativo para redeemed/expired y ajustes a la baja) y
// BalanceAfter deja el saldo resultante auditable en cada entrada.
//
// Invariante: el saldo del cliente iguala la suma de Points de sus entradas.
type LoyaltyTransaction struct {
	ID           string
	CustomerID   string
	SaleID       string // vacío cuando no proviene de una venta
	Type         string
	Points       int64
	BalanceAfter int64
	Note         string
	CreatedAt    time.Time
	CreatedBy    string
}
