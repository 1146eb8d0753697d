package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer representa un cliente del punto de venta.
//
// CreditBalance, TotalSpent, VisitCount, LoyaltyPoints y LoyaltyTier son
// estado derivado de los libros (ventas, crédito, fidelización). Se actualizan
// solo con incrementos atómicos en la capa de persistencia, dentro de la misma
// transacción que escribe el libro correspondiente, y pueden reconstruirse
// completos con el procedimiento de recomputación del caso de uso de clientes.
type Customer struct {
	ID            string
	Name          string
	DocumentID    string // NIT o Cédula (Colombia)
	Email         string
	Phone         string
	Address       string
	CreditBalance decimal.Decimal // suma de saldos pendientes de ventas a crédito
	TotalSpent    decimal.Decimal
	VisitCount    int64
	LoyaltyPoints int64
	LoyaltyTier   string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
