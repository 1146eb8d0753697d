package shift

import "github.com/shopspring/decimal"

// CashLedger es la porción del repositorio de ventas que el arqueo necesita:
// el efectivo recibido por las ventas no anuladas de un turno.
type CashLedger interface {
	SumCashPaymentsByShift(shiftID string) (decimal.Decimal, error)
}
