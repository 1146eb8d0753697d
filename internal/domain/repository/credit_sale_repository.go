package repository

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Pos-api/internal/domain/entity"
)

// CreditSaleRepository define el puerto de persistencia para cuentas por
// cobrar y sus abonos (abonos append-only).
type CreditSaleRepository interface {
	Create(creditSale *entity.CreditSale) error
	GetByID(id string) (*entity.CreditSale, error)
	// GetForUpdate bloquea la cuenta para la secuencia leer-validar-abonar.
	GetForUpdate(id string) (*entity.CreditSale, error)
	GetBySaleID(saleID string) (*entity.CreditSale, error)
	// Update persiste paidAmount, outstandingAmount y status (bajo lock).
	Update(creditSale *entity.CreditSale) error
	CreatePayment(payment *entity.CreditPayment) error
	ListPayments(creditSaleID string) ([]*entity.CreditPayment, error)
	ListByCustomer(customerID string, limit, offset int) ([]*entity.CreditSale, error)
	ListOutstanding(limit, offset int) ([]*entity.CreditSale, error)
	// SumOutstandingByCustomer suma los saldos pendientes del cliente,
	// excluyendo cuentas cuya venta padre fue anulada o devuelta
	// (recomputación de creditBalance).
	SumOutstandingByCustomer(customerID string) (decimal.Decimal, error)
}
