package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Pos-api/internal/domain/entity"
)

// CustomerSalesTotals resultado crudo para recomputar rollups: agregados de
// las ventas no anuladas de un cliente.
type CustomerSalesTotals struct {
	TotalSpent decimal.Decimal
	VisitCount int64
}

// SaleRepository define el puerto de persistencia para ventas, sus líneas y
// sus pagos. Líneas y pagos son append-only; la cabecera solo cambia de
// estado.
type SaleRepository interface {
	// Create inserta la cabecera. Si el número de recibo ya existe retorna
	// ErrDuplicate (índice único) para que el llamador regenere y reintente.
	Create(sale *entity.Sale) error
	CreateItem(item *entity.SaleItem) error
	CreatePayment(payment *entity.SalePayment) error
	GetByID(id string) (*entity.Sale, error)
	GetByReceiptNumber(receiptNumber string) (*entity.Sale, error)
	// GetWithDetails carga cabecera, líneas y pagos.
	GetWithDetails(id string) (*entity.Sale, error)
	// GetForUpdate bloquea la cabecera para cambios de estado.
	GetForUpdate(id string) (*entity.Sale, error)
	// UpdateStatus fija el estado y, para anulación/devolución, la razón,
	// el usuario y el momento.
	UpdateStatus(id, status, voidReason, voidedBy string, voidedAt *time.Time) error
	ListByShift(shiftID string, limit, offset int) ([]*entity.Sale, error)
	ListByCustomer(customerID string, limit, offset int) ([]*entity.Sale, error)
	ListByOutlet(outletID string, from, to *time.Time, limit, offset int) ([]*entity.Sale, error)
	// SumCashPaymentsByShift suma los pagos en efectivo de las ventas no
	// anuladas del turno (cierre de caja).
	SumCashPaymentsByShift(shiftID string) (decimal.Decimal, error)
	// GetCustomerTotals agrega totalSpent y visitCount desde las ventas no
	// anuladas del cliente (recomputación de rollups).
	GetCustomerTotals(customerID string) (*CustomerSalesTotals, error)
}
