package sale

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Pos-api/internal/application/stock"
	"github.com/jhoicas/Pos-api/internal/domain/event"
	"github.com/jhoicas/Pos-api/internal/domain/repository"
)

// TxRunner ejecuta la unidad atómica de una venta. Descuentos de inventario,
// cabecera, líneas, pagos, crédito y rollups del cliente comparten la misma
// transacción: o se confirma todo o no se confirma nada.
type TxRunner interface {
	RunSale(ctx context.Context, fn func(
		levelRepo repository.StockLevelRepository,
		movRepo repository.StockMovementRepository,
		saleRepo repository.SaleRepository,
		creditRepo repository.CreditSaleRepository,
		customerRepo repository.CustomerRepository,
	) error) error
}

// StockLedger es la porción del libro de inventario que la venta necesita:
// aplicar deltas con bloqueo de fila dentro de la transacción del caller.
type StockLedger interface {
	ApplyDeltaInTx(
		levelRepo repository.StockLevelRepository,
		movRepo repository.StockMovementRepository,
		in stock.DeltaInput,
		now time.Time,
	) (*stock.DeltaResult, error)
}

// LoyaltyAccrual acumula puntos por una venta ya confirmada. Corre después
// del commit, en su propia transacción: si falla se registra en el log y la
// venta queda firme.
type LoyaltyAccrual interface {
	EarnOnSale(ctx context.Context, customerID, saleID string, amount decimal.Decimal) error
}

// Publisher publica eventos de dominio después del commit.
type Publisher interface {
	Publish(evt event.Event)
}
