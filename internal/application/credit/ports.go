package credit

import (
	"context"

	"github.com/jhoicas/Pos-api/internal/domain/event"
	"github.com/jhoicas/Pos-api/internal/domain/repository"
)

// TxRunner ejecuta la unidad atómica de un abono: el abono, la cuenta, la
// venta padre y el saldo del cliente cambian juntos o no cambia nada.
type TxRunner interface {
	RunCredit(ctx context.Context, fn func(
		saleRepo repository.SaleRepository,
		creditRepo repository.CreditSaleRepository,
		customerRepo repository.CustomerRepository,
	) error) error
}

// Publisher publica eventos de dominio después del commit.
type Publisher interface {
	Publish(evt event.Event)
}
