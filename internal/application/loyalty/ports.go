package loyalty

import (
	"context"

	"github.com/jhoicas/Pos-api/internal/domain/event"
	"github.com/jhoicas/Pos-api/internal/domain/repository"
)

// TxRunner ejecuta un movimiento de puntos como unidad atómica: la entrada del
// libro, el incremento del saldo y la reevaluación de nivel comparten la misma
// transacción.
type TxRunner interface {
	RunLoyalty(ctx context.Context, fn func(
		loyaltyRepo repository.LoyaltyRepository,
		customerRepo repository.CustomerRepository,
	) error) error
}

// Publisher publica eventos de dominio después del commit.
type Publisher interface {
	Publish(evt event.Event)
}
