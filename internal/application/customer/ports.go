package customer

import (
	"context"

	"github.com/jhoicas/Pos-api/internal/domain/repository"
)

// TxRunner ejecuta la recomputación de rollups dentro de una transacción: las
// lecturas de los tres libros y la sobreescritura del cliente ven el mismo
// snapshot.
type TxRunner interface {
	RunRollup(ctx context.Context, fn func(
		saleRepo repository.SaleRepository,
		creditRepo repository.CreditSaleRepository,
		loyaltyRepo repository.LoyaltyRepository,
		customerRepo repository.CustomerRepository,
	) error) error
}
