package repository

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Pos-api/internal/domain/entity"
)

// CustomerRepository define el puerto de persistencia para Customer.
//
// Los métodos Increment*/AddLoyaltyPoints deben implementarse como
// incrementos atómicos en SQL (SET x = x + $n), nunca como
// leer-modificar-escribir en memoria: varios cajeros pueden tocar el mismo
// cliente a la vez.
type CustomerRepository interface {
	Create(customer *entity.Customer) error
	GetByID(id string) (*entity.Customer, error)
	GetByDocument(documentID string) (*entity.Customer, error)
	List(limit, offset int) ([]*entity.Customer, error)
	Update(customer *entity.Customer) error
	Delete(id string) error

	// IncrementSaleRollup suma amount a totalSpent y 1 a visitCount.
	IncrementSaleRollup(customerID string, amount decimal.Decimal) error
	// ReverseSaleRollup deshace el efecto de una venta anulada o devuelta:
	// resta amount de totalSpent y 1 de visitCount.
	ReverseSaleRollup(customerID string, amount decimal.Decimal) error
	// IncrementCreditBalance suma delta (con signo) a creditBalance.
	IncrementCreditBalance(customerID string, delta decimal.Decimal) error
	// AddLoyaltyPoints suma delta (con signo) a loyaltyPoints y devuelve el
	// saldo resultante. Con guard=true aplica solo si el saldo alcanza para
	// restar (loyalty_points + delta >= 0); si no alcanza retorna
	// ErrInsufficientPoints sin modificar nada.
	AddLoyaltyPoints(customerID string, delta int64, guard bool) (int64, error)
	// UpdateLoyaltyTier fija el nivel vigente (idempotente).
	UpdateLoyaltyTier(customerID, tier string) error
	// SetRollups sobreescribe los cinco campos derivados (recomputación).
	SetRollups(customer *entity.Customer) error
}
