package repository

import "github.com/jhoicas/Pos-api/internal/domain/entity"

// LoyaltyRepository define el puerto de persistencia para el programa de
// fidelización y su libro de puntos (libro append-only).
type LoyaltyRepository interface {
	// GetActiveProgram devuelve el programa activo con sus niveles, o nil
	// si no hay ninguno.
	GetActiveProgram() (*entity.LoyaltyProgram, error)
	GetProgramByID(id string) (*entity.LoyaltyProgram, error)
	CreateProgram(program *entity.LoyaltyProgram) error
	UpdateProgram(program *entity.LoyaltyProgram) error
	CreateTier(tier *entity.LoyaltyTier) error
	DeleteTiers(programID string) error

	CreateTransaction(tx *entity.LoyaltyTransaction) error
	ListTransactionsByCustomer(customerID string, limit, offset int) ([]*entity.LoyaltyTransaction, error)
	// SumPointsByCustomer suma el libro completo del cliente (recomputación
	// del saldo).
	SumPointsByCustomer(customerID string) (int64, error)
}
