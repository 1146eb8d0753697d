package repository

import "github.com/jhoicas/Pos-api/internal/domain/entity"

// ShiftRepository define el puerto de persistencia para turnos de caja.
type ShiftRepository interface {
	Create(shift *entity.Shift) error
	GetByID(id string) (*entity.Shift, error)
	// GetOpenByOutletAndUser devuelve el turno abierto del usuario en el
	// punto de venta, o nil si no hay ninguno.
	GetOpenByOutletAndUser(outletID, userID string) (*entity.Shift, error)
	Update(shift *entity.Shift) error
	ListByOutlet(outletID string, limit, offset int) ([]*entity.Shift, error)
}
