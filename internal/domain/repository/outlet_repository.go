package repository

import "github.com/jhoicas/Pos-api/internal/domain/entity"

// OutletRepository define el puerto de persistencia para Outlet.
type OutletRepository interface {
	Create(outlet *entity.Outlet) error
	GetByID(id string) (*entity.Outlet, error)
	List(limit, offset int) ([]*entity.Outlet, error)
	Update(outlet *entity.Outlet) error
	Delete(id string) error
}
