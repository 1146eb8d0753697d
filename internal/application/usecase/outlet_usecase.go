package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Pos-api/internal/application/dto"
	"github.com/jhoicas/Pos-api/internal/domain"
	"github.com/jhoicas/Pos-api/internal/domain/entity"
	"github.com/jhoicas/Pos-api/internal/domain/repository"
)

// OutletUseCase casos de uso CRUD para puntos de venta.
type OutletUseCase struct {
	repo repository.OutletRepository
}

// NewOutletUseCase construye el caso de uso.
func NewOutletUseCase(repo repository.OutletRepository) *OutletUseCase {
	return &OutletUseCase{repo: repo}
}

// Create crea un punto de venta.
func (uc *OutletUseCase) Create(ctx context.Context, in *dto.CreateOutletRequest) (*dto.OutletResponse, error) {
	if in == nil || strings.TrimSpace(in.Name) == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	outlet := &entity.Outlet{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Address:   in.Address,
		Phone:     in.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(outlet); err != nil {
		return nil, err
	}
	return toOutletResponse(outlet), nil
}

// Get obtiene un punto de venta por ID.
func (uc *OutletUseCase) Get(ctx context.Context, id string) (*dto.OutletResponse, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	outlet, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if outlet == nil {
		return nil, domain.ErrNotFound
	}
	return toOutletResponse(outlet), nil
}

// Update parcha los campos enviados.
func (uc *OutletUseCase) Update(ctx context.Context, id string, in *dto.UpdateOutletRequest) (*dto.OutletResponse, error) {
	if id == "" || in == nil {
		return nil, domain.ErrInvalidInput
	}
	outlet, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if outlet == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, domain.ErrInvalidInput
		}
		outlet.Name = *in.Name
	}
	if in.Address != nil {
		outlet.Address = *in.Address
	}
	if in.Phone != nil {
		outlet.Phone = *in.Phone
	}
	outlet.UpdatedAt = time.Now()
	if err := uc.repo.Update(outlet); err != nil {
		return nil, err
	}
	return toOutletResponse(outlet), nil
}

// List lista puntos de venta paginados.
func (uc *OutletUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.OutletListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.OutletResponse, 0, len(list))
	for _, o := range list {
		items = append(items, *toOutletResponse(o))
	}
	return &dto.OutletListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Delete elimina un punto de venta.
func (uc *OutletUseCase) Delete(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrInvalidInput
	}
	outlet, err := uc.repo.GetByID(id)
	if err != nil {
		return err
	}
	if outlet == nil {
		return domain.ErrNotFound
	}
	return uc.repo.Delete(id)
}

func toOutletResponse(o *entity.Outlet) *dto.OutletResponse {
	return &dto.OutletResponse{
		ID:        o.ID,
		Name:      o.Name,
		Address:   o.Address,
		Phone:     o.Phone,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}
