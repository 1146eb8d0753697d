package credit

import (
	"context"

	"github.com/jhoicas/Pos-api/internal/application/dto"
	"github.com/jhoicas/Pos-api/internal/domain"
	"github.com/jhoicas/Pos-api/internal/domain/entity"
	"github.com/jhoicas/Pos-api/internal/domain/repository"
)

// QueryUseCase consultas de solo lectura sobre cuentas por cobrar.
type QueryUseCase struct {
	creditRepo repository.CreditSaleRepository
}

// NewQueryUseCase construye el caso de uso de consulta.
func NewQueryUseCase(creditRepo repository.CreditSaleRepository) *QueryUseCase {
	return &QueryUseCase{creditRepo: creditRepo}
}

// GetCreditSale devuelve la cuenta con su historial de abonos.
func (uc *QueryUseCase) GetCreditSale(ctx context.Context, id string) (*dto.CreditSaleResponse, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	credit, err := uc.creditRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if credit == nil {
		return nil, domain.ErrCreditSaleNotFound
	}
	payments, err := uc.creditRepo.ListPayments(id)
	if err != nil {
		return nil, err
	}
	return toCreditResponse(credit, payments), nil
}

// GetBySale devuelve la cuenta asociada a una venta.
func (uc *QueryUseCase) GetBySale(ctx context.Context, saleID string) (*dto.CreditSaleResponse, error) {
	if saleID == "" {
		return nil, domain.ErrInvalidInput
	}
	credit, err := uc.creditRepo.GetBySaleID(saleID)
	if err != nil {
		return nil, err
	}
	if credit == nil {
		return nil, domain.ErrCreditSaleNotFound
	}
	payments, err := uc.creditRepo.ListPayments(credit.ID)
	if err != nil {
		return nil, err
	}
	return toCreditResponse(credit, payments), nil
}

// ListByCustomer lista las cuentas de un cliente.
func (uc *QueryUseCase) ListByCustomer(ctx context.Context, customerID string, page dto.PageRequest) (*dto.CreditSaleListResponse, error) {
	page.DefaultPage()
	credits, err := uc.creditRepo.ListByCustomer(customerID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return toCreditListResponse(credits, page), nil
}

// ListOutstanding lista las cuentas con saldo pendiente de todo el negocio.
func (uc *QueryUseCase) ListOutstanding(ctx context.Context, page dto.PageRequest) (*dto.CreditSaleListResponse, error) {
	page.DefaultPage()
	credits, err := uc.creditRepo.ListOutstanding(page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return toCreditListResponse(credits, page), nil
}

func toCreditListResponse(credits []*entity.CreditSale, page dto.PageRequest) *dto.CreditSaleListResponse {
	items := make([]dto.CreditSaleResponse, 0, len(credits))
	for _, c := range credits {
		items = append(items, *toCreditResponse(c, nil))
	}
	return &dto.CreditSaleListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
}
