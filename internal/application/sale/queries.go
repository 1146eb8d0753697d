package sale

import (
	"context"
	"time"

	"github.com/jhoicas/Pos-api/internal/application/dto"
	"github.com/jhoicas/Pos-api/internal/domain"
	"github.com/jhoicas/Pos-api/internal/domain/entity"
	"github.com/jhoicas/Pos-api/internal/domain/repository"
)

// QueryUseCase consultas de ventas de solo lectura.
type QueryUseCase struct {
	saleRepo repository.SaleRepository
}

// NewQueryUseCase construye el caso de uso de consulta.
func NewQueryUseCase(saleRepo repository.SaleRepository) *QueryUseCase {
	return &QueryUseCase{saleRepo: saleRepo}
}

// GetSale devuelve una venta con líneas y pagos.
func (uc *QueryUseCase) GetSale(ctx context.Context, id string) (*dto.SaleResponse, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	sale, err := uc.saleRepo.GetWithDetails(id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrSaleNotFound
	}
	return toSaleResponse(sale), nil
}

// GetByReceipt busca una venta por su número de recibo.
func (uc *QueryUseCase) GetByReceipt(ctx context.Context, receiptNumber string) (*dto.SaleResponse, error) {
	if receiptNumber == "" {
		return nil, domain.ErrInvalidInput
	}
	sale, err := uc.saleRepo.GetByReceiptNumber(receiptNumber)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrSaleNotFound
	}
	return toSaleResponse(sale), nil
}

// ListByShift lista las ventas de un turno.
func (uc *QueryUseCase) ListByShift(ctx context.Context, shiftID string, page dto.PageRequest) (*dto.SaleListResponse, error) {
	page.DefaultPage()
	sales, err := uc.saleRepo.ListByShift(shiftID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return toSaleListResponse(sales, page), nil
}

// ListByCustomer lista las ventas de un cliente.
func (uc *QueryUseCase) ListByCustomer(ctx context.Context, customerID string, page dto.PageRequest) (*dto.SaleListResponse, error) {
	page.DefaultPage()
	sales, err := uc.saleRepo.ListByCustomer(customerID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return toSaleListResponse(sales, page), nil
}

// ListByOutlet lista las ventas de un punto de venta, con rango de fechas
// opcional.
func (uc *QueryUseCase) ListByOutlet(ctx context.Context, outletID string, from, to *time.Time, page dto.PageRequest) (*dto.SaleListResponse, error) {
	page.DefaultPage()
	sales, err := uc.saleRepo.ListByOutlet(outletID, from, to, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return toSaleListResponse(sales, page), nil
}

func toSaleListResponse(sales []*entity.Sale, page dto.PageRequest) *dto.SaleListResponse {
	items := make([]dto.SaleResponse, 0, len(sales))
	for _, s := range sales {
		items = append(items, *toSaleResponse(s))
	}
	return &dto.SaleListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
}

func toSaleResponse(sale *entity.Sale) *dto.SaleResponse {
	resp := &dto.SaleResponse{
		ID:             sale.ID,
		OutletID:       sale.OutletID,
		ShiftID:        sale.ShiftID,
		EmployeeID:     sale.EmployeeID,
		CustomerID:     sale.CustomerID,
		ReceiptNumber:  sale.ReceiptNumber,
		Status:         sale.Status,
		Subtotal:       sale.Subtotal,
		DiscountAmount: sale.DiscountAmount,
		TaxAmount:      sale.TaxAmount,
		ServiceCharge:  sale.ServiceCharge,
		GrandTotal:     sale.GrandTotal,
		PaidAmount:     sale.PaidAmount,
		CUDE:           sale.CUDE,
		Note:           sale.Note,
		VoidReason:     sale.VoidReason,
		CreatedAt:      sale.CreatedAt,
	}
	for _, it := range sale.Items {
		resp.Items = append(resp.Items, dto.SaleItemResponse{
			ID:           it.ID,
			ProductID:    it.ProductID,
			VariantID:    it.VariantID,
			ProductName:  it.ProductName,
			VariantName:  it.VariantName,
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice,
			ItemDiscount: it.ItemDiscount,
			LineTotal:    it.LineTotal,
		})
	}
	for _, p := range sale.Payments {
		resp.Payments = append(resp.Payments, dto.SalePaymentResponse{
			ID:        p.ID,
			Method:    p.Method,
			Amount:    p.Amount,
			Reference: p.Reference,
		})
	}
	return resp
}
