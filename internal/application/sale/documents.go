package sale

import (
	"context"
	"fmt"

	"github.com/jhoicas/Pos-api/internal/domain"
	"github.com/jhoicas/Pos-api/internal/domain/entity"
	"github.com/jhoicas/Pos-api/internal/domain/repository"
)

// BusinessInfo identidad fiscal del negocio impresa en recibos y documentos.
type BusinessInfo struct {
	Name        string
	NIT         string
	Environment string // "1" producción, "2" pruebas
}

// ReceiptData reúne todo lo que un recibo o documento equivalente necesita.
// Customer y Cashier pueden ser nil (consumidor final, usuario eliminado).
type ReceiptData struct {
	Business BusinessInfo
	Sale     *entity.Sale
	Outlet   *entity.Outlet
	Customer *entity.Customer
	Cashier  *entity.User
}

// ReceiptRenderer genera la representación imprimible (PDF) de una venta.
type ReceiptRenderer interface {
	RenderReceipt(ctx context.Context, data *ReceiptData) ([]byte, error)
}

// FiscalBuilder genera el documento equivalente POS (XML) de una venta.
type FiscalBuilder interface {
	BuildDocument(ctx context.Context, data *ReceiptData) ([]byte, error)
}

// DocumentUseCase arma los documentos de una venta ya registrada: el recibo
// PDF para impresión y el documento equivalente XML para el soporte fiscal.
type DocumentUseCase struct {
	saleRepo     repository.SaleRepository
	outletRepo   repository.OutletRepository
	customerRepo repository.CustomerRepository
	userRepo     repository.UserRepository
	renderer     ReceiptRenderer
	fiscal       FiscalBuilder
	business     BusinessInfo
}

// NewDocumentUseCase construye el caso de uso.
func NewDocumentUseCase(
	saleRepo repository.SaleRepository,
	outletRepo repository.OutletRepository,
	customerRepo repository.CustomerRepository,
	userRepo repository.UserRepository,
	renderer ReceiptRenderer,
	fiscal FiscalBuilder,
	business BusinessInfo,
) *DocumentUseCase {
	return &DocumentUseCase{
		saleRepo:     saleRepo,
		outletRepo:   outletRepo,
		customerRepo: customerRepo,
		userRepo:     userRepo,
		renderer:     renderer,
		fiscal:       fiscal,
		business:     business,
	}
}

// ReceiptPDF genera el PDF del recibo de una venta. Las ventas anuladas
// también se imprimen (con su marca de anulación).
func (uc *DocumentUseCase) ReceiptPDF(ctx context.Context, saleID string) (pdfBytes []byte, filename string, err error) {
	data, err := uc.load(ctx, saleID)
	if err != nil {
		return nil, "", err
	}
	pdfBytes, err = uc.renderer.RenderReceipt(ctx, data)
	if err != nil {
		return nil, "", fmt.Errorf("generar recibo PDF: %w", err)
	}
	return pdfBytes, fmt.Sprintf("recibo_%s.pdf", data.Sale.ReceiptNumber), nil
}

// FiscalXML genera el documento equivalente POS en XML. Solo existe para
// ventas emitidas en modo fiscal (con CUDE).
func (uc *DocumentUseCase) FiscalXML(ctx context.Context, saleID string) (xmlBytes []byte, filename string, err error) {
	data, err := uc.load(ctx, saleID)
	if err != nil {
		return nil, "", err
	}
	if data.Sale.CUDE == "" {
		return nil, "", fmt.Errorf("%w: la venta no tiene sello fiscal", domain.ErrInvalidInput)
	}
	xmlBytes, err = uc.fiscal.BuildDocument(ctx, data)
	if err != nil {
		return nil, "", fmt.Errorf("generar documento equivalente: %w", err)
	}
	return xmlBytes, fmt.Sprintf("doc_equivalente_%s.xml", data.Sale.ReceiptNumber), nil
}

func (uc *DocumentUseCase) load(ctx context.Context, saleID string) (*ReceiptData, error) {
	if saleID == "" {
		return nil, domain.ErrInvalidInput
	}
	sle, err := uc.saleRepo.GetWithDetails(saleID)
	if err != nil {
		return nil, err
	}
	if sle == nil {
		return nil, domain.ErrSaleNotFound
	}
	outlet, err := uc.outletRepo.GetByID(sle.OutletID)
	if err != nil {
		return nil, err
	}
	if outlet == nil {
		return nil, fmt.Errorf("punto de venta %s de la venta no existe: %w", sle.OutletID, domain.ErrNotFound)
	}

	data := &ReceiptData{Business: uc.business, Sale: sle, Outlet: outlet}
	if sle.CustomerID != "" {
		if customer, cErr := uc.customerRepo.GetByID(sle.CustomerID); cErr == nil && customer != nil {
			data.Customer = customer
		}
	}
	if cashier, uErr := uc.userRepo.GetByID(sle.EmployeeID); uErr == nil && cashier != nil {
		data.Cashier = cashier
	}
	return data, nil
}
