package sale

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Pos-api/internal/application/dto"
	"github.com/jhoicas/Pos-api/internal/application/stock"
	"github.com/jhoicas/Pos-api/internal/domain"
	"github.com/jhoicas/Pos-api/internal/domain/entity"
	"github.com/jhoicas/Pos-api/internal/domain/event"
	"github.com/jhoicas/Pos-api/internal/domain/fiscal"
	"github.com/jhoicas/Pos-api/internal/domain/pricing"
	"github.com/jhoicas/Pos-api/internal/domain/repository"
	"github.com/jhoicas/Pos-api/pkg/logger"
)

// Config parámetros de emisión del punto de venta.
type Config struct {
	ReceiptPrefix string
	TaxRatePct    decimal.Decimal
	// FiscalNIT vacío desactiva el sello fiscal (CUDE) de los recibos.
	FiscalNIT   string
	SoftwarePin string
	Environment string // "1" producción, "2" pruebas
}

// CheckoutUseCase registra ventas de mostrador: valida turno, catálogo y
// existencias, calcula totales, y escribe venta, líneas, pagos, descuentos de
// inventario, crédito y rollups del cliente en una sola transacción. Después
// del commit dispara la acumulación de puntos y publica los eventos.
type CheckoutUseCase struct {
	txRunner     TxRunner
	stockLedger  StockLedger
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	shiftRepo    repository.ShiftRepository
	levelRepo    repository.StockLevelRepository
	loyalty      LoyaltyAccrual
	publisher    Publisher
	cudeCalc     *fiscal.CudeCalculatorService
	cfg          Config
	log          *logger.Logger
}

// NewCheckoutUseCase construye el caso de uso con sus dependencias.
func NewCheckoutUseCase(
	txRunner TxRunner,
	stockLedger StockLedger,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	shiftRepo repository.ShiftRepository,
	levelRepo repository.StockLevelRepository,
	loyalty LoyaltyAccrual,
	publisher Publisher,
	cudeCalc *fiscal.CudeCalculatorService,
	cfg Config,
	log *logger.Logger,
) *CheckoutUseCase {
	return &CheckoutUseCase{
		txRunner:     txRunner,
		stockLedger:  stockLedger,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		shiftRepo:    shiftRepo,
		levelRepo:    levelRepo,
		loyalty:      loyalty,
		publisher:    publisher,
		cudeCalc:     cudeCalc,
		cfg:          cfg,
		log:          log.Component("sale"),
	}
}

// resolvedItem línea con producto cargado y precio congelado del catálogo.
type resolvedItem struct {
	req         dto.SaleItemRequest
	product     *entity.Product
	unitPrice   decimal.Decimal
	variantName string
}

// stockChange delta aplicado dentro de la transacción, para eventos.
type stockChange struct {
	item   resolvedItem
	result stock.DeltaResult
}

// CreateSale registra una venta. El estado final depende de los pagos:
// total cubierto → completed; sin pagos → credit; pago parcial →
// partially_paid. Los dos últimos exigen cliente.
func (uc *CheckoutUseCase) CreateSale(ctx context.Context, userID string, in *dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	return uc.createSale(ctx, userID, in, false)
}

// CreateCreditSale registra una venta fiada: exige cliente y fecha de
// vencimiento, y rechaza pagos que cubran el total.
func (uc *CheckoutUseCase) CreateCreditSale(ctx context.Context, userID string, in *dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	if in.CustomerID == "" {
		return nil, domain.ErrCustomerRequired
	}
	if in.DueDate == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.createSale(ctx, userID, in, true)
}

func (uc *CheckoutUseCase) createSale(ctx context.Context, userID string, in *dto.CreateSaleRequest, mustBeCredit bool) (*dto.SaleResponse, error) {
	if userID == "" || in.OutletID == "" || in.ShiftID == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	var dueDate *time.Time
	if in.DueDate != "" {
		d, err := time.Parse("2006-01-02", in.DueDate)
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		dueDate = &d
	}

	// Toda venta cuelga de un turno abierto en el mismo punto de venta.
	shift, err := uc.shiftRepo.GetByID(in.ShiftID)
	if err != nil {
		return nil, err
	}
	if shift == nil {
		return nil, domain.ErrShiftNotFound
	}
	if shift.Status != entity.ShiftStatusOpen {
		return nil, domain.ErrShiftNotOpen
	}
	if shift.OutletID != in.OutletID {
		return nil, domain.ErrInvalidInput
	}

	var customer *entity.Customer
	if in.CustomerID != "" {
		customer, err = uc.customerRepo.GetByID(in.CustomerID)
		if err != nil {
			return nil, err
		}
		if customer == nil {
			return nil, domain.ErrCustomerNotFound
		}
	}

	resolved, lines, err := uc.resolveItems(in.Items)
	if err != nil {
		return nil, err
	}

	totals, err := pricing.Calculate(lines, in.DiscountAmount, in.ServiceCharge, uc.cfg.TaxRatePct)
	if err != nil {
		return nil, err
	}

	paid := decimal.Zero
	for _, p := range in.Payments {
		if !entity.ValidPaymentMethod(p.Method) {
			return nil, domain.ErrInvalidInput
		}
		if !p.Amount.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		paid = paid.Add(p.Amount)
	}
	// El cambio se entrega en caja; aquí solo se registran montos aplicados.
	if paid.GreaterThan(totals.GrandTotal) {
		return nil, domain.ErrInvalidInput
	}

	outstanding := totals.GrandTotal.Sub(paid)
	var status string
	switch {
	case outstanding.IsZero():
		status = entity.SaleStatusCompleted
	case paid.IsZero():
		status = entity.SaleStatusCredit
	default:
		status = entity.SaleStatusPartiallyPaid
	}
	if status != entity.SaleStatusCompleted && customer == nil {
		return nil, domain.ErrCustomerRequired
	}
	if mustBeCredit && status == entity.SaleStatusCompleted {
		return nil, domain.ErrInvalidInput
	}

	// Verificación previa de existencias para fallar temprano con la caja
	// llena; la verdad final la impone el lock dentro de la transacción.
	for _, r := range resolved {
		if !r.product.TrackStock {
			continue
		}
		level, err := uc.levelRepo.Get(in.OutletID, r.req.ProductID, r.req.VariantID)
		if err != nil {
			return nil, err
		}
		if level.Quantity.LessThan(r.req.Quantity) {
			return nil, &domain.InsufficientStockError{
				ProductID: r.req.ProductID,
				VariantID: r.req.VariantID,
				Available: level.Quantity,
				Requested: r.req.Quantity,
			}
		}
	}

	now := time.Now()
	saleID := uuid.New().String()

	items := make([]entity.SaleItem, 0, len(resolved))
	for i, r := range resolved {
		items = append(items, entity.SaleItem{
			ID:           uuid.New().String(),
			SaleID:       saleID,
			ProductID:    r.req.ProductID,
			VariantID:    r.req.VariantID,
			ProductName:  r.product.Name,
			VariantName:  r.variantName,
			Quantity:     r.req.Quantity,
			UnitPrice:    r.unitPrice,
			ItemDiscount: r.req.ItemDiscount,
			LineTotal:    totals.LineTotals[i],
			CreatedAt:    now,
		})
	}
	payments := make([]entity.SalePayment, 0, len(in.Payments))
	for _, p := range in.Payments {
		payments = append(payments, entity.SalePayment{
			ID:        uuid.New().String(),
			SaleID:    saleID,
			Method:    p.Method,
			Amount:    p.Amount,
			Reference: p.Reference,
			CreatedAt: now,
		})
	}

	sale := &entity.Sale{
		ID:             saleID,
		OutletID:       in.OutletID,
		ShiftID:        in.ShiftID,
		EmployeeID:     userID,
		CustomerID:     in.CustomerID,
		Status:         status,
		Subtotal:       totals.Subtotal,
		DiscountAmount: totals.DiscountAmount,
		TaxAmount:      totals.TaxAmount,
		ServiceCharge:  totals.ServiceCharge,
		GrandTotal:     totals.GrandTotal,
		PaidAmount:     paid,
		Note:           in.Note,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	var credit *entity.CreditSale
	if status != entity.SaleStatusCompleted {
		creditStatus := entity.CreditStatusOutstanding
		if !paid.IsZero() {
			creditStatus = entity.CreditStatusPartiallyPaid
		}
		credit = &entity.CreditSale{
			ID:                uuid.New().String(),
			SaleID:            saleID,
			CustomerID:        customer.ID,
			TotalAmount:       totals.GrandTotal,
			PaidAmount:        paid,
			OutstandingAmount: outstanding,
			Status:            creditStatus,
			DueDate:           dueDate,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
	}

	// El índice único del recibo decide las colisiones; ante ErrDuplicate se
	// regenera el número (y su CUDE) y se reintenta la transacción completa.
	var changes []stockChange
	var txErr error
	for attempt := 0; attempt < receiptAttempts; attempt++ {
		sale.ReceiptNumber = generateReceiptNumber(uc.cfg.ReceiptPrefix, now)
		if err := uc.stampCUDE(sale, customer, now, totals); err != nil {
			return nil, err
		}

		changes = changes[:0]
		txErr = uc.txRunner.RunSale(ctx, func(
			levelRepo repository.StockLevelRepository,
			movRepo repository.StockMovementRepository,
			saleRepo repository.SaleRepository,
			creditRepo repository.CreditSaleRepository,
			customerRepo repository.CustomerRepository,
		) error {
			for _, r := range resolved {
				if !r.product.TrackStock {
					continue
				}
				res, err := uc.stockLedger.ApplyDeltaInTx(levelRepo, movRepo, stock.DeltaInput{
					OutletID:  in.OutletID,
					ProductID: r.req.ProductID,
					VariantID: r.req.VariantID,
					Delta:     r.req.Quantity.Neg(),
					Type:      entity.MovementTypeSale,
					Reference: saleID,
					UserID:    userID,
				}, now)
				if err != nil {
					return err
				}
				changes = append(changes, stockChange{item: r, result: *res})
			}

			if err := saleRepo.Create(sale); err != nil {
				return err
			}
			for i := range items {
				if err := saleRepo.CreateItem(&items[i]); err != nil {
					return err
				}
			}
			for i := range payments {
				if err := saleRepo.CreatePayment(&payments[i]); err != nil {
					return err
				}
			}

			if credit != nil {
				if err := creditRepo.Create(credit); err != nil {
					return err
				}
				if err := customerRepo.IncrementCreditBalance(customer.ID, credit.OutstandingAmount); err != nil {
					return err
				}
			}
			if customer != nil {
				if err := customerRepo.IncrementSaleRollup(customer.ID, totals.GrandTotal); err != nil {
					return err
				}
			}
			return nil
		})
		if txErr == nil || !errors.Is(txErr, domain.ErrDuplicate) {
			break
		}
		uc.log.Warn().
			Str("receipt_number", sale.ReceiptNumber).
			Int("attempt", attempt+1).
			Msg("colisión de número de recibo, regenerando")
	}
	if txErr != nil {
		return nil, txErr
	}

	// La venta ya es firme: lo que sigue no la revierte.
	if customer != nil {
		if err := uc.loyalty.EarnOnSale(ctx, customer.ID, saleID, totals.GrandTotal); err != nil {
			uc.log.Error().Err(err).
				Str("sale_id", saleID).
				Str("customer_id", customer.ID).
				Msg("acumulación de puntos falló, la venta queda firme")
		}
	}

	uc.publisher.Publish(event.SaleCreated{
		SaleID:        saleID,
		OutletID:      in.OutletID,
		ReceiptNumber: sale.ReceiptNumber,
		CustomerID:    in.CustomerID,
		Status:        status,
		GrandTotal:    totals.GrandTotal,
		OccurredAt:    now,
	})
	for _, ch := range changes {
		uc.publisher.Publish(event.StockLevelChanged{
			OutletID:         in.OutletID,
			ProductID:        ch.item.req.ProductID,
			VariantID:        ch.item.req.VariantID,
			MovementType:     entity.MovementTypeSale,
			Quantity:         ch.item.req.Quantity.Neg(),
			PreviousQuantity: ch.result.Previous,
			NewQuantity:      ch.result.New,
			Reference:        saleID,
			OccurredAt:       now,
		})
	}

	uc.log.Info().
		Str("sale_id", saleID).
		Str("receipt_number", sale.ReceiptNumber).
		Str("status", status).
		Str("grand_total", totals.GrandTotal.String()).
		Msg("venta registrada")

	sale.Items = items
	sale.Payments = payments
	return toSaleResponse(sale), nil
}

// resolveItems carga cada producto (y variante), verifica que esté activo y
// congela nombre y precio unitario al momento de la venta.
func (uc *CheckoutUseCase) resolveItems(reqs []dto.SaleItemRequest) ([]resolvedItem, []pricing.Line, error) {
	resolved := make([]resolvedItem, 0, len(reqs))
	lines := make([]pricing.Line, 0, len(reqs))
	for _, req := range reqs {
		if req.ProductID == "" {
			return nil, nil, domain.ErrInvalidInput
		}
		product, err := uc.productRepo.GetByID(req.ProductID)
		if err != nil {
			return nil, nil, err
		}
		if product == nil {
			return nil, nil, domain.ErrProductNotFound
		}
		if !product.IsActive {
			return nil, nil, domain.ErrProductInactive
		}

		unitPrice := product.BasePrice
		variantName := ""
		if req.VariantID != "" {
			variant, err := uc.productRepo.GetVariantByID(req.VariantID)
			if err != nil {
				return nil, nil, err
			}
			if variant == nil || variant.ProductID != req.ProductID {
				return nil, nil, domain.ErrNotFound
			}
			if !variant.IsActive {
				return nil, nil, domain.ErrProductInactive
			}
			if !variant.Price.IsZero() {
				unitPrice = variant.Price
			}
			variantName = variant.Name
		}
		// Precio manual de caja por encima del catálogo, si viene.
		if req.UnitPrice != nil {
			unitPrice = *req.UnitPrice
		}

		resolved = append(resolved, resolvedItem{
			req:         req,
			product:     product,
			unitPrice:   unitPrice,
			variantName: variantName,
		})
		lines = append(lines, pricing.Line{
			UnitPrice:    unitPrice,
			Quantity:     req.Quantity,
			ItemDiscount: req.ItemDiscount,
			TaxExempt:    product.TaxExempt,
		})
	}
	return resolved, lines, nil
}

// stampCUDE calcula y fija el sello fiscal del recibo. Sin NIT configurado la
// venta sale sin CUDE (modo no fiscal).
func (uc *CheckoutUseCase) stampCUDE(sale *entity.Sale, customer *entity.Customer, now time.Time, totals pricing.Totals) error {
	if uc.cfg.FiscalNIT == "" {
		return nil
	}
	docAdq := ""
	if customer != nil {
		docAdq = customer.DocumentID
	}
	cude, err := uc.cudeCalc.Calculate(&fiscal.CudeParams{
		NumDoc:      sale.ReceiptNumber,
		FecDoc:      now.Format("2006-01-02"),
		HorDoc:      now.Format("15:04:05-07:00"),
		ValDoc:      totals.Subtotal,
		ValImp:      totals.TaxAmount,
		ValTot:      totals.GrandTotal,
		NitOfe:      uc.cfg.FiscalNIT,
		DocAdq:      docAdq,
		SoftwarePin: uc.cfg.SoftwarePin,
		TipoAmb:     uc.cfg.Environment,
	})
	if err != nil {
		return fmt.Errorf("calcular CUDE: %w", err)
	}
	sale.CUDE = cude
	return nil
}
