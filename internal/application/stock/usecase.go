package stock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Pos-api/internal/domain"
	"github.com/jhoicas/Pos-api/internal/domain/entity"
	"github.com/jhoicas/Pos-api/internal/domain/event"
	"github.com/jhoicas/Pos-api/internal/domain/repository"
)

// LedgerUseCase registra movimientos de inventario de forma transaccional
// (purchase, adjustment, waste, return y transfer entre puntos de venta) con
// bloqueo de fila (SELECT FOR UPDATE) y Commit/Rollback. Todo cambio de
// cantidad pasa por ApplyDeltaInTx: guarda de no-negatividad más entrada
// append-only en el libro, dentro de la misma transacción.
type LedgerUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	outletRepo  repository.OutletRepository
	publisher   Publisher
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	outletRepo repository.OutletRepository,
	publisher Publisher,
) *LedgerUseCase {
	return &LedgerUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		outletRepo:  outletRepo,
		publisher:   publisher,
	}
}

// DeltaInput entrada para aplicar un delta al libro dentro de una transacción.
// Delta lleva signo: negativo descuenta, positivo repone.
type DeltaInput struct {
	OutletID  string
	ProductID string
	VariantID string
	Delta     decimal.Decimal
	Type      string
	Reference string
	Note      string
	UserID    string
}

// DeltaResult cantidades antes y después de aplicar el delta.
type DeltaResult struct {
	Previous decimal.Decimal
	New      decimal.Decimal
}

// AdjustInput entrada para registrar un movimiento manual.
// Quantity es siempre positiva salvo en adjustment, donde lleva signo.
// Para type=transfer se usan FromOutletID/ToOutletID en lugar de OutletID.
type AdjustInput struct {
	UserID       string
	OutletID     string
	FromOutletID string
	ToOutletID   string
	ProductID    string
	VariantID    string
	Type         string
	Quantity     decimal.Decimal
	Reference    string
	Note         string
}

// transferType no es un tipo del libro: se expande en transfer_out + transfer_in.
const transferType = "transfer"

// AdjustStock valida y registra un movimiento manual en su propia transacción.
// Los movimientos de venta no entran por aquí (los escribe el caso de uso de
// ventas con type=sale); un type=sale explícito se rechaza.
func (uc *LedgerUseCase) AdjustStock(ctx context.Context, input AdjustInput) error {
	switch input.Type {
	case entity.MovementTypePurchase, entity.MovementTypeWaste, entity.MovementTypeReturn:
		if input.ProductID == "" || input.OutletID == "" {
			return domain.ErrInvalidInput
		}
		if !input.Quantity.GreaterThan(decimal.Zero) {
			return domain.ErrInvalidInput
		}
	case entity.MovementTypeAdjustment:
		if input.ProductID == "" || input.OutletID == "" {
			return domain.ErrInvalidInput
		}
		if input.Quantity.IsZero() {
			return domain.ErrInvalidInput
		}
	case transferType:
		if input.ProductID == "" || input.FromOutletID == "" || input.ToOutletID == "" {
			return domain.ErrInvalidInput
		}
		if input.FromOutletID == input.ToOutletID || !input.Quantity.GreaterThan(decimal.Zero) {
			return domain.ErrInvalidInput
		}
	default:
		return domain.ErrInvalidInput
	}

	product, err := uc.productRepo.GetByID(input.ProductID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrProductNotFound
	}
	if !product.TrackStock {
		// Sin libro no hay nada que mover.
		return domain.ErrInvalidInput
	}

	if input.Type == transferType {
		if err := uc.checkOutlet(input.FromOutletID); err != nil {
			return err
		}
		if err := uc.checkOutlet(input.ToOutletID); err != nil {
			return err
		}
	} else if err := uc.checkOutlet(input.OutletID); err != nil {
		return err
	}

	now := time.Now()
	var results []appliedDelta

	err = uc.txRunner.Run(ctx, func(
		levelRepo repository.StockLevelRepository,
		movRepo repository.StockMovementRepository,
		_ repository.ProductRepository,
	) error {
		deltas, err := uc.expandDeltas(input)
		if err != nil {
			return err
		}
		for _, d := range deltas {
			res, err := uc.ApplyDeltaInTx(levelRepo, movRepo, d, now)
			if err != nil {
				return err
			}
			results = append(results, appliedDelta{input: d, result: *res})
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, r := range results {
		uc.publisher.Publish(event.StockLevelChanged{
			OutletID:         r.input.OutletID,
			ProductID:        r.input.ProductID,
			VariantID:        r.input.VariantID,
			MovementType:     r.input.Type,
			Quantity:         r.input.Delta,
			PreviousQuantity: r.result.Previous,
			NewQuantity:      r.result.New,
			Reference:        r.input.Reference,
			OccurredAt:       now,
		})
	}
	return nil
}

type appliedDelta struct {
	input  DeltaInput
	result DeltaResult
}

// expandDeltas convierte la entrada en los deltas firmados a aplicar:
// uno para movimientos simples, dos (salida origen + entrada destino) para
// traslados.
func (uc *LedgerUseCase) expandDeltas(input AdjustInput) ([]DeltaInput, error) {
	base := DeltaInput{
		OutletID:  input.OutletID,
		ProductID: input.ProductID,
		VariantID: input.VariantID,
		Type:      input.Type,
		Reference: input.Reference,
		Note:      input.Note,
		UserID:    input.UserID,
	}
	switch input.Type {
	case entity.MovementTypePurchase, entity.MovementTypeReturn:
		base.Delta = input.Quantity
		return []DeltaInput{base}, nil
	case entity.MovementTypeWaste:
		base.Delta = input.Quantity.Neg()
		return []DeltaInput{base}, nil
	case entity.MovementTypeAdjustment:
		base.Delta = input.Quantity
		return []DeltaInput{base}, nil
	case transferType:
		ref := input.Reference
		if ref == "" {
			ref = uuid.New().String()
		}
		out := base
		out.OutletID = input.FromOutletID
		out.Type = entity.MovementTypeTransferOut
		out.Delta = input.Quantity.Neg()
		out.Reference = ref
		in := base
		in.OutletID = input.ToOutletID
		in.Type = entity.MovementTypeTransferIn
		in.Delta = input.Quantity
		in.Reference = ref
		return []DeltaInput{out, in}, nil
	}
	return nil, domain.ErrInvalidInput
}

// ApplyDeltaInTx aplica un delta usando los repositorios proporcionados
// (misma transacción del caller). Es el único punto por donde cambia una
// cantidad: asegura la fila, la bloquea, verifica no-negatividad, aplica el
// delta con guarda SQL y agrega la entrada al libro con las cantidades antes
// y después. Si retorna error (ej: InsufficientStockError) el caller debe
// hacer rollback.
func (uc *LedgerUseCase) ApplyDeltaInTx(
	levelRepo repository.StockLevelRepository,
	movRepo repository.StockMovementRepository,
	in DeltaInput,
	now time.Time,
) (*DeltaResult, error) {
	if in.Delta.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	if !entity.ValidMovementType(in.Type) {
		return nil, domain.ErrInvalidInput
	}

	// Una fila inexistente no se puede bloquear: primero se asegura en cero.
	if err := levelRepo.EnsureRow(in.OutletID, in.ProductID, in.VariantID); err != nil {
		return nil, err
	}
	level, err := levelRepo.GetForUpdate(in.OutletID, in.ProductID, in.VariantID)
	if err != nil {
		return nil, err
	}
	if in.Delta.IsNegative() && level.Quantity.LessThan(in.Delta.Neg()) {
		return nil, &domain.InsufficientStockError{
			ProductID: in.ProductID,
			VariantID: in.VariantID,
			Available: level.Quantity,
			Requested: in.Delta.Neg(),
		}
	}
	newQty, err := levelRepo.ApplyDelta(in.OutletID, in.ProductID, in.VariantID, in.Delta)
	if err != nil {
		// La guarda SQL respalda la verificación anterior; bajo el lock no
		// debería dispararse, pero si lo hace devolvemos el mismo error tipado.
		if errors.Is(err, domain.ErrInsufficientStock) {
			return nil, &domain.InsufficientStockError{
				ProductID: in.ProductID,
				VariantID: in.VariantID,
				Available: level.Quantity,
				Requested: in.Delta.Neg(),
			}
		}
		return nil, err
	}

	mov := &entity.StockMovement{
		ID:               uuid.New().String(),
		OutletID:         in.OutletID,
		ProductID:        in.ProductID,
		VariantID:        in.VariantID,
		Type:             in.Type,
		Quantity:         in.Delta,
		PreviousQuantity: level.Quantity,
		NewQuantity:      newQty,
		Reference:        in.Reference,
		Note:             in.Note,
		CreatedAt:        now,
		CreatedBy:        in.UserID,
	}
	if err := movRepo.Create(mov); err != nil {
		return nil, err
	}
	return &DeltaResult{Previous: level.Quantity, New: newQty}, nil
}

func (uc *LedgerUseCase) checkOutlet(outletID string) error {
	outlet, err := uc.outletRepo.GetByID(outletID)
	if err != nil {
		return err
	}
	if outlet == nil {
		return domain.ErrNotFound
	}
	return nil
}
