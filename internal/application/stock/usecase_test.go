package stock_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Pos-api/internal/application/stock"
	"github.com/jhoicas/Pos-api/internal/domain"
	"github.com/jhoicas/Pos-api/internal/domain/entity"
	"github.com/jhoicas/Pos-api/internal/domain/event"
	"github.com/jhoicas/Pos-api/internal/domain/repository"
	"github.com/jhoicas/Pos-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes mínimos del libro de inventario
// ──────────────────────────────────────────────────────────────────────────────

const (
	outletID  = "00000000-0000-0000-0000-0000000000a1"
	outlet2ID = "00000000-0000-0000-0000-0000000000a2"
	productID = "00000000-0000-0000-0000-0000000000b1"
	serviceID = "00000000-0000-0000-0000-0000000000b2"
	managerID = "00000000-0000-0000-0000-0000000000u1"
)

type stockStore struct {
	levels        map[string]*entity.StockLevel
	movements     []*entity.StockMovement
	products      map[string]*entity.Product
	outlets       map[string]*entity.Outlet
	discrepancies []*repository.StockDiscrepancy
}

func levelKey(outletID, productID, variantID string) string {
	return outletID + "/" + productID + "/" + variantID
}

// seedStockStore arma dos sedes, un producto con control de inventario y un
// servicio sin control. Las existencias arrancan vacías.
func seedStockStore() *stockStore {
	return &stockStore{
		levels: map[string]*entity.StockLevel{},
		products: map[string]*entity.Product{
			productID: {ID: productID, SKU: "CAFE-500", Name: "Café de origen 500g", IsActive: true, TrackStock: true},
			serviceID: {ID: serviceID, SKU: "SERV-ENVIO", Name: "Domicilio", IsActive: true, TrackStock: false},
		},
		outlets: map[string]*entity.Outlet{
			outletID:  {ID: outletID, Name: "Sede Centro"},
			outlet2ID: {ID: outlet2ID, Name: "Sede Norte"},
		},
	}
}

type stubLevelRepo struct{ s *stockStore }

var _ repository.StockLevelRepository = (*stubLevelRepo)(nil)

func (r *stubLevelRepo) Get(outletID, productID, variantID string) (*entity.StockLevel, error) {
	if l, ok := r.s.levels[levelKey(outletID, productID, variantID)]; ok {
		cp := *l
		return &cp, nil
	}
	return &entity.StockLevel{
		OutletID: outletID, ProductID: productID, VariantID: variantID,
		Quantity: decimal.Zero, LowStockAlert: decimal.Zero,
	}, nil
}

func (r *stubLevelRepo) EnsureRow(outletID, productID, variantID string) error {
	k := levelKey(outletID, productID, variantID)
	if _, ok := r.s.levels[k]; !ok {
		r.s.levels[k] = &entity.StockLevel{
			OutletID: outletID, ProductID: productID, VariantID: variantID,
			Quantity: decimal.Zero, LowStockAlert: decimal.Zero,
		}
	}
	return nil
}

func (r *stubLevelRepo) GetForUpdate(outletID, productID, variantID string) (*entity.StockLevel, error) {
	return r.Get(outletID, productID, variantID)
}

func (r *stubLevelRepo) ApplyDelta(outletID, productID, variantID string, delta decimal.Decimal) (decimal.Decimal, error) {
	l, ok := r.s.levels[levelKey(outletID, productID, variantID)]
	if !ok {
		return decimal.Zero, domain.ErrInsufficientStock
	}
	next := l.Quantity.Add(delta)
	if next.IsNegative() {
		return decimal.Zero, domain.ErrInsufficientStock
	}
	l.Quantity = next
	return next, nil
}

func (r *stubLevelRepo) SetAlertThreshold(outletID, productID, variantID string, threshold decimal.Decimal) error {
	if err := r.EnsureRow(outletID, productID, variantID); err != nil {
		return err
	}
	r.s.levels[levelKey(outletID, productID, variantID)].LowStockAlert = threshold
	return nil
}

func (r *stubLevelRepo) ListByOutlet(outletID string, _, _ int) ([]*entity.StockLevel, error) {
	var out []*entity.StockLevel
	for _, l := range r.s.levels {
		if l.OutletID == outletID {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *stubLevelRepo) ListLowStock(outletID string) ([]*entity.StockLevel, error) {
	var out []*entity.StockLevel
	for _, l := range r.s.levels {
		if l.OutletID == outletID && l.LowStockAlert.GreaterThan(decimal.Zero) &&
			!l.Quantity.GreaterThan(l.LowStockAlert) {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *stubLevelRepo) ListDiscrepancies(string) ([]*repository.StockDiscrepancy, error) {
	return r.s.discrepancies, nil
}

type stubMovementRepo struct{ s *stockStore }

var _ repository.StockMovementRepository = (*stubMovementRepo)(nil)

func (r *stubMovementRepo) Create(m *entity.StockMovement) error {
	cp := *m
	r.s.movements = append(r.s.movements, &cp)
	return nil
}

func (r *stubMovementRepo) GetByID(id string) (*entity.StockMovement, error) {
	for _, m := range r.s.movements {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *stubMovementRepo) ListByOutlet(outletID string, _, _ *time.Time, _, _ int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for _, m := range r.s.movements {
		if m.OutletID == outletID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *stubMovementRepo) ListByProduct(productID string, _, _ *time.Time, _, _ int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for _, m := range r.s.movements {
		if m.ProductID == productID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *stubMovementRepo) ListByReference(reference string) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for _, m := range r.s.movements {
		if m.Reference == reference {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

type stubProductRepo struct{ s *stockStore }

var _ repository.ProductRepository = (*stubProductRepo)(nil)

func (r *stubProductRepo) Create(*entity.Product) error { return nil }
func (r *stubProductRepo) GetByID(id string) (*entity.Product, error) {
	if p, ok := r.s.products[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}
func (r *stubProductRepo) GetBySKU(string) (*entity.Product, error)           { return nil, nil }
func (r *stubProductRepo) GetWithVariants(id string) (*entity.Product, error) { return r.GetByID(id) }
func (r *stubProductRepo) Update(*entity.Product) error                       { return nil }
func (r *stubProductRepo) List(int, int) ([]*entity.Product, error)           { return nil, nil }
func (r *stubProductRepo) Delete(string) error                                { return nil }
func (r *stubProductRepo) CreateVariant(*entity.ProductVariant) error         { return nil }
func (r *stubProductRepo) GetVariantByID(string) (*entity.ProductVariant, error) {
	return nil, nil
}
func (r *stubProductRepo) UpdateVariant(*entity.ProductVariant) error { return nil }
func (r *stubProductRepo) ListVariants(string) ([]*entity.ProductVariant, error) {
	return nil, nil
}

type stubOutletRepo struct{ s *stockStore }

var _ repository.OutletRepository = (*stubOutletRepo)(nil)

func (r *stubOutletRepo) Create(*entity.Outlet) error { return nil }
func (r *stubOutletRepo) GetByID(id string) (*entity.Outlet, error) {
	if o, ok := r.s.outlets[id]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, nil
}
func (r *stubOutletRepo) List(int, int) ([]*entity.Outlet, error) { return nil, nil }
func (r *stubOutletRepo) Update(*entity.Outlet) error             { return nil }
func (r *stubOutletRepo) Delete(string) error                     { return nil }

type stubTxRunner struct{ s *stockStore }

func (tr *stubTxRunner) Run(_ context.Context, fn func(
	repository.StockLevelRepository,
	repository.StockMovementRepository,
	repository.ProductRepository,
) error) error {
	return fn(&stubLevelRepo{s: tr.s}, &stubMovementRepo{s: tr.s}, &stubProductRepo{s: tr.s})
}

type eventSink struct{ events []event.Event }

func (p *eventSink) Publish(evt event.Event) { p.events = append(p.events, evt) }

func newLedger(s *stockStore) (*stock.LedgerUseCase, *eventSink) {
	sink := &eventSink{}
	uc := stock.NewLedgerUseCase(&stubTxRunner{s: s}, &stubProductRepo{s: s}, &stubOutletRepo{s: s}, sink)
	return uc, sink
}

// setLevel siembra una existencia directamente en el almacén.
func setLevel(s *stockStore, outletID, productID string, qty int64) {
	s.levels[levelKey(outletID, productID, "")] = &entity.StockLevel{
		OutletID: outletID, ProductID: productID, Quantity: decimal.NewFromInt(qty),
	}
}

// levelQty lee la cantidad de una clave, cero si la fila nunca se creó.
func levelQty(s *stockStore, outletID, productID string) decimal.Decimal {
	if l, ok := s.levels[levelKey(outletID, productID, "")]; ok {
		return l.Quantity
	}
	return decimal.Zero
}

func adjust(typ string, qty int64) stock.AdjustInput {
	return stock.AdjustInput{
		UserID:    managerID,
		OutletID:  outletID,
		ProductID: productID,
		Type:      typ,
		Quantity:  decimal.NewFromInt(qty),
	}
}

func eqDec(t *testing.T, want int64, got decimal.Decimal, msg string) {
	t.Helper()
	assert.True(t, got.Equal(decimal.NewFromInt(want)), "%s: esperado %d, obtenido %s", msg, want, got)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: una compra sobre una clave sin fila previa crea la existencia, deja
// la entrada en el libro con las cantidades antes/después y publica el evento.
func TestAdjustStock_CompraCreaExistencia(t *testing.T) {
	store := seedStockStore()
	uc, sink := newLedger(store)

	err := uc.AdjustStock(context.Background(), adjust(entity.MovementTypePurchase, 10))
	require.NoError(t, err)

	eqDec(t, 10, levelQty(store, outletID, productID), "existencia tras la compra")

	require.Len(t, store.movements, 1)
	mov := store.movements[0]
	assert.Equal(t, entity.MovementTypePurchase, mov.Type)
	eqDec(t, 10, mov.Quantity, "delta del movimiento")
	eqDec(t, 0, mov.PreviousQuantity, "cantidad previa")
	eqDec(t, 10, mov.NewQuantity, "cantidad resultante")
	assert.Equal(t, managerID, mov.CreatedBy)
	assert.NotEmpty(t, mov.ID)

	require.Len(t, sink.events, 1)
	evt, ok := sink.events[0].(event.StockLevelChanged)
	require.True(t, ok)
	assert.Equal(t, entity.MovementTypePurchase, evt.MovementType)
	eqDec(t, 0, evt.PreviousQuantity, "previa en el evento")
	eqDec(t, 10, evt.NewQuantity, "resultante en el evento")
}

// Caso 2: una merma mayor a la existencia se rechaza con las cifras y no deja
// rastro: ni existencia, ni libro, ni eventos.
func TestAdjustStock_MermaExcedeExistencia(t *testing.T) {
	store := seedStockStore()
	setLevel(store, outletID, productID, 3)
	uc, sink := newLedger(store)

	err := uc.AdjustStock(context.Background(), adjust(entity.MovementTypeWaste, 5))
	var insuf *domain.InsufficientStockError
	require.ErrorAs(t, err, &insuf)
	assert.Equal(t, productID, insuf.ProductID)
	eqDec(t, 3, insuf.Available, "disponible reportado")
	eqDec(t, 5, insuf.Requested, "solicitado reportado")

	eqDec(t, 3, levelQty(store, outletID, productID), "la existencia no cambia")
	assert.Empty(t, store.movements, "nada queda en el libro")
	assert.Empty(t, sink.events, "nada se publica")
}

// Caso 3: un ajuste puede dejar la existencia exacta en cero, pero no por
// debajo.
func TestAdjustStock_AjusteHastaCero(t *testing.T) {
	store := seedStockStore()
	setLevel(store, outletID, productID, 4)
	uc, _ := newLedger(store)
	ctx := context.Background()

	err := uc.AdjustStock(ctx, adjust(entity.MovementTypeAdjustment, -4))
	require.NoError(t, err, "quedar en cero es válido")
	eqDec(t, 0, levelQty(store, outletID, productID), "existencia en cero")

	err = uc.AdjustStock(ctx, adjust(entity.MovementTypeAdjustment, -1))
	var insuf *domain.InsufficientStockError
	require.ErrorAs(t, err, &insuf, "por debajo de cero se rechaza")
	eqDec(t, 0, insuf.Available, "disponible reportado")
	eqDec(t, 1, insuf.Requested, "solicitado reportado")
}

// Caso 4: un traslado descuenta en el origen y repone en el destino, con dos
// entradas en el libro que comparten referencia.
func TestAdjustStock_TrasladoEntreSedes(t *testing.T) {
	store := seedStockStore()
	setLevel(store, outletID, productID, 10)
	uc, sink := newLedger(store)

	err := uc.AdjustStock(context.Background(), stock.AdjustInput{
		UserID:       managerID,
		FromOutletID: outletID,
		ToOutletID:   outlet2ID,
		ProductID:    productID,
		Type:         "transfer",
		Quantity:     decimal.NewFromInt(6),
	})
	require.NoError(t, err)

	eqDec(t, 4, levelQty(store, outletID, productID), "existencia en el origen")
	eqDec(t, 6, levelQty(store, outlet2ID, productID), "existencia en el destino")

	require.Len(t, store.movements, 2)
	out, in := store.movements[0], store.movements[1]
	assert.Equal(t, entity.MovementTypeTransferOut, out.Type)
	assert.Equal(t, entity.MovementTypeTransferIn, in.Type)
	eqDec(t, -6, out.Quantity, "salida firmada en el origen")
	eqDec(t, 6, in.Quantity, "entrada en el destino")
	require.NotEmpty(t, out.Reference, "el traslado genera su referencia")
	assert.Equal(t, out.Reference, in.Reference, "ambas patas comparten referencia")

	assert.Len(t, sink.events, 2, "un evento por pata")
}

// Caso 5: un traslado sin existencia suficiente en el origen falla completo;
// el destino no recibe nada.
func TestAdjustStock_TrasladoSinExistencia(t *testing.T) {
	store := seedStockStore()
	setLevel(store, outletID, productID, 2)
	uc, sink := newLedger(store)

	err := uc.AdjustStock(context.Background(), stock.AdjustInput{
		UserID:       managerID,
		FromOutletID: outletID,
		ToOutletID:   outlet2ID,
		ProductID:    productID,
		Type:         "transfer",
		Quantity:     decimal.NewFromInt(5),
	})
	var insuf *domain.InsufficientStockError
	require.ErrorAs(t, err, &insuf)

	eqDec(t, 2, levelQty(store, outletID, productID), "el origen conserva lo suyo")
	eqDec(t, 0, levelQty(store, outlet2ID, productID), "el destino no recibe nada")
	assert.Empty(t, store.movements)
	assert.Empty(t, sink.events)
}

// Caso 6: entradas que el libro no admite.
func TestAdjustStock_EntradasInvalidas(t *testing.T) {
	store := seedStockStore()
	setLevel(store, outletID, productID, 10)
	uc, _ := newLedger(store)
	ctx := context.Background()

	err := uc.AdjustStock(ctx, adjust(entity.MovementTypeSale, 1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "los movimientos de venta no entran por aquí")

	err = uc.AdjustStock(ctx, adjust("conteo", 1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "tipo desconocido")

	err = uc.AdjustStock(ctx, adjust(entity.MovementTypePurchase, 0))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "compra sin cantidad")

	err = uc.AdjustStock(ctx, adjust(entity.MovementTypePurchase, -3))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "compra negativa")

	err = uc.AdjustStock(ctx, adjust(entity.MovementTypeAdjustment, 0))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "ajuste en cero no mueve nada")

	err = uc.AdjustStock(ctx, stock.AdjustInput{
		UserID: managerID, FromOutletID: outletID, ToOutletID: outletID,
		ProductID: productID, Type: "transfer", Quantity: decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "traslado a la misma sede")

	assert.Empty(t, store.movements, "ninguna entrada inválida llega al libro")
}

// Caso 7: el producto y la sede deben existir, y el producto debe manejar
// inventario.
func TestAdjustStock_ProductoOSedeInvalidos(t *testing.T) {
	store := seedStockStore()
	uc, _ := newLedger(store)
	ctx := context.Background()

	input := adjust(entity.MovementTypePurchase, 5)
	input.ProductID = "99999999-0000-0000-0000-000000000000"
	assert.ErrorIs(t, uc.AdjustStock(ctx, input), domain.ErrProductNotFound)

	input = adjust(entity.MovementTypePurchase, 5)
	input.ProductID = serviceID
	assert.ErrorIs(t, uc.AdjustStock(ctx, input), domain.ErrInvalidInput,
		"un producto sin control de inventario no tiene libro")

	input = adjust(entity.MovementTypePurchase, 5)
	input.OutletID = "99999999-0000-0000-0000-000000000000"
	assert.ErrorIs(t, uc.AdjustStock(ctx, input), domain.ErrNotFound, "la sede debe existir")
}

// Caso 8: umbral de alerta y listado de bajo stock.
func TestQuery_AlertasDeBajoStock(t *testing.T) {
	store := seedStockStore()
	setLevel(store, outletID, productID, 2)
	queries := stock.NewQueryUseCase(&stubLevelRepo{s: store}, &stubMovementRepo{s: store})

	err := queries.SetAlertThreshold(outletID, productID, "", decimal.NewFromInt(5))
	require.NoError(t, err)

	low, err := queries.ListLowStock(outletID)
	require.NoError(t, err)
	require.Len(t, low, 1)
	eqDec(t, 2, low[0].Quantity, "existencia bajo el umbral")

	err = queries.SetAlertThreshold(outletID, productID, "", decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "umbral negativo")

	lvl, err := queries.GetLevel(outletID, serviceID, "")
	require.NoError(t, err)
	eqDec(t, 0, lvl.Quantity, "una clave sin movimientos reporta cero")
}

// Caso 9: la conciliación devuelve las discrepancias que reporta la BD sin
// corregir nada.
func TestReconcile_ReportaDiscrepancias(t *testing.T) {
	store := seedStockStore()
	store.discrepancies = []*repository.StockDiscrepancy{{
		OutletID:      outletID,
		ProductID:     productID,
		LevelQuantity: decimal.NewFromInt(8),
		MovementSum:   decimal.NewFromInt(6),
	}}
	log := logger.New(logger.Config{Env: "production", Level: "error"})
	uc := stock.NewReconcileUseCase(&stubLevelRepo{s: store}, log)

	found, err := uc.Run(outletID)
	require.NoError(t, err)
	require.Len(t, found, 1)
	eqDec(t, 8, found[0].LevelQuantity, "existencia reportada")
	eqDec(t, 6, found[0].MovementSum, "suma del libro reportada")

	_, err = uc.Run("")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
