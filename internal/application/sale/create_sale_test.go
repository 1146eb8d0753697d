package sale_test

import (
	"context"
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Pos-api/internal/application/dto"
	"github.com/jhoicas/Pos-api/internal/application/sale"
	"github.com/jhoicas/Pos-api/internal/application/stock"
	"github.com/jhoicas/Pos-api/internal/domain"
	"github.com/jhoicas/Pos-api/internal/domain/entity"
	"github.com/jhoicas/Pos-api/internal/domain/event"
	"github.com/jhoicas/Pos-api/internal/domain/fiscal"
	"github.com/jhoicas/Pos-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	outletID      = "00000000-0000-0000-0000-00000000000a"
	otherOutletID = "00000000-0000-0000-0000-00000000000e"
	shiftID       = "00000000-0000-0000-0000-00000000000b"
	closedShiftID = "00000000-0000-0000-0000-00000000000f"
	cashierID     = "00000000-0000-0000-0000-00000000000c"
	customerID    = "00000000-0000-0000-0000-00000000000d"
	productAID    = "00000000-0000-0000-0000-0000000000a1"
	productBID    = "00000000-0000-0000-0000-0000000000b1"
	inactiveID    = "00000000-0000-0000-0000-0000000000c1"
	untrackedID   = "00000000-0000-0000-0000-0000000000d1"
	variantID     = "00000000-0000-0000-0000-0000000000a2"
)

// seedStore arma el estado base: turno abierto, dos productos con existencias
// (A a 25.000 con 50 unidades, B a 15.000 con 30), un producto inactivo, uno
// sin control de inventario y un cliente en ceros.
func seedStore() *memStore {
	s := newMemStore()
	now := time.Now()

	s.shifts[shiftID] = &entity.Shift{
		ID: shiftID, OutletID: outletID, UserID: cashierID,
		Status: entity.ShiftStatusOpen, OpeningCash: decimal.NewFromInt(100_000), OpenedAt: now,
	}
	s.shifts[closedShiftID] = &entity.Shift{
		ID: closedShiftID, OutletID: outletID, UserID: cashierID,
		Status: entity.ShiftStatusClosed, OpenedAt: now,
	}

	s.products[productAID] = &entity.Product{
		ID: productAID, SKU: "CAFE-500", Name: "Café 500g",
		BasePrice: decimal.NewFromInt(25_000), IsActive: true, TrackStock: true,
	}
	s.products[productBID] = &entity.Product{
		ID: productBID, SKU: "PAN-01", Name: "Pan artesanal",
		BasePrice: decimal.NewFromInt(15_000), IsActive: true, TrackStock: true,
	}
	s.products[inactiveID] = &entity.Product{
		ID: inactiveID, SKU: "DESC-01", Name: "Descontinuado",
		BasePrice: decimal.NewFromInt(9_000), IsActive: false, TrackStock: true,
	}
	s.products[untrackedID] = &entity.Product{
		ID: untrackedID, SKU: "SERV-01", Name: "Domicilio",
		BasePrice: decimal.NewFromInt(5_000), IsActive: true, TrackStock: false,
	}
	s.variants[variantID] = &entity.ProductVariant{
		ID: variantID, ProductID: productAID, Name: "Molido",
		Price: decimal.NewFromInt(27_000), IsActive: true,
	}

	s.levels[levelKey(outletID, productAID, "")] = &entity.StockLevel{
		OutletID: outletID, ProductID: productAID, Quantity: decimal.NewFromInt(50),
	}
	s.levels[levelKey(outletID, productBID, "")] = &entity.StockLevel{
		OutletID: outletID, ProductID: productBID, Quantity: decimal.NewFromInt(30),
	}
	s.levels[levelKey(outletID, productAID, variantID)] = &entity.StockLevel{
		OutletID: outletID, ProductID: productAID, VariantID: variantID, Quantity: decimal.NewFromInt(10),
	}

	s.customers[customerID] = &entity.Customer{
		ID: customerID, Name: "María Pérez", DocumentID: "1020304050",
		CreditBalance: decimal.Zero, TotalSpent: decimal.Zero,
	}
	return s
}

type fixture struct {
	store   *memStore
	uc      *sale.CheckoutUseCase
	events  *capturedEvents
	accrual *fakeAccrual
	faults  *faults
}

func defaultConfig() sale.Config {
	return sale.Config{ReceiptPrefix: "POS", TaxRatePct: decimal.NewFromInt(11)}
}

func newFixture(t *testing.T, cfg sale.Config) *fixture {
	t.Helper()
	store := seedStore()
	flt := &faults{}
	events := &capturedEvents{}
	accrual := &fakeAccrual{}
	uc := sale.NewCheckoutUseCase(
		&fakeTxRunner{store: store, faults: flt},
		stock.NewLedgerUseCase(nil, nil, nil, nil),
		&fakeProductRepo{s: store},
		&fakeCustomerRepo{s: store},
		&fakeShiftRepo{s: store},
		&fakeLevelRepo{s: store},
		accrual,
		events,
		fiscal.NewCudeCalculatorService(),
		cfg,
		logger.New(logger.Config{Env: "production", Level: "error"}),
	)
	return &fixture{store: store, uc: uc, events: events, accrual: accrual, faults: flt}
}

func itemReq(productID string, qty int64) dto.SaleItemRequest {
	return dto.SaleItemRequest{ProductID: productID, Quantity: decimal.NewFromInt(qty)}
}

func cashPayment(amount int64) dto.SalePaymentRequest {
	return dto.SalePaymentRequest{Method: entity.PaymentMethodCash, Amount: decimal.NewFromInt(amount)}
}

// saleRequest venta de referencia: 2 unidades de A más 1 de B.
func saleRequest(payments ...dto.SalePaymentRequest) *dto.CreateSaleRequest {
	return &dto.CreateSaleRequest{
		OutletID: outletID,
		ShiftID:  shiftID,
		Items:    []dto.SaleItemRequest{itemReq(productAID, 2), itemReq(productBID, 1)},
		Payments: payments,
	}
}

func eqDec(t *testing.T, want int64, got decimal.Decimal, msg string) {
	t.Helper()
	assert.True(t, got.Equal(decimal.NewFromInt(want)), "%s: esperado %d, obtenido %s", msg, want, got)
}

func levelQty(s *memStore, productID, varID string) decimal.Decimal {
	if lv, ok := s.levels[levelKey(outletID, productID, varID)]; ok {
		return lv.Quantity
	}
	return decimal.Zero
}

// ──────────────────────────────────────────────────────────────────────────────
// Venta de contado
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: venta de contado 2×25.000 + 1×15.000 con IVA 11% → subtotal 65.000,
// impuesto 7.150, total 72.150, estado completed, inventario descontado y un
// movimiento de tipo sale por línea.
func TestCreateSale_EscenarioContado(t *testing.T) {
	f := newFixture(t, defaultConfig())

	resp, err := f.uc.CreateSale(context.Background(), cashierID, saleRequest(cashPayment(72_150)))
	require.NoError(t, err)

	eqDec(t, 65_000, resp.Subtotal, "subtotal")
	eqDec(t, 7_150, resp.TaxAmount, "impuesto")
	eqDec(t, 72_150, resp.GrandTotal, "total")
	eqDec(t, 72_150, resp.PaidAmount, "pagado")
	assert.Equal(t, entity.SaleStatusCompleted, resp.Status)
	assert.True(t, strings.HasPrefix(resp.ReceiptNumber, "POS-"),
		"el número de recibo debe llevar el prefijo configurado: %s", resp.ReceiptNumber)
	assert.Empty(t, resp.CUDE, "sin NIT configurado la venta no lleva sello fiscal")
	require.Len(t, resp.Items, 2)
	eqDec(t, 50_000, resp.Items[0].LineTotal, "línea A")
	eqDec(t, 15_000, resp.Items[1].LineTotal, "línea B")

	eqDec(t, 48, levelQty(f.store, productAID, ""), "existencias de A tras la venta")
	eqDec(t, 29, levelQty(f.store, productBID, ""), "existencias de B tras la venta")

	require.Len(t, f.store.movements, 2, "un movimiento sale por línea con inventario")
	for _, m := range f.store.movements {
		assert.Equal(t, entity.MovementTypeSale, m.Type)
		assert.Equal(t, resp.ID, m.Reference, "el movimiento referencia la venta")
		assert.True(t, m.Quantity.IsNegative(), "la venta descuenta con delta negativo")
		assert.True(t, m.PreviousQuantity.Add(m.Quantity).Equal(m.NewQuantity),
			"previous + delta = new en el libro")
	}

	require.Len(t, f.events.byName(event.NameSaleCreated), 1)
	assert.Len(t, f.events.byName(event.NameStockLevelChanged), 2)
}

// Caso 2: la venta con cliente incrementa rollups y dispara la acumulación de
// puntos después del commit.
func TestCreateSale_ConClienteAcumulaYRollup(t *testing.T) {
	f := newFixture(t, defaultConfig())
	req := saleRequest(cashPayment(72_150))
	req.CustomerID = customerID

	resp, err := f.uc.CreateSale(context.Background(), cashierID, req)
	require.NoError(t, err)

	cust := f.store.customers[customerID]
	eqDec(t, 72_150, cust.TotalSpent, "totalSpent")
	assert.Equal(t, int64(1), cust.VisitCount)
	assert.True(t, cust.CreditBalance.IsZero(), "venta de contado no genera deuda")

	require.Len(t, f.accrual.calls, 1, "la acumulación se dispara una vez")
	assert.Equal(t, customerID, f.accrual.calls[0].customerID)
	assert.Equal(t, resp.ID, f.accrual.calls[0].saleID)
	eqDec(t, 72_150, f.accrual.calls[0].amount, "monto acumulable")
}

// Caso 3: producto sin control de inventario no genera movimientos ni toca
// existencias.
func TestCreateSale_ProductoSinInventario(t *testing.T) {
	f := newFixture(t, defaultConfig())
	req := &dto.CreateSaleRequest{
		OutletID: outletID,
		ShiftID:  shiftID,
		Items:    []dto.SaleItemRequest{itemReq(untrackedID, 1)},
		Payments: []dto.SalePaymentRequest{cashPayment(5_550)},
	}

	resp, err := f.uc.CreateSale(context.Background(), cashierID, req)
	require.NoError(t, err)
	eqDec(t, 5_550, resp.GrandTotal, "5.000 + 11% = 5.550")
	assert.Empty(t, f.store.movements, "sin control de inventario no hay libro")
}

// Caso 4: la variante aporta su propio precio y su nombre queda congelado en
// la línea.
func TestCreateSale_PrecioDeVariante(t *testing.T) {
	f := newFixture(t, defaultConfig())
	item := itemReq(productAID, 1)
	item.VariantID = variantID
	req := &dto.CreateSaleRequest{
		OutletID: outletID,
		ShiftID:  shiftID,
		Items:    []dto.SaleItemRequest{item},
		Payments: []dto.SalePaymentRequest{cashPayment(29_970)},
	}

	resp, err := f.uc.CreateSale(context.Background(), cashierID, req)
	require.NoError(t, err)

	require.Len(t, resp.Items, 1)
	eqDec(t, 27_000, resp.Items[0].UnitPrice, "precio de la variante")
	assert.Equal(t, "Molido", resp.Items[0].VariantName)
	eqDec(t, 29_970, resp.GrandTotal, "27.000 + 11%")
	eqDec(t, 9, levelQty(f.store, productAID, variantID), "existencias de la variante")
	eqDec(t, 50, levelQty(f.store, productAID, ""), "el producto base no se toca")
}

// Caso 5: con NIT configurado cada venta sale con CUDE (SHA-384 en hex).
func TestCreateSale_SelloFiscalCUDE(t *testing.T) {
	cfg := defaultConfig()
	cfg.FiscalNIT = "900123456"
	cfg.SoftwarePin = "75315"
	cfg.Environment = "2"
	f := newFixture(t, cfg)

	resp, err := f.uc.CreateSale(context.Background(), cashierID, saleRequest(cashPayment(72_150)))
	require.NoError(t, err)

	require.Len(t, resp.CUDE, 96, "SHA-384 en hexadecimal son 96 caracteres")
	_, err = hex.DecodeString(resp.CUDE)
	assert.NoError(t, err, "el CUDE debe ser hexadecimal válido")
}

// ──────────────────────────────────────────────────────────────────────────────
// Validaciones previas
// ──────────────────────────────────────────────────────────────────────────────

// Caso 6: turno cerrado rechaza la venta sin escribir nada.
func TestCreateSale_TurnoCerradoRechaza(t *testing.T) {
	f := newFixture(t, defaultConfig())
	req := saleRequest(cashPayment(72_150))
	req.ShiftID = closedShiftID

	_, err := f.uc.CreateSale(context.Background(), cashierID, req)
	assert.ErrorIs(t, err, domain.ErrShiftNotOpen)
	assert.Empty(t, f.store.sales)
	eqDec(t, 50, levelQty(f.store, productAID, ""), "existencias intactas")
}

func TestCreateSale_TurnoInexistente(t *testing.T) {
	f := newFixture(t, defaultConfig())
	req := saleRequest(cashPayment(72_150))
	req.ShiftID = "99999999-0000-0000-0000-000000000000"

	_, err := f.uc.CreateSale(context.Background(), cashierID, req)
	assert.ErrorIs(t, err, domain.ErrShiftNotFound)
}

// Caso 7: el turno debe pertenecer al punto de venta de la petición.
func TestCreateSale_TurnoDeOtroOutletRechaza(t *testing.T) {
	f := newFixture(t, defaultConfig())
	req := saleRequest(cashPayment(72_150))
	req.OutletID = otherOutletID

	_, err := f.uc.CreateSale(context.Background(), cashierID, req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateSale_ProductoInactivoRechaza(t *testing.T) {
	f := newFixture(t, defaultConfig())
	req := &dto.CreateSaleRequest{
		OutletID: outletID,
		ShiftID:  shiftID,
		Items:    []dto.SaleItemRequest{itemReq(inactiveID, 1)},
	}

	_, err := f.uc.CreateSale(context.Background(), cashierID, req)
	assert.ErrorIs(t, err, domain.ErrProductInactive)
}

func TestCreateSale_ProductoInexistenteRechaza(t *testing.T) {
	f := newFixture(t, defaultConfig())
	req := &dto.CreateSaleRequest{
		OutletID: outletID,
		ShiftID:  shiftID,
		Items:    []dto.SaleItemRequest{itemReq("99999999-0000-0000-0000-000000000000", 1)},
	}

	_, err := f.uc.CreateSale(context.Background(), cashierID, req)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestCreateSale_MetodoPagoInvalido(t *testing.T) {
	f := newFixture(t, defaultConfig())
	req := saleRequest(dto.SalePaymentRequest{Method: "cheque", Amount: decimal.NewFromInt(72_150)})

	_, err := f.uc.CreateSale(context.Background(), cashierID, req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Caso 8: pagos por encima del total se rechazan; el cambio se maneja en caja,
// no en el registro.
func TestCreateSale_SobrepagoRechazado(t *testing.T) {
	f := newFixture(t, defaultConfig())

	_, err := f.uc.CreateSale(context.Background(), cashierID, saleRequest(cashPayment(80_000)))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, f.store.sales)
}

// ──────────────────────────────────────────────────────────────────────────────
// Existencias y atomicidad
// ──────────────────────────────────────────────────────────────────────────────

// Caso 9: pedir 60 con 50 disponibles falla rápido con el error tipado y sus
// cantidades, sin escribir nada.
func TestCreateSale_StockInsuficienteFallaRapido(t *testing.T) {
	f := newFixture(t, defaultConfig())
	req := &dto.CreateSaleRequest{
		OutletID: outletID,
		ShiftID:  shiftID,
		Items:    []dto.SaleItemRequest{itemReq(productAID, 60)},
	}

	_, err := f.uc.CreateSale(context.Background(), cashierID, req)

	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	eqDec(t, 50, insufficient.Available, "disponible reportado")
	eqDec(t, 60, insufficient.Requested, "solicitado reportado")

	assert.Empty(t, f.store.sales)
	assert.Empty(t, f.store.movements)
	eqDec(t, 50, levelQty(f.store, productAID, ""), "cantidad intacta")
}

// Caso 10: carrera perdida — otro cajero agota B entre la verificación previa
// y la transacción. La venta completa se revierte: ni el descuento de A ni la
// cabecera sobreviven.
func TestCreateSale_CarreraPerdidaReviertTodo(t *testing.T) {
	f := newFixture(t, defaultConfig())
	f.faults.beforeTx = func(s *memStore) {
		s.levels[levelKey(outletID, productBID, "")].Quantity = decimal.Zero
	}

	_, err := f.uc.CreateSale(context.Background(), cashierID, saleRequest(cashPayment(72_150)))

	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, productBID, insufficient.ProductID)

	eqDec(t, 50, levelQty(f.store, productAID, ""), "el descuento de A se revierte")
	assert.Empty(t, f.store.sales, "sin cabecera")
	assert.Empty(t, f.store.items, "sin líneas")
	assert.Empty(t, f.store.movements, "sin movimientos")
	assert.Empty(t, f.events.events, "sin eventos de una venta fallida")
}

// Caso 11: un fallo tardío (al insertar pagos) también revierte los descuentos
// de inventario ya aplicados dentro de la transacción.
func TestCreateSale_FalloTardioRevierteInventario(t *testing.T) {
	f := newFixture(t, defaultConfig())
	f.faults.paymentCreates = 1

	_, err := f.uc.CreateSale(context.Background(), cashierID, saleRequest(cashPayment(72_150)))
	require.Error(t, err)

	eqDec(t, 50, levelQty(f.store, productAID, ""), "A restaurado")
	eqDec(t, 30, levelQty(f.store, productBID, ""), "B restaurado")
	assert.Empty(t, f.store.sales)
	assert.Empty(t, f.store.movements)
}

// Caso 12: colisión del número de recibo — se regenera y reintenta; la venta
// termina registrada una sola vez, sin movimientos duplicados del intento
// fallido.
func TestCreateSale_ColisionReciboReintenta(t *testing.T) {
	f := newFixture(t, defaultConfig())
	f.faults.saleCreateDup = 1
	req := &dto.CreateSaleRequest{
		OutletID: outletID,
		ShiftID:  shiftID,
		Items:    []dto.SaleItemRequest{itemReq(productAID, 2)},
		Payments: []dto.SalePaymentRequest{cashPayment(55_500)},
	}

	resp, err := f.uc.CreateSale(context.Background(), cashierID, req)
	require.NoError(t, err, "la colisión debe reintentarse, no fallar la venta")

	assert.Len(t, f.store.sales, 1)
	assert.Len(t, f.store.movements, 1, "solo el intento exitoso deja movimiento")
	eqDec(t, 48, levelQty(f.store, productAID, ""), "el descuento aplica una sola vez")
	assert.NotEmpty(t, resp.ReceiptNumber)
}

// ──────────────────────────────────────────────────────────────────────────────
// Crédito
// ──────────────────────────────────────────────────────────────────────────────

// Caso 13: venta sin pagos con cliente → estado credit, cuenta por cobrar por
// el total y deuda reflejada en el cliente.
func TestCreateSale_CreditoSinAbono(t *testing.T) {
	f := newFixture(t, defaultConfig())
	req := saleRequest()
	req.CustomerID = customerID
	req.DueDate = "2026-09-30"

	resp, err := f.uc.CreateSale(context.Background(), cashierID, req)
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusCredit, resp.Status)

	require.Len(t, f.store.credits, 1)
	var credit *entity.CreditSale
	for _, c := range f.store.credits {
		credit = c
	}
	assert.Equal(t, resp.ID, credit.SaleID)
	assert.Equal(t, entity.CreditStatusOutstanding, credit.Status)
	eqDec(t, 72_150, credit.TotalAmount, "total fiado")
	eqDec(t, 0, credit.PaidAmount, "sin abono inicial")
	eqDec(t, 72_150, credit.OutstandingAmount, "todo pendiente")
	require.NotNil(t, credit.DueDate)

	cust := f.store.customers[customerID]
	eqDec(t, 72_150, cust.CreditBalance, "deuda viva del cliente")
	eqDec(t, 72_150, cust.TotalSpent, "rollup de compras")
	assert.Equal(t, int64(1), cust.VisitCount)
}

// Caso 14: abono inicial parcial → partially_paid con el saldo repartido.
func TestCreateSale_AbonoParcial(t *testing.T) {
	f := newFixture(t, defaultConfig())
	req := saleRequest(cashPayment(30_000))
	req.CustomerID = customerID

	resp, err := f.uc.CreateSale(context.Background(), cashierID, req)
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusPartiallyPaid, resp.Status)
	eqDec(t, 30_000, resp.PaidAmount, "abono inicial")

	var credit *entity.CreditSale
	for _, c := range f.store.credits {
		credit = c
	}
	require.NotNil(t, credit)
	assert.Equal(t, entity.CreditStatusPartiallyPaid, credit.Status)
	eqDec(t, 30_000, credit.PaidAmount, "abonado")
	eqDec(t, 42_150, credit.OutstandingAmount, "pendiente")
	eqDec(t, 42_150, f.store.customers[customerID].CreditBalance, "solo lo pendiente es deuda")
}

// Caso 15: saldo pendiente sin cliente no es registrable.
func TestCreateSale_CreditoSinClienteRechaza(t *testing.T) {
	f := newFixture(t, defaultConfig())

	_, err := f.uc.CreateSale(context.Background(), cashierID, saleRequest(cashPayment(10_000)))
	assert.ErrorIs(t, err, domain.ErrCustomerRequired)
	assert.Empty(t, f.store.sales)
}

// Caso 16: CreateCreditSale exige cliente, vencimiento y saldo por cobrar.
func TestCreateCreditSale_Validaciones(t *testing.T) {
	f := newFixture(t, defaultConfig())

	req := saleRequest()
	_, err := f.uc.CreateCreditSale(context.Background(), cashierID, req)
	assert.ErrorIs(t, err, domain.ErrCustomerRequired, "sin cliente")

	req = saleRequest()
	req.CustomerID = customerID
	_, err = f.uc.CreateCreditSale(context.Background(), cashierID, req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin fecha de vencimiento")

	req = saleRequest(cashPayment(72_150))
	req.CustomerID = customerID
	req.DueDate = "2026-09-30"
	_, err = f.uc.CreateCreditSale(context.Background(), cashierID, req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "pagada por completo no es crédito")
}

// ──────────────────────────────────────────────────────────────────────────────
// Efectos post-commit
// ──────────────────────────────────────────────────────────────────────────────

// Caso 17: si la acumulación de puntos falla después del commit, la venta
// queda firme de todas formas.
func TestCreateSale_AcumulacionFallaNoRevierte(t *testing.T) {
	f := newFixture(t, defaultConfig())
	f.accrual.err = errBoom
	req := saleRequest(cashPayment(72_150))
	req.CustomerID = customerID

	resp, err := f.uc.CreateSale(context.Background(), cashierID, req)
	require.NoError(t, err, "el fallo post-commit no invalida la venta")

	stored := f.store.sales[resp.ID]
	require.NotNil(t, stored, "la venta sigue registrada")
	assert.Equal(t, entity.SaleStatusCompleted, stored.Status)
	eqDec(t, 48, levelQty(f.store, productAID, ""), "el inventario no se repone")
}
