package sale_test

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Pos-api/internal/domain"
	"github.com/jhoicas/Pos-api/internal/domain/entity"
	"github.com/jhoicas/Pos-api/internal/domain/event"
	"github.com/jhoicas/Pos-api/internal/domain/repository"
)

// errBoom fallo inyectado para probar rollback.
var errBoom = errors.New("fallo inyectado")

// ──────────────────────────────────────────────────────────────────────────────
// Almacén en memoria compartido por los repositorios falsos
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	levels    map[string]*entity.StockLevel
	movements []*entity.StockMovement
	sales     map[string]*entity.Sale
	items     []*entity.SaleItem
	payments  []*entity.SalePayment
	credits   map[string]*entity.CreditSale
	customers map[string]*entity.Customer
	products  map[string]*entity.Product
	variants  map[string]*entity.ProductVariant
	shifts    map[string]*entity.Shift
	receipts  map[string]bool
}

func newMemStore() *memStore {
	return &memStore{
		levels:    map[string]*entity.StockLevel{},
		sales:     map[string]*entity.Sale{},
		credits:   map[string]*entity.CreditSale{},
		customers: map[string]*entity.Customer{},
		products:  map[string]*entity.Product{},
		variants:  map[string]*entity.ProductVariant{},
		shifts:    map[string]*entity.Shift{},
		receipts:  map[string]bool{},
	}
}

func levelKey(outletID, productID, variantID string) string {
	return outletID + "|" + productID + "|" + variantID
}

// clone copia el estado completo; las entradas append-only (movimientos,
// líneas, pagos) nunca se mutan y se copian como slice.
func (s *memStore) clone() *memStore {
	c := newMemStore()
	for k, v := range s.levels {
		cp := *v
		c.levels[k] = &cp
	}
	c.movements = append([]*entity.StockMovement(nil), s.movements...)
	for k, v := range s.sales {
		cp := *v
		c.sales[k] = &cp
	}
	c.items = append([]*entity.SaleItem(nil), s.items...)
	c.payments = append([]*entity.SalePayment(nil), s.payments...)
	for k, v := range s.credits {
		cp := *v
		c.credits[k] = &cp
	}
	for k, v := range s.customers {
		cp := *v
		c.customers[k] = &cp
	}
	for k, v := range s.products {
		cp := *v
		c.products[k] = &cp
	}
	for k, v := range s.variants {
		cp := *v
		c.variants[k] = &cp
	}
	for k, v := range s.shifts {
		cp := *v
		c.shifts[k] = &cp
	}
	for k := range s.receipts {
		c.receipts[k] = true
	}
	return c
}

func (s *memStore) restore(snap *memStore) {
	s.levels = snap.levels
	s.movements = snap.movements
	s.sales = snap.sales
	s.items = snap.items
	s.payments = snap.payments
	s.credits = snap.credits
	s.customers = snap.customers
	s.products = snap.products
	s.variants = snap.variants
	s.shifts = snap.shifts
	s.receipts = snap.receipts
}

// faults inyecta fallos puntuales para probar rollback y reintentos.
// Los contadores viven fuera del almacén: un rollback no los restaura.
type faults struct {
	saleCreateDup  int             // próximos Create de venta fallan con ErrDuplicate
	paymentCreates int             // próximos CreatePayment fallan con error genérico
	beforeTx       func(*memStore) // se ejecuta una sola vez al abrir la siguiente transacción
}

// fakeTxRunner simula la unidad atómica con snapshot/restore: si el cierre
// falla, el almacén vuelve exactamente al estado previo.
type fakeTxRunner struct {
	store  *memStore
	faults *faults
}

func (tr *fakeTxRunner) RunSale(ctx context.Context, fn func(
	repository.StockLevelRepository,
	repository.StockMovementRepository,
	repository.SaleRepository,
	repository.CreditSaleRepository,
	repository.CustomerRepository,
) error) error {
	if tr.faults.beforeTx != nil {
		hook := tr.faults.beforeTx
		tr.faults.beforeTx = nil
		hook(tr.store)
	}
	snap := tr.store.clone()
	err := fn(
		&fakeLevelRepo{s: tr.store},
		&fakeMovementRepo{s: tr.store},
		&fakeSaleRepo{s: tr.store, faults: tr.faults},
		&fakeCreditRepo{s: tr.store},
		&fakeCustomerRepo{s: tr.store},
	)
	if err != nil {
		tr.store.restore(snap)
	}
	return err
}

// ──────────────────────────────────────────────────────────────────────────────
// Repositorios falsos
// ──────────────────────────────────────────────────────────────────────────────

type fakeLevelRepo struct{ s *memStore }

var _ repository.StockLevelRepository = (*fakeLevelRepo)(nil)

func (r *fakeLevelRepo) Get(outletID, productID, variantID string) (*entity.StockLevel, error) {
	if lv, ok := r.s.levels[levelKey(outletID, productID, variantID)]; ok {
		cp := *lv
		return &cp, nil
	}
	return &entity.StockLevel{OutletID: outletID, ProductID: productID, VariantID: variantID, Quantity: decimal.Zero}, nil
}

func (r *fakeLevelRepo) EnsureRow(outletID, productID, variantID string) error {
	k := levelKey(outletID, productID, variantID)
	if _, ok := r.s.levels[k]; !ok {
		r.s.levels[k] = &entity.StockLevel{OutletID: outletID, ProductID: productID, VariantID: variantID, Quantity: decimal.Zero}
	}
	return nil
}

func (r *fakeLevelRepo) GetForUpdate(outletID, productID, variantID string) (*entity.StockLevel, error) {
	return r.Get(outletID, productID, variantID)
}

func (r *fakeLevelRepo) ApplyDelta(outletID, productID, variantID string, delta decimal.Decimal) (decimal.Decimal, error) {
	lv, ok := r.s.levels[levelKey(outletID, productID, variantID)]
	if !ok {
		return decimal.Zero, domain.ErrNotFound
	}
	next := lv.Quantity.Add(delta)
	if next.IsNegative() {
		return decimal.Zero, domain.ErrInsufficientStock
	}
	lv.Quantity = next
	return next, nil
}

func (r *fakeLevelRepo) SetAlertThreshold(outletID, productID, variantID string, threshold decimal.Decimal) error {
	if lv, ok := r.s.levels[levelKey(outletID, productID, variantID)]; ok {
		lv.LowStockAlert = threshold
	}
	return nil
}

func (r *fakeLevelRepo) ListByOutlet(outletID string, limit, offset int) ([]*entity.StockLevel, error) {
	var out []*entity.StockLevel
	for _, lv := range r.s.levels {
		if lv.OutletID == outletID {
			cp := *lv
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeLevelRepo) ListLowStock(outletID string) ([]*entity.StockLevel, error) {
	var out []*entity.StockLevel
	for _, lv := range r.s.levels {
		if lv.OutletID == outletID && !lv.LowStockAlert.IsZero() && lv.Quantity.LessThanOrEqual(lv.LowStockAlert) {
			cp := *lv
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeLevelRepo) ListDiscrepancies(outletID string) ([]*repository.StockDiscrepancy, error) {
	var out []*repository.StockDiscrepancy
	for _, lv := range r.s.levels {
		if lv.OutletID != outletID {
			continue
		}
		sum := decimal.Zero
		for _, m := range r.s.movements {
			if m.OutletID == lv.OutletID && m.ProductID == lv.ProductID && m.VariantID == lv.VariantID {
				sum = sum.Add(m.Quantity)
			}
		}
		if !sum.Equal(lv.Quantity) {
			out = append(out, &repository.StockDiscrepancy{
				OutletID:      lv.OutletID,
				ProductID:     lv.ProductID,
				VariantID:     lv.VariantID,
				LevelQuantity: lv.Quantity,
				MovementSum:   sum,
			})
		}
	}
	return out, nil
}

type fakeMovementRepo struct{ s *memStore }

var _ repository.StockMovementRepository = (*fakeMovementRepo)(nil)

func (r *fakeMovementRepo) Create(m *entity.StockMovement) error {
	cp := *m
	r.s.movements = append(r.s.movements, &cp)
	return nil
}

func (r *fakeMovementRepo) GetByID(id string) (*entity.StockMovement, error) {
	for _, m := range r.s.movements {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeMovementRepo) ListByOutlet(outletID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for _, m := range r.s.movements {
		if m.OutletID == outletID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMovementRepo) ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for _, m := range r.s.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMovementRepo) ListByReference(reference string) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for _, m := range r.s.movements {
		if m.Reference == reference {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeSaleRepo struct {
	s      *memStore
	faults *faults
}

var _ repository.SaleRepository = (*fakeSaleRepo)(nil)

func (r *fakeSaleRepo) Create(sale *entity.Sale) error {
	if r.faults != nil && r.faults.saleCreateDup > 0 {
		r.faults.saleCreateDup--
		return domain.ErrDuplicate
	}
	if r.s.receipts[sale.ReceiptNumber] {
		return domain.ErrDuplicate
	}
	cp := *sale
	r.s.sales[sale.ID] = &cp
	r.s.receipts[sale.ReceiptNumber] = true
	return nil
}

func (r *fakeSaleRepo) CreateItem(item *entity.SaleItem) error {
	cp := *item
	r.s.items = append(r.s.items, &cp)
	return nil
}

func (r *fakeSaleRepo) CreatePayment(payment *entity.SalePayment) error {
	if r.faults != nil && r.faults.paymentCreates > 0 {
		r.faults.paymentCreates--
		return errBoom
	}
	cp := *payment
	r.s.payments = append(r.s.payments, &cp)
	return nil
}

func (r *fakeSaleRepo) GetByID(id string) (*entity.Sale, error) {
	if s, ok := r.s.sales[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeSaleRepo) GetByReceiptNumber(receiptNumber string) (*entity.Sale, error) {
	for _, s := range r.s.sales {
		if s.ReceiptNumber == receiptNumber {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeSaleRepo) GetWithDetails(id string) (*entity.Sale, error) {
	s, err := r.GetByID(id)
	if err != nil || s == nil {
		return s, err
	}
	for _, it := range r.s.items {
		if it.SaleID == id {
			s.Items = append(s.Items, *it)
		}
	}
	for _, p := range r.s.payments {
		if p.SaleID == id {
			s.Payments = append(s.Payments, *p)
		}
	}
	return s, nil
}

func (r *fakeSaleRepo) GetForUpdate(id string) (*entity.Sale, error) {
	return r.GetByID(id)
}

func (r *fakeSaleRepo) UpdateStatus(id, status, voidReason, voidedBy string, voidedAt *time.Time) error {
	s, ok := r.s.sales[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.Status = status
	s.VoidReason = voidReason
	s.VoidedBy = voidedBy
	s.VoidedAt = voidedAt
	return nil
}

func (r *fakeSaleRepo) ListByShift(shiftID string, limit, offset int) ([]*entity.Sale, error) {
	var out []*entity.Sale
	for _, s := range r.s.sales {
		if s.ShiftID == shiftID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeSaleRepo) ListByCustomer(customerID string, limit, offset int) ([]*entity.Sale, error) {
	var out []*entity.Sale
	for _, s := range r.s.sales {
		if s.CustomerID == customerID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeSaleRepo) ListByOutlet(outletID string, from, to *time.Time, limit, offset int) ([]*entity.Sale, error) {
	var out []*entity.Sale
	for _, s := range r.s.sales {
		if s.OutletID == outletID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func saleAlive(status string) bool {
	return status != entity.SaleStatusVoided && status != entity.SaleStatusRefunded
}

func (r *fakeSaleRepo) SumCashPaymentsByShift(shiftID string) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, p := range r.s.payments {
		if p.Method != entity.PaymentMethodCash {
			continue
		}
		s, ok := r.s.sales[p.SaleID]
		if ok && s.ShiftID == shiftID && saleAlive(s.Status) {
			sum = sum.Add(p.Amount)
		}
	}
	return sum, nil
}

func (r *fakeSaleRepo) GetCustomerTotals(customerID string) (*repository.CustomerSalesTotals, error) {
	totals := &repository.CustomerSalesTotals{TotalSpent: decimal.Zero}
	for _, s := range r.s.sales {
		if s.CustomerID == customerID && saleAlive(s.Status) {
			totals.TotalSpent = totals.TotalSpent.Add(s.GrandTotal)
			totals.VisitCount++
		}
	}
	return totals, nil
}

type fakeCreditRepo struct{ s *memStore }

var _ repository.CreditSaleRepository = (*fakeCreditRepo)(nil)

func (r *fakeCreditRepo) Create(credit *entity.CreditSale) error {
	cp := *credit
	r.s.credits[credit.ID] = &cp
	return nil
}

func (r *fakeCreditRepo) GetByID(id string) (*entity.CreditSale, error) {
	if c, ok := r.s.credits[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeCreditRepo) GetForUpdate(id string) (*entity.CreditSale, error) {
	return r.GetByID(id)
}

func (r *fakeCreditRepo) GetBySaleID(saleID string) (*entity.CreditSale, error) {
	for _, c := range r.s.credits {
		if c.SaleID == saleID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeCreditRepo) Update(credit *entity.CreditSale) error {
	if _, ok := r.s.credits[credit.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *credit
	r.s.credits[credit.ID] = &cp
	return nil
}

func (r *fakeCreditRepo) CreatePayment(payment *entity.CreditPayment) error { return nil }

func (r *fakeCreditRepo) ListPayments(creditSaleID string) ([]*entity.CreditPayment, error) {
	return nil, nil
}

func (r *fakeCreditRepo) ListByCustomer(customerID string, limit, offset int) ([]*entity.CreditSale, error) {
	var out []*entity.CreditSale
	for _, c := range r.s.credits {
		if c.CustomerID == customerID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeCreditRepo) ListOutstanding(limit, offset int) ([]*entity.CreditSale, error) {
	var out []*entity.CreditSale
	for _, c := range r.s.credits {
		if c.Status != entity.CreditStatusSettled {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeCreditRepo) SumOutstandingByCustomer(customerID string) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, c := range r.s.credits {
		if c.CustomerID != customerID {
			continue
		}
		if parent, ok := r.s.sales[c.SaleID]; ok && !saleAlive(parent.Status) {
			continue
		}
		sum = sum.Add(c.OutstandingAmount)
	}
	return sum, nil
}

type fakeCustomerRepo struct{ s *memStore }

var _ repository.CustomerRepository = (*fakeCustomerRepo)(nil)

func (r *fakeCustomerRepo) Create(c *entity.Customer) error {
	cp := *c
	r.s.customers[c.ID] = &cp
	return nil
}

func (r *fakeCustomerRepo) GetByID(id string) (*entity.Customer, error) {
	if c, ok := r.s.customers[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeCustomerRepo) GetByDocument(documentID string) (*entity.Customer, error) {
	for _, c := range r.s.customers {
		if c.DocumentID == documentID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeCustomerRepo) List(limit, offset int) ([]*entity.Customer, error) { return nil, nil }

func (r *fakeCustomerRepo) Update(c *entity.Customer) error {
	cp := *c
	r.s.customers[c.ID] = &cp
	return nil
}

func (r *fakeCustomerRepo) Delete(id string) error {
	delete(r.s.customers, id)
	return nil
}

func (r *fakeCustomerRepo) IncrementSaleRollup(customerID string, amount decimal.Decimal) error {
	c, ok := r.s.customers[customerID]
	if !ok {
		return domain.ErrNotFound
	}
	c.TotalSpent = c.TotalSpent.Add(amount)
	c.VisitCount++
	return nil
}

func (r *fakeCustomerRepo) ReverseSaleRollup(customerID string, amount decimal.Decimal) error {
	c, ok := r.s.customers[customerID]
	if !ok {
		return domain.ErrNotFound
	}
	c.TotalSpent = c.TotalSpent.Sub(amount)
	c.VisitCount--
	return nil
}

func (r *fakeCustomerRepo) IncrementCreditBalance(customerID string, delta decimal.Decimal) error {
	c, ok := r.s.customers[customerID]
	if !ok {
		return domain.ErrNotFound
	}
	c.CreditBalance = c.CreditBalance.Add(delta)
	return nil
}

func (r *fakeCustomerRepo) AddLoyaltyPoints(customerID string, delta int64, guard bool) (int64, error) {
	c, ok := r.s.customers[customerID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	next := c.LoyaltyPoints + delta
	if guard && next < 0 {
		return 0, domain.ErrInsufficientPoints
	}
	c.LoyaltyPoints = next
	return next, nil
}

func (r *fakeCustomerRepo) UpdateLoyaltyTier(customerID, tier string) error {
	c, ok := r.s.customers[customerID]
	if !ok {
		return domain.ErrNotFound
	}
	c.LoyaltyTier = tier
	return nil
}

func (r *fakeCustomerRepo) SetRollups(c *entity.Customer) error {
	stored, ok := r.s.customers[c.ID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.CreditBalance = c.CreditBalance
	stored.TotalSpent = c.TotalSpent
	stored.VisitCount = c.VisitCount
	stored.LoyaltyPoints = c.LoyaltyPoints
	stored.LoyaltyTier = c.LoyaltyTier
	return nil
}

type fakeProductRepo struct{ s *memStore }

var _ repository.ProductRepository = (*fakeProductRepo)(nil)

func (r *fakeProductRepo) Create(p *entity.Product) error {
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) GetByID(id string) (*entity.Product, error) {
	if p, ok := r.s.products[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeProductRepo) GetBySKU(sku string) (*entity.Product, error) {
	for _, p := range r.s.products {
		if p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) GetWithVariants(id string) (*entity.Product, error) {
	p, err := r.GetByID(id)
	if err != nil || p == nil {
		return p, err
	}
	for _, v := range r.s.variants {
		if v.ProductID == id {
			p.Variants = append(p.Variants, *v)
		}
	}
	return p, nil
}

func (r *fakeProductRepo) Update(p *entity.Product) error {
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) List(limit, offset int) ([]*entity.Product, error) { return nil, nil }

func (r *fakeProductRepo) Delete(id string) error {
	delete(r.s.products, id)
	return nil
}

func (r *fakeProductRepo) CreateVariant(v *entity.ProductVariant) error {
	cp := *v
	r.s.variants[v.ID] = &cp
	return nil
}

func (r *fakeProductRepo) GetVariantByID(id string) (*entity.ProductVariant, error) {
	if v, ok := r.s.variants[id]; ok {
		cp := *v
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeProductRepo) UpdateVariant(v *entity.ProductVariant) error {
	cp := *v
	r.s.variants[v.ID] = &cp
	return nil
}

func (r *fakeProductRepo) ListVariants(productID string) ([]*entity.ProductVariant, error) {
	var out []*entity.ProductVariant
	for _, v := range r.s.variants {
		if v.ProductID == productID {
			cp := *v
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeShiftRepo struct{ s *memStore }

var _ repository.ShiftRepository = (*fakeShiftRepo)(nil)

func (r *fakeShiftRepo) Create(sh *entity.Shift) error {
	cp := *sh
	r.s.shifts[sh.ID] = &cp
	return nil
}

func (r *fakeShiftRepo) GetByID(id string) (*entity.Shift, error) {
	if sh, ok := r.s.shifts[id]; ok {
		cp := *sh
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeShiftRepo) GetOpenByOutletAndUser(outletID, userID string) (*entity.Shift, error) {
	for _, sh := range r.s.shifts {
		if sh.OutletID == outletID && sh.UserID == userID && sh.Status == entity.ShiftStatusOpen {
			cp := *sh
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeShiftRepo) Update(sh *entity.Shift) error {
	cp := *sh
	r.s.shifts[sh.ID] = &cp
	return nil
}

func (r *fakeShiftRepo) ListByOutlet(outletID string, limit, offset int) ([]*entity.Shift, error) {
	var out []*entity.Shift
	for _, sh := range r.s.shifts {
		if sh.OutletID == outletID {
			cp := *sh
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Colaboradores post-commit falsos
// ──────────────────────────────────────────────────────────────────────────────

type capturedEvents struct{ events []event.Event }

func (p *capturedEvents) Publish(evt event.Event) { p.events = append(p.events, evt) }

func (p *capturedEvents) byName(name string) []event.Event {
	var out []event.Event
	for _, e := range p.events {
		if e.EventName() == name {
			out = append(out, e)
		}
	}
	return out
}

type accrualCall struct {
	customerID string
	saleID     string
	amount     decimal.Decimal
}

type fakeAccrual struct {
	calls []accrualCall
	err   error
}

func (a *fakeAccrual) EarnOnSale(ctx context.Context, customerID, saleID string, amount decimal.Decimal) error {
	a.calls = append(a.calls, accrualCall{customerID: customerID, saleID: saleID, amount: amount})
	return a.err
}
