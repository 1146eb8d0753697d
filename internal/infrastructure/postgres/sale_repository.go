package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Pos-api/internal/domain"
	"github.com/jhoicas/Pos-api/internal/domain/entity"
	"github.com/jhoicas/Pos-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementación de SaleRepository sobre PostgreSQL (usable con pool
// o tx). Líneas y pagos son append-only; la cabecera solo cambia de estado.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador de ventas. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

const saleColumns = `id, outlet_id, shift_id, employee_id, customer_id, receipt_number, status,
	       subtotal, discount_amount, tax_amount, service_charge, grand_total, paid_amount,
	       note, cude, void_reason, voided_by, voided_at, created_at, updated_at`

// Create inserta la cabecera de la venta. Si el número de recibo ya existe
// (índice único) retorna ErrDuplicate para que el llamador regenere y reintente.
func (r *SaleRepo) Create(sale *entity.Sale) error {
	if sale.ID == "" {
		sale.ID = uuid.New().String()
	}
	query := `
		INSERT INTO sales (id, outlet_id, shift_id, employee_id, customer_id, receipt_number, status,
			subtotal, discount_amount, tax_amount, service_charge, grand_total, paid_amount,
			note, cude, void_reason, voided_by, voided_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
	_, err := r.q.Exec(context.Background(), query,
		sale.ID, sale.OutletID, sale.ShiftID, sale.EmployeeID, nullIfEmpty(sale.CustomerID),
		sale.ReceiptNumber, sale.Status,
		sale.Subtotal, sale.DiscountAmount, sale.TaxAmount, sale.ServiceCharge, sale.GrandTotal, sale.PaidAmount,
		sale.Note, sale.CUDE, nullIfEmpty(sale.VoidReason), nullIfEmpty(sale.VoidedBy), sale.VoidedAt,
		sale.CreatedAt, sale.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

// CreateItem persiste una línea de la venta.
func (r *SaleRepo) CreateItem(item *entity.SaleItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	query := `
		INSERT INTO sale_items (id, sale_id, product_id, variant_id, product_name, variant_name, quantity, unit_price, item_discount, line_total, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.SaleID, item.ProductID, nullIfEmpty(item.VariantID),
		item.ProductName, item.VariantName, item.Quantity, item.UnitPrice, item.ItemDiscount, item.LineTotal,
		item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert sale item: %w", err)
	}
	return nil
}

// CreatePayment persiste un pago de la venta.
func (r *SaleRepo) CreatePayment(payment *entity.SalePayment) error {
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	query := `
		INSERT INTO sale_payments (id, sale_id, method, amount, reference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(context.Background(), query,
		payment.ID, payment.SaleID, payment.Method, payment.Amount, payment.Reference, payment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert sale payment: %w", err)
	}
	return nil
}

// GetByID obtiene la cabecera de una venta por ID.
func (r *SaleRepo) GetByID(id string) (*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE id = $1`
	return r.scanSale(r.q.QueryRow(context.Background(), query, id))
}

// GetByReceiptNumber obtiene la cabecera por número de recibo.
func (r *SaleRepo) GetByReceiptNumber(receiptNumber string) (*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE receipt_number = $1`
	return r.scanSale(r.q.QueryRow(context.Background(), query, receiptNumber))
}

// GetForUpdate bloquea la cabecera para cambios de estado (SELECT FOR UPDATE).
func (r *SaleRepo) GetForUpdate(id string) (*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE id = $1 FOR UPDATE`
	return r.scanSale(r.q.QueryRow(context.Background(), query, id))
}

// GetWithDetails carga cabecera, líneas y pagos de la venta.
func (r *SaleRepo) GetWithDetails(id string) (*entity.Sale, error) {
	sale, err := r.GetByID(id)
	if err != nil || sale == nil {
		return sale, err
	}

	itemsQuery := `
		SELECT id, sale_id, product_id, variant_id, product_name, variant_name, quantity, unit_price, item_discount, line_total, created_at
		FROM sale_items WHERE sale_id = $1 ORDER BY created_at, id`
	rows, err := r.q.Query(context.Background(), itemsQuery, id)
	if err != nil {
		return nil, fmt.Errorf("list sale items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.SaleItem
		var variantID *string
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &variantID, &it.ProductName, &it.VariantName,
			&it.Quantity, &it.UnitPrice, &it.ItemDiscount, &it.LineTotal, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		it.VariantID = derefStr(variantID)
		sale.Items = append(sale.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	paymentsQuery := `
		SELECT id, sale_id, method, amount, reference, created_at
		FROM sale_payments WHERE sale_id = $1 ORDER BY created_at, id`
	prows, err := r.q.Query(context.Background(), paymentsQuery, id)
	if err != nil {
		return nil, fmt.Errorf("list sale payments: %w", err)
	}
	defer prows.Close()
	for prows.Next() {
		var p entity.SalePayment
		if err := prows.Scan(&p.ID, &p.SaleID, &p.Method, &p.Amount, &p.Reference, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan sale payment: %w", err)
		}
		sale.Payments = append(sale.Payments, p)
	}
	return sale, prows.Err()
}

// UpdateStatus fija el estado de la venta y, si aplica, los datos de anulación.
// Los campos de anulación solo se escriben cuando vienen con valor.
func (r *SaleRepo) UpdateStatus(id, status, voidReason, voidedBy string, voidedAt *time.Time) error {
	query := `
		UPDATE sales
		SET status      = $2,
		    void_reason = COALESCE($3, void_reason),
		    voided_by   = COALESCE($4, voided_by),
		    voided_at   = COALESCE($5, voided_at),
		    updated_at  = now()
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		id, status, nullIfEmpty(voidReason), nullIfEmpty(voidedBy), voidedAt,
	)
	if err != nil {
		return fmt.Errorf("update sale status: %w", err)
	}
	return nil
}

// ListByShift lista ventas de un turno con paginación.
func (r *SaleRepo) ListByShift(shiftID string, limit, offset int) ([]*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE shift_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.listSales(query, shiftID, limit, offset)
}

// ListByCustomer lista ventas de un cliente con paginación.
func (r *SaleRepo) ListByCustomer(customerID string, limit, offset int) ([]*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE customer_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.listSales(query, customerID, limit, offset)
}

// ListByOutlet lista ventas de un punto de venta en un rango de fechas.
func (r *SaleRepo) ListByOutlet(outletID string, from, to *time.Time, limit, offset int) ([]*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE outlet_id = $1`
	args := []any{outletID}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	return r.listSales(query, args...)
}

// SumCashPaymentsByShift suma los pagos en efectivo de las ventas no anuladas
// del turno (cierre de caja).
func (r *SaleRepo) SumCashPaymentsByShift(shiftID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(p.amount), 0)
		FROM sale_payments p
		JOIN sales s ON s.id = p.sale_id
		WHERE s.shift_id = $1 AND p.method = 'cash' AND s.status NOT IN ('voided', 'refunded')`
	var sum decimal.Decimal
	if err := r.q.QueryRow(context.Background(), query, shiftID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum cash payments: %w", err)
	}
	return sum, nil
}

// GetCustomerTotals agrega gasto total y número de visitas desde las ventas no
// anuladas del cliente (recomputación de rollups).
func (r *SaleRepo) GetCustomerTotals(customerID string) (*repository.CustomerSalesTotals, error) {
	query := `
		SELECT COALESCE(SUM(grand_total), 0), COUNT(*)
		FROM sales WHERE customer_id = $1 AND status NOT IN ('voided', 'refunded')`
	var t repository.CustomerSalesTotals
	if err := r.q.QueryRow(context.Background(), query, customerID).Scan(&t.TotalSpent, &t.VisitCount); err != nil {
		return nil, fmt.Errorf("get customer sale totals: %w", err)
	}
	return &t, nil
}

func (r *SaleRepo) scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	var customerID, voidReason, voidedBy *string
	err := row.Scan(
		&s.ID, &s.OutletID, &s.ShiftID, &s.EmployeeID, &customerID, &s.ReceiptNumber, &s.Status,
		&s.Subtotal, &s.DiscountAmount, &s.TaxAmount, &s.ServiceCharge, &s.GrandTotal, &s.PaidAmount,
		&s.Note, &s.CUDE, &voidReason, &voidedBy, &s.VoidedAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	s.CustomerID = derefStr(customerID)
	s.VoidReason = derefStr(voidReason)
	s.VoidedBy = derefStr(voidedBy)
	return &s, nil
}

func (r *SaleRepo) listSales(query string, args ...any) ([]*entity.Sale, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()
	var list []*entity.Sale
	for rows.Next() {
		var s entity.Sale
		var customerID, voidReason, voidedBy *string
		if err := rows.Scan(
			&s.ID, &s.OutletID, &s.ShiftID, &s.EmployeeID, &customerID, &s.ReceiptNumber, &s.Status,
			&s.Subtotal, &s.DiscountAmount, &s.TaxAmount, &s.ServiceCharge, &s.GrandTotal, &s.PaidAmount,
			&s.Note, &s.CUDE, &voidReason, &voidedBy, &s.VoidedAt, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		s.CustomerID = derefStr(customerID)
		s.VoidReason = derefStr(voidReason)
		s.VoidedBy = derefStr(voidedBy)
		list = append(list, &s)
	}
	return list, rows.Err()
}
