package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Pos-api/internal/domain"
	"github.com/jhoicas/Pos-api/internal/domain/entity"
	"github.com/jhoicas/Pos-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.CreditSaleRepository = (*CreditSaleRepo)(nil)

// CreditSaleRepo implementación de CreditSaleRepository sobre PostgreSQL
// (usable con pool o tx). Los abonos son append-only.
type CreditSaleRepo struct {
	q Querier
}

// NewCreditSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCreditSaleRepository(q Querier) *CreditSaleRepo {
	return &CreditSaleRepo{q: q}
}

const creditSaleColumns = `id, sale_id, customer_id, total_amount, paid_amount, outstanding_amount, status, due_date, created_at, updated_at`

// Create persiste una cuenta por cobrar. Una venta admite a lo sumo una cuenta
// (índice único sobre sale_id); la segunda inserción retorna ErrDuplicate.
func (r *CreditSaleRepo) Create(creditSale *entity.CreditSale) error {
	if creditSale.ID == "" {
		creditSale.ID = uuid.New().String()
	}
	query := `
		INSERT INTO credit_sales (id, sale_id, customer_id, total_amount, paid_amount, outstanding_amount, status, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		creditSale.ID, creditSale.SaleID, creditSale.CustomerID,
		creditSale.TotalAmount, creditSale.PaidAmount, creditSale.OutstandingAmount,
		creditSale.Status, creditSale.DueDate, creditSale.CreatedAt, creditSale.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert credit sale: %w", err)
	}
	return nil
}

// GetByID obtiene una cuenta por cobrar por ID.
func (r *CreditSaleRepo) GetByID(id string) (*entity.CreditSale, error) {
	query := `SELECT ` + creditSaleColumns + ` FROM credit_sales WHERE id = $1`
	return r.scanCreditSale(r.q.QueryRow(context.Background(), query, id))
}

// GetForUpdate bloquea la cuenta para la secuencia leer-validar-abonar.
func (r *CreditSaleRepo) GetForUpdate(id string) (*entity.CreditSale, error) {
	query := `SELECT ` + creditSaleColumns + ` FROM credit_sales WHERE id = $1 FOR UPDATE`
	return r.scanCreditSale(r.q.QueryRow(context.Background(), query, id))
}

// GetBySaleID obtiene la cuenta por cobrar de una venta.
func (r *CreditSaleRepo) GetBySaleID(saleID string) (*entity.CreditSale, error) {
	query := `SELECT ` + creditSaleColumns + ` FROM credit_sales WHERE sale_id = $1`
	return r.scanCreditSale(r.q.QueryRow(context.Background(), query, saleID))
}

// Update persiste paidAmount, outstandingAmount y status (bajo lock).
func (r *CreditSaleRepo) Update(creditSale *entity.CreditSale) error {
	query := `
		UPDATE credit_sales
		SET paid_amount = $2, outstanding_amount = $3, status = $4, updated_at = $5
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		creditSale.ID, creditSale.PaidAmount, creditSale.OutstandingAmount,
		creditSale.Status, creditSale.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update credit sale: %w", err)
	}
	return nil
}

// CreatePayment persiste un abono.
func (r *CreditSaleRepo) CreatePayment(payment *entity.CreditPayment) error {
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	query := `
		INSERT INTO credit_payments (id, credit_sale_id, amount, method, reference, received_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		payment.ID, payment.CreditSaleID, payment.Amount, payment.Method,
		payment.Reference, payment.ReceivedBy, payment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert credit payment: %w", err)
	}
	return nil
}

// ListPayments lista los abonos de una cuenta en orden cronológico.
func (r *CreditSaleRepo) ListPayments(creditSaleID string) ([]*entity.CreditPayment, error) {
	query := `
		SELECT id, credit_sale_id, amount, method, reference, received_by, created_at
		FROM credit_payments WHERE credit_sale_id = $1 ORDER BY created_at, id`
	rows, err := r.q.Query(context.Background(), query, creditSaleID)
	if err != nil {
		return nil, fmt.Errorf("list credit payments: %w", err)
	}
	defer rows.Close()
	var list []*entity.CreditPayment
	for rows.Next() {
		var p entity.CreditPayment
		if err := rows.Scan(&p.ID, &p.CreditSaleID, &p.Amount, &p.Method, &p.Reference, &p.ReceivedBy, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan credit payment: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// ListByCustomer lista las cuentas de un cliente con paginación.
func (r *CreditSaleRepo) ListByCustomer(customerID string, limit, offset int) ([]*entity.CreditSale, error) {
	query := `SELECT ` + creditSaleColumns + ` FROM credit_sales WHERE customer_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.listCreditSales(query, customerID, limit, offset)
}

// ListOutstanding lista las cuentas con saldo pendiente (no saldadas).
func (r *CreditSaleRepo) ListOutstanding(limit, offset int) ([]*entity.CreditSale, error) {
	query := `SELECT ` + creditSaleColumns + ` FROM credit_sales WHERE status <> 'settled' ORDER BY created_at LIMIT $1 OFFSET $2`
	return r.listCreditSales(query, limit, offset)
}

// SumOutstandingByCustomer suma los saldos pendientes del cliente, excluyendo
// cuentas cuya venta padre fue anulada o devuelta (recomputación de creditBalance).
func (r *CreditSaleRepo) SumOutstandingByCustomer(customerID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(cs.outstanding_amount), 0)
		FROM credit_sales cs
		JOIN sales s ON s.id = cs.sale_id
		WHERE cs.customer_id = $1 AND s.status NOT IN ('voided', 'refunded')`
	var sum decimal.Decimal
	if err := r.q.QueryRow(context.Background(), query, customerID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum outstanding by customer: %w", err)
	}
	return sum, nil
}

func (r *CreditSaleRepo) scanCreditSale(row pgx.Row) (*entity.CreditSale, error) {
	var cs entity.CreditSale
	err := row.Scan(
		&cs.ID, &cs.SaleID, &cs.CustomerID, &cs.TotalAmount, &cs.PaidAmount, &cs.OutstandingAmount,
		&cs.Status, &cs.DueDate, &cs.CreatedAt, &cs.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get credit sale: %w", err)
	}
	return &cs, nil
}

func (r *CreditSaleRepo) listCreditSales(query string, args ...any) ([]*entity.CreditSale, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list credit sales: %w", err)
	}
	defer rows.Close()
	var list []*entity.CreditSale
	for rows.Next() {
		var cs entity.CreditSale
		if err := rows.Scan(&cs.ID, &cs.SaleID, &cs.CustomerID, &cs.TotalAmount, &cs.PaidAmount,
			&cs.OutstandingAmount, &cs.Status, &cs.DueDate, &cs.CreatedAt, &cs.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan credit sale: %w", err)
		}
		list = append(list, &cs)
	}
	return list, rows.Err()
}
