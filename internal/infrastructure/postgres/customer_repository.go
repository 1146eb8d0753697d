package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Pos-api/internal/domain"
	"github.com/jhoicas/Pos-api/internal/domain/entity"
	"github.com/jhoicas/Pos-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo implementación de CustomerRepository (usable con pool o tx).
// Los campos derivados se tocan solo con incrementos atómicos en SQL.
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

const customerColumns = `id, name, document_id, email, phone, address, credit_balance, total_spent, visit_count, loyalty_points, loyalty_tier, created_at, updated_at`

// Create persiste un nuevo cliente. Documento duplicado retorna ErrDuplicate.
func (r *CustomerRepo) Create(customer *entity.Customer) error {
	query := `
		INSERT INTO customers (id, name, document_id, email, phone, address, credit_balance, total_spent, visit_count, loyalty_points, loyalty_tier, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(context.Background(), query,
		customer.ID, customer.Name, nullIfEmpty(customer.DocumentID), customer.Email, customer.Phone, customer.Address,
		customer.CreditBalance, customer.TotalSpent, customer.VisitCount, customer.LoyaltyPoints, customer.LoyaltyTier,
		customer.CreatedAt, customer.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// GetByID obtiene un cliente por ID.
func (r *CustomerRepo) GetByID(id string) (*entity.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	return r.scanCustomer(r.q.QueryRow(context.Background(), query, id))
}

// GetByDocument obtiene un cliente por NIT o cédula.
func (r *CustomerRepo) GetByDocument(documentID string) (*entity.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE document_id = $1`
	return r.scanCustomer(r.q.QueryRow(context.Background(), query, documentID))
}

// List lista clientes por nombre con paginación.
func (r *CustomerRepo) List(limit, offset int) ([]*entity.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers ORDER BY name LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()
	var list []*entity.Customer
	for rows.Next() {
		var c entity.Customer
		var documentID *string
		if err := rows.Scan(&c.ID, &c.Name, &documentID, &c.Email, &c.Phone, &c.Address,
			&c.CreditBalance, &c.TotalSpent, &c.VisitCount, &c.LoyaltyPoints, &c.LoyaltyTier,
			&c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		c.DocumentID = derefStr(documentID)
		list = append(list, &c)
	}
	return list, rows.Err()
}

// Update actualiza los datos de contacto del cliente. Los campos derivados no
// pasan por aquí.
func (r *CustomerRepo) Update(customer *entity.Customer) error {
	query := `
		UPDATE customers SET name = $2, document_id = $3, email = $4, phone = $5, address = $6, updated_at = $7
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		customer.ID, customer.Name, nullIfEmpty(customer.DocumentID), customer.Email, customer.Phone, customer.Address,
		customer.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update customer: %w", err)
	}
	return nil
}

// Delete elimina un cliente por ID.
func (r *CustomerRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("delete customer: %w", err)
	}
	return nil
}

// IncrementSaleRollup suma amount a totalSpent y 1 a visitCount (atómico).
func (r *CustomerRepo) IncrementSaleRollup(customerID string, amount decimal.Decimal) error {
	query := `
		UPDATE customers
		SET total_spent = total_spent + $2, visit_count = visit_count + 1, updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, customerID, amount)
	if err != nil {
		return fmt.Errorf("increment sale rollup: %w", err)
	}
	return nil
}

// ReverseSaleRollup deshace el efecto de una venta anulada o devuelta.
func (r *CustomerRepo) ReverseSaleRollup(customerID string, amount decimal.Decimal) error {
	query := `
		UPDATE customers
		SET total_spent = total_spent - $2, visit_count = visit_count - 1, updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, customerID, amount)
	if err != nil {
		return fmt.Errorf("reverse sale rollup: %w", err)
	}
	return nil
}

// IncrementCreditBalance suma delta (con signo) a creditBalance (atómico).
func (r *CustomerRepo) IncrementCreditBalance(customerID string, delta decimal.Decimal) error {
	query := `
		UPDATE customers SET credit_balance = credit_balance + $2, updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, customerID, delta)
	if err != nil {
		return fmt.Errorf("increment credit balance: %w", err)
	}
	return nil
}

// AddLoyaltyPoints suma delta (con signo) a loyaltyPoints y devuelve el saldo
// resultante. Con guard=true la resta solo aplica si el saldo alcanza; si no,
// retorna ErrInsufficientPoints sin modificar nada. El llamador ya verificó
// que el cliente existe.
func (r *CustomerRepo) AddLoyaltyPoints(customerID string, delta int64, guard bool) (int64, error) {
	query := `
		UPDATE customers SET loyalty_points = loyalty_points + $2, updated_at = now()
		WHERE id = $1`
	if guard {
		query += ` AND loyalty_points + $2 >= 0`
	}
	query += ` RETURNING loyalty_points`

	var balance int64
	err := r.q.QueryRow(context.Background(), query, customerID, delta).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) && guard {
			return 0, domain.ErrInsufficientPoints
		}
		return 0, fmt.Errorf("add loyalty points: %w", err)
	}
	return balance, nil
}

// UpdateLoyaltyTier fija el nivel vigente del cliente (idempotente).
func (r *CustomerRepo) UpdateLoyaltyTier(customerID, tier string) error {
	query := `UPDATE customers SET loyalty_tier = $2, updated_at = now() WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, customerID, tier)
	if err != nil {
		return fmt.Errorf("update loyalty tier: %w", err)
	}
	return nil
}

// SetRollups sobreescribe los cinco campos derivados (recomputación).
func (r *CustomerRepo) SetRollups(customer *entity.Customer) error {
	query := `
		UPDATE customers
		SET credit_balance = $2, total_spent = $3, visit_count = $4, loyalty_points = $5, loyalty_tier = $6, updated_at = $7
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		customer.ID, customer.CreditBalance, customer.TotalSpent, customer.VisitCount,
		customer.LoyaltyPoints, customer.LoyaltyTier, customer.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("set customer rollups: %w", err)
	}
	return nil
}

func (r *CustomerRepo) scanCustomer(row pgx.Row) (*entity.Customer, error) {
	var c entity.Customer
	var documentID *string
	err := row.Scan(
		&c.ID, &c.Name, &documentID, &c.Email, &c.Phone, &c.Address,
		&c.CreditBalance, &c.TotalSpent, &c.VisitCount, &c.LoyaltyPoints, &c.LoyaltyTier,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	c.DocumentID = derefStr(documentID)
	return &c, nil
}
