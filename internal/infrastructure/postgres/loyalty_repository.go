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
)

var _ repository.LoyaltyRepository = (*LoyaltyRepo)(nil)

// LoyaltyRepo implementación de LoyaltyRepository sobre PostgreSQL (usable con
// pool o tx). El libro de puntos es append-only.
type LoyaltyRepo struct {
	q Querier
}

// NewLoyaltyRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLoyaltyRepository(q Querier) *LoyaltyRepo {
	return &LoyaltyRepo{q: q}
}

// GetActiveProgram devuelve el programa activo con sus niveles, o nil si no
// hay ninguno. Un índice parcial único garantiza a lo sumo un activo.
func (r *LoyaltyRepo) GetActiveProgram() (*entity.LoyaltyProgram, error) {
	query := `
		SELECT id, name, is_active, amount_per_point, redemption_rate, created_at, updated_at
		FROM loyalty_programs WHERE is_active = true LIMIT 1`
	var p entity.LoyaltyProgram
	err := r.q.QueryRow(context.Background(), query).Scan(
		&p.ID, &p.Name, &p.IsActive, &p.AmountPerPoint, &p.RedemptionRate, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active loyalty program: %w", err)
	}
	if err := r.loadTiers(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProgramByID obtiene un programa (activo o no) con sus niveles.
func (r *LoyaltyRepo) GetProgramByID(id string) (*entity.LoyaltyProgram, error) {
	query := `
		SELECT id, name, is_active, amount_per_point, redemption_rate, created_at, updated_at
		FROM loyalty_programs WHERE id = $1`
	var p entity.LoyaltyProgram
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&p.ID, &p.Name, &p.IsActive, &p.AmountPerPoint, &p.RedemptionRate, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get loyalty program: %w", err)
	}
	if err := r.loadTiers(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProgram persiste un programa nuevo. Si ya existe uno activo y este
// también viene activo, el índice parcial único lo rechaza con ErrDuplicate.
func (r *LoyaltyRepo) CreateProgram(program *entity.LoyaltyProgram) error {
	if program.ID == "" {
		program.ID = uuid.New().String()
	}
	query := `
		INSERT INTO loyalty_programs (id, name, is_active, amount_per_point, redemption_rate, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		program.ID, program.Name, program.IsActive, program.AmountPerPoint, program.RedemptionRate,
		program.CreatedAt, program.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert loyalty program: %w", err)
	}
	return nil
}

// UpdateProgram actualiza la configuración del programa.
func (r *LoyaltyRepo) UpdateProgram(program *entity.LoyaltyProgram) error {
	query := `
		UPDATE loyalty_programs
		SET name = $2, is_active = $3, amount_per_point = $4, redemption_rate = $5, updated_at = $6
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		program.ID, program.Name, program.IsActive, program.AmountPerPoint, program.RedemptionRate,
		program.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update loyalty program: %w", err)
	}
	return nil
}

// CreateTier persiste un nivel del programa.
func (r *LoyaltyRepo) CreateTier(tier *entity.LoyaltyTier) error {
	if tier.ID == "" {
		tier.ID = uuid.New().String()
	}
	query := `
		INSERT INTO loyalty_tiers (id, program_id, name, min_points, point_multiplier)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(context.Background(), query,
		tier.ID, tier.ProgramID, tier.Name, tier.MinPoints, tier.PointMultiplier,
	)
	if err != nil {
		return fmt.Errorf("insert loyalty tier: %w", err)
	}
	return nil
}

// DeleteTiers elimina todos los niveles de un programa (reemplazo completo).
func (r *LoyaltyRepo) DeleteTiers(programID string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM loyalty_tiers WHERE program_id = $1`, programID)
	if err != nil {
		return fmt.Errorf("delete loyalty tiers: %w", err)
	}
	return nil
}

// CreateTransaction persiste una entrada del libro de puntos.
func (r *LoyaltyRepo) CreateTransaction(tx *entity.LoyaltyTransaction) error {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	query := `
		INSERT INTO loyalty_transactions (id, customer_id, sale_id, type, points, balance_after, note, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	createdBy := (*string)(nil)
	if tx.CreatedBy != "" {
		createdBy = &tx.CreatedBy
	}
	_, err := r.q.Exec(context.Background(), query,
		tx.ID, tx.CustomerID, nullIfEmpty(tx.SaleID), tx.Type, tx.Points, tx.BalanceAfter,
		tx.Note, tx.CreatedAt, createdBy,
	)
	if err != nil {
		return fmt.Errorf("insert loyalty transaction: %w", err)
	}
	return nil
}

// ListTransactionsByCustomer lista el libro de puntos del cliente, más
// recientes primero.
func (r *LoyaltyRepo) ListTransactionsByCustomer(customerID string, limit, offset int) ([]*entity.LoyaltyTransaction, error) {
	query := `
		SELECT id, customer_id, sale_id, type, points, balance_after, note, created_at, created_by
		FROM loyalty_transactions WHERE customer_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, customerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list loyalty transactions: %w", err)
	}
	defer rows.Close()
	var list []*entity.LoyaltyTransaction
	for rows.Next() {
		var t entity.LoyaltyTransaction
		var saleID, createdBy *string
		if err := rows.Scan(&t.ID, &t.CustomerID, &saleID, &t.Type, &t.Points, &t.BalanceAfter,
			&t.Note, &t.CreatedAt, &createdBy); err != nil {
			return nil, fmt.Errorf("scan loyalty transaction: %w", err)
		}
		t.SaleID = derefStr(saleID)
		t.CreatedBy = derefStr(createdBy)
		list = append(list, &t)
	}
	return list, rows.Err()
}

// SumPointsByCustomer suma el libro completo del cliente (recomputación del saldo).
func (r *LoyaltyRepo) SumPointsByCustomer(customerID string) (int64, error) {
	query := `SELECT COALESCE(SUM(points), 0) FROM loyalty_transactions WHERE customer_id = $1`
	var sum int64
	if err := r.q.QueryRow(context.Background(), query, customerID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum loyalty points: %w", err)
	}
	return sum, nil
}

func (r *LoyaltyRepo) loadTiers(program *entity.LoyaltyProgram) error {
	query := `
		SELECT id, program_id, name, min_points, point_multiplier
		FROM loyalty_tiers WHERE program_id = $1 ORDER BY min_points`
	rows, err := r.q.Query(context.Background(), query, program.ID)
	if err != nil {
		return fmt.Errorf("list loyalty tiers: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var t entity.LoyaltyTier
		if err := rows.Scan(&t.ID, &t.ProgramID, &t.Name, &t.MinPoints, &t.PointMultiplier); err != nil {
			return fmt.Errorf("scan loyalty tier: %w", err)
		}
		program.Tiers = append(program.Tiers, t)
	}
	return rows.Err()
}
