package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Pos-api/internal/domain/entity"
	"github.com/jhoicas/Pos-api/internal/domain/repository"
)

var _ repository.ShiftRepository = (*ShiftRepo)(nil)

// ShiftRepo implementación de ShiftRepository sobre PostgreSQL.
type ShiftRepo struct {
	q Querier
}

// NewShiftRepository construye el adaptador de turnos. Pasar pool o tx (Querier).
func NewShiftRepository(q Querier) *ShiftRepo {
	return &ShiftRepo{q: q}
}

const shiftColumns = `id, outlet_id, user_id, status, opening_cash, closing_cash, expected_cash, cash_difference, note, opened_at, closed_at`

// Create persiste un turno nuevo.
func (r *ShiftRepo) Create(shift *entity.Shift) error {
	if shift.ID == "" {
		shift.ID = uuid.New().String()
	}
	query := `
		INSERT INTO shifts (id, outlet_id, user_id, status, opening_cash, closing_cash, expected_cash, cash_difference, note, opened_at, closed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		shift.ID, shift.OutletID, shift.UserID, shift.Status,
		shift.OpeningCash, shift.ClosingCash, shift.ExpectedCash, shift.CashDifference,
		shift.Note, shift.OpenedAt, shift.ClosedAt,
	)
	if err != nil {
		return fmt.Errorf("insert shift: %w", err)
	}
	return nil
}

// GetByID obtiene un turno por ID.
func (r *ShiftRepo) GetByID(id string) (*entity.Shift, error) {
	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE id = $1`
	return r.scanShift(r.q.QueryRow(context.Background(), query, id))
}

// GetOpenByOutletAndUser devuelve el turno abierto del usuario en el punto de
// venta, o nil si no hay ninguno.
func (r *ShiftRepo) GetOpenByOutletAndUser(outletID, userID string) (*entity.Shift, error) {
	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE outlet_id = $1 AND user_id = $2 AND status = 'open' LIMIT 1`
	return r.scanShift(r.q.QueryRow(context.Background(), query, outletID, userID))
}

// Update persiste el estado y las cifras de cierre del turno.
func (r *ShiftRepo) Update(shift *entity.Shift) error {
	query := `
		UPDATE shifts
		SET status = $2, closing_cash = $3, expected_cash = $4, cash_difference = $5, note = $6, closed_at = $7
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		shift.ID, shift.Status, shift.ClosingCash, shift.ExpectedCash, shift.CashDifference,
		shift.Note, shift.ClosedAt,
	)
	if err != nil {
		return fmt.Errorf("update shift: %w", err)
	}
	return nil
}

// ListByOutlet lista los turnos de un punto de venta, más recientes primero.
func (r *ShiftRepo) ListByOutlet(outletID string, limit, offset int) ([]*entity.Shift, error) {
	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE outlet_id = $1 ORDER BY opened_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, outletID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list shifts: %w", err)
	}
	defer rows.Close()
	var list []*entity.Shift
	for rows.Next() {
		var s entity.Shift
		if err := rows.Scan(&s.ID, &s.OutletID, &s.UserID, &s.Status, &s.OpeningCash, &s.ClosingCash,
			&s.ExpectedCash, &s.CashDifference, &s.Note, &s.OpenedAt, &s.ClosedAt); err != nil {
			return nil, fmt.Errorf("scan shift: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

func (r *ShiftRepo) scanShift(row pgx.Row) (*entity.Shift, error) {
	var s entity.Shift
	err := row.Scan(
		&s.ID, &s.OutletID, &s.UserID, &s.Status, &s.OpeningCash, &s.ClosingCash,
		&s.ExpectedCash, &s.CashDifference, &s.Note, &s.OpenedAt, &s.ClosedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get shift: %w", err)
	}
	return &s, nil
}
