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

var _ repository.StockLevelRepository = (*StockLevelRepo)(nil)

// StockLevelRepo implementación de StockLevelRepository sobre PostgreSQL
// (usable con pool o tx). VariantID vacío se almacena como cadena vacía para
// que participe de la clave primaria compuesta.
type StockLevelRepo struct {
	q Querier
}

// NewStockLevelRepository construye el adaptador de existencias. Pasar pool o tx (Querier).
func NewStockLevelRepository(q Querier) *StockLevelRepo {
	return &StockLevelRepo{q: q}
}

// Get obtiene la existencia actual de la clave. Una fila inexistente equivale
// a existencia cero: se devuelve la entidad en cero, no un error.
func (r *StockLevelRepo) Get(outletID, productID, variantID string) (*entity.StockLevel, error) {
	query := `
		SELECT outlet_id, product_id, variant_id, quantity, low_stock_alert, updated_at
		FROM stock_levels WHERE outlet_id = $1 AND product_id = $2 AND variant_id = $3`
	var l entity.StockLevel
	err := r.q.QueryRow(context.Background(), query, outletID, productID, variantID).Scan(
		&l.OutletID, &l.ProductID, &l.VariantID, &l.Quantity, &l.LowStockAlert, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockLevel{OutletID: outletID, ProductID: productID, VariantID: variantID, Quantity: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("get stock level: %w", err)
	}
	return &l, nil
}

// EnsureRow crea la fila en cero si no existe. Una fila inexistente no se
// puede bloquear con FOR UPDATE, así que esto va siempre antes de GetForUpdate.
func (r *StockLevelRepo) EnsureRow(outletID, productID, variantID string) error {
	query := `
		INSERT INTO stock_levels (outlet_id, product_id, variant_id, quantity, low_stock_alert, updated_at)
		VALUES ($1, $2, $3, 0, 0, now())
		ON CONFLICT (outlet_id, product_id, variant_id) DO NOTHING`
	_, err := r.q.Exec(context.Background(), query, outletID, productID, variantID)
	if err != nil {
		return fmt.Errorf("ensure stock level row: %w", err)
	}
	return nil
}

// GetForUpdate obtiene la existencia y bloquea la fila (SELECT FOR UPDATE).
func (r *StockLevelRepo) GetForUpdate(outletID, productID, variantID string) (*entity.StockLevel, error) {
	query := `
		SELECT outlet_id, product_id, variant_id, quantity, low_stock_alert, updated_at
		FROM stock_levels WHERE outlet_id = $1 AND product_id = $2 AND variant_id = $3
		FOR UPDATE`
	var l entity.StockLevel
	err := r.q.QueryRow(context.Background(), query, outletID, productID, variantID).Scan(
		&l.OutletID, &l.ProductID, &l.VariantID, &l.Quantity, &l.LowStockAlert, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockLevel{OutletID: outletID, ProductID: productID, VariantID: variantID, Quantity: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("get stock level for update: %w", err)
	}
	return &l, nil
}

// ApplyDelta suma delta con la guarda de no-negatividad en el mismo UPDATE.
// Si la guarda no deja pasar (cantidad resultante negativa) no modifica nada
// y retorna ErrInsufficientStock.
func (r *StockLevelRepo) ApplyDelta(outletID, productID, variantID string, delta decimal.Decimal) (decimal.Decimal, error) {
	query := `
		UPDATE stock_levels
		SET quantity = quantity + $4, updated_at = now()
		WHERE outlet_id = $1 AND product_id = $2 AND variant_id = $3 AND quantity + $4 >= 0
		RETURNING quantity`
	var newQty decimal.Decimal
	err := r.q.QueryRow(context.Background(), query, outletID, productID, variantID, delta).Scan(&newQty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// La fila existe (EnsureRow corre antes); cero filas = guarda bloqueada.
			return decimal.Zero, domain.ErrInsufficientStock
		}
		return decimal.Zero, fmt.Errorf("apply stock delta: %w", err)
	}
	return newQty, nil
}

// SetAlertThreshold fija el umbral de alerta; crea la fila en cero si no existe.
func (r *StockLevelRepo) SetAlertThreshold(outletID, productID, variantID string, threshold decimal.Decimal) error {
	query := `
		INSERT INTO stock_levels (outlet_id, product_id, variant_id, quantity, low_stock_alert, updated_at)
		VALUES ($1, $2, $3, 0, $4, now())
		ON CONFLICT (outlet_id, product_id, variant_id)
		DO UPDATE SET low_stock_alert = EXCLUDED.low_stock_alert, updated_at = now()`
	_, err := r.q.Exec(context.Background(), query, outletID, productID, variantID, threshold)
	if err != nil {
		return fmt.Errorf("set alert threshold: %w", err)
	}
	return nil
}

// ListByOutlet lista existencias del punto de venta con paginación.
func (r *StockLevelRepo) ListByOutlet(outletID string, limit, offset int) ([]*entity.StockLevel, error) {
	query := `
		SELECT outlet_id, product_id, variant_id, quantity, low_stock_alert, updated_at
		FROM stock_levels WHERE outlet_id = $1
		ORDER BY updated_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, outletID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list stock levels: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockLevel
	for rows.Next() {
		var l entity.StockLevel
		if err := rows.Scan(&l.OutletID, &l.ProductID, &l.VariantID, &l.Quantity, &l.LowStockAlert, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock level: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// ListLowStock devuelve las filas en o bajo su umbral de alerta, ordenadas por
// déficit descendente (mayor quiebre primero). Umbral cero = alerta desactivada.
func (r *StockLevelRepo) ListLowStock(outletID string) ([]*entity.StockLevel, error) {
	query := `
		SELECT outlet_id, product_id, variant_id, quantity, low_stock_alert, updated_at
		FROM stock_levels
		WHERE outlet_id = $1 AND low_stock_alert > 0 AND quantity <= low_stock_alert
		ORDER BY (low_stock_alert - quantity) DESC`
	rows, err := r.q.Query(context.Background(), query, outletID)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockLevel
	for rows.Next() {
		var l entity.StockLevel
		if err := rows.Scan(&l.OutletID, &l.ProductID, &l.VariantID, &l.Quantity, &l.LowStockAlert, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan low stock: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// ListDiscrepancies compara cada fila de existencias contra la suma de sus
// movimientos y devuelve las que no cuadran. Solo lectura: no corrige nada.
func (r *StockLevelRepo) ListDiscrepancies(outletID string) ([]*repository.StockDiscrepancy, error) {
	query := `
		SELECT l.outlet_id, l.product_id, l.variant_id, l.quantity,
		       COALESCE(SUM(m.quantity), 0) AS movement_sum
		FROM stock_levels l
		LEFT JOIN stock_movements m
		  ON m.outlet_id = l.outlet_id AND m.product_id = l.product_id AND m.variant_id = l.variant_id
		WHERE l.outlet_id = $1
		GROUP BY l.outlet_id, l.product_id, l.variant_id, l.quantity
		HAVING l.quantity <> COALESCE(SUM(m.quantity), 0)`
	rows, err := r.q.Query(context.Background(), query, outletID)
	if err != nil {
		return nil, fmt.Errorf("list stock discrepancies: %w", err)
	}
	defer rows.Close()
	var list []*repository.StockDiscrepancy
	for rows.Next() {
		var d repository.StockDiscrepancy
		if err := rows.Scan(&d.OutletID, &d.ProductID, &d.VariantID, &d.LevelQuantity, &d.MovementSum); err != nil {
			return nil, fmt.Errorf("scan stock discrepancy: %w", err)
		}
		list = append(list, &d)
	}
	return list, rows.Err()
}
