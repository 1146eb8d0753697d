package loyalty

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/Pos-api/internal/application/dto"
	"github.com/jhoicas/Pos-api/internal/domain"
	"github.com/jhoicas/Pos-api/internal/domain/entity"
	"github.com/jhoicas/Pos-api/internal/domain/repository"
)

// QueryUseCase consultas de fidelización de solo lectura.
type QueryUseCase struct {
	loyaltyRepo repository.LoyaltyRepository
}

// NewQueryUseCase construye el caso de uso de consulta.
func NewQueryUseCase(loyaltyRepo repository.LoyaltyRepository) *QueryUseCase {
	return &QueryUseCase{loyaltyRepo: loyaltyRepo}
}

// GetProgram devuelve el programa activo con sus niveles.
func (uc *QueryUseCase) GetProgram(ctx context.Context) (*dto.LoyaltyProgramResponse, error) {
	program, err := uc.loyaltyRepo.GetActiveProgram()
	if err != nil {
		return nil, fmt.Errorf("consultar programa: %w", err)
	}
	if program == nil {
		return nil, domain.ErrNotFound
	}
	return toProgramResponse(program), nil
}

// ListTransactions pagina el libro de puntos de un cliente, del más reciente
// al más antiguo.
func (uc *QueryUseCase) ListTransactions(ctx context.Context, customerID string, page dto.PageRequest) (*dto.LoyaltyTransactionListResponse, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, domain.ErrInvalidInput
	}
	page.DefaultPage()
	txs, err := uc.loyaltyRepo.ListTransactionsByCustomer(customerID, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("listar movimientos: %w", err)
	}
	items := make([]dto.LoyaltyTransactionResponse, 0, len(txs))
	for _, tx := range txs {
		items = append(items, toTransactionResponse(tx))
	}
	return &dto.LoyaltyTransactionListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

func toProgramResponse(program *entity.LoyaltyProgram) *dto.LoyaltyProgramResponse {
	resp := &dto.LoyaltyProgramResponse{
		ID:             program.ID,
		Name:           program.Name,
		IsActive:       program.IsActive,
		AmountPerPoint: program.AmountPerPoint,
		RedemptionRate: program.RedemptionRate,
	}
	for _, t := range program.Tiers {
		resp.Tiers = append(resp.Tiers, dto.LoyaltyTierResponse{
			ID:              t.ID,
			Name:            t.Name,
			MinPoints:       t.MinPoints,
			PointMultiplier: t.PointMultiplier,
		})
	}
	return resp
}

func toTransactionResponse(tx *entity.LoyaltyTransaction) dto.LoyaltyTransactionResponse {
	return dto.LoyaltyTransactionResponse{
		ID:           tx.ID,
		CustomerID:   tx.CustomerID,
		SaleID:       tx.SaleID,
		Type:         tx.Type,
		Points:       tx.Points,
		BalanceAfter: tx.BalanceAfter,
		Note:         tx.Note,
		CreatedAt:    tx.CreatedAt.Format(time.RFC3339),
	}
}
