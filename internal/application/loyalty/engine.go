// Package loyalty implementa el motor de fidelización: acumulación de puntos
// por ventas, redención como descuento, ajustes manuales, expiración y la
// administración del programa con sus niveles.
//
// Toda mutación escribe una entrada en el libro de puntos (append-only),
// incrementa el saldo del cliente de forma atómica y reevalúa el nivel, dentro
// de una misma transacción. El saldo del cliente siempre iguala la suma de su
// libro.
package loyalty

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Pos-api/internal/application/dto"
	"github.com/jhoicas/Pos-api/internal/domain"
	"github.com/jhoicas/Pos-api/internal/domain/entity"
	"github.com/jhoicas/Pos-api/internal/domain/event"
	rules "github.com/jhoicas/Pos-api/internal/domain/loyalty"
	"github.com/jhoicas/Pos-api/internal/domain/repository"
	"github.com/jhoicas/Pos-api/pkg/logger"
)

// EngineUseCase orquesta los movimientos de puntos y el programa.
type EngineUseCase struct {
	txRunner  TxRunner
	publisher Publisher
	log       *logger.Logger
}

// NewEngineUseCase construye el motor de fidelización.
func NewEngineUseCase(txRunner TxRunner, publisher Publisher, log *logger.Logger) *EngineUseCase {
	return &EngineUseCase{
		txRunner:  txRunner,
		publisher: publisher,
		log:       log.Component("loyalty"),
	}
}

// movement resume un movimiento confirmado, para la respuesta y el evento.
type movement struct {
	customerID   string
	movType      string
	points       int64
	balanceAfter int64
	tier         string
	value        decimal.Decimal
}

func (m *movement) response() *dto.LoyaltyResultResponse {
	return &dto.LoyaltyResultResponse{
		CustomerID:   m.customerID,
		Type:         m.movType,
		Points:       m.points,
		BalanceAfter: m.balanceAfter,
		Tier:         m.tier,
		Value:        m.value,
	}
}

// writeMovement anota la entrada en el libro y reevalúa el nivel del cliente
// con el saldo resultante. Se invoca dentro de la transacción.
func writeMovement(loyaltyRepo repository.LoyaltyRepository, customerRepo repository.CustomerRepository,
	program *entity.LoyaltyProgram, entry *entity.LoyaltyTransaction) (*movement, error) {

	if err := loyaltyRepo.CreateTransaction(entry); err != nil {
		return nil, fmt.Errorf("anotar movimiento de puntos: %w", err)
	}
	tier := ""
	if program != nil {
		if t, ok := rules.TierFor(entry.BalanceAfter, program.Tiers); ok {
			tier = t.Name
		}
		if err := customerRepo.UpdateLoyaltyTier(entry.CustomerID, tier); err != nil {
			return nil, fmt.Errorf("actualizar nivel: %w", err)
		}
	}
	return &movement{
		customerID:   entry.CustomerID,
		movType:      entry.Type,
		points:       entry.Points,
		balanceAfter: entry.BalanceAfter,
		tier:         tier,
	}, nil
}

// EarnOnSale acumula los puntos de una venta ya confirmada. Corre en su propia
// transacción, después del commit de la venta.
func (uc *EngineUseCase) EarnOnSale(ctx context.Context, customerID, saleID string, amount decimal.Decimal) error {
	_, err := uc.earn(ctx, "", customerID, saleID, amount)
	return err
}

// Earn acumula puntos por un monto elegible. Sin programa activo es un no-op
// silencioso: responde cero puntos con el saldo intacto, nunca un error.
func (uc *EngineUseCase) Earn(ctx context.Context, userID string, in *dto.EarnPointsRequest) (*dto.LoyaltyResultResponse, error) {
	if in == nil || strings.TrimSpace(in.CustomerID) == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	mov, err := uc.earn(ctx, userID, in.CustomerID, in.SaleID, in.Amount)
	if err != nil {
		return nil, err
	}
	return mov.response(), nil
}

func (uc *EngineUseCase) earn(ctx context.Context, userID, customerID, saleID string, amount decimal.Decimal) (*movement, error) {
	var mov *movement
	err := uc.txRunner.RunLoyalty(ctx, func(loyaltyRepo repository.LoyaltyRepository, customerRepo repository.CustomerRepository) error {
		customer, err := customerRepo.GetByID(customerID)
		if err != nil {
			return fmt.Errorf("consultar cliente: %w", err)
		}
		if customer == nil {
			return domain.ErrCustomerNotFound
		}
		program, err := loyaltyRepo.GetActiveProgram()
		if err != nil {
			return fmt.Errorf("consultar programa: %w", err)
		}
		if program == nil {
			mov = &movement{
				customerID:   customerID,
				movType:      entity.LoyaltyTypeEarned,
				balanceAfter: customer.LoyaltyPoints,
				tier:         customer.LoyaltyTier,
			}
			return nil
		}
		multiplier := decimal.Zero
		if t, ok := rules.TierFor(customer.LoyaltyPoints, program.Tiers); ok {
			multiplier = t.PointMultiplier
		}
		earned := rules.PointsForAmount(amount, program.AmountPerPoint, multiplier)
		if earned == 0 {
			// Monto por debajo del umbral: no se anota entrada vacía.
			mov = &movement{
				customerID:   customerID,
				movType:      entity.LoyaltyTypeEarned,
				balanceAfter: customer.LoyaltyPoints,
				tier:         customer.LoyaltyTier,
			}
			return nil
		}
		balance, err := customerRepo.AddLoyaltyPoints(customerID, earned, false)
		if err != nil {
			return fmt.Errorf("acreditar puntos: %w", err)
		}
		mov, err = writeMovement(loyaltyRepo, customerRepo, program, &entity.LoyaltyTransaction{
			ID:           uuid.New().String(),
			CustomerID:   customerID,
			SaleID:       saleID,
			Type:         entity.LoyaltyTypeEarned,
			Points:       earned,
			BalanceAfter: balance,
			CreatedAt:    time.Now(),
			CreatedBy:    userID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	if mov.points != 0 {
		uc.publishMovement(mov)
		uc.log.Info().
			Str("customer_id", mov.customerID).
			Str("sale_id", saleID).
			Int64("points", mov.points).
			Int64("balance", mov.balanceAfter).
			Msg("puntos acumulados")
	}
	return mov, nil
}

// Redeem debita puntos y devuelve el valor del descuento equivalente:
// floor(puntos * tasa/100 * multiplicador del nivel vigente).
func (uc *EngineUseCase) Redeem(ctx context.Context, userID string, in *dto.RedeemPointsRequest) (*dto.LoyaltyResultResponse, error) {
	if in == nil || strings.TrimSpace(in.CustomerID) == "" || in.Points <= 0 {
		return nil, domain.ErrInvalidInput
	}
	var mov *movement
	err := uc.txRunner.RunLoyalty(ctx, func(loyaltyRepo repository.LoyaltyRepository, customerRepo repository.CustomerRepository) error {
		program, err := loyaltyRepo.GetActiveProgram()
		if err != nil {
			return fmt.Errorf("consultar programa: %w", err)
		}
		if program == nil {
			return domain.ErrLoyaltyNotEnabled
		}
		customer, err := customerRepo.GetByID(in.CustomerID)
		if err != nil {
			return fmt.Errorf("consultar cliente: %w", err)
		}
		if customer == nil {
			return domain.ErrCustomerNotFound
		}
		if customer.LoyaltyPoints < in.Points {
			return &domain.InsufficientPointsError{
				CustomerID: customer.ID,
				Balance:    customer.LoyaltyPoints,
				Requested:  in.Points,
			}
		}
		multiplier := decimal.Zero
		if t, ok := rules.TierFor(customer.LoyaltyPoints, program.Tiers); ok {
			multiplier = t.PointMultiplier
		}
		value := rules.RedemptionValue(in.Points, program.RedemptionRate, multiplier)
		balance, err := customerRepo.AddLoyaltyPoints(in.CustomerID, -in.Points, true)
		if err != nil {
			return fmt.Errorf("debitar puntos: %w", err)
		}
		mov, err = writeMovement(loyaltyRepo, customerRepo, program, &entity.LoyaltyTransaction{
			ID:           uuid.New().String(),
			CustomerID:   in.CustomerID,
			SaleID:       in.SaleID,
			Type:         entity.LoyaltyTypeRedeemed,
			Points:       -in.Points,
			BalanceAfter: balance,
			CreatedAt:    time.Now(),
			CreatedBy:    userID,
		})
		if err != nil {
			return err
		}
		mov.value = value
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.publishMovement(mov)
	uc.log.Info().
		Str("customer_id", mov.customerID).
		Int64("points", mov.points).
		Int64("balance", mov.balanceAfter).
		Str("value", mov.value.String()).
		Msg("puntos redimidos")
	return mov.response(), nil
}

// Adjust aplica una corrección manual con signo. Exige nota para dejar rastro
// y nunca deja el saldo negativo.
func (uc *EngineUseCase) Adjust(ctx context.Context, userID string, in *dto.AdjustPointsRequest) (*dto.LoyaltyResultResponse, error) {
	if in == nil || strings.TrimSpace(in.CustomerID) == "" || in.Points == 0 {
		return nil, domain.ErrInvalidInput
	}
	if strings.TrimSpace(in.Note) == "" {
		return nil, domain.ErrInvalidInput
	}
	mov, err := uc.debitOrCredit(ctx, userID, in.CustomerID, entity.LoyaltyTypeAdjusted, in.Points, in.Note)
	if err != nil {
		return nil, err
	}
	return mov.response(), nil
}

// Expire retira puntos vencidos. No recorta al saldo: expirar más puntos de
// los disponibles es un error, igual que una redención excedida.
func (uc *EngineUseCase) Expire(ctx context.Context, userID string, in *dto.ExpirePointsRequest) (*dto.LoyaltyResultResponse, error) {
	if in == nil || strings.TrimSpace(in.CustomerID) == "" || in.Points <= 0 {
		return nil, domain.ErrInvalidInput
	}
	mov, err := uc.debitOrCredit(ctx, userID, in.CustomerID, entity.LoyaltyTypeExpired, -in.Points, in.Note)
	if err != nil {
		return nil, err
	}
	return mov.response(), nil
}

// debitOrCredit mueve puntos fuera de una venta (ajustes y expiraciones).
// Funciona aun sin programa activo: el libro existe independientemente del
// programa; el nivel solo se reevalúa cuando hay programa.
func (uc *EngineUseCase) debitOrCredit(ctx context.Context, userID, customerID, movType string, points int64, note string) (*movement, error) {
	var mov *movement
	err := uc.txRunner.RunLoyalty(ctx, func(loyaltyRepo repository.LoyaltyRepository, customerRepo repository.CustomerRepository) error {
		customer, err := customerRepo.GetByID(customerID)
		if err != nil {
			return fmt.Errorf("consultar cliente: %w", err)
		}
		if customer == nil {
			return domain.ErrCustomerNotFound
		}
		if points < 0 && customer.LoyaltyPoints+points < 0 {
			return &domain.InsufficientPointsError{
				CustomerID: customer.ID,
				Balance:    customer.LoyaltyPoints,
				Requested:  -points,
			}
		}
		program, err := loyaltyRepo.GetActiveProgram()
		if err != nil {
			return fmt.Errorf("consultar programa: %w", err)
		}
		balance, err := customerRepo.AddLoyaltyPoints(customerID, points, points < 0)
		if err != nil {
			return fmt.Errorf("mover puntos: %w", err)
		}
		mov, err = writeMovement(loyaltyRepo, customerRepo, program, &entity.LoyaltyTransaction{
			ID:           uuid.New().String(),
			CustomerID:   customerID,
			Type:         movType,
			Points:       points,
			BalanceAfter: balance,
			Note:         note,
			CreatedAt:    time.Now(),
			CreatedBy:    userID,
		})
		if err != nil {
			return err
		}
		if program == nil {
			mov.tier = customer.LoyaltyTier
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.publishMovement(mov)
	uc.log.Info().
		Str("customer_id", mov.customerID).
		Str("type", mov.movType).
		Int64("points", mov.points).
		Int64("balance", mov.balanceAfter).
		Msg("movimiento manual de puntos")
	return mov, nil
}

// SaveProgram crea o actualiza el programa de fidelización. Se mantiene a lo
// sumo un programa activo; los niveles se reemplazan completos en cada guardado.
func (uc *EngineUseCase) SaveProgram(ctx context.Context, in *dto.SaveLoyaltyProgramRequest) (*dto.LoyaltyProgramResponse, error) {
	if in == nil || strings.TrimSpace(in.Name) == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.AmountPerPoint.LessThanOrEqual(decimal.Zero) || in.RedemptionRate.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	for _, t := range in.Tiers {
		if strings.TrimSpace(t.Name) == "" || t.MinPoints < 0 {
			return nil, domain.ErrInvalidInput
		}
	}
	var program *entity.LoyaltyProgram
	err := uc.txRunner.RunLoyalty(ctx, func(loyaltyRepo repository.LoyaltyRepository, _ repository.CustomerRepository) error {
		existing, err := loyaltyRepo.GetActiveProgram()
		if err != nil {
			return fmt.Errorf("consultar programa: %w", err)
		}
		now := time.Now()
		program = &entity.LoyaltyProgram{
			Name:           in.Name,
			IsActive:       in.IsActive,
			AmountPerPoint: in.AmountPerPoint,
			RedemptionRate: in.RedemptionRate,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if existing != nil {
			program.ID = existing.ID
			program.CreatedAt = existing.CreatedAt
			if err := loyaltyRepo.UpdateProgram(program); err != nil {
				return fmt.Errorf("actualizar programa: %w", err)
			}
			if err := loyaltyRepo.DeleteTiers(program.ID); err != nil {
				return fmt.Errorf("reemplazar niveles: %w", err)
			}
		} else {
			program.ID = uuid.New().String()
			if err := loyaltyRepo.CreateProgram(program); err != nil {
				return fmt.Errorf("crear programa: %w", err)
			}
		}
		for _, tr := range in.Tiers {
			tier := entity.LoyaltyTier{
				ID:              uuid.New().String(),
				ProgramID:       program.ID,
				Name:            tr.Name,
				MinPoints:       tr.MinPoints,
				PointMultiplier: tr.PointMultiplier,
			}
			if err := loyaltyRepo.CreateTier(&tier); err != nil {
				return fmt.Errorf("crear nivel %s: %w", tier.Name, err)
			}
			program.Tiers = append(program.Tiers, tier)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("program_id", program.ID).
		Bool("active", program.IsActive).
		Int("tiers", len(program.Tiers)).
		Msg("programa de fidelización guardado")
	return toProgramResponse(program), nil
}

func (uc *EngineUseCase) publishMovement(m *movement) {
	if m == nil || m.points == 0 {
		return
	}
	uc.publisher.Publish(event.LoyaltyPointsChanged{
		CustomerID:   m.customerID,
		Type:         m.movType,
		Points:       m.points,
		BalanceAfter: m.balanceAfter,
		Tier:         m.tier,
		OccurredAt:   time.Now(),
	})
}
