// Package shift administra los turnos de caja: apertura con base de efectivo,
// cierre con arqueo (efectivo declarado contra esperado) y consultas. Toda
// venta exige un turno abierto del cajero en el punto de venta.
package shift

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Pos-api/internal/application/dto"
	"github.com/jhoicas/Pos-api/internal/domain"
	"github.com/jhoicas/Pos-api/internal/domain/entity"
	"github.com/jhoicas/Pos-api/internal/domain/repository"
	"github.com/jhoicas/Pos-api/pkg/logger"
)

// UseCase casos de uso de turnos de caja.
type UseCase struct {
	shiftRepo  repository.ShiftRepository
	cash       CashLedger
	outletRepo repository.OutletRepository
	log        *logger.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	shiftRepo repository.ShiftRepository,
	cash CashLedger,
	outletRepo repository.OutletRepository,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		shiftRepo:  shiftRepo,
		cash:       cash,
		outletRepo: outletRepo,
		log:        log.Component("shift"),
	}
}

// Open abre un turno para el cajero en el punto de venta. A lo sumo un turno
// abierto por (outlet, usuario).
func (uc *UseCase) Open(ctx context.Context, userID string, in *dto.OpenShiftRequest) (*dto.ShiftResponse, error) {
	if userID == "" || in == nil || in.OutletID == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.OpeningCash.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	outlet, err := uc.outletRepo.GetByID(in.OutletID)
	if err != nil {
		return nil, err
	}
	if outlet == nil {
		return nil, domain.ErrNotFound
	}
	open, err := uc.shiftRepo.GetOpenByOutletAndUser(in.OutletID, userID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, domain.ErrShiftAlreadyOpen
	}
	shift := &entity.Shift{
		ID:          uuid.New().String(),
		OutletID:    in.OutletID,
		UserID:      userID,
		Status:      entity.ShiftStatusOpen,
		OpeningCash: in.OpeningCash,
		Note:        in.Note,
		OpenedAt:    time.Now(),
	}
	if err := uc.shiftRepo.Create(shift); err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("shift_id", shift.ID).
		Str("outlet_id", shift.OutletID).
		Str("user_id", userID).
		Str("opening_cash", shift.OpeningCash.String()).
		Msg("turno abierto")
	return toShiftResponse(shift), nil
}

// Close cierra el turno del cajero con arqueo: el esperado es la base de
// apertura más los pagos en efectivo de las ventas no anuladas del turno; la
// diferencia queda registrada con signo.
func (uc *UseCase) Close(ctx context.Context, userID, shiftID string, in *dto.CloseShiftRequest) (*dto.ShiftResponse, error) {
	if userID == "" || shiftID == "" || in == nil {
		return nil, domain.ErrInvalidInput
	}
	if in.ClosingCash.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	shift, err := uc.shiftRepo.GetByID(shiftID)
	if err != nil {
		return nil, err
	}
	if shift == nil {
		return nil, domain.ErrShiftNotFound
	}
	if shift.Status != entity.ShiftStatusOpen {
		return nil, domain.ErrShiftNotOpen
	}
	if shift.UserID != userID {
		return nil, domain.ErrForbidden
	}
	cashReceived, err := uc.cash.SumCashPaymentsByShift(shiftID)
	if err != nil {
		return nil, fmt.Errorf("sumar efectivo del turno: %w", err)
	}
	now := time.Now()
	shift.Status = entity.ShiftStatusClosed
	shift.ClosingCash = in.ClosingCash
	shift.ExpectedCash = shift.OpeningCash.Add(cashReceived)
	shift.CashDifference = in.ClosingCash.Sub(shift.ExpectedCash)
	shift.ClosedAt = &now
	if in.Note != "" {
		shift.Note = in.Note
	}
	if err := uc.shiftRepo.Update(shift); err != nil {
		return nil, err
	}
	if shift.CashDifference.IsZero() {
		uc.log.Info().
			Str("shift_id", shift.ID).
			Str("expected_cash", shift.ExpectedCash.String()).
			Msg("turno cerrado sin diferencia")
	} else {
		uc.log.Warn().
			Str("shift_id", shift.ID).
			Str("expected_cash", shift.ExpectedCash.String()).
			Str("closing_cash", shift.ClosingCash.String()).
			Str("difference", shift.CashDifference.String()).
			Msg("turno cerrado con diferencia de caja")
	}
	return toShiftResponse(shift), nil
}

// Get devuelve un turno por ID.
func (uc *UseCase) Get(ctx context.Context, id string) (*dto.ShiftResponse, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	shift, err := uc.shiftRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if shift == nil {
		return nil, domain.ErrShiftNotFound
	}
	return toShiftResponse(shift), nil
}

// GetCurrent devuelve el turno abierto del cajero en el punto de venta, para
// retomar sesión.
func (uc *UseCase) GetCurrent(ctx context.Context, outletID, userID string) (*dto.ShiftResponse, error) {
	if outletID == "" || userID == "" {
		return nil, domain.ErrInvalidInput
	}
	shift, err := uc.shiftRepo.GetOpenByOutletAndUser(outletID, userID)
	if err != nil {
		return nil, err
	}
	if shift == nil {
		return nil, domain.ErrShiftNotFound
	}
	return toShiftResponse(shift), nil
}

// ListByOutlet lista los turnos de un punto de venta.
func (uc *UseCase) ListByOutlet(ctx context.Context, outletID string, page dto.PageRequest) (*dto.ShiftListResponse, error) {
	if outletID == "" {
		return nil, domain.ErrInvalidInput
	}
	page.DefaultPage()
	shifts, err := uc.shiftRepo.ListByOutlet(outletID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ShiftResponse, 0, len(shifts))
	for _, s := range shifts {
		items = append(items, *toShiftResponse(s))
	}
	return &dto.ShiftListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

func toShiftResponse(s *entity.Shift) *dto.ShiftResponse {
	return &dto.ShiftResponse{
		ID:             s.ID,
		OutletID:       s.OutletID,
		UserID:         s.UserID,
		Status:         s.Status,
		OpeningCash:    s.OpeningCash,
		ClosingCash:    s.ClosingCash,
		ExpectedCash:   s.ExpectedCash,
		CashDifference: s.CashDifference,
		Note:           s.Note,
		OpenedAt:       s.OpenedAt,
		ClosedAt:       s.ClosedAt,
	}
}
