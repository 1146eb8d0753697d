package credit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Pos-api/internal/application/dto"
	"github.com/jhoicas/Pos-api/internal/domain"
	"github.com/jhoicas/Pos-api/internal/domain/entity"
	"github.com/jhoicas/Pos-api/internal/domain/event"
	"github.com/jhoicas/Pos-api/internal/domain/repository"
	"github.com/jhoicas/Pos-api/pkg/logger"
)

// LedgerUseCase administra las cuentas por cobrar: registra abonos bajo lock
// de fila, mantiene el invariante outstanding = total - paid y liquida la
// venta padre cuando el saldo llega a cero.
type LedgerUseCase struct {
	txRunner  TxRunner
	publisher Publisher
	log       *logger.Logger
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(txRunner TxRunner, publisher Publisher, log *logger.Logger) *LedgerUseCase {
	return &LedgerUseCase{
		txRunner:  txRunner,
		publisher: publisher,
		log:       log.Component("credit"),
	}
}

// RecordPayment registra un abono a una cuenta por cobrar. Un abono mayor al
// saldo pendiente se rechaza completo con las cifras para corregir, nunca se
// recorta. Si el abono salda la cuenta, la venta padre pasa a completed en la
// misma transacción.
func (uc *LedgerUseCase) RecordPayment(ctx context.Context, userID, creditSaleID string, in *dto.RecordCreditPaymentRequest) (*dto.CreditSaleResponse, error) {
	if creditSaleID == "" || userID == "" {
		return nil, domain.ErrInvalidInput
	}
	if !in.Amount.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	switch in.Method {
	case entity.PaymentMethodCash, entity.PaymentMethodCard, entity.PaymentMethodTransfer,
		entity.PaymentMethodQR, entity.PaymentMethodOther:
	default:
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	var credit *entity.CreditSale
	var settled bool
	var parentPrevStatus string

	err := uc.txRunner.RunCredit(ctx, func(
		saleRepo repository.SaleRepository,
		creditRepo repository.CreditSaleRepository,
		customerRepo repository.CustomerRepository,
	) error {
		var err error
		credit, err = creditRepo.GetForUpdate(creditSaleID)
		if err != nil {
			return err
		}
		if credit == nil {
			return domain.ErrCreditSaleNotFound
		}
		if credit.Status == entity.CreditStatusSettled {
			return domain.ErrCreditAlreadySettled
		}
		if in.Amount.GreaterThan(credit.OutstandingAmount) {
			return &domain.CreditPaymentExceedsOutstandingError{
				CreditSaleID: creditSaleID,
				Outstanding:  credit.OutstandingAmount,
				Requested:    in.Amount,
			}
		}

		payment := &entity.CreditPayment{
			ID:           uuid.New().String(),
			CreditSaleID: creditSaleID,
			Amount:       in.Amount,
			Method:       in.Method,
			Reference:    in.Reference,
			ReceivedBy:   userID,
			CreatedAt:    now,
		}
		if err := creditRepo.CreatePayment(payment); err != nil {
			return err
		}

		credit.PaidAmount = credit.PaidAmount.Add(in.Amount)
		credit.OutstandingAmount = credit.TotalAmount.Sub(credit.PaidAmount)
		if credit.OutstandingAmount.IsNegative() {
			credit.OutstandingAmount = decimal.Zero
		}
		if credit.OutstandingAmount.IsZero() {
			credit.Status = entity.CreditStatusSettled
			settled = true
		} else {
			credit.Status = entity.CreditStatusPartiallyPaid
		}
		credit.UpdatedAt = now
		if err := creditRepo.Update(credit); err != nil {
			return err
		}

		if settled {
			parent, err := saleRepo.GetByID(credit.SaleID)
			if err != nil {
				return err
			}
			if parent != nil {
				parentPrevStatus = parent.Status
				if err := saleRepo.UpdateStatus(credit.SaleID, entity.SaleStatusCompleted, "", "", nil); err != nil {
					return err
				}
			}
		}

		return customerRepo.IncrementCreditBalance(credit.CustomerID, in.Amount.Neg())
	})
	if err != nil {
		return nil, err
	}

	uc.publisher.Publish(event.CreditPaymentRecorded{
		CreditSaleID: creditSaleID,
		SaleID:       credit.SaleID,
		CustomerID:   credit.CustomerID,
		Amount:       in.Amount,
		Outstanding:  credit.OutstandingAmount,
		Settled:      settled,
		OccurredAt:   now,
	})
	if settled && parentPrevStatus != "" {
		uc.publisher.Publish(event.SaleStatusChanged{
			SaleID:         credit.SaleID,
			PreviousStatus: parentPrevStatus,
			NewStatus:      entity.SaleStatusCompleted,
			OccurredAt:     now,
		})
	}

	uc.log.Info().
		Str("credit_sale_id", creditSaleID).
		Str("amount", in.Amount.String()).
		Str("outstanding", credit.OutstandingAmount.String()).
		Bool("settled", settled).
		Msg("abono registrado")

	return toCreditResponse(credit, nil), nil
}

func toCreditResponse(credit *entity.CreditSale, payments []*entity.CreditPayment) *dto.CreditSaleResponse {
	resp := &dto.CreditSaleResponse{
		ID:                credit.ID,
		SaleID:            credit.SaleID,
		CustomerID:        credit.CustomerID,
		TotalAmount:       credit.TotalAmount,
		PaidAmount:        credit.PaidAmount,
		OutstandingAmount: credit.OutstandingAmount,
		Status:            credit.Status,
		CreatedAt:         credit.CreatedAt,
	}
	if credit.DueDate != nil {
		resp.DueDate = credit.DueDate.Format("2006-01-02")
	}
	for _, p := range payments {
		resp.Payments = append(resp.Payments, dto.CreditPaymentResponse{
			ID:         p.ID,
			Amount:     p.Amount,
			Method:     p.Method,
			Reference:  p.Reference,
			ReceivedBy: p.ReceivedBy,
			CreatedAt:  p.CreatedAt,
		})
	}
	return resp
}
