package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrProductNotFound    = errors.New("producto no encontrado")
	ErrCustomerNotFound   = errors.New("cliente no encontrado")
	ErrSaleNotFound       = errors.New("venta no encontrada")
	ErrShiftNotFound      = errors.New("turno no encontrado")
	ErrCreditSaleNotFound = errors.New("venta a crédito no encontrada")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")

	ErrShiftNotOpen         = errors.New("el turno no está abierto")
	ErrShiftAlreadyOpen     = errors.New("ya existe un turno abierto")
	ErrProductInactive      = errors.New("producto inactivo")
	ErrCustomerRequired     = errors.New("una venta con saldo pendiente requiere cliente")
	ErrSaleNotVoidable      = errors.New("la venta no admite anulación en su estado actual")
	ErrCreditAlreadySettled = errors.New("la venta a crédito ya está saldada")
	ErrLoyaltyNotEnabled    = errors.New("programa de fidelización no habilitado")
	ErrInsufficientPoints   = errors.New("puntos insuficientes")
)

// InsufficientStockError detalla un rechazo por stock: cuánto había y cuánto
// se pidió. Envuelve ErrInsufficientStock para que errors.Is siga funcionando.
type InsufficientStockError struct {
	ProductID string
	VariantID string
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para producto %s: disponible %s, solicitado %s",
		e.ProductID, e.Available.String(), e.Requested.String())
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// CreditPaymentExceedsOutstandingError indica un abono mayor al saldo pendiente.
type CreditPaymentExceedsOutstandingError struct {
	CreditSaleID string
	Outstanding  decimal.Decimal
	Requested    decimal.Decimal
}

func (e *CreditPaymentExceedsOutstandingError) Error() string {
	return fmt.Sprintf("abono %s excede el saldo pendiente %s de la venta a crédito %s",
		e.Requested.String(), e.Outstanding.String(), e.CreditSaleID)
}

func (e *CreditPaymentExceedsOutstandingError) Unwrap() error { return ErrConflict }

// InsufficientPointsError detalla una redención rechazada por saldo de puntos.
type InsufficientPointsError struct {
	CustomerID string
	Balance    int64
	Requested  int64
}

func (e *InsufficientPointsError) Error() string {
	return fmt.Sprintf("puntos insuficientes para cliente %s: saldo %d, solicitado %d",
		e.CustomerID, e.Balance, e.Requested)
}

func (e *InsufficientPointsError) Unwrap() error { return ErrInsufficientPoints }
