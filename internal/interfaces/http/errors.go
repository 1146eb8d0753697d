package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Pos-api/internal/application/dto"
	"github.com/jhoicas/Pos-api/internal/domain"
)

// respondError traduce errores de dominio a respuestas HTTP. Los errores
// tipados con contexto numérico (stock, crédito, puntos) viajan en details
// para que el cliente pueda mostrar cuánto había y cuánto se pidió.
func respondError(c *fiber.Ctx, err error) error {
	var stockErr *domain.InsufficientStockError
	if errors.As(err, &stockErr) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "INSUFFICIENT_STOCK",
			Message: stockErr.Error(),
			Details: fiber.Map{
				"product_id": stockErr.ProductID,
				"variant_id": stockErr.VariantID,
				"available":  stockErr.Available,
				"requested":  stockErr.Requested,
			},
		})
	}
	var creditErr *domain.CreditPaymentExceedsOutstandingError
	if errors.As(err, &creditErr) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "CREDIT_PAYMENT_EXCEEDS_OUTSTANDING",
			Message: creditErr.Error(),
			Details: fiber.Map{
				"credit_sale_id": creditErr.CreditSaleID,
				"outstanding":    creditErr.Outstanding,
				"requested":      creditErr.Requested,
			},
		})
	}
	var pointsErr *domain.InsufficientPointsError
	if errors.As(err, &pointsErr) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "INSUFFICIENT_POINTS",
			Message: pointsErr.Error(),
			Details: fiber.Map{
				"customer_id": pointsErr.CustomerID,
				"balance":     pointsErr.Balance,
				"requested":   pointsErr.Requested,
			},
		})
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return status(c, fiber.StatusBadRequest, "VALIDATION", err)
	case errors.Is(err, domain.ErrCustomerRequired):
		return status(c, fiber.StatusBadRequest, "CUSTOMER_REQUIRED", err)
	case errors.Is(err, domain.ErrUnauthorized):
		return status(c, fiber.StatusUnauthorized, "UNAUTHORIZED", err)
	case errors.Is(err, domain.ErrForbidden):
		return status(c, fiber.StatusForbidden, "FORBIDDEN", err)
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return status(c, fiber.StatusConflict, "EMAIL_ALREADY_EXISTS", err)
	case errors.Is(err, domain.ErrDuplicate):
		return status(c, fiber.StatusConflict, "DUPLICATE", err)
	case errors.Is(err, domain.ErrShiftNotOpen):
		return status(c, fiber.StatusConflict, "SHIFT_NOT_OPEN", err)
	case errors.Is(err, domain.ErrShiftAlreadyOpen):
		return status(c, fiber.StatusConflict, "SHIFT_ALREADY_OPEN", err)
	case errors.Is(err, domain.ErrProductInactive):
		return status(c, fiber.StatusConflict, "PRODUCT_INACTIVE", err)
	case errors.Is(err, domain.ErrSaleNotVoidable):
		return status(c, fiber.StatusConflict, "SALE_NOT_VOIDABLE", err)
	case errors.Is(err, domain.ErrCreditAlreadySettled):
		return status(c, fiber.StatusConflict, "CREDIT_ALREADY_SETTLED", err)
	case errors.Is(err, domain.ErrLoyaltyNotEnabled):
		return status(c, fiber.StatusConflict, "LOYALTY_NOT_ENABLED", err)
	case errors.Is(err, domain.ErrInsufficientPoints):
		return status(c, fiber.StatusConflict, "INSUFFICIENT_POINTS", err)
	case errors.Is(err, domain.ErrInsufficientStock):
		return status(c, fiber.StatusConflict, "INSUFFICIENT_STOCK", err)
	case errors.Is(err, domain.ErrConflict):
		return status(c, fiber.StatusConflict, "CONFLICT", err)
	}

	for _, notFound := range []error{
		domain.ErrUserNotFound, domain.ErrProductNotFound, domain.ErrCustomerNotFound,
		domain.ErrSaleNotFound, domain.ErrShiftNotFound, domain.ErrCreditSaleNotFound,
		domain.ErrNotFound,
	} {
		if errors.Is(err, notFound) {
			return status(c, fiber.StatusNotFound, "NOT_FOUND", err)
		}
	}

	return status(c, fiber.StatusInternalServerError, "INTERNAL", err)
}

func status(c *fiber.Ctx, code int, errCode string, err error) error {
	return c.Status(code).JSON(dto.ErrorResponse{Code: errCode, Message: err.Error()})
}

// badRequest respuesta 400 con mensaje fijo (errores de parseo de entrada).
func badRequest(c *fiber.Ctx, code, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: message})
}
