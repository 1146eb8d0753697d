package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Pos-api/internal/application/dto"
	"github.com/jhoicas/Pos-api/internal/application/loyalty"
)

// LoyaltyHandler maneja el programa de puntos (protegido).
type LoyaltyHandler struct {
	engine  *loyalty.EngineUseCase
	queries *loyalty.QueryUseCase
}

// NewLoyaltyHandler construye el handler.
func NewLoyaltyHandler(engine *loyalty.EngineUseCase, queries *loyalty.QueryUseCase) *LoyaltyHandler {
	return &LoyaltyHandler{engine: engine, queries: queries}
}

// Earn godoc
// @Summary      Acreditar puntos por un monto de venta
// @Description  Sin programa activo la acreditación es un no-op silencioso, por diseño del flujo de caja.
// @Tags         loyalty
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.EarnPointsRequest  true  "Cliente, venta y monto elegible"
// @Success      200   {object}  dto.LoyaltyResultResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/loyalty/earn [post]
func (h *LoyaltyHandler) Earn(c *fiber.Ctx) error {
	var in dto.EarnPointsRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.engine.Earn(c.Context(), GetUserID(c), &in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Redeem godoc
// @Summary      Redimir puntos como descuento
// @Description  Exige programa activo y saldo suficiente; devuelve el valor del descuento según la tasa y el multiplicador del nivel.
// @Tags         loyalty
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RedeemPointsRequest  true  "Cliente y puntos a redimir"
// @Success      200   {object}  dto.LoyaltyResultResponse
// @Failure      409   {object}  dto.ErrorResponse  "Programa deshabilitado o puntos insuficientes"
// @Router       /api/loyalty/redeem [post]
func (h *LoyaltyHandler) Redeem(c *fiber.Ctx) error {
	var in dto.RedeemPointsRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.engine.Redeem(c.Context(), GetUserID(c), &in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Adjust godoc
// @Summary      Ajuste manual de puntos
// @Tags         loyalty
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustPointsRequest  true  "Puntos con signo y nota obligatoria"
// @Success      200   {object}  dto.LoyaltyResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/loyalty/adjust [post]
func (h *LoyaltyHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustPointsRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.engine.Adjust(c.Context(), GetUserID(c), &in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Expire godoc
// @Summary      Expirar puntos de un cliente
// @Tags         loyalty
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ExpirePointsRequest  true  "Cliente y puntos a expirar"
// @Success      200   {object}  dto.LoyaltyResultResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/loyalty/expire [post]
func (h *LoyaltyHandler) Expire(c *fiber.Ctx) error {
	var in dto.ExpirePointsRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.engine.Expire(c.Context(), GetUserID(c), &in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetProgram godoc
// @Summary      Consultar el programa de fidelización
// @Tags         loyalty
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.LoyaltyProgramResponse
// @Failure      404  {object}  dto.ErrorResponse  "No hay programa configurado"
// @Router       /api/loyalty/program [get]
func (h *LoyaltyHandler) GetProgram(c *fiber.Ctx) error {
	out, err := h.queries.GetProgram(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// SaveProgram godoc
// @Summary      Crear o actualizar el programa de fidelización
// @Tags         loyalty
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SaveLoyaltyProgramRequest  true  "Tasas, niveles y estado"
// @Success      200   {object}  dto.LoyaltyProgramResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/loyalty/program [put]
func (h *LoyaltyHandler) SaveProgram(c *fiber.Ctx) error {
	var in dto.SaveLoyaltyProgramRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.engine.SaveProgram(c.Context(), &in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Transactions godoc
// @Summary      Historial de puntos de un cliente
// @Tags         loyalty
// @Security     Bearer
// @Produce      json
// @Param        customerId  path   string  true   "ID del cliente"
// @Param        limit       query  int     false  "Límite"  default(20)
// @Param        offset      query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.LoyaltyTransactionListResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/loyalty/customers/{customerId}/transactions [get]
func (h *LoyaltyHandler) Transactions(c *fiber.Ctx) error {
	out, err := h.queries.ListTransactions(c.Context(), c.Params("customerId"), parsePage(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
