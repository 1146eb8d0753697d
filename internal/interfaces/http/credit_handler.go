package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Pos-api/internal/application/credit"
	"github.com/jhoicas/Pos-api/internal/application/dto"
)

// CreditHandler maneja las cuentas por cobrar del fiado (protegido).
type CreditHandler struct {
	ledger  *credit.LedgerUseCase
	queries *credit.QueryUseCase
}

// NewCreditHandler construye el handler.
func NewCreditHandler(ledger *credit.LedgerUseCase, queries *credit.QueryUseCase) *CreditHandler {
	return &CreditHandler{ledger: ledger, queries: queries}
}

// RecordPayment godoc
// @Summary      Registrar abono a una venta a crédito
// @Description  Un abono mayor al saldo pendiente se rechaza completo, nunca se recorta. Al llegar a cero la venta pasa a completada.
// @Tags         credits
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la cuenta por cobrar"
// @Param        body  body  dto.RecordCreditPaymentRequest  true  "Monto y método del abono"
// @Success      200   {object}  dto.CreditSaleResponse
// @Failure      409   {object}  dto.ErrorResponse  "Abono excede el saldo o cuenta ya saldada"
// @Router       /api/credits/{id}/payments [post]
func (h *CreditHandler) RecordPayment(c *fiber.Ctx) error {
	var in dto.RecordCreditPaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.ledger.RecordPayment(c.Context(), GetUserID(c), c.Params("id"), &in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener cuenta por cobrar con sus abonos
// @Tags         credits
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la cuenta por cobrar"
// @Success      200  {object}  dto.CreditSaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/credits/{id} [get]
func (h *CreditHandler) Get(c *fiber.Ctx) error {
	out, err := h.queries.GetCreditSale(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetBySale godoc
// @Summary      Obtener la cuenta por cobrar de una venta
// @Tags         credits
// @Security     Bearer
// @Produce      json
// @Param        saleId  path  string  true  "ID de la venta"
// @Success      200  {object}  dto.CreditSaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/credits/sale/{saleId} [get]
func (h *CreditHandler) GetBySale(c *fiber.Ctx) error {
	out, err := h.queries.GetBySale(c.Context(), c.Params("saleId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar cuentas por cobrar
// @Description  Con customer_id lista las del cliente; sin filtro lista las pendientes de todo el negocio.
// @Tags         credits
// @Security     Bearer
// @Produce      json
// @Param        customer_id  query  string  false  "ID del cliente"
// @Param        limit        query  int     false  "Límite"  default(20)
// @Param        offset       query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.CreditSaleListResponse
// @Router       /api/credits [get]
func (h *CreditHandler) List(c *fiber.Ctx) error {
	page := parsePage(c)
	if customerID := c.Query("customer_id"); customerID != "" {
		out, err := h.queries.ListByCustomer(c.Context(), customerID, page)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(out)
	}
	out, err := h.queries.ListOutstanding(c.Context(), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
