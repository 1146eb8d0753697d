package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Pos-api/internal/application/dto"
	"github.com/jhoicas/Pos-api/internal/application/sale"
)

// SaleHandler maneja la caja: creación de ventas, anulaciones, consultas y
// documentos (recibo PDF y documento equivalente XML).
type SaleHandler struct {
	checkout  *sale.CheckoutUseCase
	queries   *sale.QueryUseCase
	documents *sale.DocumentUseCase
}

// NewSaleHandler construye el handler.
func NewSaleHandler(checkout *sale.CheckoutUseCase, queries *sale.QueryUseCase, documents *sale.DocumentUseCase) *SaleHandler {
	return &SaleHandler{checkout: checkout, queries: queries, documents: documents}
}

// Create godoc
// @Summary      Crear venta
// @Description  Registra la venta completa en una transacción: valida turno y productos, descuenta inventario y aplica pagos.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSaleRequest  true  "Venta con líneas y pagos"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "Stock insuficiente o turno cerrado"
// @Router       /api/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.checkout.CreateSale(c.Context(), GetUserID(c), &in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// CreateCredit godoc
// @Summary      Crear venta a crédito (fiado)
// @Description  Igual que crear venta pero exige cliente y deja el saldo no pagado en cuentas por cobrar.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSaleRequest  true  "Venta con cliente; pagos opcionales como abono inicial"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales/credit [post]
func (h *SaleHandler) CreateCredit(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.checkout.CreateCreditSale(c.Context(), GetUserID(c), &in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Void godoc
// @Summary      Anular venta
// @Description  Marca la venta como anulada. No revierte inventario: si aplica, se registra un ajuste manual aparte.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la venta"
// @Param        body  body  dto.VoidSaleRequest  true  "Razón de la anulación"
// @Success      200   {object}  dto.SaleResponse
// @Failure      409   {object}  dto.ErrorResponse  "La venta no admite anulación"
// @Router       /api/sales/{id}/void [post]
func (h *SaleHandler) Void(c *fiber.Ctx) error {
	var in dto.VoidSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.checkout.VoidSale(c.Context(), GetUserID(c), c.Params("id"), in.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Refund godoc
// @Summary      Devolver venta
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la venta"
// @Param        body  body  dto.RefundSaleRequest  true  "Razón de la devolución"
// @Success      200   {object}  dto.SaleResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/refund [post]
func (h *SaleHandler) Refund(c *fiber.Ctx) error {
	var in dto.RefundSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.checkout.RefundSale(c.Context(), GetUserID(c), c.Params("id"), in.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener venta con detalle
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) Get(c *fiber.Ctx) error {
	out, err := h.queries.GetSale(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByReceipt godoc
// @Summary      Obtener venta por número de recibo
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        number  path  string  true  "Número de recibo"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/receipt/{number} [get]
func (h *SaleHandler) GetByReceipt(c *fiber.Ctx) error {
	out, err := h.queries.GetByReceipt(c.Context(), c.Params("number"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar ventas
// @Description  Filtra por shift_id, customer_id, o outlet_id con rango de fechas (from/to, YYYY-MM-DD).
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        shift_id     query  string  false  "ID del turno"
// @Param        customer_id  query  string  false  "ID del cliente"
// @Param        outlet_id    query  string  false  "ID del punto de venta"
// @Param        from         query  string  false  "Fecha inicial (YYYY-MM-DD)"
// @Param        to           query  string  false  "Fecha final (YYYY-MM-DD)"
// @Param        limit        query  int     false  "Límite"  default(20)
// @Param        offset       query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.SaleListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/sales [get]
func (h *SaleHandler) List(c *fiber.Ctx) error {
	page := parsePage(c)
	if shiftID := c.Query("shift_id"); shiftID != "" {
		out, err := h.queries.ListByShift(c.Context(), shiftID, page)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(out)
	}
	if customerID := c.Query("customer_id"); customerID != "" {
		out, err := h.queries.ListByCustomer(c.Context(), customerID, page)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(out)
	}
	outletID := c.Query("outlet_id")
	if outletID == "" {
		return badRequest(c, "VALIDATION", "se requiere shift_id, customer_id u outlet_id")
	}
	from, to, err := parseDateRange(c)
	if err != nil {
		return badRequest(c, "VALIDATION", "from/to deben tener formato YYYY-MM-DD")
	}
	out, err := h.queries.ListByOutlet(c.Context(), outletID, from, to, page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ReceiptPDF descarga la tirilla de la venta en PDF.
// GET /api/sales/:id/receipt.pdf
func (h *SaleHandler) ReceiptPDF(c *fiber.Ctx) error {
	pdf, filename, err := h.documents.ReceiptPDF(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdf)
}

// FiscalXML descarga el documento equivalente POS en XML. Solo existe para
// ventas con CUDE (modo fiscal configurado al momento de la venta).
// GET /api/sales/:id/fiscal.xml
func (h *SaleHandler) FiscalXML(c *fiber.Ctx) error {
	xml, filename, err := h.documents.FiscalXML(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/xml")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(xml)
}
