package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Pos-api/internal/application/dto"
	"github.com/jhoicas/Pos-api/internal/application/stock"
	"github.com/jhoicas/Pos-api/internal/domain/entity"
	"github.com/jhoicas/Pos-api/internal/domain/repository"
)

// StockHandler maneja el libro de inventario (protegido).
type StockHandler struct {
	ledger    *stock.LedgerUseCase
	queries   *stock.QueryUseCase
	reconcile *stock.ReconcileUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(ledger *stock.LedgerUseCase, queries *stock.QueryUseCase, reconcile *stock.ReconcileUseCase) *StockHandler {
	return &StockHandler{ledger: ledger, queries: queries, reconcile: reconcile}
}

// Adjust godoc
// @Summary      Registrar movimiento manual de inventario
// @Description  Tipos: purchase, adjustment, waste, transfer. Los de venta los escribe la caja, no este endpoint.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustStockRequest  true  "Movimiento"
// @Success      201   {object}  dto.MessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "La salida dejaría la existencia negativa"
// @Router       /api/stock/movements [post]
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	err := h.ledger.AdjustStock(c.Context(), stock.AdjustInput{
		UserID:       GetUserID(c),
		OutletID:     in.OutletID,
		FromOutletID: in.FromOutletID,
		ToOutletID:   in.ToOutletID,
		ProductID:    in.ProductID,
		VariantID:    in.VariantID,
		Type:         in.Type,
		Quantity:     in.Quantity,
		Reference:    in.Reference,
		Note:         in.Note,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MessageResponse{Message: "movimiento registrado"})
}

// Level godoc
// @Summary      Existencia de una clave (sede, producto, variante)
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        outlet_id   query  string  true   "ID del punto de venta"
// @Param        product_id  query  string  true   "ID del producto"
// @Param        variant_id  query  string  false  "ID de la variante"
// @Success      200  {object}  dto.StockLevelResponse
// @Router       /api/stock/level [get]
func (h *StockHandler) Level(c *fiber.Ctx) error {
	outletID, productID := c.Query("outlet_id"), c.Query("product_id")
	if outletID == "" || productID == "" {
		return badRequest(c, "VALIDATION", "outlet_id y product_id son requeridos")
	}
	level, err := h.queries.GetLevel(outletID, productID, c.Query("variant_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toLevelResponse(level))
}

// Levels godoc
// @Summary      Existencias de una sede
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        outlet_id  query  string  true   "ID del punto de venta"
// @Param        limit      query  int     false  "Límite"  default(20)
// @Param        offset     query  int     false  "Offset"  default(0)
// @Success      200  {array}  dto.StockLevelResponse
// @Router       /api/stock/levels [get]
func (h *StockHandler) Levels(c *fiber.Ctx) error {
	outletID := c.Query("outlet_id")
	if outletID == "" {
		return badRequest(c, "VALIDATION", "outlet_id es requerido")
	}
	page := parsePage(c)
	levels, err := h.queries.ListLevels(outletID, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.StockLevelResponse, 0, len(levels))
	for _, l := range levels {
		out = append(out, toLevelResponse(l))
	}
	return c.JSON(out)
}

// LowStock godoc
// @Summary      Existencias en o por debajo de su umbral de alerta
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        outlet_id  query  string  true  "ID del punto de venta"
// @Success      200  {array}  dto.StockLevelResponse
// @Router       /api/stock/low [get]
func (h *StockHandler) LowStock(c *fiber.Ctx) error {
	outletID := c.Query("outlet_id")
	if outletID == "" {
		return badRequest(c, "VALIDATION", "outlet_id es requerido")
	}
	levels, err := h.queries.ListLowStock(outletID)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.StockLevelResponse, 0, len(levels))
	for _, l := range levels {
		out = append(out, toLevelResponse(l))
	}
	return c.JSON(out)
}

// SetAlert godoc
// @Summary      Fijar umbral de alerta de bajo stock
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Param        body  body  dto.SetStockAlertRequest  true  "Clave y umbral (cero desactiva)"
// @Success      200   {object}  dto.MessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/stock/alert [put]
func (h *StockHandler) SetAlert(c *fiber.Ctx) error {
	var in dto.SetStockAlertRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if err := h.queries.SetAlertThreshold(in.OutletID, in.ProductID, in.VariantID, in.Threshold); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "umbral actualizado"})
}

// Movements godoc
// @Summary      Consultar el libro de movimientos
// @Description  Filtra por outlet_id o por product_id, con rango de fechas opcional (from/to, YYYY-MM-DD).
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        outlet_id   query  string  false  "ID del punto de venta"
// @Param        product_id  query  string  false  "ID del producto"
// @Param        from        query  string  false  "Fecha inicial (YYYY-MM-DD)"
// @Param        to          query  string  false  "Fecha final (YYYY-MM-DD)"
// @Param        limit       query  int     false  "Límite"  default(20)
// @Param        offset      query  int     false  "Offset"  default(0)
// @Success      200  {array}  dto.StockMovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/movements [get]
func (h *StockHandler) Movements(c *fiber.Ctx) error {
	from, to, err := parseDateRange(c)
	if err != nil {
		return badRequest(c, "VALIDATION", "from/to deben tener formato YYYY-MM-DD")
	}
	page := parsePage(c)

	var movements []*entity.StockMovement
	if productID := c.Query("product_id"); productID != "" {
		movements, err = h.queries.ListMovementsByProduct(productID, from, to, page.Limit, page.Offset)
	} else if outletID := c.Query("outlet_id"); outletID != "" {
		movements, err = h.queries.ListMovementsByOutlet(outletID, from, to, page.Limit, page.Offset)
	} else {
		return badRequest(c, "VALIDATION", "se requiere outlet_id o product_id")
	}
	if err != nil {
		return respondError(c, err)
	}

	out := make([]dto.StockMovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, dto.StockMovementResponse{
			ID:               m.ID,
			OutletID:         m.OutletID,
			ProductID:        m.ProductID,
			VariantID:        m.VariantID,
			Type:             m.Type,
			Quantity:         m.Quantity,
			PreviousQuantity: m.PreviousQuantity,
			NewQuantity:      m.NewQuantity,
			Reference:        m.Reference,
			Note:             m.Note,
			CreatedAt:        m.CreatedAt,
			CreatedBy:        m.CreatedBy,
		})
	}
	return c.JSON(out)
}

// Discrepancies godoc
// @Summary      Conciliar existencias contra el libro
// @Description  Compara cada fila de existencias con la suma de sus movimientos y reporta las que no cuadran.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        outlet_id  query  string  true  "ID del punto de venta"
// @Success      200  {array}  dto.StockDiscrepancyResponse
// @Router       /api/stock/discrepancies [get]
func (h *StockHandler) Discrepancies(c *fiber.Ctx) error {
	outletID := c.Query("outlet_id")
	if outletID == "" {
		return badRequest(c, "VALIDATION", "outlet_id es requerido")
	}
	discrepancies, err := h.reconcile.Run(outletID)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.StockDiscrepancyResponse, 0, len(discrepancies))
	for _, d := range discrepancies {
		out = append(out, toDiscrepancyResponse(d))
	}
	return c.JSON(out)
}

func toLevelResponse(l *entity.StockLevel) dto.StockLevelResponse {
	return dto.StockLevelResponse{
		OutletID:      l.OutletID,
		ProductID:     l.ProductID,
		VariantID:     l.VariantID,
		Quantity:      l.Quantity,
		LowStockAlert: l.LowStockAlert,
		UpdatedAt:     l.UpdatedAt,
	}
}

func toDiscrepancyResponse(d *repository.StockDiscrepancy) dto.StockDiscrepancyResponse {
	return dto.StockDiscrepancyResponse{
		OutletID:      d.OutletID,
		ProductID:     d.ProductID,
		VariantID:     d.VariantID,
		LevelQuantity: d.LevelQuantity,
		MovementSum:   d.MovementSum,
		Difference:    d.LevelQuantity.Sub(d.MovementSum),
	}
}
