package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Pos-api/internal/application/auth"
	"github.com/jhoicas/Pos-api/internal/application/credit"
	"github.com/jhoicas/Pos-api/internal/application/customer"
	"github.com/jhoicas/Pos-api/internal/application/loyalty"
	"github.com/jhoicas/Pos-api/internal/application/sale"
	"github.com/jhoicas/Pos-api/internal/application/shift"
	"github.com/jhoicas/Pos-api/internal/application/stock"
	"github.com/jhoicas/Pos-api/internal/application/usecase"
	"github.com/jhoicas/Pos-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC         *auth.UseCase
	UserUC         *usecase.UserUseCase
	OutletUC       *usecase.OutletUseCase
	ProductUC      *usecase.ProductUseCase
	CustomerUC     *customer.UseCase
	ShiftUC        *shift.UseCase
	Checkout       *sale.CheckoutUseCase
	SaleQueries    *sale.QueryUseCase
	SaleDocuments  *sale.DocumentUseCase
	StockLedger    *stock.LedgerUseCase
	StockQueries   *stock.QueryUseCase
	StockReconcile *stock.ReconcileUseCase
	CreditLedger   *credit.LedgerUseCase
	CreditQueries  *credit.QueryUseCase
	LoyaltyEngine  *loyalty.EngineUseCase
	LoyaltyQueries *loyalty.QueryUseCase
	JWTSecret      string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	manager := RequireRole(entity.RoleAdmin, entity.RoleManager)
	admin := RequireRole(entity.RoleAdmin)

	// Users: el propio perfil para cualquiera; administración solo admin.
	users := protected.Group("/users")
	userHandler := NewUserHandler(deps.UserUC)
	users.Get("/me", userHandler.Me)
	users.Put("/me/password", userHandler.ChangeMyPassword)
	users.Get("/", admin, userHandler.List)
	users.Get("/:id", admin, userHandler.Get)
	users.Put("/:id", admin, userHandler.Update)
	users.Delete("/:id", admin, userHandler.Delete)

	// Outlets: lectura para todos, escritura para manager/admin.
	outlets := protected.Group("/outlets")
	outletHandler := NewOutletHandler(deps.OutletUC)
	outlets.Get("/", outletHandler.List)
	outlets.Get("/:id", outletHandler.Get)
	outlets.Post("/", manager, outletHandler.Create)
	outlets.Put("/:id", manager, outletHandler.Update)
	outlets.Delete("/:id", manager, outletHandler.Delete)

	// Products: lectura para todos, escritura para manager/admin.
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/", productHandler.List)
	products.Get("/sku/:sku", productHandler.GetBySKU)
	products.Post("/", manager, productHandler.Create)
	products.Put("/variants/:variantId", manager, productHandler.UpdateVariant)
	products.Get("/:id", productHandler.Get)
	products.Put("/:id", manager, productHandler.Update)
	products.Delete("/:id", manager, productHandler.Delete)
	products.Post("/:id/variants", manager, productHandler.AddVariant)

	// Customers: la caja los gestiona; solo eliminar queda restringido.
	customers := protected.Group("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customers.Post("/", customerHandler.Create)
	customers.Get("/", customerHandler.List)
	customers.Get("/document/:documentId", customerHandler.GetByDocument)
	customers.Get("/:id", customerHandler.Get)
	customers.Put("/:id", customerHandler.Update)
	customers.Delete("/:id", manager, customerHandler.Delete)
	customers.Post("/:id/recompute", manager, customerHandler.Recompute)

	// Shifts: operación diaria de caja.
	shifts := protected.Group("/shifts")
	shiftHandler := NewShiftHandler(deps.ShiftUC)
	shifts.Post("/open", shiftHandler.Open)
	shifts.Get("/current", shiftHandler.Current)
	shifts.Get("/", shiftHandler.List)
	shifts.Post("/:id/close", shiftHandler.Close)
	shifts.Get("/:id", shiftHandler.Get)

	// Sales: crear y consultar para todos; anular y devolver para manager/admin.
	sales := protected.Group("/sales")
	saleHandler := NewSaleHandler(deps.Checkout, deps.SaleQueries, deps.SaleDocuments)
	sales.Post("/", saleHandler.Create)
	sales.Post("/credit", saleHandler.CreateCredit)
	sales.Get("/", saleHandler.List)
	sales.Get("/receipt/:number", saleHandler.GetByReceipt)
	sales.Get("/:id", saleHandler.Get)
	sales.Get("/:id/receipt.pdf", saleHandler.ReceiptPDF)
	sales.Get("/:id/fiscal.xml", saleHandler.FiscalXML)
	sales.Post("/:id/void", manager, saleHandler.Void)
	sales.Post("/:id/refund", manager, saleHandler.Refund)

	// Stock: consultas para todos; movimientos manuales y umbrales para
	// manager/admin (los movimientos de venta los escribe la caja).
	stockGroup := protected.Group("/stock")
	stockHandler := NewStockHandler(deps.StockLedger, deps.StockQueries, deps.StockReconcile)
	stockGroup.Get("/level", stockHandler.Level)
	stockGroup.Get("/levels", stockHandler.Levels)
	stockGroup.Get("/low", stockHandler.LowStock)
	stockGroup.Get("/movements", stockHandler.Movements)
	stockGroup.Get("/discrepancies", stockHandler.Discrepancies)
	stockGroup.Post("/movements", manager, stockHandler.Adjust)
	stockGroup.Put("/alert", manager, stockHandler.SetAlert)

	// Credits: el fiado se maneja desde la caja.
	credits := protected.Group("/credits")
	creditHandler := NewCreditHandler(deps.CreditLedger, deps.CreditQueries)
	credits.Get("/", creditHandler.List)
	credits.Get("/sale/:saleId", creditHandler.GetBySale)
	credits.Get("/:id", creditHandler.Get)
	credits.Post("/:id/payments", creditHandler.RecordPayment)

	// Loyalty: acreditar y redimir en caja; ajustes manuales solo admin.
	loyaltyGroup := protected.Group("/loyalty")
	loyaltyHandler := NewLoyaltyHandler(deps.LoyaltyEngine, deps.LoyaltyQueries)
	loyaltyGroup.Post("/earn", loyaltyHandler.Earn)
	loyaltyGroup.Post("/redeem", loyaltyHandler.Redeem)
	loyaltyGroup.Post("/adjust", admin, loyaltyHandler.Adjust)
	loyaltyGroup.Post("/expire", admin, loyaltyHandler.Expire)
	loyaltyGroup.Get("/program", loyaltyHandler.GetProgram)
	loyaltyGroup.Put("/program", manager, loyaltyHandler.SaveProgram)
	loyaltyGroup.Get("/customers/:customerId/transactions", loyaltyHandler.Transactions)
}
