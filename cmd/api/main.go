package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Pos-api/internal/application/auth"
	"github.com/jhoicas/Pos-api/internal/application/credit"
	"github.com/jhoicas/Pos-api/internal/application/customer"
	"github.com/jhoicas/Pos-api/internal/application/loyalty"
	"github.com/jhoicas/Pos-api/internal/application/sale"
	"github.com/jhoicas/Pos-api/internal/application/shift"
	"github.com/jhoicas/Pos-api/internal/application/stock"
	"github.com/jhoicas/Pos-api/internal/application/usecase"
	domfiscal "github.com/jhoicas/Pos-api/internal/domain/fiscal"
	"github.com/jhoicas/Pos-api/internal/infrastructure/eventbus"
	infrafiscal "github.com/jhoicas/Pos-api/internal/infrastructure/fiscal"
	infrapdf "github.com/jhoicas/Pos-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Pos-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Pos-api/internal/jobs"
	httpRouter "github.com/jhoicas/Pos-api/internal/interfaces/http"
	"github.com/jhoicas/Pos-api/pkg/config"
	"github.com/jhoicas/Pos-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	// Con sello fiscal activo el NIT del negocio debe traer un dígito de
	// verificación correcto; un NIT mal digitado invalidaría todos los CUDE.
	if cfg.Fiscal.NIT != "" {
		if err := domfiscal.ValidateNIT(cfg.Fiscal.NIT); err != nil {
			log.Fatal().Err(err).Msg("NIT del negocio")
		}
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.AutoMigrate {
		if err := postgres.RunMigrations(cfg.DB.ConnectionString(), cfg.DB.MigrationsPath); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		log.Info().Msg("migraciones aplicadas")
	}

	userRepo := postgres.NewUserRepository(pool)
	outletRepo := postgres.NewOutletRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	creditRepo := postgres.NewCreditSaleRepository(pool)
	shiftRepo := postgres.NewShiftRepository(pool)
	loyaltyRepo := postgres.NewLoyaltyRepository(pool)
	levelRepo := postgres.NewStockLevelRepository(pool)
	movementRepo := postgres.NewStockMovementRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	bus := eventbus.New(log)
	eventbus.RegisterAuditLog(bus, log)

	stockLedgerUC := stock.NewLedgerUseCase(txRunner, productRepo, outletRepo, bus)
	stockQueriesUC := stock.NewQueryUseCase(levelRepo, movementRepo)
	stockReconcileUC := stock.NewReconcileUseCase(levelRepo, log)

	loyaltyEngineUC := loyalty.NewEngineUseCase(txRunner, bus, log)
	loyaltyQueriesUC := loyalty.NewQueryUseCase(loyaltyRepo)

	checkoutUC := sale.NewCheckoutUseCase(
		txRunner, stockLedgerUC,
		productRepo, customerRepo, shiftRepo, levelRepo,
		loyaltyEngineUC, bus, domfiscal.NewCudeCalculatorService(),
		sale.Config{
			ReceiptPrefix: cfg.Sales.ReceiptPrefix,
			TaxRatePct:    decimal.NewFromFloat(cfg.Sales.TaxRatePct),
			FiscalNIT:     cfg.Fiscal.NIT,
			SoftwarePin:   cfg.Fiscal.SoftwarePin,
			Environment:   cfg.Fiscal.Environment,
		},
		log,
	)
	saleQueriesUC := sale.NewQueryUseCase(saleRepo)
	saleDocumentsUC := sale.NewDocumentUseCase(
		saleRepo, outletRepo, customerRepo, userRepo,
		infrapdf.NewReceiptGenerator(), infrafiscal.NewDocumentBuilder(),
		sale.BusinessInfo{
			Name:        cfg.Fiscal.BusinessName,
			NIT:         cfg.Fiscal.NIT,
			Environment: cfg.Fiscal.Environment,
		},
	)

	creditLedgerUC := credit.NewLedgerUseCase(txRunner, bus, log)
	creditQueriesUC := credit.NewQueryUseCase(creditRepo)

	customerUC := customer.NewUseCase(customerRepo, txRunner, log)
	// El repositorio de ventas hace de libro de caja para el cierre de turno.
	shiftUC := shift.NewUseCase(shiftRepo, saleRepo, outletRepo, log)

	authUC := auth.NewUseCase(userRepo, outletRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	userUC := usecase.NewUserUseCase(userRepo, outletRepo)
	outletUC := usecase.NewOutletUseCase(outletRepo)
	productUC := usecase.NewProductUseCase(productRepo)

	scheduler := jobs.NewScheduler(stockReconcileUC, outletRepo, log)
	if err := scheduler.Start(cfg.Jobs.ReconcileSpec); err != nil {
		log.Fatal().Err(err).Msg("planificador de tareas")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    cfg.App.Name,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:         authUC,
		UserUC:         userUC,
		OutletUC:       outletUC,
		ProductUC:      productUC,
		CustomerUC:     customerUC,
		ShiftUC:        shiftUC,
		Checkout:       checkoutUC,
		SaleQueries:    saleQueriesUC,
		SaleDocuments:  saleDocumentsUC,
		StockLedger:    stockLedgerUC,
		StockQueries:   stockQueriesUC,
		StockReconcile: stockReconcileUC,
		CreditLedger:   creditLedgerUC,
		CreditQueries:  creditQueriesUC,
		LoyaltyEngine:  loyaltyEngineUC,
		LoyaltyQueries: loyaltyQueriesUC,
		JWTSecret:      cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	scheduler.Stop()

	log.Info().Msg("aplicación detenida")
}
