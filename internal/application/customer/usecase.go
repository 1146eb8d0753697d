// Package customer administra el padrón de clientes y sus campos derivados
// (deuda viva, total gastado, visitas, puntos y nivel). Los derivados se
// mantienen con incrementos atómicos desde los casos de uso de ventas, crédito
// y fidelización; aquí vive además la recomputación completa desde los libros.
package customer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Pos-api/internal/application/dto"
	"github.com/jhoicas/Pos-api/internal/domain"
	"github.com/jhoicas/Pos-api/internal/domain/entity"
	rules "github.com/jhoicas/Pos-api/internal/domain/loyalty"
	"github.com/jhoicas/Pos-api/internal/domain/repository"
	"github.com/jhoicas/Pos-api/pkg/logger"
)

// UseCase casos de uso del padrón de clientes.
type UseCase struct {
	customerRepo repository.CustomerRepository
	txRunner     TxRunner
	log          *logger.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(customerRepo repository.CustomerRepository, txRunner TxRunner, log *logger.Logger) *UseCase {
	return &UseCase{
		customerRepo: customerRepo,
		txRunner:     txRunner,
		log:          log.Component("customer"),
	}
}

// Create registra un cliente. El documento, si viene, debe ser único.
func (uc *UseCase) Create(ctx context.Context, in *dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	if in == nil || strings.TrimSpace(in.Name) == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.DocumentID != "" {
		existing, err := uc.customerRepo.GetByDocument(in.DocumentID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, domain.ErrDuplicate
		}
	}
	now := time.Now()
	customer := &entity.Customer{
		ID:            uuid.New().String(),
		Name:          in.Name,
		DocumentID:    in.DocumentID,
		Email:         in.Email,
		Phone:         in.Phone,
		Address:       in.Address,
		CreditBalance: decimal.Zero,
		TotalSpent:    decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.customerRepo.Create(customer); err != nil {
		return nil, err
	}
	uc.log.Info().Str("customer_id", customer.ID).Msg("cliente creado")
	return toCustomerResponse(customer), nil
}

// Get devuelve un cliente por ID.
func (uc *UseCase) Get(ctx context.Context, id string) (*dto.CustomerResponse, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	customer, err := uc.customerRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, domain.ErrCustomerNotFound
	}
	return toCustomerResponse(customer), nil
}

// GetByDocument busca un cliente por NIT o cédula.
func (uc *UseCase) GetByDocument(ctx context.Context, documentID string) (*dto.CustomerResponse, error) {
	if strings.TrimSpace(documentID) == "" {
		return nil, domain.ErrInvalidInput
	}
	customer, err := uc.customerRepo.GetByDocument(documentID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, domain.ErrCustomerNotFound
	}
	return toCustomerResponse(customer), nil
}

// List lista clientes paginados.
func (uc *UseCase) List(ctx context.Context, page dto.PageRequest) (*dto.CustomerListResponse, error) {
	page.DefaultPage()
	customers, err := uc.customerRepo.List(page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CustomerResponse, 0, len(customers))
	for _, c := range customers {
		items = append(items, *toCustomerResponse(c))
	}
	return &dto.CustomerListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Update modifica los datos de contacto. Los campos derivados no se tocan por
// aquí.
func (uc *UseCase) Update(ctx context.Context, id string, in *dto.UpdateCustomerRequest) (*dto.CustomerResponse, error) {
	if id == "" || in == nil {
		return nil, domain.ErrInvalidInput
	}
	customer, err := uc.customerRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, domain.ErrCustomerNotFound
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, domain.ErrInvalidInput
		}
		customer.Name = *in.Name
	}
	if in.Email != nil {
		customer.Email = *in.Email
	}
	if in.Phone != nil {
		customer.Phone = *in.Phone
	}
	if in.Address != nil {
		customer.Address = *in.Address
	}
	customer.UpdatedAt = time.Now()
	if err := uc.customerRepo.Update(customer); err != nil {
		return nil, err
	}
	return toCustomerResponse(customer), nil
}

// Delete elimina un cliente sin deuda viva.
func (uc *UseCase) Delete(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrInvalidInput
	}
	customer, err := uc.customerRepo.GetByID(id)
	if err != nil {
		return err
	}
	if customer == nil {
		return domain.ErrCustomerNotFound
	}
	if customer.CreditBalance.GreaterThan(decimal.Zero) {
		return domain.ErrConflict
	}
	if err := uc.customerRepo.Delete(id); err != nil {
		return err
	}
	uc.log.Info().Str("customer_id", id).Msg("cliente eliminado")
	return nil
}

// RecomputeRollups reconstruye los cinco campos derivados desde los libros:
// total gastado y visitas desde las ventas vivas, deuda desde las cuentas por
// cobrar con venta padre viva, puntos desde el libro de fidelización y el
// nivel desde el programa activo (sin programa queda vacío). Sobreescribe los
// valores incrementales; sirve para verificar o reparar deriva.
func (uc *UseCase) RecomputeRollups(ctx context.Context, customerID string) (*dto.CustomerResponse, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, domain.ErrInvalidInput
	}
	var out *entity.Customer
	err := uc.txRunner.RunRollup(ctx, func(
		saleRepo repository.SaleRepository,
		creditRepo repository.CreditSaleRepository,
		loyaltyRepo repository.LoyaltyRepository,
		customerRepo repository.CustomerRepository,
	) error {
		customer, err := customerRepo.GetByID(customerID)
		if err != nil {
			return fmt.Errorf("consultar cliente: %w", err)
		}
		if customer == nil {
			return domain.ErrCustomerNotFound
		}
		totals, err := saleRepo.GetCustomerTotals(customerID)
		if err != nil {
			return fmt.Errorf("totales de ventas: %w", err)
		}
		outstanding, err := creditRepo.SumOutstandingByCustomer(customerID)
		if err != nil {
			return fmt.Errorf("deuda viva: %w", err)
		}
		points, err := loyaltyRepo.SumPointsByCustomer(customerID)
		if err != nil {
			return fmt.Errorf("suma del libro de puntos: %w", err)
		}
		program, err := loyaltyRepo.GetActiveProgram()
		if err != nil {
			return fmt.Errorf("consultar programa: %w", err)
		}
		tier := ""
		if program != nil {
			if t, ok := rules.TierFor(points, program.Tiers); ok {
				tier = t.Name
			}
		}
		customer.CreditBalance = outstanding
		customer.TotalSpent = totals.TotalSpent
		customer.VisitCount = totals.VisitCount
		customer.LoyaltyPoints = points
		customer.LoyaltyTier = tier
		customer.UpdatedAt = time.Now()
		if err := customerRepo.SetRollups(customer); err != nil {
			return fmt.Errorf("sobreescribir rollups: %w", err)
		}
		out = customer
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("customer_id", out.ID).
		Str("total_spent", out.TotalSpent.String()).
		Int64("visits", out.VisitCount).
		Str("credit_balance", out.CreditBalance.String()).
		Int64("points", out.LoyaltyPoints).
		Msg("rollups recomputados desde los libros")
	return toCustomerResponse(out), nil
}

func toCustomerResponse(c *entity.Customer) *dto.CustomerResponse {
	return &dto.CustomerResponse{
		ID:            c.ID,
		Name:          c.Name,
		DocumentID:    c.DocumentID,
		Email:         c.Email,
		Phone:         c.Phone,
		Address:       c.Address,
		CreditBalance: c.CreditBalance,
		TotalSpent:    c.TotalSpent,
		VisitCount:    c.VisitCount,
		LoyaltyPoints: c.LoyaltyPoints,
		LoyaltyTier:   c.LoyaltyTier,
		CreatedAt:     c.CreatedAt,
	}
}
