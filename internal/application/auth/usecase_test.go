package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Pos-api/internal/application/auth"
	"github.com/jhoicas/Pos-api/internal/application/dto"
	"github.com/jhoicas/Pos-api/internal/domain"
	"github.com/jhoicas/Pos-api/internal/domain/entity"
	"github.com/jhoicas/Pos-api/internal/domain/repository"
	"github.com/jhoicas/Pos-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes mínimos de usuarios y sedes
// ──────────────────────────────────────────────────────────────────────────────

const (
	outletID  = "00000000-0000-0000-0000-0000000000a1"
	jwtSecret = "secreto-de-prueba"
)

type authStore struct {
	users   map[string]*entity.User
	outlets map[string]*entity.Outlet
}

func seedAuthStore() *authStore {
	return &authStore{
		users: map[string]*entity.User{},
		outlets: map[string]*entity.Outlet{
			outletID: {ID: outletID, Name: "Sede Centro"},
		},
	}
}

type stubUserRepo struct{ s *authStore }

var _ repository.UserRepository = (*stubUserRepo)(nil)

func (r *stubUserRepo) Create(u *entity.User) error {
	cp := *u
	r.s.users[u.ID] = &cp
	return nil
}

func (r *stubUserRepo) GetByID(id string) (*entity.User, error) {
	if u, ok := r.s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *stubUserRepo) GetByEmail(email string) (*entity.User, error) {
	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *stubUserRepo) Update(u *entity.User) error {
	cp := *u
	r.s.users[u.ID] = &cp
	return nil
}

func (r *stubUserRepo) List(int, int) ([]*entity.User, error) { return nil, nil }

func (r *stubUserRepo) Delete(id string) error {
	delete(r.s.users, id)
	return nil
}

type stubOutletRepo struct{ s *authStore }

var _ repository.OutletRepository = (*stubOutletRepo)(nil)

func (r *stubOutletRepo) Create(*entity.Outlet) error { return nil }
func (r *stubOutletRepo) GetByID(id string) (*entity.Outlet, error) {
	if o, ok := r.s.outlets[id]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, nil
}
func (r *stubOutletRepo) List(int, int) ([]*entity.Outlet, error) { return nil, nil }
func (r *stubOutletRepo) Update(*entity.Outlet) error             { return nil }
func (r *stubOutletRepo) Delete(string) error                     { return nil }

func newAuth(s *authStore) *auth.UseCase {
	cfg := auth.JWTConfig{Secret: jwtSecret, ExpMinutes: 60, Issuer: "pos-api"}
	return auth.NewUseCase(&stubUserRepo{s: s}, &stubOutletRepo{s: s}, cfg)
}

func register(email, password string) *dto.RegisterRequest {
	return &dto.RegisterRequest{
		Email:    email,
		Password: password,
		Name:     "Laura Gómez",
		OutletID: outletID,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: registro y login; el token emitido lleva usuario, sede y rol, y el
// password nunca queda en plano.
func TestRegisterYLogin(t *testing.T) {
	store := seedAuthStore()
	uc := newAuth(store)
	ctx := context.Background()

	resp, err := uc.Register(ctx, register("cajera@tienda.co", "superSegura1"))
	require.NoError(t, err)
	assert.Equal(t, entity.RoleCashier, resp.Role, "sin rol explícito queda cashier")
	assert.Equal(t, "active", resp.Status)

	stored := store.users[resp.ID]
	require.NotNil(t, stored)
	assert.NotEqual(t, "superSegura1", stored.PasswordHash, "el password se persiste hasheado")
	assert.NotEmpty(t, stored.PasswordHash)

	login, err := uc.Login(ctx, &dto.LoginRequest{Email: "cajera@tienda.co", Password: "superSegura1"})
	require.NoError(t, err)
	require.NotEmpty(t, login.Token)
	assert.Equal(t, resp.ID, login.User.ID)

	userID, tokenOutlet, role, err := jwt.Parse(jwtSecret, login.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.ID, userID)
	assert.Equal(t, outletID, tokenOutlet)
	assert.Equal(t, entity.RoleCashier, role)
}

// Caso 2: el mismo email no se registra dos veces.
func TestRegister_EmailDuplicado(t *testing.T) {
	store := seedAuthStore()
	uc := newAuth(store)
	ctx := context.Background()

	_, err := uc.Register(ctx, register("cajera@tienda.co", "superSegura1"))
	require.NoError(t, err)

	_, err = uc.Register(ctx, register("cajera@tienda.co", "otraClave99"))
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

// Caso 3: entradas que el registro rechaza.
func TestRegister_EntradasInvalidas(t *testing.T) {
	store := seedAuthStore()
	uc := newAuth(store)
	ctx := context.Background()

	_, err := uc.Register(ctx, register("corta@tienda.co", "corta"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "password de menos de 8 caracteres")

	in := register("rolraro@tienda.co", "superSegura1")
	in.Role = "superusuario"
	_, err = uc.Register(ctx, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "rol desconocido")

	in = register("sinsede@tienda.co", "superSegura1")
	in.OutletID = "99999999-0000-0000-0000-000000000000"
	_, err = uc.Register(ctx, in)
	assert.ErrorIs(t, err, domain.ErrNotFound, "la sede asignada debe existir")
}

// Caso 4: credenciales incorrectas y usuarios no activos no entran.
func TestLogin_Rechazos(t *testing.T) {
	store := seedAuthStore()
	uc := newAuth(store)
	ctx := context.Background()

	resp, err := uc.Register(ctx, register("cajera@tienda.co", "superSegura1"))
	require.NoError(t, err)

	_, err = uc.Login(ctx, &dto.LoginRequest{Email: "nadie@tienda.co", Password: "superSegura1"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = uc.Login(ctx, &dto.LoginRequest{Email: "cajera@tienda.co", Password: "equivocada"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	store.users[resp.ID].Status = "suspended"
	_, err = uc.Login(ctx, &dto.LoginRequest{Email: "cajera@tienda.co", Password: "superSegura1"})
	assert.ErrorIs(t, err, domain.ErrForbidden, "un usuario suspendido no entra")
}
