package shift_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Pos-api/internal/application/dto"
	"github.com/jhoicas/Pos-api/internal/application/shift"
	"github.com/jhoicas/Pos-api/internal/domain"
	"github.com/jhoicas/Pos-api/internal/domain/entity"
	"github.com/jhoicas/Pos-api/internal/domain/repository"
	"github.com/jhoicas/Pos-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes mínimos de turnos de caja
// ──────────────────────────────────────────────────────────────────────────────

const (
	outletID  = "00000000-0000-0000-0000-0000000000o1"
	cashierID = "00000000-0000-0000-0000-0000000000u1"
	otherID   = "00000000-0000-0000-0000-0000000000u2"
)

type shiftStore struct {
	shifts  map[string]*entity.Shift
	outlets map[string]*entity.Outlet
	cash    map[string]decimal.Decimal // efectivo vendido por turno
}

func newShiftStore() *shiftStore {
	return &shiftStore{
		shifts:  map[string]*entity.Shift{},
		outlets: map[string]*entity.Outlet{outletID: {ID: outletID, Name: "Sede Centro"}},
		cash:    map[string]decimal.Decimal{},
	}
}

type stubShiftRepo struct{ s *shiftStore }

var _ repository.ShiftRepository = (*stubShiftRepo)(nil)

func (r *stubShiftRepo) Create(sh *entity.Shift) error {
	cp := *sh
	r.s.shifts[sh.ID] = &cp
	return nil
}

func (r *stubShiftRepo) GetByID(id string) (*entity.Shift, error) {
	if sh, ok := r.s.shifts[id]; ok {
		cp := *sh
		return &cp, nil
	}
	return nil, nil
}

func (r *stubShiftRepo) GetOpenByOutletAndUser(oID, uID string) (*entity.Shift, error) {
	for _, sh := range r.s.shifts {
		if sh.OutletID == oID && sh.UserID == uID && sh.Status == entity.ShiftStatusOpen {
			cp := *sh
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *stubShiftRepo) Update(sh *entity.Shift) error {
	if _, ok := r.s.shifts[sh.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *sh
	r.s.shifts[sh.ID] = &cp
	return nil
}

func (r *stubShiftRepo) ListByOutlet(oID string, limit, offset int) ([]*entity.Shift, error) {
	var out []*entity.Shift
	for _, sh := range r.s.shifts {
		if sh.OutletID == oID {
			cp := *sh
			out = append(out, &cp)
		}
	}
	return out, nil
}

type stubCashLedger struct{ s *shiftStore }

var _ shift.CashLedger = (*stubCashLedger)(nil)

func (r *stubCashLedger) SumCashPaymentsByShift(shiftID string) (decimal.Decimal, error) {
	if sum, ok := r.s.cash[shiftID]; ok {
		return sum, nil
	}
	return decimal.Zero, nil
}

type stubOutletRepo struct{ s *shiftStore }

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

func newUseCase(s *shiftStore) *shift.UseCase {
	return shift.NewUseCase(
		&stubShiftRepo{s: s},
		&stubCashLedger{s: s},
		&stubOutletRepo{s: s},
		logger.New(logger.Config{Env: "production", Level: "error"}),
	)
}

func eqDec(t *testing.T, want int64, got decimal.Decimal, msg string) {
	t.Helper()
	assert.True(t, got.Equal(decimal.NewFromInt(want)), "%s: esperado %d, obtenido %s", msg, want, got)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: apertura con base; una segunda apertura del mismo cajero en el mismo
// punto se rechaza mientras la primera siga abierta.
func TestOpen_UnTurnoAbiertoPorCajero(t *testing.T) {
	store := newShiftStore()
	uc := newUseCase(store)
	ctx := context.Background()

	resp, err := uc.Open(ctx, cashierID, &dto.OpenShiftRequest{
		OutletID:    outletID,
		OpeningCash: decimal.NewFromInt(50_000),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.ShiftStatusOpen, resp.Status)
	eqDec(t, 50_000, resp.OpeningCash, "base de apertura")

	_, err = uc.Open(ctx, cashierID, &dto.OpenShiftRequest{OutletID: outletID})
	assert.ErrorIs(t, err, domain.ErrShiftAlreadyOpen)

	// Otro cajero sí puede abrir su propio turno en el mismo punto.
	_, err = uc.Open(ctx, otherID, &dto.OpenShiftRequest{OutletID: outletID})
	require.NoError(t, err)
}

func TestOpen_OutletInexistente(t *testing.T) {
	store := newShiftStore()
	uc := newUseCase(store)

	_, err := uc.Open(context.Background(), cashierID, &dto.OpenShiftRequest{
		OutletID: "99999999-0000-0000-0000-000000000000",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Caso 2: el arqueo calcula el esperado (base + efectivo del turno) y deja la
// diferencia con signo.
func TestClose_ArqueoConDiferencia(t *testing.T) {
	store := newShiftStore()
	uc := newUseCase(store)
	ctx := context.Background()

	resp, err := uc.Open(ctx, cashierID, &dto.OpenShiftRequest{
		OutletID:    outletID,
		OpeningCash: decimal.NewFromInt(50_000),
	})
	require.NoError(t, err)
	store.cash[resp.ID] = decimal.NewFromInt(370_000)

	closed, err := uc.Close(ctx, cashierID, resp.ID, &dto.CloseShiftRequest{
		ClosingCash: decimal.NewFromInt(415_000),
		Note:        "faltante reportado",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.ShiftStatusClosed, closed.Status)
	eqDec(t, 420_000, closed.ExpectedCash, "base 50.000 + efectivo 370.000")
	eqDec(t, 415_000, closed.ClosingCash, "declarado")
	eqDec(t, -5_000, closed.CashDifference, "faltante con signo")
	require.NotNil(t, closed.ClosedAt)

	// Cerrado el turno, el cajero puede abrir uno nuevo.
	_, err = uc.Open(ctx, cashierID, &dto.OpenShiftRequest{OutletID: outletID})
	require.NoError(t, err)
}

func TestClose_TurnoYaCerrado(t *testing.T) {
	store := newShiftStore()
	uc := newUseCase(store)
	ctx := context.Background()

	resp, err := uc.Open(ctx, cashierID, &dto.OpenShiftRequest{OutletID: outletID})
	require.NoError(t, err)
	_, err = uc.Close(ctx, cashierID, resp.ID, &dto.CloseShiftRequest{ClosingCash: decimal.Zero})
	require.NoError(t, err)

	_, err = uc.Close(ctx, cashierID, resp.ID, &dto.CloseShiftRequest{ClosingCash: decimal.Zero})
	assert.ErrorIs(t, err, domain.ErrShiftNotOpen)
}

// Caso 3: solo el cajero dueño del turno lo cierra.
func TestClose_DeOtroCajeroRechaza(t *testing.T) {
	store := newShiftStore()
	uc := newUseCase(store)
	ctx := context.Background()

	resp, err := uc.Open(ctx, cashierID, &dto.OpenShiftRequest{OutletID: outletID})
	require.NoError(t, err)

	_, err = uc.Close(ctx, otherID, resp.ID, &dto.CloseShiftRequest{ClosingCash: decimal.Zero})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, entity.ShiftStatusOpen, store.shifts[resp.ID].Status)
}

// Caso 4: GetCurrent retoma el turno abierto del cajero.
func TestGetCurrent_RetomaElTurno(t *testing.T) {
	store := newShiftStore()
	uc := newUseCase(store)
	ctx := context.Background()

	opened, err := uc.Open(ctx, cashierID, &dto.OpenShiftRequest{OutletID: outletID})
	require.NoError(t, err)

	current, err := uc.GetCurrent(ctx, outletID, cashierID)
	require.NoError(t, err)
	assert.Equal(t, opened.ID, current.ID)

	_, err = uc.GetCurrent(ctx, outletID, otherID)
	assert.ErrorIs(t, err, domain.ErrShiftNotFound,
		"sin turno abierto no hay sesión que retomar")
}
