package eventbus_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Pos-api/internal/domain/event"
	"github.com/jhoicas/Pos-api/internal/infrastructure/eventbus"
	"github.com/jhoicas/Pos-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func newBus() *eventbus.Bus {
	log := logger.New(logger.Config{Env: "production", Level: "error"})
	return eventbus.New(log)
}

// waitEvent espera la entrega asíncrona de un evento o falla por timeout.
func waitEvent(t *testing.T, ch <-chan event.Event) event.Event {
	t.Helper()
	select {
	case evt := <-ch:
		return evt
	case <-time.After(2 * time.Second):
		t.Fatal("el suscriptor no recibió el evento a tiempo")
		return nil
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: el suscriptor recibe el evento publicado bajo su nombre con el
// payload intacto.
func TestPublish_EntregaAlSuscriptor(t *testing.T) {
	bus := newBus()
	received := make(chan event.Event, 1)
	bus.Subscribe(event.NameSaleCreated, func(evt event.Event) { received <- evt })

	bus.Publish(event.SaleCreated{
		SaleID:        "s-1",
		OutletID:      "o-1",
		ReceiptNumber: "POS-20260301-1234",
		GrandTotal:    decimal.NewFromInt(72_150),
	})

	evt := waitEvent(t, received)
	sale, ok := evt.(event.SaleCreated)
	require.True(t, ok, "el payload debe llegar con su tipo concreto")
	require.Equal(t, "s-1", sale.SaleID)
	require.True(t, sale.GrandTotal.Equal(decimal.NewFromInt(72_150)), "el total debe viajar intacto")
}

// Caso 2: todos los suscriptores del mismo nombre reciben el evento.
func TestPublish_MultiplesSuscriptores(t *testing.T) {
	bus := newBus()
	first := make(chan event.Event, 1)
	second := make(chan event.Event, 1)
	bus.Subscribe(event.NameStockLevelChanged, func(evt event.Event) { first <- evt })
	bus.Subscribe(event.NameStockLevelChanged, func(evt event.Event) { second <- evt })

	bus.Publish(event.StockLevelChanged{ProductID: "p-1", MovementType: "sale"})

	waitEvent(t, first)
	waitEvent(t, second)
}

// Caso 3: un suscriptor registrado bajo otro nombre no recibe nada.
func TestPublish_NombreDistintoNoRecibe(t *testing.T) {
	bus := newBus()
	sales := make(chan event.Event, 1)
	other := make(chan event.Event, 1)
	bus.Subscribe(event.NameSaleCreated, func(evt event.Event) { sales <- evt })
	bus.Subscribe(event.NameCreditPaymentRecorded, func(evt event.Event) { other <- evt })

	bus.Publish(event.SaleCreated{SaleID: "s-2"})

	waitEvent(t, sales)
	select {
	case <-other:
		t.Fatal("el suscriptor de otro evento no debía recibir nada")
	case <-time.After(100 * time.Millisecond):
	}
}

// Caso 4: un pánico en un suscriptor se recupera y descarta; los demás reciben
// el evento y el bus sigue entregando los posteriores.
func TestPublish_PanicoNoDerribaElBus(t *testing.T) {
	bus := newBus()
	panicked := make(chan struct{}, 2)
	healthy := make(chan event.Event, 2)
	bus.Subscribe(event.NameLoyaltyPointsChanged, func(event.Event) {
		panicked <- struct{}{}
		panic("suscriptor roto")
	})
	bus.Subscribe(event.NameLoyaltyPointsChanged, func(evt event.Event) { healthy <- evt })

	bus.Publish(event.LoyaltyPointsChanged{CustomerID: "c-1", Points: 120})

	select {
	case <-panicked:
	case <-time.After(2 * time.Second):
		t.Fatal("el suscriptor roto nunca corrió")
	}
	waitEvent(t, healthy)

	bus.Publish(event.LoyaltyPointsChanged{CustomerID: "c-1", Points: -50})
	waitEvent(t, healthy)
}
