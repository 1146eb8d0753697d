// Package eventbus implementa el publicador de eventos en proceso. La entrega
// es fire-and-forget y a lo sumo una vez: cada suscriptor corre en su propia
// goroutine, un pánico se registra y se descarta, y nada de lo que haga un
// suscriptor puede revertir la operación que originó el evento.
package eventbus

import (
	"sync"

	"github.com/jhoicas/Pos-api/internal/domain/event"
	"github.com/jhoicas/Pos-api/pkg/logger"
)

// Handler procesa un evento. No debe bloquear indefinidamente.
type Handler func(evt event.Event)

// Bus es el bus de eventos en proceso. Seguro para uso concurrente.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	log      *logger.Logger
}

// New construye el bus.
func New(log *logger.Logger) *Bus {
	return &Bus{
		handlers: make(map[string][]Handler),
		log:      log.Component("eventbus"),
	}
}

// Subscribe registra un handler para el nombre de evento dado. Los handlers
// se registran al arrancar la aplicación, antes de publicar nada.
func (b *Bus) Subscribe(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], h)
}

// Publish entrega el evento a todos los suscriptores de su nombre, cada uno en
// su propia goroutine. No espera a que terminen ni propaga sus errores.
func (b *Bus) Publish(evt event.Event) {
	b.mu.RLock()
	hs := b.handlers[evt.EventName()]
	b.mu.RUnlock()

	for _, h := range hs {
		go b.dispatch(h, evt)
	}
}

func (b *Bus) dispatch(h Handler, evt event.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().
				Str("event", evt.EventName()).
				Interface("panic", r).
				Msg("suscriptor en pánico; evento descartado")
		}
	}()
	h(evt)
}
