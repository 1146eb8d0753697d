// Package jobs programa las tareas de fondo del sistema. Hoy la única tarea
// es la conciliación nocturna de inventario, que recorre todos los puntos de
// venta y deja en el log las existencias que no cuadran con su libro.
package jobs

import (
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/jhoicas/Pos-api/internal/application/stock"
	"github.com/jhoicas/Pos-api/internal/domain/repository"
	"github.com/jhoicas/Pos-api/pkg/logger"
)

// Scheduler registra y ejecuta las tareas programadas.
type Scheduler struct {
	cron       *cron.Cron
	reconcile  *stock.ReconcileUseCase
	outletRepo repository.OutletRepository
	log        *logger.Logger
}

// NewScheduler construye el planificador sin arrancarlo.
func NewScheduler(reconcile *stock.ReconcileUseCase, outletRepo repository.OutletRepository, log *logger.Logger) *Scheduler {
	return &Scheduler{
		cron:       cron.New(),
		reconcile:  reconcile,
		outletRepo: outletRepo,
		log:        log,
	}
}

// Start programa la conciliación con la expresión cron dada y arranca el
// planificador. Con spec vacío no se programa nada.
func (s *Scheduler) Start(reconcileSpec string) error {
	if reconcileSpec != "" {
		if _, err := s.cron.AddFunc(reconcileSpec, s.runReconciliation); err != nil {
			return fmt.Errorf("jobs: programar conciliación (%q): %w", reconcileSpec, err)
		}
	}
	s.cron.Start()
	return nil
}

// Stop detiene el planificador y espera a que terminen las tareas en curso.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// runReconciliation recorre los puntos de venta en páginas y concilia cada
// uno. Un fallo en una sede no detiene las demás.
func (s *Scheduler) runReconciliation() {
	s.log.Info().Msg("conciliación de inventario programada: inicio")

	const pageSize = 100
	outletsDone := 0
	flagged := 0
	for offset := 0; ; offset += pageSize {
		outlets, err := s.outletRepo.List(pageSize, offset)
		if err != nil {
			s.log.Error().Err(err).Msg("conciliación: no se pudo listar puntos de venta")
			return
		}
		if len(outlets) == 0 {
			break
		}
		for _, o := range outlets {
			discrepancies, err := s.reconcile.Run(o.ID)
			if err != nil {
				s.log.Error().Err(err).Str("outlet_id", o.ID).Msg("conciliación: fallo en punto de venta")
				continue
			}
			outletsDone++
			flagged += len(discrepancies)
		}
		if len(outlets) < pageSize {
			break
		}
	}

	s.log.Info().
		Int("outlets", outletsDone).
		Int("discrepancias", flagged).
		Msg("conciliación de inventario programada: fin")
}
