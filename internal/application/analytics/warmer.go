package analytics

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/faturas-analytics/internal/domain/period"
)

const warmTaskTimeout = 2 * time.Minute

// WarmTask pide recalcular las vistas esenciales de un negocio.
type WarmTask struct {
	NIF    string
	Branch string
}

// Warmer recalcula en segundo plano las vistas más consultadas después de
// una limpieza de caché. La cola es acotada: Enqueue nunca bloquea.
type Warmer struct {
	svc     *Service
	tasks   chan WarmTask
	workers int
	log     zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWarmer construye el worker pool; no arranca goroutines hasta Start.
func NewWarmer(svc *Service, workers, queueSize int, log zerolog.Logger) *Warmer {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 16
	}
	return &Warmer{
		svc:     svc,
		tasks:   make(chan WarmTask, queueSize),
		workers: workers,
		log:     log,
	}
}

// Start lanza los workers. Llamar más de una vez no tiene efecto.
func (w *Warmer) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		return
	}
	ctx, w.cancel = context.WithCancel(ctx)
	for i := 0; i < w.workers; i++ {
		w.wg.Add(1)
		go w.loop(ctx, i)
	}
	w.log.Info().Int("workers", w.workers).Int("queue", cap(w.tasks)).Msg("warmer iniciado")
}

// Stop cancela los workers y espera a que terminen la tarea en curso.
func (w *Warmer) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	w.wg.Wait()
	w.log.Info().Msg("warmer detenido")
}

// Enqueue encola sin bloquear. Devuelve false si la cola está llena.
func (w *Warmer) Enqueue(nif, branch string) bool {
	select {
	case w.tasks <- WarmTask{NIF: nif, Branch: branch}:
		return true
	default:
		w.log.Warn().Str("nif", nif).Str("branch", branch).Msg("warmer: cola llena, tarea descartada")
		return false
	}
}

func (w *Warmer) loop(ctx context.Context, id int) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-w.tasks:
			taskCtx, cancel := context.WithTimeout(ctx, warmTaskTimeout)
			w.Warm(taskCtx, t.NIF, t.Branch)
			cancel()
			w.log.Debug().Int("worker", id).Str("nif", t.NIF).Msg("warmer: tarea completada")
		}
	}
}

// Warm recalcula resumen de hoy, productos de hoy y de ayer y mapa de calor
// de hoy, y registra la última actualización. Los errores se registran y se
// ignoran.
func (w *Warmer) Warm(ctx context.Context, nif, branch string) {
	q, err := NewQuery(nif, branch, period.Today)
	if err != nil {
		w.log.Warn().Err(err).Str("nif", nif).Msg("warmer: consulta inválida")
		return
	}

	steps := []struct {
		name string
		run  func() error
	}{
		{"resumen/0", func() error { _, err := w.svc.Summary(ctx, q); return err }},
		{"productos/0", func() error { _, err := w.svc.Products(ctx, q, 0); return err }},
		{"productos/1", func() error { _, err := w.svc.Products(ctx, q.WithCode(period.Yesterday), 0); return err }},
		{"heatmap/0", func() error { _, err := w.svc.Heatmap(ctx, q); return err }},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			w.log.Warn().Err(err).Str("nif", nif).Str("step", step.name).Msg("warmer: paso fallido")
		}
	}
	w.svc.MarkUpdated(ctx, nif, branch)
}
