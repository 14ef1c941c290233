package email

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dropDatabas3/consultdesk/internal/metrics"
	"github.com/dropDatabas3/consultdesk/internal/observability/logger"
)

// TaskStatus es el estado observable de una tarea de la cola.
type TaskStatus string

const (
	TaskQueued  TaskStatus = "queued"
	TaskRunning TaskStatus = "running"
	TaskSent    TaskStatus = "sent"
	TaskFailed  TaskStatus = "failed"
	TaskDropped TaskStatus = "dropped"
)

// Terminal indica si el estado ya no cambia.
func (s TaskStatus) Terminal() bool {
	return s == TaskSent || s == TaskFailed || s == TaskDropped
}

// TaskState es la foto de una tarea.
type TaskState struct {
	ID        string     `json:"id"`
	EmailType string     `json:"email_type"`
	Status    TaskStatus `json:"status"`
	Attempts  int        `json:"attempts"`
	LastError string     `json:"last_error,omitempty"`
	LogIDs    []string   `json:"log_ids,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Sender es lo que la cola necesita del Client.
type Sender interface {
	Send(ctx context.Context, msg Message) (Result, error)
}

// RateGate es lo que la cola necesita del Limiter.
type RateGate interface {
	WithinLimit(ctx context.Context) bool
}

// QueueConfig dimensiona la cola.
type QueueConfig struct {
	Size         int
	Workers      int
	RetryMax     int
	RetryBackoff time.Duration
	MaxBackoff   time.Duration
	// MaxTracked acota cuántos estados terminales se recuerdan para Status.
	MaxTracked int
}

type task struct {
	id  string
	msg Message
}

// Queue es una cola acotada en memoria con workers, reintentos y backoff exponencial.
// Submit nunca bloquea: si la cola está llena devuelve ErrQueueFull.
type Queue struct {
	cfg     QueueConfig
	sender  Sender
	limiter RateGate

	tasks chan task

	mu     sync.RWMutex
	closed bool
	states map[string]*TaskState
	order  []string

	wg     sync.WaitGroup
	cancel context.CancelFunc

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) bool
}

// NewQueue crea la cola; los workers arrancan con Start.
func NewQueue(cfg QueueConfig, sender Sender, limiter RateGate) *Queue {
	if cfg.Size <= 0 {
		cfg.Size = 256
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.RetryMax < 0 {
		cfg.RetryMax = 0
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 2 * time.Second
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = time.Minute
	}
	if cfg.MaxTracked <= 0 {
		cfg.MaxTracked = cfg.Size * 4
	}
	return &Queue{
		cfg:     cfg,
		sender:  sender,
		limiter: limiter,
		tasks:   make(chan task, cfg.Size),
		states:  make(map[string]*TaskState),
		now:     time.Now,
		sleep:   sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Start lanza los workers. ctx es la base de los envíos: al cancelarse, los
// backoffs pendientes se abortan.
func (q *Queue) Start(ctx context.Context) {
	ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.cfg.Workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, i)
	}
}

// Submit encola msg y devuelve el id de la tarea.
func (q *Queue) Submit(msg Message) (string, error) {
	id := uuid.NewString()

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return "", ErrQueueClosed
	}
	select {
	case q.tasks <- task{id: id, msg: msg}:
	default:
		metrics.RecordQueueTask("rejected")
		return "", ErrQueueFull
	}
	q.track(&TaskState{ID: id, EmailType: msg.EmailType, Status: TaskQueued, UpdatedAt: q.now()})
	metrics.RecordQueueTask(string(TaskQueued))
	metrics.SetQueueDepth(len(q.tasks))
	return id, nil
}

// Status devuelve una copia del estado de la tarea.
func (q *Queue) Status(id string) (TaskState, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	st, ok := q.states[id]
	if !ok {
		return TaskState{}, false
	}
	cp := *st
	cp.LogIDs = append([]string(nil), st.LogIDs...)
	return cp, true
}

// Depth devuelve cuántas tareas esperan worker.
func (q *Queue) Depth() int { return len(q.tasks) }

// Shutdown deja de aceptar tareas y espera a que los workers drenen la cola.
// Si ctx vence antes, cancela los envíos en curso y devuelve ctx.Err().
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.tasks)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		if q.cancel != nil {
			q.cancel()
		}
		return nil
	case <-ctx.Done():
		if q.cancel != nil {
			q.cancel()
		}
		<-done
		return ctx.Err()
	}
}

// track registra el estado y poda los terminales más viejos hasta volver a
// MaxTracked. Las tareas vivas nunca se podan. Requiere q.mu.
func (q *Queue) track(st *TaskState) {
	q.states[st.ID] = st
	q.order = append(q.order, st.ID)

	excess := len(q.order) - q.cfg.MaxTracked
	if excess <= 0 {
		return
	}
	kept := q.order[:0]
	for _, id := range q.order {
		if excess > 0 {
			if s, ok := q.states[id]; !ok || s.Status.Terminal() {
				delete(q.states, id)
				excess--
				continue
			}
		}
		kept = append(kept, id)
	}
	clear(q.order[len(kept):])
	q.order = kept
}

func (q *Queue) update(id string, fn func(st *TaskState)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if st, ok := q.states[id]; ok {
		fn(st)
		st.UpdatedAt = q.now()
	}
}

func (q *Queue) worker(ctx context.Context, n int) {
	defer q.wg.Done()
	log := logger.L().With(logger.Component("email.queue"), logger.Int("worker", n))
	for t := range q.tasks {
		metrics.SetQueueDepth(len(q.tasks))
		q.process(ctx, log, t)
	}
}

// process ejecuta la tarea con reintentos. Sólo se reintenta cuando el limiter
// frena o cuando DiagnoseSMTP clasifica el fallo como temporal.
func (q *Queue) process(ctx context.Context, log *zap.Logger, t task) {
	log = log.With(logger.TaskID(t.id), logger.EmailType(t.msg.EmailType))
	sctx := logger.ToContext(ctx, log)

	finish := func(status TaskStatus, errMsg string) {
		q.update(t.id, func(st *TaskState) {
			st.Status = status
			if errMsg != "" {
				st.LastError = errMsg
			}
		})
		metrics.RecordQueueTask(string(status))
	}

	if ctx.Err() != nil {
		finish(TaskDropped, "queue shut down before send")
		return
	}

	for attempt := 1; ; attempt++ {
		q.update(t.id, func(st *TaskState) {
			st.Status = TaskRunning
			st.Attempts = attempt
		})

		var (
			wait   time.Duration
			reason string
			errMsg string
		)

		if q.limiter != nil && !q.limiter.WithinLimit(sctx) {
			reason, errMsg = "throttled", "hourly email limit reached"
		} else {
			res, err := q.sender.Send(sctx, t.msg)
			if res.LogID != "" {
				q.update(t.id, func(st *TaskState) { st.LogIDs = append(st.LogIDs, res.LogID) })
			}
			if err == nil {
				finish(TaskSent, "")
				return
			}
			errMsg = err.Error()

			switch {
			case errors.Is(err, ErrNotConfigured), errors.Is(err, ErrSuppressed), errors.Is(err, ErrInvalidMessage):
				log.Info("email task dropped", logger.Err(err))
				finish(TaskDropped, errMsg)
				return
			}
			diag := DiagnoseSMTP(err)
			if !diag.Temporary {
				log.Warn("email task failed permanently", logger.Attempt(attempt), logger.String("diag", diag.Code), logger.Err(err))
				finish(TaskFailed, errMsg)
				return
			}
			reason, wait = "transport", diag.RetryAfter
		}

		if attempt > q.cfg.RetryMax {
			log.Warn("email task retries exhausted", logger.Attempt(attempt), logger.String("last_error", errMsg))
			finish(TaskFailed, errMsg)
			return
		}

		if b := q.backoff(attempt); b > wait {
			wait = b
		}
		q.update(t.id, func(st *TaskState) {
			st.Status = TaskQueued
			st.LastError = errMsg
		})
		metrics.RecordQueueRetry(reason)
		log.Info("email task retry scheduled", logger.Attempt(attempt), logger.String("reason", reason), logger.Duration(wait))

		if !q.sleep(ctx, wait) {
			finish(TaskFailed, "shutdown before retry: "+errMsg)
			return
		}
	}
}

// backoff = base * 2^(attempt-1), con tope MaxBackoff.
func (q *Queue) backoff(attempt int) time.Duration {
	d := q.cfg.RetryBackoff
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= q.cfg.MaxBackoff {
			return q.cfg.MaxBackoff
		}
	}
	if d > q.cfg.MaxBackoff {
		return q.cfg.MaxBackoff
	}
	return d
}
