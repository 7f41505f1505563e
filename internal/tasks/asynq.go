package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"travelapp/internal/config"
)

func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}
}

// Asynq publishes tasks to Redis and inspects their results.
type Asynq struct {
	cfg       Config
	client    *asynq.Client
	inspector *asynq.Inspector
}

func NewAsynq(opt asynq.RedisConnOpt, cfg Config) *Asynq {
	return &Asynq{
		cfg:       cfg,
		client:    asynq.NewClient(opt),
		inspector: asynq.NewInspector(opt),
	}
}

func (d *Asynq) Close() error {
	return errors.Join(d.client.Close(), d.inspector.Close())
}

func (d *Asynq) Enqueue(ctx context.Context, taskType string, payload any) (Info, error) {
	task, opts, err := d.newTask(taskType, payload)
	if err != nil {
		return Info{}, err
	}
	opts = append(opts, asynq.TaskID(uuid.NewString()))

	ti, err := d.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		return Info{}, fmt.Errorf("enqueue %s: %w", taskType, err)
	}
	return Info{ID: ti.ID, Type: ti.Type, Queue: ti.Queue}, nil
}

func (d *Asynq) newTask(taskType string, payload any) (*asynq.Task, []asynq.Option, error) {
	route, ok := d.cfg.Route(taskType)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownTask, taskType)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, fmt.Errorf("encode %s payload: %w", taskType, err)
	}
	return asynq.NewTask(taskType, body), taskOptions(route, d.cfg.ResultTTL), nil
}

func taskOptions(route Route, resultTTL time.Duration) []asynq.Option {
	opts := []asynq.Option{
		asynq.Queue(route.Queue),
		asynq.MaxRetry(route.MaxRetry),
	}
	if resultTTL > 0 {
		opts = append(opts, asynq.Retention(resultTTL))
	}
	if route.Timeout > 0 {
		opts = append(opts, asynq.Timeout(route.Timeout))
	}
	return opts
}

// Status searches every configured queue. Ids the broker no longer knows are
// reported as pending.
func (d *Asynq) Status(_ context.Context, taskID string) (Status, error) {
	for _, queue := range d.cfg.Queues() {
		info, err := d.inspector.GetTaskInfo(queue, taskID)
		if errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
			continue
		}
		if err != nil {
			return Status{}, fmt.Errorf("inspect task %s: %w", taskID, err)
		}
		return statusFromInfo(info), nil
	}
	return Status{TaskID: taskID, State: StatePending}, nil
}

func statusFromInfo(info *asynq.TaskInfo) Status {
	st := Status{
		TaskID:  info.ID,
		Type:    info.Type,
		Queue:   info.Queue,
		Retried: info.Retried,
		State:   StatePending,
	}
	switch info.State {
	case asynq.TaskStateCompleted:
		st.State = StateSuccess
		if len(info.Result) > 0 {
			st.Result = json.RawMessage(info.Result)
		}
	case asynq.TaskStateArchived:
		st.State = StateFailure
		st.Error = info.LastErr
	}
	return st
}

// Server consumes tasks from Redis. It implements Registry.
type Server struct {
	cfg Config
	srv *asynq.Server
	mux *asynq.ServeMux
}

func NewServer(opt asynq.RedisConnOpt, cfg Config, concurrency int, log logrus.FieldLogger) *Server {
	srv := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      cfg.QueueWeights,
		RetryDelayFunc: func(n int, _ error, t *asynq.Task) time.Duration {
			return cfg.Backoff(t.Type(), n)
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, t *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)
			taskID, _ := asynq.GetTaskID(ctx)
			log.WithFields(logrus.Fields{
				"task":      t.Type(),
				"task_id":   taskID,
				"retried":   retried,
				"max_retry": maxRetry,
			}).WithError(err).Error("task failed")
		}),
		Logger: log,
	})
	return &Server{cfg: cfg, srv: srv, mux: asynq.NewServeMux()}
}

func (s *Server) Handle(taskType string, h HandlerFunc) {
	s.mux.HandleFunc(taskType, func(ctx context.Context, t *asynq.Task) error {
		taskID, _ := asynq.GetTaskID(ctx)
		retried, _ := asynq.GetRetryCount(ctx)
		result, err := h(withMeta(ctx, taskID, retried), t.Payload())
		if err != nil {
			if errors.Is(err, ErrPermanent) {
				return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
			}
			return err
		}
		if len(result) > 0 {
			if _, werr := t.ResultWriter().Write(result); werr != nil {
				return fmt.Errorf("write result: %w", werr)
			}
		}
		return nil
	})
}

// Run blocks until the process receives a termination signal.
func (s *Server) Run() error {
	return s.srv.Run(s.mux)
}

// NewScheduler registers every schedule entry, in UTC, on an asynq scheduler.
func NewScheduler(opt asynq.RedisConnOpt, cfg Config, log logrus.FieldLogger) (*asynq.Scheduler, error) {
	s := asynq.NewScheduler(opt, &asynq.SchedulerOpts{
		Location: time.UTC,
		Logger:   log,
	})
	for _, e := range cfg.Schedule {
		route, ok := cfg.Route(e.TaskType)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTask, e.TaskType)
		}
		body, err := json.Marshal(e.Payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", e.TaskType, err)
		}
		entryID, err := s.Register(e.Cron, asynq.NewTask(e.TaskType, body), taskOptions(route, cfg.ResultTTL)...)
		if err != nil {
			return nil, fmt.Errorf("register %s (%s): %w", e.TaskType, e.Cron, err)
		}
		log.WithFields(logrus.Fields{"task": e.TaskType, "cron": e.Cron, "entry_id": entryID}).Info("scheduled task registered")
	}
	return s, nil
}
