package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Inline runs handlers synchronously inside Enqueue. Retries follow the
// route's MaxRetry but happen immediately. Intended for tests and local runs
// without Redis.
type Inline struct {
	cfg Config
	log logrus.FieldLogger

	mu       sync.Mutex
	handlers map[string]HandlerFunc
	statuses map[string]Status
}

func NewInline(cfg Config, log logrus.FieldLogger) *Inline {
	return &Inline{
		cfg:      cfg,
		log:      log,
		handlers: make(map[string]HandlerFunc),
		statuses: make(map[string]Status),
	}
}

func (d *Inline) Handle(taskType string, h HandlerFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[taskType] = h
}

func (d *Inline) Enqueue(ctx context.Context, taskType string, payload any) (Info, error) {
	route, ok := d.cfg.Route(taskType)
	if !ok {
		return Info{}, fmt.Errorf("%w: %s", ErrUnknownTask, taskType)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Info{}, fmt.Errorf("encode %s payload: %w", taskType, err)
	}

	info := Info{ID: uuid.NewString(), Type: taskType, Queue: route.Queue}
	d.setStatus(Status{TaskID: info.ID, Type: taskType, Queue: route.Queue, State: StatePending})

	d.mu.Lock()
	h := d.handlers[taskType]
	d.mu.Unlock()
	if h == nil {
		// No consumer registered: the task stays pending.
		return info, nil
	}

	// The task outlives the producer's request.
	runCtx := context.WithoutCancel(ctx)
	var (
		result []byte
		runErr error
	)
	attempt := 0
	for ; attempt <= route.MaxRetry; attempt++ {
		result, runErr = h(withMeta(runCtx, info.ID, attempt), body)
		if runErr == nil || errors.Is(runErr, ErrPermanent) {
			break
		}
		d.log.WithFields(logrus.Fields{
			"task":    taskType,
			"task_id": info.ID,
			"attempt": attempt + 1,
		}).WithError(runErr).Warn("inline task attempt failed")
	}
	retried := attempt
	if retried > route.MaxRetry {
		retried = route.MaxRetry
	}

	st := Status{TaskID: info.ID, Type: taskType, Queue: route.Queue, Retried: retried}
	if runErr != nil {
		st.State = StateFailure
		st.Error = runErr.Error()
	} else {
		st.State = StateSuccess
		st.Result = result
	}
	d.setStatus(st)
	return info, nil
}

// Status reports unknown ids as pending, matching the broker's behaviour once
// a result has expired.
func (d *Inline) Status(_ context.Context, taskID string) (Status, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	st, ok := d.statuses[taskID]
	if !ok {
		return Status{TaskID: taskID, State: StatePending}, nil
	}
	return st, nil
}

func (d *Inline) setStatus(st Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.statuses[st.TaskID] = st
}
