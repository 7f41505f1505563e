package tasks

import (
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
)

func TestStatusFromInfo(t *testing.T) {
	done := statusFromInfo(&asynq.TaskInfo{
		ID: "t1", Type: TypeCleanupOldLogs, Queue: QueueMaintenance,
		State: asynq.TaskStateCompleted, Result: []byte(`{"deleted":4}`),
	})
	assert.Equal(t, StateSuccess, done.State)
	assert.JSONEq(t, `{"deleted":4}`, string(done.Result))

	failed := statusFromInfo(&asynq.TaskInfo{
		ID: "t2", State: asynq.TaskStateArchived, LastErr: "smtp: connection refused", Retried: 3,
	})
	assert.Equal(t, StateFailure, failed.State)
	assert.Equal(t, "smtp: connection refused", failed.Error)
	assert.Equal(t, 3, failed.Retried)

	for _, s := range []asynq.TaskState{asynq.TaskStatePending, asynq.TaskStateActive, asynq.TaskStateRetry, asynq.TaskStateScheduled} {
		assert.Equal(t, StatePending, statusFromInfo(&asynq.TaskInfo{ID: "t3", State: s}).State)
	}
}

func TestTaskOptions(t *testing.T) {
	opts := taskOptions(DefaultRoutes()[TypeBookingConfirmation], DefaultConfig().ResultTTL)
	types := map[asynq.OptionType]bool{}
	for _, o := range opts {
		types[o.Type()] = true
	}
	assert.True(t, types[asynq.QueueOpt])
	assert.True(t, types[asynq.MaxRetryOpt])
	assert.True(t, types[asynq.RetentionOpt])
	assert.True(t, types[asynq.TimeoutOpt])
}
