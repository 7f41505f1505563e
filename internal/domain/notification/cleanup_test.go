package notification

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelapp/internal/database/dbtest"
	"travelapp/internal/domain"
	"travelapp/internal/logger"
)

func TestCleanupService_RemovesOnlyExpiredEntries(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	ctx := context.Background()
	bookingID := uuid.New()

	old := &domain.EmailLog{TaskType: "send_booking_confirmation_email", Recipient: "a@example.com", Status: domain.EmailSent, BookingID: &bookingID}
	require.NoError(t, repo.Record(ctx, old))
	require.NoError(t, db.Model(old).Update("created_at", time.Now().AddDate(0, 0, -45)).Error)
	require.NoError(t, repo.Record(ctx, &domain.EmailLog{TaskType: "send_booking_confirmation_email", Recipient: "a@example.com", Status: domain.EmailFailed, BookingID: &bookingID}))

	svc := NewCleanupService(repo, logger.Discard())
	report, err := svc.RunScheduledCleanup(ctx, CleanupConfig{EmailLogRetentionDays: 30})
	require.NoError(t, err)
	assert.EqualValues(t, 1, report.EmailLogsDeleted)

	left, err := repo.ListForBooking(ctx, bookingID)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, domain.EmailFailed, left[0].Status)
	assert.Equal(t, 1, left[0].Attempt)
}

func TestCleanupService_ScheduleCleanup(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewCleanupService(NewRepository(db), logger.Discard())

	assert.Nil(t, svc.ScheduleCleanup(context.Background(), CleanupConfig{}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stop := svc.ScheduleCleanup(ctx, CleanupConfig{EmailLogRetentionDays: 30, CleanupInterval: time.Hour, EnableAutomaticCleanup: true})
	require.NotNil(t, stop)
	close(stop)
}
