package services_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/SscSPs/secure_pay/internal/core/domain"
	"github.com/SscSPs/secure_pay/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stubPublisher struct {
	failFor   map[int64]error
	published []string
	closed    bool
}

func (p *stubPublisher) Publish(_ context.Context, msg domain.OutboxMessage) error {
	if err := p.failFor[msg.ID]; err != nil {
		return err
	}
	p.published = append(p.published, msg.EventID)
	return nil
}

func (p *stubPublisher) Close() error {
	p.closed = true
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOutboxDispatcherFlushOnce(t *testing.T) {
	ctx := context.Background()
	repo := new(MockOutboxRepository)
	pub := &stubPublisher{failFor: map[int64]error{2: errors.New("broker down")}}
	d := services.NewOutboxDispatcher(repo, pub, discardLogger(), 10, time.Second)

	repo.On("ClaimOutboxMessages", ctx, 10, 2*time.Minute).Return([]domain.OutboxMessage{
		{ID: 1, EventID: "ev-1", RoutingKey: "ledger.transfer.completed", Attempts: 1},
		{ID: 2, EventID: "ev-2", RoutingKey: "account.activated", Attempts: 3},
	}, nil).Once()
	repo.On("MarkOutboxPublished", ctx, int64(1)).Return(nil).Once()
	repo.On("MarkOutboxFailed", ctx, int64(2), 8*time.Second, "broker down").Return(nil).Once()

	n, err := d.FlushOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"ev-1"}, pub.published)
	repo.AssertExpectations(t)
}

func TestOutboxDispatcherRunClosesPublisherOnShutdown(t *testing.T) {
	repo := new(MockOutboxRepository)
	repo.On("ClaimOutboxMessages", mock.Anything, mock.Anything, mock.Anything).Return([]domain.OutboxMessage{}, nil)
	pub := &stubPublisher{}
	d := services.NewOutboxDispatcher(repo, pub, discardLogger(), 0, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	require.NoError(t, d.Run(ctx))
	assert.True(t, pub.closed)
}

func TestMaintenanceSchedulerPrunesPastRetention(t *testing.T) {
	repo := new(MockOutboxRepository)
	repo.On("PruneOutbox", mock.Anything, mock.MatchedBy(func(before time.Time) bool {
		return time.Since(before) >= 24*time.Hour
	})).Return(int64(3), nil).Once()

	s := services.NewMaintenanceScheduler(repo, discardLogger(), "@hourly", 24*time.Hour)
	s.PruneOutbox()
	repo.AssertExpectations(t)

	require.NoError(t, s.Start())
	<-s.Stop().Done()

	bad := services.NewMaintenanceScheduler(repo, discardLogger(), "not a schedule", time.Hour)
	assert.Error(t, bad.Start())
}
