package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/treasury/internal/domain/shared"
	"github.com/erp/treasury/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockEventHandler struct {
	mock.Mock
}

func (m *MockEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockEventHandler) EventTypes() []string {
	return m.Called().Get(0).([]string)
}

type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, eventID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Unmark(ctx context.Context, eventID string) error {
	return m.Called(ctx, eventID).Error(0)
}

func (m *MockIdempotencyStore) Close() error {
	return m.Called().Error(0)
}

func newMemoryStore(t *testing.T) *cache.InMemoryIdempotencyStore {
	t.Helper()
	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestIdempotentHandler_DuplicateDeliveriesRunOnce(t *testing.T) {
	inner := new(MockEventHandler)
	event := newTestEvent("PaymentOrderConfirmed")
	inner.On("Handle", mock.Anything, event).Return(nil).Once()

	handler := NewIdempotentHandler(inner, newMemoryStore(t), zap.NewNop())
	for i := 0; i < 3; i++ {
		require.NoError(t, handler.Handle(context.Background(), event))
	}

	inner.AssertExpectations(t)
	stats := handler.GetMetrics().Stats()
	assert.Equal(t, int64(1), stats.EventsProcessed)
	assert.Equal(t, int64(2), stats.EventsDuplicate)
}

func TestIdempotentHandler_FailureReleasesClaim(t *testing.T) {
	inner := new(MockEventHandler)
	event := newTestEvent("PaymentOrderConfirmed")
	failure := errors.New("journal unavailable")
	inner.On("Handle", mock.Anything, event).Return(failure).Once()
	inner.On("Handle", mock.Anything, event).Return(nil).Once()

	store := newMemoryStore(t)
	handler := NewIdempotentHandler(inner, store, zap.NewNop())

	err := handler.Handle(context.Background(), event)
	require.ErrorIs(t, err, failure)
	processed, _ := store.IsProcessed(context.Background(), event.EventID().String())
	assert.False(t, processed)

	require.NoError(t, handler.Handle(context.Background(), event), "retry is not a duplicate")
	inner.AssertExpectations(t)

	stats := handler.GetMetrics().Stats()
	assert.Equal(t, int64(1), stats.EventsFailed)
	assert.Equal(t, int64(1), stats.EventsProcessed)
}

func TestIdempotentHandler_StoreErrorStillProcesses(t *testing.T) {
	inner := new(MockEventHandler)
	store := new(MockIdempotencyStore)
	event := newTestEvent("PaymentOrderConfirmed")

	store.On("MarkProcessed", mock.Anything, event.EventID().String(), 24*time.Hour).
		Return(false, errors.New("redis down"))
	inner.On("Handle", mock.Anything, event).Return(errors.New("nope"))

	handler := NewIdempotentHandler(inner, store, zap.NewNop())
	require.Error(t, handler.Handle(context.Background(), event))

	// nothing was claimed, so nothing is released
	store.AssertNotCalled(t, "Unmark", mock.Anything, mock.Anything)
	inner.AssertExpectations(t)
}

func TestIdempotentHandler_Disabled(t *testing.T) {
	inner := new(MockEventHandler)
	event := newTestEvent("PaymentOrderConfirmed")
	inner.On("Handle", mock.Anything, event).Return(nil).Times(2)

	handler := NewIdempotentHandler(inner, new(MockIdempotencyStore), zap.NewNop(),
		WithIdempotencyConfig(shared.IdempotencyConfig{Enabled: false}),
	)
	require.NoError(t, handler.Handle(context.Background(), event))
	require.NoError(t, handler.Handle(context.Background(), event))

	inner.AssertExpectations(t)
	assert.Zero(t, handler.GetMetrics().Stats().EventsProcessed)
}

func TestIdempotentHandler_SharedMetricsAndTypes(t *testing.T) {
	metrics := &IdempotencyMetrics{}
	inner := new(MockEventHandler)
	inner.On("EventTypes").Return([]string{"PaymentOrderConfirmed"})
	inner.On("Handle", mock.Anything, mock.Anything).Return(nil)

	store := newMemoryStore(t)
	a := NewIdempotentHandler(inner, store, nil, WithIdempotencyMetrics(metrics))
	b := NewIdempotentHandler(inner, store, nil, WithIdempotencyMetrics(metrics))

	assert.Equal(t, []string{"PaymentOrderConfirmed"}, a.EventTypes())
	require.NoError(t, a.Handle(context.Background(), newTestEvent("PaymentOrderConfirmed")))
	require.NoError(t, b.Handle(context.Background(), newTestEvent("PaymentOrderConfirmed")))
	assert.Equal(t, int64(2), metrics.EventsProcessed.Load())
}

func TestIdempotentHandler_OnTheBus(t *testing.T) {
	inner := newRecordingHandler("PaymentOrderConfirmed")
	bus := NewInMemoryEventBus(zap.NewNop())
	bus.Subscribe(NewIdempotentHandler(inner, newMemoryStore(t), zap.NewNop()))

	event := newTestEvent("PaymentOrderConfirmed")
	require.NoError(t, bus.Publish(context.Background(), event, event))
	assert.Equal(t, 1, inner.count())
}
