package subscription

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/indianduo/progression-engine/internal/engine"
	"github.com/indianduo/progression-engine/internal/engine/clock"
	"github.com/indianduo/progression-engine/internal/engine/sublifecycle"
	"github.com/indianduo/progression-engine/internal/lib/rabbitmq"
	"github.com/indianduo/progression-engine/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateSubscription(ctx context.Context, sub models.Subscription) error {
	return m.Called(ctx, sub).Error(0)
}

func (m *RepoMock) UpdateSubscription(ctx context.Context, sub models.Subscription) (int, error) {
	args := m.Called(ctx, sub)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) GetCurrentSubscription(ctx context.Context, userUID string) (*models.Subscription, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

type EventsMock struct{ mock.Mock }

func (m *EventsMock) Publish(exchange, routingkey string, message any) error {
	return m.Called(exchange, routingkey, message).Error(0)
}

var baseTime = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

const userUID = "uid-1"

func newService(clk clock.Clock) (*Service, *RepoMock, *EventsMock) {
	repo := new(RepoMock)
	events := new(EventsMock)
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	return New(repo, events, clk, log), repo, events
}

func activeSub(plan models.Plan) *models.Subscription {
	expires := baseTime.Add(20 * 24 * time.Hour)
	return &models.Subscription{
		ID:          "sub-1",
		UserUID:     userUID,
		Plan:        plan,
		Status:      models.SubActive,
		ActivatedAt: baseTime.Add(-10 * 24 * time.Hour),
		ExpiresAt:   &expires,
	}
}

func TestService_Subscribe(t *testing.T) {
	t.Run("первое оформление", func(t *testing.T) {
		svc, repo, events := newService(clock.NewFake(baseTime))

		repo.On("GetCurrentSubscription", mock.Anything, userUID).Return(nil, nil).Once()
		repo.On("CreateSubscription", mock.Anything, mock.MatchedBy(func(s models.Subscription) bool {
			return s.Plan == models.PlanPlus && s.Status == models.SubActive &&
				s.ExpiresAt != nil && s.ExpiresAt.Equal(baseTime.Add(sublifecycle.BillingPeriod))
		})).Return(nil).Once()
		events.On("Publish", rabbitmq.Exchange, rabbitmq.RouteSubscriptionStatus, mock.Anything).Return(nil).Once()

		created, err := svc.Subscribe(context.Background(), userUID, models.PlanPlus)
		require.NoError(t, err)
		assert.Equal(t, models.SubActive, created.Status)
		assert.NotEmpty(t, created.ID)
		repo.AssertExpectations(t)
		events.AssertExpectations(t)
	})

	t.Run("повторное оформление того же плана", func(t *testing.T) {
		svc, repo, events := newService(clock.NewFake(baseTime))

		repo.On("GetCurrentSubscription", mock.Anything, userUID).Return(activeSub(models.PlanPlus), nil).Once()

		_, err := svc.Subscribe(context.Background(), userUID, models.PlanPlus)
		assert.ErrorIs(t, err, engine.ErrAlreadySubscribed)
		repo.AssertNotCalled(t, "CreateSubscription", mock.Anything, mock.Anything)
		repo.AssertExpectations(t)
		events.AssertExpectations(t)
	})

	t.Run("смена плана отменяет текущую подписку", func(t *testing.T) {
		svc, repo, events := newService(clock.NewFake(baseTime))

		repo.On("GetCurrentSubscription", mock.Anything, userUID).Return(activeSub(models.PlanPlus), nil).Once()
		repo.On("UpdateSubscription", mock.Anything, mock.MatchedBy(func(s models.Subscription) bool {
			return s.ID == "sub-1" && s.Status == models.SubCanceled && s.CanceledAt != nil
		})).Return(1, nil).Once()
		repo.On("CreateSubscription", mock.Anything, mock.MatchedBy(func(s models.Subscription) bool {
			return s.Plan == models.PlanFamily && s.Status == models.SubActive
		})).Return(nil).Once()
		events.On("Publish", rabbitmq.Exchange, rabbitmq.RouteSubscriptionStatus, mock.Anything).Return(nil).Once()

		created, err := svc.Subscribe(context.Background(), userUID, models.PlanFamily)
		require.NoError(t, err)
		assert.Equal(t, models.PlanFamily, created.Plan)
		repo.AssertExpectations(t)
		events.AssertExpectations(t)
	})
}

func TestService_Cancel(t *testing.T) {
	t.Run("отмена активной подписки", func(t *testing.T) {
		svc, repo, events := newService(clock.NewFake(baseTime))

		current := activeSub(models.PlanPlus)
		repo.On("GetCurrentSubscription", mock.Anything, userUID).Return(current, nil).Once()
		repo.On("UpdateSubscription", mock.Anything, mock.MatchedBy(func(s models.Subscription) bool {
			return s.Status == models.SubCanceled &&
				s.ExpiresAt != nil && s.ExpiresAt.Equal(*current.ExpiresAt)
		})).Return(1, nil).Once()
		events.On("Publish", rabbitmq.Exchange, rabbitmq.RouteSubscriptionStatus, mock.Anything).Return(nil).Once()

		canceled, err := svc.Cancel(context.Background(), userUID)
		require.NoError(t, err)
		assert.Equal(t, models.SubCanceled, canceled.Status)
		repo.AssertExpectations(t)
		events.AssertExpectations(t)
	})

	t.Run("отмена без активной подписки", func(t *testing.T) {
		svc, repo, events := newService(clock.NewFake(baseTime))

		repo.On("GetCurrentSubscription", mock.Anything, userUID).Return(nil, nil).Once()

		_, err := svc.Cancel(context.Background(), userUID)
		assert.ErrorIs(t, err, engine.ErrNoActiveSubscription)
		repo.AssertNotCalled(t, "UpdateSubscription", mock.Anything, mock.Anything)
		repo.AssertExpectations(t)
		events.AssertExpectations(t)
	})
}

func TestService_Current(t *testing.T) {
	t.Run("без подписки действует Free", func(t *testing.T) {
		svc, repo, _ := newService(clock.NewFake(baseTime))

		repo.On("GetCurrentSubscription", mock.Anything, userUID).Return(nil, nil).Once()

		sub, ent, plan, err := svc.Current(context.Background(), userUID)
		require.NoError(t, err)
		assert.Nil(t, sub)
		assert.Equal(t, models.PlanFree, plan)
		assert.False(t, ent.UnlimitedHearts)
		repo.AssertExpectations(t)
	})

	t.Run("истёкший период снимает привилегии лениво", func(t *testing.T) {
		svc, repo, _ := newService(clock.NewFake(baseTime))

		expired := activeSub(models.PlanPlus)
		past := baseTime.Add(-time.Hour)
		expired.ExpiresAt = &past
		repo.On("GetCurrentSubscription", mock.Anything, userUID).Return(expired, nil).Once()

		_, ent, plan, err := svc.Current(context.Background(), userUID)
		require.NoError(t, err)
		assert.Equal(t, models.PlanFree, plan)
		assert.False(t, ent.UnlimitedHearts)
		repo.AssertExpectations(t)
	})

	t.Run("отменённая подписка действует до конца периода", func(t *testing.T) {
		svc, repo, _ := newService(clock.NewFake(baseTime))

		canceled := activeSub(models.PlanFamily)
		canceled.Status = models.SubCanceled
		canceledAt := baseTime.Add(-time.Hour)
		canceled.CanceledAt = &canceledAt
		repo.On("GetCurrentSubscription", mock.Anything, userUID).Return(canceled, nil).Once()

		_, ent, plan, err := svc.Current(context.Background(), userUID)
		require.NoError(t, err)
		assert.Equal(t, models.PlanFamily, plan)
		assert.True(t, ent.UnlimitedHearts)
		assert.Equal(t, 6, ent.MaxFamilyMembers)
		repo.AssertExpectations(t)
	})
}

func TestService_Plans(t *testing.T) {
	svc, _, _ := newService(clock.NewFake(baseTime))

	plans := svc.Plans(context.Background())
	require.Len(t, plans, 3)
	assert.Equal(t, models.PlanFree, plans[0].Plan)
	assert.Equal(t, models.PlanPlus, plans[1].Plan)
	assert.Equal(t, models.PlanFamily, plans[2].Plan)
}
