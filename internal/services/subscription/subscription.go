// Package subscription содержит бизнес-логику жизненного цикла подписок:
// оформление, смену плана, отмену и определение действующих привилегий.
package subscription

import (
	"context"
	"log/slog"

	"github.com/indianduo/progression-engine/internal/engine/clock"
	"github.com/indianduo/progression-engine/internal/engine/entitlement"
	"github.com/indianduo/progression-engine/internal/engine/sublifecycle"
	"github.com/indianduo/progression-engine/internal/lib/rabbitmq"
	"github.com/indianduo/progression-engine/internal/lib/sl"
	"github.com/indianduo/progression-engine/internal/metrics"
	"github.com/indianduo/progression-engine/internal/models"
)

// Repository определяет методы для работы с подписками в хранилище.
type Repository interface {
	// CreateSubscription вставляет новую подписку.
	CreateSubscription(ctx context.Context, sub models.Subscription) error
	// UpdateSubscription сохраняет состояние подписки.
	UpdateSubscription(ctx context.Context, sub models.Subscription) (int, error)
	// GetCurrentSubscription возвращает последнюю подписку, способную
	// давать привилегии, или nil при её отсутствии.
	GetCurrentSubscription(ctx context.Context, userUID string) (*models.Subscription, error)
}

// EventPublisher публикует доменные события.
type EventPublisher interface {
	Publish(exchange, routingkey string, message any) error
}

// StatusEvent — событие смены статуса подписки.
type StatusEvent struct {
	UserUID string `json:"user_uid"`
	Plan    string `json:"plan"`
	Status  string `json:"status"`
}

// Service реализует операции с подписками поверх репозитория и
// конечного автомата жизненного цикла.
type Service struct {
	repo    Repository
	events  EventPublisher
	machine *sublifecycle.Machine
	clk     clock.Clock
	log     *slog.Logger
}

// New создает новый экземпляр Service. Нулевой clk означает реальные часы.
func New(repo Repository, events EventPublisher, clk clock.Clock, log *slog.Logger) *Service {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Service{
		repo:    repo,
		events:  events,
		machine: sublifecycle.New(clk),
		clk:     clk,
		log:     log,
	}
}

// Plans возвращает витрину планов с их привилегиями.
func (s *Service) Plans(_ context.Context) []models.PlanInfo {
	return entitlement.Plans()
}

// Current возвращает текущую подписку пользователя и действующие
// привилегии. Истечение оплаченного периода учитывается лениво: даже
// если фоновый процесс ещё не пометил подписку, привилегии снимаются.
func (s *Service) Current(ctx context.Context, userUID string) (*models.Subscription, models.Entitlement, models.Plan, error) {
	sub, err := s.repo.GetCurrentSubscription(ctx, userUID)
	if err != nil {
		return nil, models.Entitlement{}, models.PlanFree, err
	}
	now := s.clk.Now()
	return sub, entitlement.Resolve(sub, now), entitlement.EffectivePlan(sub, now), nil
}

// Subscribe оформляет подписку на план. Активная подписка на тот же
// план отклоняется; смена плана отменяет текущую подписку и сразу
// активирует новую.
func (s *Service) Subscribe(ctx context.Context, userUID string, plan models.Plan) (*models.Subscription, error) {
	current, err := s.repo.GetCurrentSubscription(ctx, userUID)
	if err != nil {
		return nil, err
	}

	created, canceled, err := s.machine.Subscribe(current, userUID, plan)
	if err != nil {
		return nil, err
	}
	if canceled != nil {
		if _, err := s.repo.UpdateSubscription(ctx, *canceled); err != nil {
			return nil, err
		}
	}
	if err := s.repo.CreateSubscription(ctx, *created); err != nil {
		return nil, err
	}

	metrics.SubscriptionsActivated.WithLabelValues(string(plan)).Inc()
	s.log.Info("subscription activated", sl.UID(userUID),
		slog.String("plan", string(plan)),
		slog.String("subscription_id", created.ID))

	event := StatusEvent{UserUID: userUID, Plan: string(plan), Status: string(created.Status)}
	if err := s.events.Publish(rabbitmq.Exchange, rabbitmq.RouteSubscriptionStatus, event); err != nil {
		s.log.Warn("failed to publish subscription event", sl.Err(err))
	}
	return created, nil
}

// Cancel отменяет активную подписку. Привилегии сохраняются до конца
// оплаченного периода.
func (s *Service) Cancel(ctx context.Context, userUID string) (*models.Subscription, error) {
	current, err := s.repo.GetCurrentSubscription(ctx, userUID)
	if err != nil {
		return nil, err
	}

	canceled, err := s.machine.Cancel(current)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.UpdateSubscription(ctx, *canceled); err != nil {
		return nil, err
	}

	metrics.SubscriptionsCanceled.Inc()
	s.log.Info("subscription canceled", sl.UID(userUID),
		slog.String("subscription_id", canceled.ID))

	event := StatusEvent{UserUID: userUID, Plan: string(canceled.Plan), Status: string(canceled.Status)}
	if err := s.events.Publish(rabbitmq.Exchange, rabbitmq.RouteSubscriptionStatus, event); err != nil {
		s.log.Warn("failed to publish subscription event", sl.Err(err))
	}
	return canceled, nil
}
