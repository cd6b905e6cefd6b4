// Package sweeper содержит фоновый процесс, переводящий подписки с
// прошедшим оплаченным периодом в статус expired. Привилегии снимаются
// лениво при чтении и без него; процесс лишь приводит хранилище в
// согласованное состояние и публикует события для downstream-воркеров.
package sweeper

import (
	"context"
	"log/slog"
	"time"

	"github.com/indianduo/progression-engine/internal/lib/rabbitmq"
	"github.com/indianduo/progression-engine/internal/lib/sl"
	"github.com/indianduo/progression-engine/internal/models"
)

// SubscriptionRepository определяет методы хранилища, нужные процессу.
type SubscriptionRepository interface {
	// FindDueSubscriptions возвращает подписки с прошедшим оплаченным периодом.
	FindDueSubscriptions(ctx context.Context) ([]*models.Subscription, error)
	// MarkExpired переводит подписку в expired.
	MarkExpired(ctx context.Context, subscriptionID string) (int, error)
}

// EventPublisher публикует доменные события.
type EventPublisher interface {
	Publish(exchange, routingkey string, message any) error
}

// ExpiredEvent — событие истечения подписки.
type ExpiredEvent struct {
	UserUID        string `json:"user_uid"`
	SubscriptionID string `json:"subscription_id"`
	Plan           string `json:"plan"`
}

// Service периодически помечает истёкшие подписки.
type Service struct {
	repo     SubscriptionRepository
	events   EventPublisher
	interval time.Duration
	log      *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo SubscriptionRepository, events EventPublisher, interval time.Duration, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		events:   events,
		interval: interval,
		log:      log,
	}
}

// Run запускает цикл с заданным интервалом до отмены контекста.
func (s *Service) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep выполняет один проход: находит истёкшие подписки, помечает их
// и публикует события.
func (s *Service) Sweep(ctx context.Context) {
	s.log.Info("starting sweep for expired subscriptions")
	due, err := s.repo.FindDueSubscriptions(ctx)
	if err != nil {
		s.log.Error("failed to find due subscriptions", sl.Err(err))
		return
	}

	for _, sub := range due {
		count, err := s.repo.MarkExpired(ctx, sub.ID)
		if err != nil {
			s.log.Error("failed to mark subscription expired",
				slog.String("subscription_id", sub.ID), sl.Err(err))
			continue
		}
		if count == 0 {
			continue
		}
		event := ExpiredEvent{
			UserUID:        sub.UserUID,
			SubscriptionID: sub.ID,
			Plan:           string(sub.Plan),
		}
		if err := s.events.Publish(rabbitmq.Exchange, rabbitmq.RouteSubscriptionExpired, event); err != nil {
			s.log.Error("failed to publish expired event", sl.Err(err))
		}
	}
	s.log.Info("sweep finished", slog.Int("expired", len(due)))
}
