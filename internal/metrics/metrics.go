// Package metrics объявляет prometheus-счётчики движка прогресса.
// Счётчики регистрируются в реестре по умолчанию и отдаются
// обработчиком promhttp на /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LessonsCompleted — количество завершённых уроков.
	LessonsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "progression_lessons_completed_total",
		Help: "Total number of completed lessons.",
	})

	// LevelUps — количество переходов на новый уровень.
	LevelUps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "progression_level_ups_total",
		Help: "Total number of level-up events.",
	})

	// HeartsConsumed — количество потраченных сердец.
	HeartsConsumed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "progression_hearts_consumed_total",
		Help: "Total number of hearts consumed by failed attempts.",
	})

	// HeartRefills — количество покупок пополнения сердец за гемы.
	HeartRefills = promauto.NewCounter(prometheus.CounterOpts{
		Name: "progression_heart_refills_total",
		Help: "Total number of gem-paid heart refills.",
	})

	// SubscriptionsActivated — количество активаций подписок по планам.
	SubscriptionsActivated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "progression_subscriptions_activated_total",
		Help: "Total number of activated subscriptions by plan.",
	}, []string{"plan"})

	// SubscriptionsCanceled — количество отмен подписок.
	SubscriptionsCanceled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "progression_subscriptions_canceled_total",
		Help: "Total number of canceled subscriptions.",
	})
)
