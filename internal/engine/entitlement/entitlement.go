// Package entitlement отображает тарифный план в набор привилегий.
//
// Это единственное место, где тариф превращается в флаги возможностей:
// остальные компоненты читают уже разрешённые привилегии и никогда не
// ветвятся по имени плана. Добавление тарифа меняет только таблицу ниже.
package entitlement

import (
	"time"

	"github.com/indianduo/progression-engine/internal/engine/hearts"
	"github.com/indianduo/progression-engine/internal/models"
)

// planTable — фиксированные привилегии каждого тарифа.
var planTable = map[models.Plan]models.Entitlement{
	models.PlanFree: {
		HeartCapacity: hearts.DefaultCapacity,
	},
	models.PlanPlus: {
		UnlimitedHearts: true,
		AdsFree:         true,
		OfflineLessons:  true,
		PrioritySupport: true,
		HeartCapacity:   hearts.DefaultCapacity,
		PricePerMonth:   6.99,
	},
	models.PlanFamily: {
		UnlimitedHearts:  true,
		AdsFree:          true,
		OfflineLessons:   true,
		PrioritySupport:  true,
		MaxFamilyMembers: 6,
		HeartCapacity:    hearts.DefaultCapacity,
		PricePerMonth:    9.99,
	},
}

// planNames — отображаемые названия тарифов для витрины.
var planNames = map[models.Plan]string{
	models.PlanFree:   "Free",
	models.PlanPlus:   "IndianDuo Plus",
	models.PlanFamily: "Family Plan",
}

// ForPlan возвращает привилегии тарифа. Неизвестный тариф разрешается
// в привилегии Free.
func ForPlan(plan models.Plan) models.Entitlement {
	ent, ok := planTable[plan]
	if !ok {
		return planTable[models.PlanFree]
	}
	return ent
}

// Resolve возвращает действующие привилегии по подписке на момент now.
//
// Подписка в состоянии active, а также canceled до истечения expires_at
// (льготный период после отмены) разрешается в привилегии своего плана.
// Все остальные состояния, включая active с прошедшим expires_at,
// разрешаются в привилегии Free.
func Resolve(sub *models.Subscription, now time.Time) models.Entitlement {
	if sub == nil {
		return planTable[models.PlanFree]
	}
	switch sub.Status {
	case models.SubActive, models.SubCanceled:
		if sub.ExpiresAt != nil && !now.Before(*sub.ExpiresAt) {
			return planTable[models.PlanFree]
		}
		return ForPlan(sub.Plan)
	default:
		return planTable[models.PlanFree]
	}
}

// EffectivePlan возвращает тариф, чьи привилегии действуют на момент now.
func EffectivePlan(sub *models.Subscription, now time.Time) models.Plan {
	if sub == nil {
		return models.PlanFree
	}
	switch sub.Status {
	case models.SubActive, models.SubCanceled:
		if sub.ExpiresAt != nil && !now.Before(*sub.ExpiresAt) {
			return models.PlanFree
		}
		return sub.Plan
	default:
		return models.PlanFree
	}
}

// Plans возвращает витрину тарифов в порядке возрастания цены.
func Plans() []models.PlanInfo {
	order := []models.Plan{models.PlanFree, models.PlanPlus, models.PlanFamily}
	result := make([]models.PlanInfo, 0, len(order))
	for _, plan := range order {
		result = append(result, models.PlanInfo{
			Plan:        plan,
			Name:        planNames[plan],
			Entitlement: planTable[plan],
		})
	}
	return result
}
