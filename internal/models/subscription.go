package models

import "time"

// Plan — тарифный план подписки.
type Plan string

// Возможные тарифные планы.
const (
	PlanFree   Plan = "free"
	PlanPlus   Plan = "plus"
	PlanFamily Plan = "family"
)

// SubscriptionStatus — состояние подписки в жизненном цикле.
type SubscriptionStatus string

// Возможные состояния подписки.
const (
	SubInactive SubscriptionStatus = "inactive"
	SubActive   SubscriptionStatus = "active"
	SubCanceled SubscriptionStatus = "canceled"
	SubExpired  SubscriptionStatus = "expired"
)

// Subscription представляет подписку пользователя. У пользователя может
// быть не более одной активной подписки; план Free подразумевается,
// когда активной подписки нет.
type Subscription struct {
	ID          string             // UUID подписки
	UserUID     string             // UID пользователя
	Plan        Plan               // Тарифный план
	Status      SubscriptionStatus // Состояние
	ActivatedAt time.Time          // Момент активации
	ExpiresAt   *time.Time         // Момент окончания оплаченного периода
	CanceledAt  *time.Time         // Момент отмены пользователем
}

// Entitlement — набор привилегий, который тарифный план даёт пользователю.
// Все компоненты движка читают только эти флаги и никогда не смотрят
// на имя плана напрямую.
type Entitlement struct {
	UnlimitedHearts  bool    `json:"unlimited_hearts"`
	AdsFree          bool    `json:"ads_free"`
	OfflineLessons   bool    `json:"offline_lessons"`
	PrioritySupport  bool    `json:"priority_support"`
	MaxFamilyMembers int     `json:"max_family_members"`
	HeartCapacity    int     `json:"heart_capacity"`
	PricePerMonth    float64 `json:"price_per_month"`
}

// PlanInfo — план вместе с его привилегиями для витрины тарифов.
type PlanInfo struct {
	Plan        Plan        `json:"plan"`
	Name        string      `json:"name"`
	Entitlement Entitlement `json:"entitlement"`
}

// SubscribeRequest используется для приёма выбора плана из JSON-запроса.
type SubscribeRequest struct {
	Plan string `json:"plan" validate:"required,oneof=plus family"` // Выбранный план
}
