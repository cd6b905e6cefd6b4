// Package sublifecycle реализует машину состояний подписки:
// inactive -> active -> canceled -> expired, с прямым переходом
// active -> expired по времени. Привилегии отменённой подписки
// сохраняются до expires_at — этим занимается entitlement.Resolve,
// здесь только переходы состояний.
package sublifecycle

import (
	"time"

	"github.com/google/uuid"

	"github.com/indianduo/progression-engine/internal/engine"
	"github.com/indianduo/progression-engine/internal/engine/clock"
	"github.com/indianduo/progression-engine/internal/models"
)

// BillingPeriod — длительность одного оплаченного периода.
const BillingPeriod = time.Hour * 24 * 30

// Machine выполняет переходы жизненного цикла подписки. Методы не
// мутируют вход и не обращаются к хранилищу: персистентность — забота
// вызывающего сервиса.
type Machine struct {
	clk clock.Clock
}

// New создает Machine с внедрённым источником времени.
func New(clk clock.Clock) *Machine {
	return &Machine{clk: clk}
}

// Subscribe оформляет план для пользователя. Подтверждение оплаты
// происходит выше по стеку: сюда приходит уже оплаченный выбор.
//
// Повторное оформление действующего плана отклоняется с
// ErrAlreadySubscribed. Смена плана моделируется как отмена текущей
// подписки и оформление новой: возвращается новая подписка и, при смене
// плана, отменённая старая для сохранения обеих.
func (m *Machine) Subscribe(current *models.Subscription, userUID string, plan models.Plan) (created *models.Subscription, canceled *models.Subscription, err error) {
	now := m.clk.Now()
	current = m.ExpireIfDue(current)

	if current != nil && current.Status == models.SubActive {
		if current.Plan == plan {
			return nil, nil, engine.ErrAlreadySubscribed
		}
		canceled, err = m.Cancel(current)
		if err != nil {
			return nil, nil, err
		}
	}

	expiresAt := now.Add(BillingPeriod)
	created = &models.Subscription{
		ID:          uuid.New().String(),
		UserUID:     userUID,
		Plan:        plan,
		Status:      models.SubActive,
		ActivatedAt: now,
		ExpiresAt:   &expiresAt,
	}
	return created, canceled, nil
}

// Cancel переводит активную подписку в canceled. ExpiresAt сохраняется:
// привилегии действуют до конца оплаченного периода. Отмена подписки
// в любом другом состоянии отклоняется с ErrNoActiveSubscription.
func (m *Machine) Cancel(current *models.Subscription) (*models.Subscription, error) {
	current = m.ExpireIfDue(current)
	if current == nil || current.Status != models.SubActive {
		return nil, engine.ErrNoActiveSubscription
	}
	now := m.clk.Now()
	result := *current
	result.Status = models.SubCanceled
	result.CanceledAt = &now
	return &result, nil
}

// ExpireIfDue переводит подписку в expired, если её оплаченный период
// прошёл. Переход чисто временной и применяется лениво при каждом
// чтении, фоновые таймеры не нужны.
func (m *Machine) ExpireIfDue(current *models.Subscription) *models.Subscription {
	if current == nil {
		return nil
	}
	if current.Status != models.SubActive && current.Status != models.SubCanceled {
		return current
	}
	if current.ExpiresAt == nil || m.clk.Now().Before(*current.ExpiresAt) {
		return current
	}
	result := *current
	result.Status = models.SubExpired
	return &result
}
