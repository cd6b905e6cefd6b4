// Package hearts реализует учёт сердец: трату, ленивое восстановление
// по времени и мгновенное пополнение за гемы.
//
// Восстановление всегда вычисляется при чтении, фоновых таймеров нет:
// состояние сердец в любой момент согласовано с настенными часами
// независимо от того, когда его наблюдают.
package hearts

import (
	"time"

	"github.com/indianduo/progression-engine/internal/engine"
	"github.com/indianduo/progression-engine/internal/engine/clock"
	"github.com/indianduo/progression-engine/internal/models"
)

const (
	// RegenInterval — время восстановления одного сердца.
	RegenInterval = 4 * time.Hour
	// RefillCost — стоимость мгновенного пополнения в гемах.
	RefillCost = 350
	// DefaultCapacity — запас сердец по умолчанию.
	DefaultCapacity = 5
)

// Ledger вычисляет переходы состояния сердец. Все методы — чистые
// функции над снимком прогресса: вход не мутируется, возвращается копия.
type Ledger struct {
	clk clock.Clock
}

// New создает Ledger с внедрённым источником времени.
func New(clk clock.Clock) *Ledger {
	return &Ledger{clk: clk}
}

// Regenerate применяет пассивное восстановление к снимку прогресса.
// Количество восстановленных сердец равно floor(elapsed / RegenInterval),
// итог ограничен сверху запасом. Когда запас полон, таймер очищается.
// Повторный вызов без сдвига времени возвращает тот же результат.
func (l *Ledger) Regenerate(p models.Progress) models.Progress {
	// Смена запаса (например, при переключении привилегий) не должна
	// давать отрицательные или избыточные значения: зажимаем при чтении.
	if p.Hearts > p.HeartCapacity {
		p.Hearts = p.HeartCapacity
	}
	if p.Hearts < 0 {
		p.Hearts = 0
	}
	if p.LastHeartLossAt == nil {
		return p
	}

	elapsed := l.clk.Now().Sub(*p.LastHeartLossAt)
	if elapsed < 0 {
		return p
	}
	gained := int(elapsed / RegenInterval)
	if gained == 0 {
		return p
	}

	p.Hearts += gained
	if p.Hearts >= p.HeartCapacity {
		p.Hearts = p.HeartCapacity
		p.LastHeartLossAt = nil
		return p
	}
	// Частичное восстановление: сдвигаем отметку на учтённые интервалы,
	// иначе повторное чтение начислило бы те же сердца ещё раз.
	advanced := p.LastHeartLossAt.Add(time.Duration(gained) * RegenInterval)
	p.LastHeartLossAt = &advanced
	return p
}

// Consume списывает одно сердце за неудачную попытку. При привилегии
// unlimited_hearts операция не делает ничего. Таймер восстановления
// стартует только при первой потере с полного запаса: последующие
// потери его не перезапускают.
func (l *Ledger) Consume(p models.Progress, ent models.Entitlement) (models.Progress, error) {
	if ent.UnlimitedHearts {
		return p, nil
	}
	p = l.Regenerate(p)
	if p.Hearts == 0 {
		return p, engine.ErrInsufficientHearts
	}
	p.Hearts--
	if p.LastHeartLossAt == nil {
		now := l.clk.Now()
		p.LastHeartLossAt = &now
	}
	return p, nil
}

// Refill атомарно списывает cost гемов и восстанавливает запас сердец
// до максимума. При нехватке гемов баланс не меняется.
func (l *Ledger) Refill(p models.Progress, cost int) (models.Progress, error) {
	if p.Gems < cost {
		return p, engine.ErrInsufficientGems
	}
	p.Gems -= cost
	p.Hearts = p.HeartCapacity
	p.LastHeartLossAt = nil
	return p, nil
}
