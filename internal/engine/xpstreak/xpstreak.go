// Package xpstreak накапливает опыт, выводит уровень и ведёт серию
// ежедневных занятий. Уровень — всегда производная величина от total_xp,
// пересечение границы в 100 XP — наблюдаемое событие, которое не
// сохраняется отдельно.
package xpstreak

import (
	"time"

	"github.com/indianduo/progression-engine/internal/engine/clock"
	"github.com/indianduo/progression-engine/internal/models"
)

// Scorer превращает балл за урок в начисляемый опыт. Формула начисления
// подключается извне; движок фиксирует только формулу уровня.
type Scorer func(score int) int

// DefaultScorer начисляет базовые 10 XP за урок плюс бонус за балл:
// floor(score/10), итого от 10 до 20 XP при балле 0-100.
func DefaultScorer(score int) int {
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return 10 + score/10
}

// Tracker применяет завершение урока к прогрессу пользователя.
type Tracker struct {
	clk   clock.Clock
	score Scorer
}

// New создает Tracker с внедрёнными часами и функцией начисления опыта.
// При nil scorer используется DefaultScorer.
func New(clk clock.Clock, score Scorer) *Tracker {
	if score == nil {
		score = DefaultScorer
	}
	return &Tracker{clk: clk, score: score}
}

// Apply начисляет опыт за завершённый урок и обновляет серию занятий.
// Возвращает обновлённый прогресс и результат для отображения.
//
// Правило серии: занятие в тот же календарный день не меняет серию
// (первое занятие поднимает её минимум до 1), занятие на следующий день
// увеличивает её на 1, разрыв в 2+ дня сбрасывает до 1. longest_streak
// никогда не уменьшается.
func (t *Tracker) Apply(p models.Progress, lessonID string, score int) (models.Progress, models.LessonOutcome) {
	now := t.clk.Now()
	today := truncateToDate(now)

	gained := t.score(score)
	levelBefore := p.Level()
	p.TotalXP += gained

	switch {
	case p.LastActivityDate == nil:
		p.CurrentStreak = 1
	case truncateToDate(*p.LastActivityDate).Equal(today):
		if p.CurrentStreak == 0 {
			p.CurrentStreak = 1
		}
	case truncateToDate(*p.LastActivityDate).Equal(today.AddDate(0, 0, -1)):
		p.CurrentStreak++
	default:
		p.CurrentStreak = 1
	}
	p.LastActivityDate = &today
	if p.CurrentStreak > p.LongestStreak {
		p.LongestStreak = p.CurrentStreak
	}

	outcome := models.LessonOutcome{
		LessonID:      lessonID,
		XPGained:      gained,
		TotalXP:       p.TotalXP,
		Level:         p.Level(),
		LevelUp:       p.Level() > levelBefore,
		CurrentStreak: p.CurrentStreak,
		LongestStreak: p.LongestStreak,
	}
	return p, outcome
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
