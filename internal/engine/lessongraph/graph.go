// Package lessongraph вычисляет состояния уроков по упорядоченному
// каталогу и набору завершённых уроков. Прогрессия строго линейная:
// доступен ровно один незавершённый урок — первый по порядку.
//
// Карта состояний — чистая функция от набора завершений: она никогда
// не сохраняется и пересчитывается идемпотентно при каждом чтении.
package lessongraph

import (
	"github.com/indianduo/progression-engine/internal/engine"
	"github.com/indianduo/progression-engine/internal/models"
)

// Graph — упорядоченная последовательность уроков пользователя по одному
// изучаемому языку вместе с набором завершённых id.
type Graph struct {
	// Уроки в сквозном порядке раздел → урок.
	Ordered []models.Lesson
	// Завершённые уроки по id.
	Completed map[string]bool
}

// New строит Graph из упорядоченного каталога и списка завершений.
func New(ordered []models.Lesson, completions []models.Completion) *Graph {
	completed := make(map[string]bool, len(completions))
	for _, c := range completions {
		completed[c.LessonID] = true
	}
	return &Graph{Ordered: ordered, Completed: completed}
}

// UnlockStates возвращает отображение id урока в состояние за один проход
// по сквозному порядку: завершённые остаются завершёнными, первый
// незавершённый становится доступным, всё после него — заблокировано.
// Первый урок первого раздела никогда не бывает заблокирован.
func (g *Graph) UnlockStates() map[string]models.LessonState {
	states := make(map[string]models.LessonState, len(g.Ordered))
	frontierPassed := false
	for _, lesson := range g.Ordered {
		switch {
		case g.Completed[lesson.ID]:
			states[lesson.ID] = models.StateCompleted
		case !frontierPassed:
			states[lesson.ID] = models.StateAvailable
			frontierPassed = true
		default:
			states[lesson.ID] = models.StateLocked
		}
	}
	return states
}

// State возвращает вычисленное состояние одного урока. Для урока,
// отсутствующего в каталоге, возвращается locked.
func (g *Graph) State(lessonID string) models.LessonState {
	states := g.UnlockStates()
	state, ok := states[lessonID]
	if !ok {
		return models.StateLocked
	}
	return state
}

// Complete отмечает урок завершённым. Урок в любом состоянии, кроме
// available, отклоняется с ErrLessonNotAvailable, и граф не меняется:
// завершённые уроки не регрессируют, прыжки через заблокированные
// уроки невозможны.
func (g *Graph) Complete(lessonID string) error {
	if g.State(lessonID) != models.StateAvailable {
		return engine.ErrLessonNotAvailable
	}
	g.Completed[lessonID] = true
	return nil
}
