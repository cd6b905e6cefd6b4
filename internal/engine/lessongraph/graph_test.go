package lessongraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indianduo/progression-engine/internal/engine"
	"github.com/indianduo/progression-engine/internal/models"
)

func catalog() []models.Lesson {
	return []models.Lesson{
		{ID: "l1", UnitID: "basics", Title: "Greetings", Type: models.LessonReading, Position: 1},
		{ID: "l2", UnitID: "basics", Title: "Family", Type: models.LessonReading, Position: 2},
		{ID: "l3", UnitID: "basics", Title: "Numbers", Type: models.LessonListening, Position: 3},
		{ID: "l4", UnitID: "phrases", Title: "Introductions", Type: models.LessonSpeaking, Position: 1},
		{ID: "l5", UnitID: "phrases", Title: "Directions", Type: models.LessonWriting, Position: 2},
	}
}

func completions(ids ...string) []models.Completion {
	result := make([]models.Completion, 0, len(ids))
	for _, id := range ids {
		result = append(result, models.Completion{LessonID: id})
	}
	return result
}

func TestGraph_UnlockStates(t *testing.T) {
	tests := []struct {
		name      string
		completed []string
		want      map[string]models.LessonState
	}{
		{
			name:      "без завершений доступен только первый урок",
			completed: nil,
			want: map[string]models.LessonState{
				"l1": models.StateAvailable,
				"l2": models.StateLocked,
				"l3": models.StateLocked,
				"l4": models.StateLocked,
				"l5": models.StateLocked,
			},
		},
		{
			name:      "фронт сдвигается за последним завершённым",
			completed: []string{"l1", "l2"},
			want: map[string]models.LessonState{
				"l1": models.StateCompleted,
				"l2": models.StateCompleted,
				"l3": models.StateAvailable,
				"l4": models.StateLocked,
				"l5": models.StateLocked,
			},
		},
		{
			name:      "переход между разделами линейный",
			completed: []string{"l1", "l2", "l3"},
			want: map[string]models.LessonState{
				"l1": models.StateCompleted,
				"l2": models.StateCompleted,
				"l3": models.StateCompleted,
				"l4": models.StateAvailable,
				"l5": models.StateLocked,
			},
		},
		{
			name:      "все уроки завершены",
			completed: []string{"l1", "l2", "l3", "l4", "l5"},
			want: map[string]models.LessonState{
				"l1": models.StateCompleted,
				"l2": models.StateCompleted,
				"l3": models.StateCompleted,
				"l4": models.StateCompleted,
				"l5": models.StateCompleted,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(catalog(), completions(tt.completed...))
			assert.Equal(t, tt.want, g.UnlockStates())
		})
	}
}

func TestGraph_UnlockStates_Idempotent(t *testing.T) {
	g := New(catalog(), completions("l1"))
	first := g.UnlockStates()
	second := g.UnlockStates()
	assert.Equal(t, first, second, "пересчёт от того же набора завершений даёт ту же карту")
}

func TestGraph_FirstLessonNeverLocked(t *testing.T) {
	g := New(catalog(), nil)
	state := g.State("l1")
	assert.NotEqual(t, models.StateLocked, state)
}

func TestGraph_Complete(t *testing.T) {
	tests := []struct {
		name      string
		completed []string
		lessonID  string
		wantErr   error
	}{
		{
			name:     "доступный урок завершается",
			lessonID: "l1",
		},
		{
			name:      "заблокированный урок отклоняется",
			completed: []string{"l1"},
			lessonID:  "l3",
			wantErr:   engine.ErrLessonNotAvailable,
		},
		{
			name:      "завершённый урок не завершается повторно",
			completed: []string{"l1"},
			lessonID:  "l1",
			wantErr:   engine.ErrLessonNotAvailable,
		},
		{
			name:     "неизвестный урок отклоняется",
			lessonID: "unknown",
			wantErr:  engine.ErrLessonNotAvailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(catalog(), completions(tt.completed...))
			before := g.UnlockStates()

			err := g.Complete(tt.lessonID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, before, g.UnlockStates(), "отказ не должен менять состояние")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.StateCompleted, g.State(tt.lessonID))
		})
	}
}

func TestGraph_CompleteOutOfOrderNeverMutates(t *testing.T) {
	g := New(catalog(), nil)
	for _, id := range []string{"l5", "l4", "l3", "l2"} {
		err := g.Complete(id)
		assert.ErrorIs(t, err, engine.ErrLessonNotAvailable)
	}
	assert.Equal(t, models.StateAvailable, g.State("l1"))
	assert.Empty(t, g.Completed)
}
