package models

import "time"

// LessonType — тип урока.
type LessonType string

// Возможные типы уроков.
const (
	LessonReading   LessonType = "reading"
	LessonWriting   LessonType = "writing"
	LessonListening LessonType = "listening"
	LessonSpeaking  LessonType = "speaking"
)

// LessonState — вычисляемое состояние урока для пользователя.
// Никогда не хранится в базе: всегда выводится из набора завершённых уроков.
type LessonState string

// Возможные состояния урока.
const (
	StateLocked    LessonState = "locked"
	StateAvailable LessonState = "available"
	StateCompleted LessonState = "completed"
)

// Language описывает изучаемый язык из каталога.
type Language struct {
	Code       string `json:"code"`        // Код языка
	Name       string `json:"name"`        // Название
	NativeName string `json:"native_name"` // Название на самом языке
	Flag       string `json:"flag"`        // Эмодзи флага
}

// Unit описывает раздел каталога, владеющий упорядоченным списком уроков.
type Unit struct {
	ID           string `json:"id"`
	LanguageCode string `json:"language_code"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Position     int    `json:"position"`
}

// Lesson описывает урок из неизменяемого каталога. Движок хранит только
// отметки о завершении по id урока, содержимое урока остаётся во внешнем
// каталоге.
type Lesson struct {
	ID       string     `json:"id"`
	UnitID   string     `json:"unit_id"`
	Title    string     `json:"title"`
	Type     LessonType `json:"type"`
	Position int        `json:"position"`
}

// LessonView — урок вместе с вычисленным состоянием для клиента.
type LessonView struct {
	Lesson
	State LessonState `json:"state"`
}

// Completion — отметка о завершении урока пользователем.
type Completion struct {
	UserUID     string    // UID пользователя
	LessonID    string    // ID урока
	Score       int       // Балл за прохождение
	CompletedAt time.Time // Момент завершения
}

// CompleteLessonRequest используется для приёма результата урока из JSON-запроса.
type CompleteLessonRequest struct {
	Score int `json:"score" validate:"min=0,max=100"` // Балл за прохождение (0-100)
}
