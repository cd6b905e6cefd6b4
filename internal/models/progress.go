package models

import "time"

// XPPerLevel — количество XP на один уровень. Уровень всегда вычисляется,
// никогда не хранится.
const XPPerLevel = 100

// Progress представляет запись прогресса пользователя: сердца, гемы,
// опыт и серию занятий. Поле LastHeartLossAt равно nil, пока запас
// сердец полон — таймер восстановления стартует с первой потери.
type Progress struct {
	UserUID          string     // UID пользователя
	Hearts           int        // Текущее количество сердец
	HeartCapacity    int        // Максимальный запас сердец
	LastHeartLossAt  *time.Time // Момент первой потери сердца с полного запаса
	Gems             int        // Баланс гемов
	TotalXP          int        // Суммарный опыт
	CurrentStreak    int        // Текущая серия занятий в днях
	LongestStreak    int        // Самая длинная серия занятий
	LastActivityDate *time.Time // Дата последнего занятия
}

// Level возвращает уровень, вычисленный из суммарного опыта.
func (p Progress) Level() int {
	return p.TotalXP/XPPerLevel + 1
}

// Snapshot — модель чтения для клиента: состояние сердец, опыта, серии
// и действующие привилегии. Именно эту форму отображают все экраны.
type Snapshot struct {
	Hearts           int         `json:"hearts"`
	HeartCapacity    int         `json:"heart_capacity"`
	UnlimitedHearts  bool        `json:"unlimited_hearts"`
	Gems             int         `json:"gems"`
	TotalXP          int         `json:"total_xp"`
	Level            int         `json:"level"`
	CurrentStreak    int         `json:"current_streak"`
	LongestStreak    int         `json:"longest_streak"`
	LastActivityDate *time.Time  `json:"last_activity_date,omitempty"`
	Entitlement      Entitlement `json:"entitlement"`
	Plan             Plan        `json:"plan"`
}

// LessonOutcome описывает результат завершения урока: начисленный опыт
// и наблюдаемые переходы (новый уровень, изменение серии).
type LessonOutcome struct {
	LessonID      string `json:"lesson_id"`
	XPGained      int    `json:"xp_gained"`
	TotalXP       int    `json:"total_xp"`
	Level         int    `json:"level"`
	LevelUp       bool   `json:"level_up"`
	CurrentStreak int    `json:"current_streak"`
	LongestStreak int    `json:"longest_streak"`
}
