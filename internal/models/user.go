// Package models содержит доменные структуры движка прогресса:
// пользователей, прогресс обучения, каталог уроков и подписки,
// а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import "time"

// User представляет зарегистрированного пользователя.
type User struct {
	UID              string    // UID пользователя
	Email            string    // Электронная почта
	Username         string    // Имя пользователя
	PasswordHash     string    // bcrypt-хэш пароля
	NativeLanguage   string    // Родной язык (код)
	LearningLanguage string    // Изучаемый язык (код)
	CreatedAt        time.Time // Дата регистрации
}

// RegisterRequest используется для приёма данных регистрации из JSON-запроса.
type RegisterRequest struct {
	Email            string `json:"email" validate:"required,email"`       // Электронная почта
	Username         string `json:"username" validate:"required,alphanum"` // Имя пользователя
	Password         string `json:"password" validate:"required,min=8"`    // Пароль
	NativeLanguage   string `json:"native_language" validate:"required"`   // Родной язык
	LearningLanguage string `json:"learning_language" validate:"required"` // Изучаемый язык
}

// LoginRequest используется для приёма данных входа из JSON-запроса.
type LoginRequest struct {
	Username string `json:"username" validate:"required,alphanum"` // Имя пользователя
	Password string `json:"password" validate:"required"`          // Пароль
}
