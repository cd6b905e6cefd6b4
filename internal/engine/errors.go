// Package engine содержит общую для компонентов движка прогресса
// таксономию ошибок. Все ошибки ниже — восстановимые отказы политики,
// возвращаемые пользователю как есть; повторять такие операции бессмысленно.
// Отказы хранилища — отдельный класс (ErrStorageUnavailable), их
// повторяет вызывающая сторона.
package engine

import "errors"

var (
	// ErrInsufficientHearts — попытка урока при нулевом запасе сердец.
	ErrInsufficientHearts = errors.New("insufficient hearts")
	// ErrInsufficientGems — на балансе не хватает гемов для покупки.
	ErrInsufficientGems = errors.New("insufficient gems")
	// ErrLessonNotAvailable — урок заблокирован или уже завершён.
	ErrLessonNotAvailable = errors.New("lesson not available")
	// ErrAlreadySubscribed — попытка оформить уже действующий план.
	ErrAlreadySubscribed = errors.New("already subscribed")
	// ErrNoActiveSubscription — отмена при отсутствии активной подписки.
	ErrNoActiveSubscription = errors.New("no active subscription")
	// ErrStorageUnavailable — отказ персистентного слоя.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
