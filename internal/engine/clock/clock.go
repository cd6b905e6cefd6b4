// Package clock предоставляет источник времени, внедряемый во все
// компоненты движка, которые считают прошедшее время. В тестах вместо
// системных часов подставляется Fake с управляемым значением.
package clock

import "time"

// Clock возвращает текущее время. Побочных эффектов не имеет.
type Clock interface {
	Now() time.Time
}

// Real — системные часы.
type Real struct{}

// Now возвращает текущее системное время в UTC.
func (Real) Now() time.Time { return time.Now().UTC() }

// Fake — управляемые часы для тестов.
type Fake struct {
	Current time.Time
}

// NewFake создает Fake с заданным начальным временем.
func NewFake(t time.Time) *Fake { return &Fake{Current: t} }

// Now возвращает текущее значение часов.
func (f *Fake) Now() time.Time { return f.Current }

// Advance сдвигает часы вперёд на d.
func (f *Fake) Advance(d time.Duration) { f.Current = f.Current.Add(d) }

// Set устанавливает часы в точное значение.
func (f *Fake) Set(t time.Time) { f.Current = t }
