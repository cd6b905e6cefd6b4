// Package progression содержит бизнес-логику движка прогресса:
// сердца, опыт, серии занятий и разблокировку уроков. Все мутации
// одного пользователя сериализуются per-user мьютексом, поэтому
// движок остаётся корректным при конкурентных запросах.
package progression

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/indianduo/progression-engine/internal/engine"
	"github.com/indianduo/progression-engine/internal/engine/clock"
	"github.com/indianduo/progression-engine/internal/engine/entitlement"
	"github.com/indianduo/progression-engine/internal/engine/hearts"
	"github.com/indianduo/progression-engine/internal/engine/lessongraph"
	"github.com/indianduo/progression-engine/internal/engine/xpstreak"
	"github.com/indianduo/progression-engine/internal/lib/rabbitmq"
	"github.com/indianduo/progression-engine/internal/lib/sl"
	"github.com/indianduo/progression-engine/internal/metrics"
	"github.com/indianduo/progression-engine/internal/models"
)

// snapshotTTL — время жизни кешированного снимка прогресса.
const snapshotTTL = time.Minute

// ProgressRepository определяет методы для работы с прогрессом в хранилище.
type ProgressRepository interface {
	// GetProgress возвращает запись прогресса пользователя.
	GetProgress(ctx context.Context, userUID string) (*models.Progress, error)
	// UpdateProgress сохраняет запись прогресса и возвращает количество изменённых строк.
	UpdateProgress(ctx context.Context, p models.Progress) (int, error)
	// ListCompletions возвращает завершения уроков пользователя для языка.
	ListCompletions(ctx context.Context, userUID, languageCode string) ([]models.Completion, error)
	// ApplyCompletionTx атомарно сохраняет прогресс и завершение урока.
	ApplyCompletionTx(ctx context.Context, p models.Progress, c models.Completion) error
}

// CatalogRepository определяет методы для чтения каталога уроков.
type CatalogRepository interface {
	// ListLanguages возвращает доступные языки.
	ListLanguages(ctx context.Context) ([]models.Language, error)
	// ListUnits возвращает разделы языка в порядке прохождения.
	ListUnits(ctx context.Context, languageCode string) ([]models.Unit, error)
	// ListLessons возвращает уроки языка в линейном порядке прохождения.
	ListLessons(ctx context.Context, languageCode string) ([]models.Lesson, error)
	// GetLessonLanguage возвращает код языка, которому принадлежит урок.
	GetLessonLanguage(ctx context.Context, lessonID string) (string, error)
}

// SubscriptionReader возвращает текущую подписку пользователя.
type SubscriptionReader interface {
	GetCurrentSubscription(ctx context.Context, userUID string) (*models.Subscription, error)
}

// UserReader возвращает пользователя по UID.
type UserReader interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// EventPublisher публикует доменные события.
type EventPublisher interface {
	Publish(exchange, routingkey string, message any) error
}

// LevelUpEvent — событие перехода пользователя на новый уровень.
type LevelUpEvent struct {
	UserUID string `json:"user_uid"`
	Level   int    `json:"level"`
	TotalXP int    `json:"total_xp"`
}

// Service реализует операции движка прогресса поверх репозиториев,
// кеша и чистых компонентов engine.
type Service struct {
	repo    ProgressRepository
	catalog CatalogRepository
	subs    SubscriptionReader
	users   UserReader
	cache   Cache
	events  EventPublisher
	clk     clock.Clock
	ledger  *hearts.Ledger
	tracker *xpstreak.Tracker
	log     *slog.Logger

	mu        sync.Mutex
	userLocks map[string]*sync.Mutex
}

// New создает новый экземпляр Service. Нулевой clk означает реальные часы.
func New(repo ProgressRepository, catalog CatalogRepository, subs SubscriptionReader,
	users UserReader, cache Cache, events EventPublisher, clk clock.Clock, log *slog.Logger) *Service {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Service{
		repo:      repo,
		catalog:   catalog,
		subs:      subs,
		users:     users,
		cache:     cache,
		events:    events,
		clk:       clk,
		ledger:    hearts.New(clk),
		tracker:   xpstreak.New(clk, nil),
		log:       log,
		userLocks: make(map[string]*sync.Mutex),
	}
}

// lockUser возвращает мьютекс, сериализующий мутации одного пользователя.
func (s *Service) lockUser(userUID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.userLocks[userUID]
	if !ok {
		lock = &sync.Mutex{}
		s.userLocks[userUID] = lock
	}
	return lock
}

func snapshotKey(userUID string) string {
	return fmt.Sprintf("snapshot:%s", userUID)
}

// Snapshot возвращает модель чтения прогресса: сердца после ленивого
// восстановления, гемы, опыт, уровень, серии и действующие привилегии.
func (s *Service) Snapshot(ctx context.Context, userUID string) (*models.Snapshot, error) {
	cacheKey := snapshotKey(userUID)
	var cached *models.Snapshot
	found, err := s.cache.Get(cacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read snapshot from cache", slog.String("key", cacheKey), sl.Err(err))
	}
	if found {
		return cached, nil
	}

	lock := s.lockUser(userUID)
	lock.Lock()
	defer lock.Unlock()

	progress, err := s.repo.GetProgress(ctx, userUID)
	if err != nil {
		return nil, err
	}
	sub, err := s.subs.GetCurrentSubscription(ctx, userUID)
	if err != nil {
		return nil, err
	}

	now := s.clk.Now()
	ent := entitlement.Resolve(sub, now)
	plan := entitlement.EffectivePlan(sub, now)

	regenerated := s.ledger.Regenerate(*progress)
	if regenerated.Hearts != progress.Hearts {
		if _, err := s.repo.UpdateProgress(ctx, regenerated); err != nil {
			s.log.Warn("failed to persist regenerated hearts", sl.Err(err))
		}
	}

	snapshot := &models.Snapshot{
		Hearts:           regenerated.Hearts,
		HeartCapacity:    regenerated.HeartCapacity,
		UnlimitedHearts:  ent.UnlimitedHearts,
		Gems:             regenerated.Gems,
		TotalXP:          regenerated.TotalXP,
		Level:            regenerated.Level(),
		CurrentStreak:    regenerated.CurrentStreak,
		LongestStreak:    regenerated.LongestStreak,
		LastActivityDate: regenerated.LastActivityDate,
		Entitlement:      ent,
		Plan:             plan,
	}
	if err := s.cache.Set(cacheKey, snapshot, snapshotTTL); err != nil {
		s.log.Warn("failed to cache snapshot", slog.String("key", cacheKey), sl.Err(err))
	}
	return snapshot, nil
}

// Languages возвращает каталог доступных языков.
func (s *Service) Languages(ctx context.Context) ([]models.Language, error) {
	return s.catalog.ListLanguages(ctx)
}

// Lessons возвращает разделы и уроки языка с вычисленным состоянием
// разблокировки для пользователя. Пустой languageCode означает
// изучаемый язык пользователя.
func (s *Service) Lessons(ctx context.Context, userUID, languageCode string) ([]models.Unit, []models.LessonView, error) {
	if languageCode == "" {
		user, err := s.users.GetUser(ctx, userUID)
		if err != nil {
			return nil, nil, err
		}
		languageCode = user.LearningLanguage
	}

	units, err := s.catalog.ListUnits(ctx, languageCode)
	if err != nil {
		return nil, nil, err
	}
	lessons, err := s.catalog.ListLessons(ctx, languageCode)
	if err != nil {
		return nil, nil, err
	}
	completions, err := s.repo.ListCompletions(ctx, userUID, languageCode)
	if err != nil {
		return nil, nil, err
	}

	graph := lessongraph.New(lessons, completions)
	states := graph.UnlockStates()
	views := make([]models.LessonView, 0, len(lessons))
	for _, lesson := range lessons {
		views = append(views, models.LessonView{
			Lesson: lesson,
			State:  states[lesson.ID],
		})
	}
	return units, views, nil
}

// CompleteLesson завершает доступный урок: начисляет опыт, обновляет
// серию занятий и атомарно сохраняет прогресс вместе с завершением.
// Повторное завершение и завершение вне порядка отклоняются.
func (s *Service) CompleteLesson(ctx context.Context, userUID, lessonID string, score int) (*models.LessonOutcome, error) {
	lock := s.lockUser(userUID)
	lock.Lock()
	defer lock.Unlock()

	languageCode, err := s.catalog.GetLessonLanguage(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	lessons, err := s.catalog.ListLessons(ctx, languageCode)
	if err != nil {
		return nil, err
	}
	completions, err := s.repo.ListCompletions(ctx, userUID, languageCode)
	if err != nil {
		return nil, err
	}
	graph := lessongraph.New(lessons, completions)
	if err := graph.Complete(lessonID); err != nil {
		return nil, err
	}

	progress, err := s.repo.GetProgress(ctx, userUID)
	if err != nil {
		return nil, err
	}
	sub, err := s.subs.GetCurrentSubscription(ctx, userUID)
	if err != nil {
		return nil, err
	}
	ent := entitlement.Resolve(sub, s.clk.Now())

	regenerated := s.ledger.Regenerate(*progress)
	if !ent.UnlimitedHearts && regenerated.Hearts == 0 {
		return nil, engine.ErrInsufficientHearts
	}

	updated, outcome := s.tracker.Apply(regenerated, lessonID, score)
	completion := models.Completion{
		UserUID:     userUID,
		LessonID:    lessonID,
		Score:       score,
		CompletedAt: s.clk.Now().UTC(),
	}
	if err := s.repo.ApplyCompletionTx(ctx, updated, completion); err != nil {
		return nil, err
	}

	metrics.LessonsCompleted.Inc()
	s.log.Info("lesson completed", sl.UID(userUID),
		slog.String("lesson_id", lessonID),
		slog.Int("xp_gained", outcome.XPGained))

	if outcome.LevelUp {
		metrics.LevelUps.Inc()
		event := LevelUpEvent{UserUID: userUID, Level: outcome.Level, TotalXP: outcome.TotalXP}
		if err := s.events.Publish(rabbitmq.Exchange, rabbitmq.RouteLevelUp, event); err != nil {
			s.log.Warn("failed to publish level up event", sl.Err(err))
		}
	}

	s.invalidateSnapshot(userUID)
	return &outcome, nil
}

// FailAttempt списывает одно сердце за проваленную попытку. Для планов
// с безлимитными сердцами списание не происходит.
func (s *Service) FailAttempt(ctx context.Context, userUID string) (*models.Progress, error) {
	lock := s.lockUser(userUID)
	lock.Lock()
	defer lock.Unlock()

	progress, err := s.repo.GetProgress(ctx, userUID)
	if err != nil {
		return nil, err
	}
	sub, err := s.subs.GetCurrentSubscription(ctx, userUID)
	if err != nil {
		return nil, err
	}
	ent := entitlement.Resolve(sub, s.clk.Now())

	consumed, err := s.ledger.Consume(*progress, ent)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.UpdateProgress(ctx, consumed); err != nil {
		return nil, err
	}

	if !ent.UnlimitedHearts {
		metrics.HeartsConsumed.Inc()
	}
	s.invalidateSnapshot(userUID)
	return &consumed, nil
}

// RefillHearts покупает полный запас сердец за гемы. Баланс не
// списывается частично: при нехватке гемов возвращается ошибка.
func (s *Service) RefillHearts(ctx context.Context, userUID string) (*models.Progress, error) {
	lock := s.lockUser(userUID)
	lock.Lock()
	defer lock.Unlock()

	progress, err := s.repo.GetProgress(ctx, userUID)
	if err != nil {
		return nil, err
	}

	regenerated := s.ledger.Regenerate(*progress)
	refilled, err := s.ledger.Refill(regenerated, hearts.RefillCost)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.UpdateProgress(ctx, refilled); err != nil {
		return nil, err
	}

	metrics.HeartRefills.Inc()
	s.log.Info("hearts refilled", slog.Int("gems_left", refilled.Gems))
	s.invalidateSnapshot(userUID)
	return &refilled, nil
}

func (s *Service) invalidateSnapshot(userUID string) {
	cacheKey := snapshotKey(userUID)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to invalidate snapshot cache", slog.String("key", cacheKey), sl.Err(err))
	}
}
