// Package complete реализует HTTP-обработчик завершения урока.
//
// Handler принимает балл за урок, проверяет доступность урока в линейном
// порядке прохождения и возвращает результат: начисленный опыт, уровень
// и состояние серии занятий.
package complete

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/indianduo/progression-engine/internal/engine"
	"github.com/indianduo/progression-engine/internal/http/middlewarectx"
	"github.com/indianduo/progression-engine/internal/http/response"
	"github.com/indianduo/progression-engine/internal/lib/sl"
	"github.com/indianduo/progression-engine/internal/models"
)

// Service описывает интерфейс движка прогресса для завершения урока.
type Service interface {
	CompleteLesson(ctx context.Context, userUID, lessonID string, score int) (*models.LessonOutcome, error)
}

// Handler управляет HTTP-запросами на завершение урока.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Завершить урок
// @Description Начисляет опыт за доступный урок и обновляет серию занятий. Повторное завершение и завершение вне порядка отклоняются.
// @Tags Lessons
// @Accept  json
// @Produce  json
// @Param id path string true "ID урока"
// @Param request body models.CompleteLessonRequest true "Балл за урок"
// @Success 200 {object} models.LessonOutcome "Результат завершения"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 402 {object} response.ErrorResponse "Нет сердец"
// @Failure 409 {object} response.ErrorResponse "Урок недоступен или уже завершён"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /lessons/{id}/complete [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.lesson.complete"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	lessonID := chi.URLParam(r, "id")
	if lessonID == "" {
		log.Error("lesson id missing in path")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("lesson id is required"))
		return
	}

	var req models.CompleteLessonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	outcome, err := h.service.CompleteLesson(r.Context(), userUID, lessonID, req.Score)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrLessonNotAvailable):
			log.Warn("lesson not available", slog.String("lesson_id", lessonID))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("lesson is locked or already completed"))
		case errors.Is(err, engine.ErrInsufficientHearts):
			log.Warn("no hearts left", slog.String("lesson_id", lessonID))
			w.WriteHeader(http.StatusPaymentRequired)
			render.JSON(w, r, response.Error("no hearts left"))
		default:
			log.Error("failed to complete lesson", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not complete lesson"))
		}
		return
	}

	log.Info("lesson completed", slog.String("lesson_id", lessonID), slog.Int("xp_gained", outcome.XPGained))
	render.JSON(w, r, response.OKWithData(outcome))
}
