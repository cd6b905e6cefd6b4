// Package list реализует HTTP-обработчик каталога уроков.
//
// Handler возвращает разделы и уроки языка с вычисленным состоянием
// разблокировки: completed, available или locked. Язык задаётся
// query-параметром, по умолчанию берётся изучаемый язык пользователя.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/indianduo/progression-engine/internal/http/middlewarectx"
	"github.com/indianduo/progression-engine/internal/http/response"
	"github.com/indianduo/progression-engine/internal/lib/sl"
	"github.com/indianduo/progression-engine/internal/models"
)

// Service описывает интерфейс движка прогресса для чтения каталога.
type Service interface {
	Lessons(ctx context.Context, userUID, languageCode string) ([]models.Unit, []models.LessonView, error)
}

// Handler управляет HTTP-запросами на чтение каталога уроков.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить каталог уроков
// @Description Возвращает разделы и уроки языка с состоянием разблокировки для пользователя.
// @Tags Lessons
// @Produce  json
// @Param language query string false "Код языка, по умолчанию изучаемый язык пользователя"
// @Success 200 {object} map[string]any "Каталог с состояниями"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /lessons [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.lesson.list"
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

	languageCode := r.URL.Query().Get("language")
	units, lessons, err := h.service.Lessons(r.Context(), userUID, languageCode)
	if err != nil {
		log.Error("failed to list lessons", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list lessons"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"units":   units,
		"lessons": lessons,
	}))
}
