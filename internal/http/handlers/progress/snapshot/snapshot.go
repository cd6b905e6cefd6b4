// Package snapshot реализует HTTP-обработчик чтения прогресса пользователя.
//
// Handler возвращает модель чтения: сердца после ленивого восстановления,
// гемы, опыт, уровень, серии занятий и действующие привилегии.
package snapshot

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

// Service описывает интерфейс движка прогресса для чтения снимка.
type Service interface {
	Snapshot(ctx context.Context, userUID string) (*models.Snapshot, error)
}

// Handler управляет HTTP-запросами на чтение прогресса.
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
// @Summary Получить прогресс пользователя
// @Description Возвращает сердца, гемы, опыт, уровень, серии занятий и привилегии текущего плана.
// @Tags Progress
// @Produce  json
// @Success 200 {object} models.Snapshot "Снимок прогресса"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /progress [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.progress.snapshot"
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

	snap, err := h.service.Snapshot(r.Context(), userUID)
	if err != nil {
		log.Error("failed to build snapshot", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read progress"))
		return
	}

	render.JSON(w, r, response.OKWithData(snap))
}
