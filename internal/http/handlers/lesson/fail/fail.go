// Package fail реализует HTTP-обработчик проваленной попытки урока.
//
// Handler списывает одно сердце и возвращает остаток. Для планов с
// безлимитными сердцами списание не происходит.
package fail

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/indianduo/progression-engine/internal/engine"
	"github.com/indianduo/progression-engine/internal/http/middlewarectx"
	"github.com/indianduo/progression-engine/internal/http/response"
	"github.com/indianduo/progression-engine/internal/lib/sl"
	"github.com/indianduo/progression-engine/internal/models"
)

// Service описывает интерфейс движка прогресса для списания сердца.
type Service interface {
	FailAttempt(ctx context.Context, userUID string) (*models.Progress, error)
}

// Handler управляет HTTP-запросами на списание сердца.
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
// @Summary Провалить попытку урока
// @Description Списывает одно сердце за неудачную попытку и возвращает остаток.
// @Tags Lessons
// @Produce  json
// @Param id path string true "ID урока"
// @Success 200 {object} map[string]any "Остаток сердец"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 402 {object} response.ErrorResponse "Нет сердец"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /lessons/{id}/fail [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.lesson.fail"
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

	progress, err := h.service.FailAttempt(r.Context(), userUID)
	if err != nil {
		if errors.Is(err, engine.ErrInsufficientHearts) {
			log.Warn("no hearts left")
			w.WriteHeader(http.StatusPaymentRequired)
			render.JSON(w, r, response.Error("no hearts left"))
			return
		}
		log.Error("failed to consume heart", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not consume heart"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"hearts":         progress.Hearts,
		"heart_capacity": progress.HeartCapacity,
	}))
}
