// Package refill реализует HTTP-обработчик покупки сердец за гемы.
//
// Handler списывает фиксированную стоимость с баланса гемов и
// восстанавливает запас сердец до максимума. При нехватке гемов
// баланс не меняется.
package refill

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

// Service описывает интерфейс движка прогресса для пополнения сердец.
type Service interface {
	RefillHearts(ctx context.Context, userUID string) (*models.Progress, error)
}

// Handler управляет HTTP-запросами на пополнение сердец.
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
// @Summary Купить полный запас сердец
// @Description Списывает стоимость пополнения с баланса гемов и восстанавливает сердца до максимума.
// @Tags Hearts
// @Produce  json
// @Success 200 {object} map[string]any "Сердца и остаток гемов"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 402 {object} response.ErrorResponse "Не хватает гемов"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /hearts/refill [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.hearts.refill"
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

	progress, err := h.service.RefillHearts(r.Context(), userUID)
	if err != nil {
		if errors.Is(err, engine.ErrInsufficientGems) {
			log.Warn("not enough gems")
			w.WriteHeader(http.StatusPaymentRequired)
			render.JSON(w, r, response.Error("not enough gems"))
			return
		}
		log.Error("failed to refill hearts", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not refill hearts"))
		return
	}

	log.Info("hearts refilled", slog.Int("gems_left", progress.Gems))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"hearts": progress.Hearts,
		"gems":   progress.Gems,
	}))
}
