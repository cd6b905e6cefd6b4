// Package current реализует HTTP-обработчик чтения текущей подписки.
//
// Handler возвращает подписку пользователя вместе с действующими
// привилегиями. Истечение оплаченного периода учитывается лениво.
package current

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

// Service описывает интерфейс сервиса подписок для чтения текущей.
type Service interface {
	Current(ctx context.Context, userUID string) (*models.Subscription, models.Entitlement, models.Plan, error)
}

// Handler управляет HTTP-запросами на чтение текущей подписки.
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
// @Summary Получить текущую подписку
// @Description Возвращает подписку пользователя, действующий план и привилегии. Без подписки действует план Free.
// @Tags Subscriptions
// @Produce  json
// @Success 200 {object} map[string]any "Подписка и привилегии"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /subscription/current [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.current"
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

	sub, ent, plan, err := h.service.Current(r.Context(), userUID)
	if err != nil {
		log.Error("failed to read subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read subscription"))
		return
	}

	data := map[string]any{
		"plan":        plan,
		"entitlement": ent,
	}
	if sub != nil {
		data["subscription"] = map[string]any{
			"id":           sub.ID,
			"plan":         sub.Plan,
			"status":       sub.Status,
			"activated_at": sub.ActivatedAt,
			"expires_at":   sub.ExpiresAt,
			"canceled_at":  sub.CanceledAt,
		}
	}
	render.JSON(w, r, response.OKWithData(data))
}
