// Package plans реализует HTTP-обработчик витрины тарифных планов.
package plans

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/indianduo/progression-engine/internal/http/response"
	"github.com/indianduo/progression-engine/internal/models"
)

// Service описывает интерфейс сервиса подписок для витрины планов.
type Service interface {
	Plans(ctx context.Context) []models.PlanInfo
}

// Handler управляет HTTP-запросами на чтение витрины планов.
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
// @Summary Получить список тарифных планов
// @Description Возвращает планы Free, Plus и Family вместе с их привилегиями и ценами.
// @Tags Subscriptions
// @Produce  json
// @Success 200 {array} models.PlanInfo "Список планов"
// @Security BearerAuth
// @Router /subscription/plans [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.OKWithData(h.service.Plans(r.Context())))
}
