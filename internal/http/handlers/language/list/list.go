// Package list реализует HTTP-обработчик каталога языков.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/indianduo/progression-engine/internal/http/response"
	"github.com/indianduo/progression-engine/internal/lib/sl"
	"github.com/indianduo/progression-engine/internal/models"
)

// Service описывает интерфейс движка прогресса для чтения языков.
type Service interface {
	Languages(ctx context.Context) ([]models.Language, error)
}

// Handler управляет HTTP-запросами на чтение каталога языков.
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
// @Summary Получить список языков
// @Description Возвращает доступные для изучения языки.
// @Tags Languages
// @Produce  json
// @Success 200 {array} models.Language "Список языков"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /languages [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.language.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	languages, err := h.service.Languages(r.Context())
	if err != nil {
		log.Error("failed to list languages", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list languages"))
		return
	}

	render.JSON(w, r, response.OKWithData(languages))
}
