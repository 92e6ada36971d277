// Package list реализует HTTP-обработчик каталога экспертов.
//
// Handler принимает параметры поиска (строка, диапазон цены, сортировка,
// пагинация) и возвращает страницу карточек экспертов.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/shopspring/decimal"

	"github.com/meetexpert/meetexpert/internal/http/response"
	"github.com/meetexpert/meetexpert/internal/lib/sl"
	"github.com/meetexpert/meetexpert/internal/models"
)

// Handler обрабатывает запросы каталога экспертов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики каталога.
type Service interface {
	List(ctx context.Context, filter models.ExpertFilter) ([]*models.ExpertCard, int, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Каталог экспертов
// @Description Возвращает карточки экспертов с фильтрами, сортировкой и пагинацией.
// @Tags Experts
// @Produce  json
// @Param q query string false "Поиск по имени, username или профессии"
// @Param minPrice query number false "Минимальная цена"
// @Param maxPrice query number false "Максимальная цена"
// @Param sort query string false "rating_desc (по умолчанию), rating_asc, price_asc, price_desc"
// @Param page query int false "Номер страницы"
// @Param limit query int false "Размер страницы"
// @Success 200 {object} map[string]any "Карточки экспертов и общее количество"
// @Failure 400 {object} response.ErrorResponse "Некорректные параметры фильтра"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /experts [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.expert.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	filter, err := parseFilter(r)
	if err != nil {
		log.Error("failed to parse filter", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid filter parameters"))
		return
	}

	items, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		log.Error("failed to list experts", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list experts"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"experts": items,
		"total":   total,
	}))
}

func parseFilter(r *http.Request) (models.ExpertFilter, error) {
	q := r.URL.Query()
	filter := models.ExpertFilter{
		Query: q.Get("q"),
		Sort:  q.Get("sort"),
	}
	if raw := q.Get("minPrice"); raw != "" {
		minPrice, err := decimal.NewFromString(raw)
		if err != nil {
			return filter, err
		}
		filter.MinPrice = &minPrice
	}
	if raw := q.Get("maxPrice"); raw != "" {
		maxPrice, err := decimal.NewFromString(raw)
		if err != nil {
			return filter, err
		}
		filter.MaxPrice = &maxPrice
	}
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))
	return filter, nil
}
