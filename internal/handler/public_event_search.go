package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ekarslan/event-seat-reservation/internal/repository"
)

// SearchEvents filters the public event catalogue by name, venue and
// time. time: "upcoming" (default), "active" (still running), "any".
func (h *PublicHandler) SearchEvents(c echo.Context) error {
	name := strings.TrimSpace(c.QueryParam("name"))
	location := strings.TrimSpace(c.QueryParam("location"))
	timeFilter := strings.ToLower(strings.TrimSpace(c.QueryParam("time")))
	if timeFilter == "" {
		timeFilter = "upcoming"
	}

	page, pageSize := searchPagination(c)

	q := repository.EventSearchQuery{
		Name:       name,
		Location:   location,
		TimeFilter: timeFilter,
		Page:       page,
		PageSize:   pageSize,
	}

	items, total, err := h.Events.Search(c.Request().Context(), q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data":      items,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// searchPagination reads page and page_size, clamping page_size to
// 1..100 with a default of 20.
func searchPagination(c echo.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(c.QueryParam("page_size"))
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
