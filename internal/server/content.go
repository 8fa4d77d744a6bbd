package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/croplore/agrihub/internal/store"
)

// ContentHandler serves read-only listings of the curated content the
// corpus is built from.
type ContentHandler struct {
	Store *store.Store
}

func (h *ContentHandler) Register(g *echo.Group) {
	g.GET("/commodities", h.listCommodities)
	g.GET("/faqs", h.listFAQs)
	g.GET("/resources", h.listResources)
	g.GET("/forum/posts", h.listForumPosts)
}

func (h *ContentHandler) listCommodities(c echo.Context) error {
	items, err := h.Store.ListCommodities(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ContentHandler) listFAQs(c echo.Context) error {
	items, err := h.Store.ListFAQs(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ContentHandler) listResources(c echo.Context) error {
	items, err := h.Store.ListResources(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ContentHandler) listForumPosts(c echo.Context) error {
	items, err := h.Store.ListForumPosts(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}
