package handler

import (
	"net/http"
	"strconv"
	"time"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/repository"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type AdminOrderHandler struct {
	uc *usecase.AdminOrderUsecase
}

func NewAdminOrderHandler(uc *usecase.AdminOrderUsecase) *AdminOrderHandler {
	return &AdminOrderHandler{uc: uc}
}

type AdminOrderUpdateRequest struct {
	Status *string `json:"status"`
	Remark *string `json:"remark"`
}

func (h *AdminOrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/orders/admin")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.AdminRoleGuard())

	g.GET("", h.list)
	g.GET("/filter", h.filter)
	g.GET("/statistics", h.statistics)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
	g.POST("/:id/refund", h.refund)
}

func (h *AdminOrderHandler) list(c echo.Context) error {
	page, limit, err := parsePaging(c, 1, 50)
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.List(c.Request().Context(), page, limit)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, out)
}

func (h *AdminOrderHandler) filter(c echo.Context) error {
	page, limit, err := parsePaging(c, 1, 50)
	if err != nil {
		return writeError(c, err)
	}

	f := repository.OrderListFilter{
		Page:        page,
		Limit:       limit,
		OrderNumber: c.QueryParam("order_number"),
		Status:      c.QueryParam("status"),
	}

	if v := c.QueryParam("user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return writeError(c, &usecase.ValidationError{Message: "invalid user_id"})
		}
		f.UserID = &id
	}

	if v := c.QueryParam("from"); v != "" {
		tm, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return writeError(c, &usecase.ValidationError{Message: "invalid from"})
		}
		f.From = &tm
	}

	if v := c.QueryParam("to"); v != "" {
		tm, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return writeError(c, &usecase.ValidationError{Message: "invalid to"})
		}
		f.To = &tm
	}

	if v := c.QueryParam("min_total"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return writeError(c, &usecase.ValidationError{Message: "invalid min_total"})
		}
		f.MinTotal = &d
	}

	if v := c.QueryParam("max_total"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return writeError(c, &usecase.ValidationError{Message: "invalid max_total"})
		}
		f.MaxTotal = &d
	}

	out, err := h.uc.Filter(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, out)
}

func (h *AdminOrderHandler) statistics(c echo.Context) error {
	out, err := h.uc.Statistics(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, out)
}

func (h *AdminOrderHandler) update(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return writeError(c, usecase.ErrUnauthorized)
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return writeError(c, &usecase.ValidationError{Message: "invalid id"})
	}

	var req AdminOrderUpdateRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, &usecase.ValidationError{Message: "invalid body"})
	}

	out, err := h.uc.Update(c.Request().Context(), actorID, id, usecase.AdminUpdateOrderInput{
		Status: req.Status,
		Remark: req.Remark,
	})
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, out)
}

func (h *AdminOrderHandler) delete(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return writeError(c, usecase.ErrUnauthorized)
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return writeError(c, &usecase.ValidationError{Message: "invalid id"})
	}

	if err := h.uc.Delete(c.Request().Context(), actorID, id); err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, nil)
}

func (h *AdminOrderHandler) refund(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return writeError(c, usecase.ErrUnauthorized)
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return writeError(c, &usecase.ValidationError{Message: "invalid id"})
	}

	out, err := h.uc.Refund(c.Request().Context(), actorID, id)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, out)
}

// page/limitの共通パース
func parsePaging(c echo.Context, defPage int, defLimit int) (int, int, error) {
	page := defPage
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, &usecase.ValidationError{Message: "invalid page"}
		}
		page = p
	}

	limit := defLimit
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, &usecase.ValidationError{Message: "invalid limit"}
		}
		limit = l
	}

	return page, limit, nil
}
