package handler

import (
	"errors"
	"net/http"

	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 全エンドポイント共通の封筒。code 0が成功、それ以外はHTTPステータスと同じ値。
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
	Error   any    `json:"error,omitempty"`
}

func writeOK(c echo.Context, status int, data any) error {
	return c.JSON(status, Response{Code: 0, Message: "ok", Data: data})
}

// usecaseの型付きエラーをHTTPステータスへ写す。
func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}

	var (
		ve *usecase.ValidationError
		nf *usecase.NotFoundError
		is *usecase.InsufficientStockError
		it *usecase.IllegalTransitionError
		iv *usecase.InvalidStateError
	)

	status := 0
	switch {
	case errors.Is(err, usecase.ErrCartEmpty):
		status = http.StatusBadRequest
	case errors.Is(err, usecase.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, usecase.ErrForbidden):
		status = http.StatusForbidden
	case errors.As(err, &nf):
		status = http.StatusNotFound
	case errors.As(err, &ve), errors.As(err, &is), errors.As(err, &it), errors.As(err, &iv):
		status = http.StatusBadRequest
	default:
		//内部詳細は message に出さない
		return c.JSON(http.StatusInternalServerError, Response{
			Code:    http.StatusInternalServerError,
			Message: "internal error",
			Error:   err.Error(),
		})
	}

	return c.JSON(status, Response{Code: status, Message: err.Error()})
}

func getUserIDFromContext(c echo.Context) (int64, bool) {
	v := c.Get(middleware.CtxUserIDKey)
	id, ok := v.(int64)
	return id, ok
}
