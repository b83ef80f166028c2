package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"questboard/internal/services"

	"github.com/google/uuid"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
)

// abort renders data, or maps a service error onto its status.
func abort(c echo.Context, data any, err error) error {
	switch {
	case err == nil:
		return httpx.RestAbort(c, data, nil)
	case errors.Is(err, services.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidState):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, services.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrNotFound):
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.NotExist))
	case errors.Is(err, services.ErrValidation):
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Validation))
	case errors.Is(err, services.ErrAuthentication):
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Authn))
	default:
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}
}

func bindValid(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return fmt.Errorf("%w: %s", services.ErrValidation, err)
	}
	if err := c.Validate(v); err != nil {
		return fmt.Errorf("%w: %s", services.ErrValidation, err)
	}
	return nil
}

func paramUUID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid %s", services.ErrValidation, name)
	}
	return id, nil
}

func paramTelegramID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("telegram_id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid telegram_id", services.ErrValidation)
	}
	return id, nil
}

// pageParams reads page and limit; the service clamps them.
func pageParams(c echo.Context) (int, int) {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	return page, limit
}
