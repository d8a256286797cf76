package middleware

import (
	"log/slog"
	"net/http"

	"github.com/Eursukkul/table-booking/internal/dto"
	"github.com/labstack/echo/v4"
)

func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	body := dto.ErrorResponse{Message: http.StatusText(code)}

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		switch m := he.Message.(type) {
		case string:
			body.Message = m
		case dto.ErrorResponse:
			body = m
		}
	}

	if code >= http.StatusInternalServerError {
		slog.Error("Request failed",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"status", code,
			"error", err,
		)
	}

	_ = c.JSON(code, body)
}
