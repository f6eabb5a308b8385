package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"replacementGame/business/game"
	"replacementGame/pkg/logger"
	jsonres "replacementGame/pkg/response"

	"github.com/labstack/echo/v4"
)

// ErrorHandler is the echo HTTPErrorHandler. Errors reaching it were not
// answered by a handler (unknown routes, panics caught by Recover, binder
// failures). Browser pages get plain text, everything else a JSON body.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := http.StatusText(code)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		message = fmt.Sprint(he.Message)
	}

	if code >= http.StatusInternalServerError {
		logger.Error("Unhandled request error",
			"trace_id", game.TraceIDFromContext(c.Request().Context()),
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"error", err,
		)
		message = http.StatusText(code)
	}

	var respErr error
	switch {
	case c.Request().Method == http.MethodHead:
		respErr = c.NoContent(code)
	case wantsHTML(c):
		respErr = c.String(code, message)
	default:
		respErr = c.JSON(code, jsonres.Error(strings.ToUpper(strings.ReplaceAll(http.StatusText(code), " ", "_")), message, nil))
	}

	if respErr != nil {
		logger.Error("Failed to write error response", "error", respErr)
	}
}

func wantsHTML(c echo.Context) bool {
	if strings.HasPrefix(c.Path(), "/api/") || strings.HasPrefix(c.Request().URL.Path, "/api/") {
		return false
	}
	return strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMETextHTML)
}
