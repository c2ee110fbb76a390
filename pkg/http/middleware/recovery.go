package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"FxPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Recover returns recovery middleware. Handler panics are logged with
// their stack and turned into a 500 response.
func Recover(log *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			defer func() {
				if r := recover(); r != nil {
					err, ok := r.(error)
					if !ok {
						err = fmt.Errorf("%v", r)
					}
					log.Error("panic recovered",
						logger.Error(err),
						logger.String("path", c.Request().RequestURI),
						logger.String("stack", string(debug.Stack())))
					_ = c.JSON(http.StatusInternalServerError, map[string]interface{}{
						"status":  http.StatusInternalServerError,
						"message": "Internal Server Error",
					})
				}
			}()
			return next(c)
		}
	}
}
