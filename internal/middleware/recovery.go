package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/Carter-75/SnowRemovel/internal/logger"
	"github.com/gin-gonic/gin"
)

// Recovery turns a panic in a later handler into a 500 envelope. The
// panic value and stack are logged; neither is sent to the client.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}

			loggerFor(c, log).Error("Panic recovered", fmt.Errorf("panic: %v", recovered), map[string]interface{}{
				"method": c.Request.Method,
				"route":  routeOf(c),
				"stack":  string(debug.Stack()),
			})

			abortWithError(c, http.StatusInternalServerError, codeInternal, "An unexpected error occurred", nil)
		}()

		c.Next()
	}
}
