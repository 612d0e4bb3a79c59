package handler

import (
	"errors"
	"log/slog"
	"strconv"

	"todoapi/internal/apperror"

	"github.com/gin-gonic/gin"
)

// respondError is the single mapping point from the error taxonomy to HTTP.
// Anything outside the taxonomy is treated as internal and not echoed to the
// caller.
func respondError(c *gin.Context, err error) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		slog.Error("unhandled error",
			slog.String("path", c.Request.URL.Path),
			slog.String("error", err.Error()),
		)
		appErr = apperror.Internal("internal server error", err)
	}

	c.JSON(appErr.Kind.HTTPStatus(), gin.H{
		"error": appErr.Message,
		"code":  string(appErr.Kind),
	})
}

// parseIDParam reads a numeric path parameter, rejecting anything that is
// not a positive integer.
func parseIDParam(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.Validation("invalid " + name + " parameter")
	}
	return uint(id), nil
}
