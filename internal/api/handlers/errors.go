package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/yawerky/houseOfGul-sub000/pkg/errors"
)

// respondError writes the JSON error body for err. Unknown errors are logged
// and reported as 500 without detail.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var (
		unauthorized *apperrors.ErrUnauthorized
		validation   *apperrors.ErrValidation
		notFound     *apperrors.ErrNotFound
		conflict     *apperrors.ErrConflict
		unprocess    *apperrors.ErrUnprocessable
		transition   *apperrors.ErrInvalidStateTransition
	)
	switch {
	case errors.As(err, &unauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": unauthorized.Error()})
	case errors.As(err, &validation):
		body := gin.H{"error": validation.Error()}
		if len(validation.Fields) > 0 {
			body["details"] = validation.Fields
		}
		c.JSON(http.StatusBadRequest, body)
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Resource + " not found"})
	case errors.As(err, &conflict):
		body := gin.H{"error": conflict.Error()}
		if len(conflict.Details) > 0 {
			body["details"] = conflict.Details
		}
		c.JSON(http.StatusConflict, body)
	case errors.As(err, &unprocess):
		body := gin.H{"error": unprocess.Error()}
		if unprocess.Code != "" {
			body["code"] = unprocess.Code
		}
		if len(unprocess.Details) > 0 {
			body["details"] = unprocess.Details
		}
		c.JSON(http.StatusUnprocessableEntity, body)
	case errors.As(err, &transition):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": transition.Error(),
			"code":  "invalid_transition",
			"details": gin.H{
				"field": transition.Field,
				"from":  transition.From,
				"to":    transition.To,
			},
		})
	default:
		logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, message string, err error) {
	body := gin.H{"error": message}
	if err != nil {
		body["details"] = err.Error()
	}
	c.JSON(http.StatusBadRequest, body)
}

// paramID parses the :id path parameter, writing a 400 when it is not a uuid
func paramID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

// queryInt reads an integer query parameter, falling back to def when it is
// missing or outside [min, max]
func queryInt(c *gin.Context, key string, def, min, max int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < min || n > max {
		return def
	}
	return n
}
