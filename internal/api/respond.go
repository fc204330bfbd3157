package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fjacquet/cashflow/internal/dateutils"
	"fjacquet/cashflow/internal/parsererror"
)

// respondError maps typed errors to status codes: missing records are 404,
// invalid input 400, anything else 500.
func (h *Handler) respondError(c *gin.Context, err error) {
	var validation *parsererror.ValidationError
	switch {
	case errors.Is(err, parsererror.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.WithError(err).Error("Request handling failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// bindBody decodes an optional JSON body into dst. An empty body keeps dst
// unchanged.
func bindBody(c *gin.Context, dst interface{}) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		badRequest(c, "invalid payload: "+err.Error())
		return false
	}
	return true
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, fmt.Sprintf("invalid %s", name))
		return uuid.Nil, false
	}
	return id, true
}

func uintParam(c *gin.Context, name string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		badRequest(c, fmt.Sprintf("invalid %s", name))
		return 0, false
	}
	return uint(n), true
}

// optionalInt reads an integer from the query string or, failing that, the
// multipart form. A missing or blank value yields nil.
func optionalInt(c *gin.Context, name string) (*int, error) {
	raw, ok := c.GetQuery(name)
	if !ok {
		raw = c.PostForm(name)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, &parsererror.ValidationError{Field: name, Reason: fmt.Sprintf("%q is not an integer", raw)}
	}
	return &n, nil
}

func intOrDefault(c *gin.Context, name string, def int) (int, bool) {
	v, err := optionalInt(c, name)
	if err != nil {
		badRequest(c, err.Error())
		return 0, false
	}
	if v == nil {
		return def, true
	}
	return *v, true
}

func parseDate(field, raw string) (time.Time, error) {
	t, err := dateutils.ParseISODate(raw)
	if err != nil {
		return time.Time{}, &parsererror.ValidationError{Field: field, Reason: fmt.Sprintf("%q is not a YYYY-MM-DD date", raw)}
	}
	return t, nil
}

func parseOptionalDate(field string, raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	t, err := parseDate(field, *raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
