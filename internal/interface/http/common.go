package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ppfood/api/pkg/apperr"
	"github.com/ppfood/api/pkg/response"
)

// fail maps a service error onto the response envelope. Domain errors carry
// their own status; anything else is logged with the request context and
// surfaced as an opaque 500.
func fail(c *gin.Context, log *logrus.Logger, err error) {
	if e := apperr.From(err); e != nil {
		response.Error[any](c, e.Status, e.Message, e.Details)
		return
	}
	if log != nil {
		log.WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"error":      err,
		}).Error("unhandled error")
	}
	response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
}

func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Error[any](c, http.StatusBadRequest, "invalid "+name, nil)
		return 0, false
	}
	return id, true
}

// parseFormBool parses the stringly-typed booleans arriving from form
// submissions ("true", "false", "1", "0") into a typed value. Empty means
// absent. The strict model never sees the raw string.
func parseFormBool(s string) (*bool, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return nil, apperr.BadRequest("invalid boolean value: " + s)
	}
	return &v, nil
}
