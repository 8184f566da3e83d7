package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/weekcal-api/pkg/errors"
)

// parseInstant accepts RFC3339 timestamps or YYYY-MM-DD dates, the latter
// read as midnight in loc.
func parseInstant(raw string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02", raw, loc)
}

func optionalInstant(c *gin.Context, key string, loc *time.Location) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := parseInstant(raw, loc)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, key+" must be RFC3339 or YYYY-MM-DD")
	}
	return &t, nil
}

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, key+" must be an integer")
	}
	return v, nil
}
