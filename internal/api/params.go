package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// idParam parses a path parameter as an ObjectID, aborting with 400 on failure.
func idParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid %s format", name))
		return primitive.NilObjectID, false
	}
	return id, true
}

// optionalIDQuery parses the first non-empty query key as an ObjectID.
func optionalIDQuery(c *gin.Context, keys ...string) (*primitive.ObjectID, bool) {
	for _, key := range keys {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid %s format", key))
			return nil, false
		}
		return &id, true
	}
	return nil, true
}

// timeQuery parses the first non-empty query key as RFC 3339 or a bare
// 2006-01-02 date (midnight UTC).
func timeQuery(c *gin.Context, keys ...string) (*time.Time, bool) {
	for _, key := range keys {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		t, err := parseTime(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid %s: expected RFC 3339 or YYYY-MM-DD", key))
			return nil, false
		}
		return &t, true
	}
	return nil, true
}

func parseTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

// parseUntil reads a recurrence end date. A bare date covers that whole day
// in loc, so a session later that day is still included.
func parseUntil(raw string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	day, err := time.ParseInLocation("2006-01-02", raw, loc)
	if err != nil {
		return time.Time{}, err
	}
	return day.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
}

func boolQuery(c *gin.Context, keys ...string) bool {
	for _, key := range keys {
		if v, err := strconv.ParseBool(c.Query(key)); err == nil {
			return v
		}
	}
	return false
}

func intQuery(c *gin.Context, key string, def int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid %s", key))
		return 0, false
	}
	return n, true
}

func hexPtr(id *primitive.ObjectID) *string {
	if id == nil || *id == primitive.NilObjectID {
		return nil
	}
	s := id.Hex()
	return &s
}
