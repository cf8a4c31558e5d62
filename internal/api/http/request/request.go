// Package request holds the small binding helpers shared by the HTTP handlers.
package request

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mira-tracker/mira-backend/internal/api/http/respond"
)

// OptionalInt64 records whether a JSON field was present and whether it was null.
type OptionalInt64 struct {
	Set   bool
	Value *int64
}

func (o *OptionalInt64) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v int64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// ParamID reads a positive integer path parameter. On failure it writes a
// 400 and returns false.
func ParamID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respond.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

// QueryID reads an optional positive integer query parameter.
func QueryID(c *gin.Context, name string) (*int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		respond.BadRequest(c, "invalid "+name)
		return nil, false
	}
	return &id, true
}

// BindJSON decodes the body into dst, writing a 400 on malformed input.
func BindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respond.BadRequest(c, "invalid request body")
		return false
	}
	return true
}
