// Package handlers contains the gin HTTP handlers for the API surface.
package handlers

import (
	"encoding/json"
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/taskforge/taskforge/pkg/validation"
)

// bindPatch decodes a partial-update body. Any field outside the allow-list
// rejects the whole request before anything is bound, so a bad payload never
// applies a partial update. Values are then validated with the same rules as
// full binds.
func bindPatch(c *gin.Context, dst any, allowed ...string) (map[string]string, bool) {
	raw, err := c.GetRawData()
	if err != nil || len(raw) == 0 {
		return map[string]string{"payload": "invalid json"}, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return map[string]string{"payload": "invalid json"}, false
	}
	if len(fields) == 0 {
		return map[string]string{"payload": "no fields to update"}, false
	}
	for k := range fields {
		if !slices.Contains(allowed, k) {
			return map[string]string{k: "field is not allowed"}, false
		}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return validation.ToDetails(err), false
	}
	if err := validation.Validate(dst); err != nil {
		return validation.ToDetails(err), false
	}
	return nil, true
}
