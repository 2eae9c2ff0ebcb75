package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// maxJSONBody caps contract, payment and financial entry bodies
const maxJSONBody = 1 << 20

var errEmptyBody = errors.New("corps de requête vide")

// BindNestedOrFlat decodes the JSON body into obj and runs its binding tags.
// Forms post either {"contract": {...}} / {"payment": {...}} / {"<kind>": {...}} or the bare object;
// when key is present at the top level its value is decoded, otherwise the whole body is.
// The body is restored so later reads still see it.
func BindNestedOrFlat(c *gin.Context, key string, obj interface{}) error {
	var body []byte
	if c.Request.Body != nil {
		var err error
		body, err = io.ReadAll(io.LimitReader(c.Request.Body, maxJSONBody+1))
		if err != nil {
			return fmt.Errorf("lecture du corps de requête: %w", err)
		}
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))

	if len(bytes.TrimSpace(body)) == 0 {
		return errEmptyBody
	}
	if len(body) > maxJSONBody {
		return fmt.Errorf("corps de requête trop volumineux (max %d octets)", maxJSONBody)
	}

	payload := body
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err == nil {
		if nested, ok := top[key]; ok {
			payload = nested
		}
	}

	if err := json.Unmarshal(payload, obj); err != nil {
		return err
	}
	return binding.Validator.ValidateStruct(obj)
}
