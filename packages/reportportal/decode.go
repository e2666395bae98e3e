package reportportal

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/rpreporter/packages/http"
	"github.com/tidwall/gjson"
	"github.com/xeipuuv/gojsonschema"
)

// ErrMissingField is returned when a response lacks a field the operation needs
var ErrMissingField = errors.New("response is missing an expected field")

// entityCreatedSchema describes the body returned by start launch / start item
const entityCreatedSchema = `{
	"type": "object",
	"required": ["id"],
	"properties": {
		"id": {"type": ["string", "integer"], "minLength": 1}
	}
}`

var entityCreated = mustSchema(entityCreatedSchema)

func mustSchema(schema string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		panic(fmt.Sprintf("reportportal: invalid response schema: %v", err))
	}
	return s
}

// decodeID validates resp against the entity-created schema and returns its id
func decodeID(resp *http.Response) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("%w: id (no response)", ErrMissingField)
	}
	if !gjson.ValidBytes(resp.Body) {
		ct := resp.ContentType()
		if ct == "" {
			ct = "no content type"
		}
		return "", fmt.Errorf("%w: id (status %d, body is not JSON: %s)", ErrMissingField, resp.StatusCode, ct)
	}

	result, err := entityCreated.Validate(gojsonschema.NewBytesLoader(resp.Body))
	if err != nil {
		return "", fmt.Errorf("validating response: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return "", fmt.Errorf("%w: id (status %d: %s)", ErrMissingField, resp.StatusCode, strings.Join(msgs, "; "))
	}

	return gjson.GetBytes(resp.Body, "id").String(), nil
}
