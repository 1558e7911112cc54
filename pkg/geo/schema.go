package geo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/qri-io/jsonschema"
)

// countriesSchema pins down the minimum shape the portal relies on: a data
// array of {country, cities[]} records.
const countriesSchema = `{
  "type": "object",
  "required": ["data"],
  "properties": {
    "error": {"type": "boolean"},
    "msg": {"type": "string"},
    "data": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["country", "cities"],
        "properties": {
          "country": {"type": "string"},
          "cities": {
            "type": "array",
            "items": {"type": "string"}
          }
        }
      }
    }
  }
}`

var compiledCountriesSchema = mustCompileSchema(countriesSchema)

func mustCompileSchema(src string) *jsonschema.Schema {
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(src), rs); err != nil {
		panic(fmt.Sprintf("geo: bad embedded schema: %v", err))
	}
	return rs
}

func validateCountriesPayload(ctx context.Context, raw []byte) error {
	verrs, err := compiledCountriesSchema.ValidateBytes(ctx, raw)
	if err != nil {
		return fmt.Errorf("validate countries payload: %w", err)
	}
	if len(verrs) > 0 {
		return fmt.Errorf("countries payload does not match schema: %s", verrs[0].Error())
	}
	return nil
}
