package level

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"
)

// plansSchema guards the shape of the injected pricing dataset: a bad deploy
// of assets/plans.json fails at boot, not at checkout.
const plansSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "levelOrdinal", "name", "priceClp", "billingPeriod", "checkoutUrl"],
    "properties": {
      "id": {"type": "string", "minLength": 1},
      "levelOrdinal": {"type": "integer", "minimum": 1},
      "name": {"type": "string", "minLength": 1},
      "priceClp": {"type": "integer", "minimum": 0},
      "billingPeriod": {"enum": ["monthly", "yearly"]},
      "features": {"type": "array", "items": {"type": "string"}},
      "checkoutUrl": {"type": "string", "minLength": 1}
    },
    "additionalProperties": false
  }
}`

// LoadPlans reads and validates the pricing dataset.
func LoadPlans(path string) ([]Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading plans dataset")
	}
	return ParsePlans(data)
}

// ParsePlans validates raw JSON against the dataset schema and decodes it.
func ParsePlans(data []byte) ([]Plan, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(plansSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, errors.Wrap(err, "validating plans dataset")
	}
	if !result.Valid() {
		errs := result.Errors()
		msg := "invalid plans dataset"
		if len(errs) > 0 {
			msg += ": " + errs[0].String()
		}
		return nil, errors.New(msg)
	}

	var plans []Plan
	if err := json.Unmarshal(data, &plans); err != nil {
		return nil, errors.Wrap(err, "decoding plans dataset")
	}
	return plans, nil
}
