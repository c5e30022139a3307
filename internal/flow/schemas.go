// internal/flow/schemas.go
package flow

import (
	"fmt"
	"strings"

	flowerrors "loanflow/internal/common/errors"
	"loanflow/internal/models"

	"github.com/xeipuuv/gojsonschema"
)

// Step forms only promise "required fields present"; these schemas are that
// promise. Anything beyond the required set passes through and is merged
// verbatim into the sub-record.

const personalSchema = `{
	"type": "object",
	"required": [
		"firstName", "lastName", "phoneNo", "emailAddress", "dateOfBirth",
		"socialSecurityNo", "homeStreetAddress", "city", "state", "zipCode"
	],
	"properties": {
		"firstName":        {"type": "string", "minLength": 1},
		"lastName":         {"type": "string", "minLength": 1},
		"phoneNo":          {"type": "string", "minLength": 1},
		"emailAddress":     {"type": "string", "minLength": 1},
		"dateOfBirth":      {"type": "string", "minLength": 1},
		"socialSecurityNo": {"type": "string", "minLength": 1},
		"homeStreetAddress": {"type": "string", "minLength": 1},
		"city":             {"type": "string", "minLength": 1},
		"state":            {"type": "string", "minLength": 1},
		"zipCode":          {"type": "string", "minLength": 1}
	}
}`

const incomeSchema = `{
	"type": "object",
	"required": ["incomeSource", "totalGrossMonthlyIncome", "paymentFrequency"],
	"properties": {
		"incomeSource":            {"type": "string", "minLength": 1},
		"totalGrossMonthlyIncome": {"type": "string", "minLength": 1},
		"paymentFrequency":        {"type": "string", "minLength": 1}
	}
}`

const vehicleSchema = `{
	"type": "object",
	"required": ["vin", "make", "model", "year", "mileage"],
	"properties": {
		"vin":     {"type": "string", "minLength": 1},
		"make":    {"type": "string", "minLength": 1},
		"model":   {"type": "string", "minLength": 1},
		"year":    {"type": "string", "minLength": 1},
		"mileage": {"type": "string", "minLength": 1}
	}
}`

var stepSchemas = map[models.Step]string{
	models.StepPersonal: personalSchema,
	models.StepIncome:   incomeSchema,
	models.StepVehicle:  vehicleSchema,
}

// validateStepPayload checks payload against the step's schema. Steps
// without a schema (estimate, progress, verification, documents) always
// pass.
func validateStepPayload(step models.Step, payload map[string]interface{}) error {
	schema, ok := stepSchemas[step]
	if !ok {
		return nil
	}
	if payload == nil {
		payload = map[string]interface{}{}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewGoLoader(payload),
	)
	if err != nil {
		return flowerrors.NewValidationFailedError(string(step), err.Error())
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
		}
		return flowerrors.NewValidationFailedError(string(step), strings.Join(msgs, "; "))
	}

	return nil
}
