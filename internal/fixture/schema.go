// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GradeMe Contributors

package fixture

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/samber/oops"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// SchemaID is the $id of the accounts fixture schema.
const SchemaID = "https://grademe.dev/schemas/accounts.schema.json"

var (
	compileOnce sync.Once
	compiled    *jschema.Schema
	compileErr  error
)

// GenerateSchema generates the JSON Schema for accounts files.
func GenerateSchema() ([]byte, error) {
	r := jsonschema.Reflector{
		DoNotReference: true,
	}
	schema := r.Reflect(&Fixture{})
	schema.ID = jsonschema.ID(SchemaID)
	schema.Title = "GradeMe Accounts Fixture"
	schema.Description = "Accounts created by grademe seed"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, oops.Code("FIXTURE_SCHEMA_FAILED").Wrap(err)
	}
	return data, nil
}

// ValidateSchema validates YAML data against the accounts schema.
func ValidateSchema(data []byte) error {
	if len(data) == 0 {
		return oops.Code("FIXTURE_INVALID").Errorf("fixture is empty")
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return oops.Code("FIXTURE_INVALID").Wrap(err)
	}

	sch, err := compiledSchema()
	if err != nil {
		return err
	}
	if err := sch.Validate(toJSON(doc)); err != nil {
		return oops.Code("FIXTURE_INVALID").Errorf("schema validation failed: %s", FormatSchemaError(err))
	}
	return nil
}

func compiledSchema() (*jschema.Schema, error) {
	compileOnce.Do(func() {
		raw, err := GenerateSchema()
		if err != nil {
			compileErr = err
			return
		}
		doc, err := jschema.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			compileErr = oops.Code("FIXTURE_SCHEMA_FAILED").Wrap(err)
			return
		}
		c := jschema.NewCompiler()
		if err := c.AddResource("accounts.schema.json", doc); err != nil {
			compileErr = oops.Code("FIXTURE_SCHEMA_FAILED").Wrap(err)
			return
		}
		compiled, compileErr = c.Compile("accounts.schema.json")
		if compileErr != nil {
			compileErr = oops.Code("FIXTURE_SCHEMA_FAILED").Wrap(compileErr)
		}
	})
	return compiled, compileErr
}

// toJSON normalizes YAML-decoded values to the types a JSON decoder produces.
func toJSON(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = toJSON(e)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = toJSON(e)
		}
		return out
	case string, bool, int, int64, float64, nil:
		return val
	default:
		// timestamps and other YAML-specific scalars
		if b, err := json.Marshal(val); err == nil {
			var out any
			if json.Unmarshal(b, &out) == nil {
				return out
			}
		}
		return val
	}
}

// FormatSchemaError renders a validation error without its schema location
// prefix, for display to operators.
func FormatSchemaError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if _, rest, ok := strings.Cut(msg, "\n"); ok {
		return strings.TrimSpace(rest)
	}
	return msg
}
