package calculator

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaBaseURL = "https://finance-calculators.local/schemas/"

// SchemaURL returns the $id used for a calculator's input schema.
func SchemaURL(id string) string {
	return schemaBaseURL + id + ".schema.json"
}

// PayloadSchemaURL returns the $id used for a calculator's payload schema.
func PayloadSchemaURL(id string) string {
	return schemaBaseURL + id + ".payload.schema.json"
}

// JSONSchema renders the calculator's inputs as a Draft 2020-12 schema.
// Numeric and boolean properties also accept strings, which are coerced
// during validation.
func JSONSchema(c Calculator) ([]byte, error) {
	return encodeSchema(c.Info().ID, schemaDocument(c, true))
}

// schemaDocument builds the schema for c. Without constraints only property
// types are checked; required fields, bounds and options are left to
// calculator validation so its messages reach the caller.
func schemaDocument(c Calculator, constraints bool) map[string]any {
	info := c.Info()
	properties := make(map[string]any)
	required := []string{}

	for _, f := range c.Fields() {
		prop := map[string]any{
			"title": f.Name,
		}
		if f.Description != "" {
			prop["description"] = f.Description
		}
		if f.Default != nil {
			prop["default"] = f.Default
		}
		switch f.Type {
		case TypeNumber:
			prop["type"] = []string{"number", "string"}
			if !constraints {
				break
			}
			if f.Min != nil {
				prop["minimum"] = *f.Min
			}
			if f.Max != nil {
				prop["maximum"] = *f.Max
			}
			if f.Integer {
				prop["multipleOf"] = 1
			}
		case TypeSelect:
			prop["type"] = "string"
			if constraints {
				prop["enum"] = f.OptionValues()
			}
		case TypeBoolean:
			prop["type"] = []string{"boolean", "string"}
		}
		properties[f.ID] = prop
		if constraints && f.Required && f.Default == nil {
			required = append(required, f.ID)
		}
	}

	id := SchemaURL(info.ID)
	if !constraints {
		id = PayloadSchemaURL(info.ID)
	}
	return map[string]any{
		"$schema":              "https://json-schema.org/draft/2020-12/schema",
		"$id":                  id,
		"title":                info.Name,
		"description":          info.Description,
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": true,
	}
}

func encodeSchema(id string, doc map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode schema for %s: %w", id, err)
	}
	return buf.Bytes(), nil
}

// CompileSchema compiles the calculator's payload schema. It checks the
// shape and types of a payload only; range, option and required checks
// belong to Validate.
func CompileSchema(c Calculator) (*jsonschema.Schema, error) {
	id := c.Info().ID
	raw, err := encodeSchema(id, schemaDocument(c, false))
	if err != nil {
		return nil, err
	}
	url := PayloadSchemaURL(id)

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(url, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("schema load failed for %s: %w", id, err)
	}
	compiled, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("schema compile failed for %s: %w", id, err)
	}
	return compiled, nil
}

// Canonicalize maps input keys onto the calculator's field IDs
// case-insensitively. Keys matching no field are returned separately.
func Canonicalize(c Calculator, in Inputs) (Inputs, []string) {
	return canonicalize(in, c.Fields())
}
