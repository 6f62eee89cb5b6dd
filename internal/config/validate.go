// CUE schema validation code
package config

import (
	"bytes"
	"encoding/json"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

// ValidateDocument checks a raw YAML or JSON document against a CUE schema.
// An empty document is valid and resolves to all defaults.
func ValidateDocument(data []byte, schema string) error {
	ctx := cuecontext.New()

	schemaVal := ctx.CompileString(schema, cue.Filename("schema.cue"))
	if err := schemaVal.Err(); err != nil {
		return fmt.Errorf("cannot compile CUE schema: %w", err)
	}

	doc, err := decodeMap(data)
	if err != nil {
		return &ConfigurationError{Field: "document", Reason: "malformed document", Err: err}
	}
	if len(doc) == 0 {
		return nil
	}

	docVal := ctx.Encode(doc)
	if err := docVal.Err(); err != nil {
		return &ConfigurationError{Field: "document", Reason: "cannot encode document", Err: err}
	}

	final := schemaVal.Unify(docVal)
	if err := final.Validate(cue.Concrete(true)); err != nil {
		return &ConfigurationError{Field: "document", Reason: "schema validation failed", Err: err}
	}
	return nil
}

// isJSON reports whether data is a JSON document. JSON is decoded with
// encoding/json, everything else with yaml.v3.
func isJSON(data []byte) bool {
	return json.Valid(data)
}

func decodeMap(data []byte) (map[string]any, error) {
	var doc map[string]any
	if !isJSON(data) {
		err := yaml.Unmarshal(data, &doc)
		return doc, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	for k, v := range doc {
		doc[k] = numbers(v)
	}
	return doc, nil
}

// numbers turns json.Number values into int64 where integral so CUE int
// constraints see integers, and float64 otherwise.
func numbers(v any) any {
	switch v := v.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		f, _ := v.Float64()
		return f
	case []any:
		for i := range v {
			v[i] = numbers(v[i])
		}
		return v
	case map[string]any:
		for k := range v {
			v[k] = numbers(v[k])
		}
		return v
	default:
		return v
	}
}
