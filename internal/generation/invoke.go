package generation

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"famcontents/internal/services/llm"
)

// Backend is the generative model behind the generator.
type Backend interface {
	Name() string
	Configured() bool
	Complete(ctx context.Context, prompt string, params llm.Params) (string, error)
}

// invoke performs one backend call and decodes the response into a fresh body
// for def. Parse failures and missing required fields are returned as errors
// so the caller routes them to the fallback like any other call failure.
func invoke(ctx context.Context, backend Backend, def *taskDef, prompt string, params llm.Params) (Body, error) {
	raw, err := backend.Complete(ctx, prompt, params)
	if err != nil {
		return nil, err
	}
	obj, err := llm.ExtractObject(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s response: %w", def.kind, err)
	}
	if err := checkRequired(obj, def.required); err != nil {
		return nil, err
	}
	body := def.newBody()
	if err := json.Unmarshal(obj, body); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", def.kind, err)
	}
	return body, nil
}

// checkRequired verifies that payload is an object carrying every required
// field with the expected JSON type.
func checkRequired(payload []byte, fields []requiredField) error {
	root := gjson.ParseBytes(payload)
	if !root.IsObject() {
		return fmt.Errorf("schema violation: response is not a JSON object")
	}
	for _, f := range fields {
		value := root.Get(f.path)
		if !value.Exists() {
			return fmt.Errorf("schema violation: missing required field %q", f.path)
		}
		if !matchesType(value, f.typ) {
			return fmt.Errorf("schema violation: field %q must be %s", f.path, f.typ)
		}
	}
	return nil
}

func matchesType(v gjson.Result, typ fieldType) bool {
	switch typ {
	case fieldArray:
		return v.IsArray()
	case fieldNumber:
		return v.Type == gjson.Number
	default:
		return v.Type == gjson.String
	}
}
