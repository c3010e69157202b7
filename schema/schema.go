// Package schema validates the `context` and `replace` tool call payloads
// (§6 "Engine-exposed") each time the engine dispatches one, grounded on
// registry/service.go's validatePayloadJSONAgainstSchema: compile a JSON
// Schema document with santhosh-tekuri/jsonschema/v6 and validate an
// already-unmarshalled payload against it. A malformed payload is rejected
// with a toolerrors.KindInvalidArgument error before it ever reaches
// manual.Dispatch or replace.Apply, so those packages can assume
// well-typed input.
package schema

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/toolerrors"
)

// Tool names recognized by Validate.
const (
	ToolContext = "context"
	ToolReplace = "replace"
)

// ContextSchemaJSON encodes the §6 argument schema for the context tool,
// including the length-2-iff-distill rule via if/then on the action. A
// tool-registration hook hands this document to the host verbatim.
const ContextSchemaJSON = `{
	"type": "object",
	"required": ["action", "targets"],
	"additionalProperties": false,
	"properties": {
		"action": {"enum": ["discard", "distill", "restore"]},
		"targets": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "array",
				"minItems": 1,
				"maxItems": 2,
				"items": {"type": "string"}
			}
		}
	},
	"allOf": [
		{
			"if": {"properties": {"action": {"const": "distill"}}},
			"then": {"properties": {"targets": {"items": {"minItems": 2, "maxItems": 2}}}}
		},
		{
			"if": {"properties": {"action": {"enum": ["discard", "restore"]}}},
			"then": {"properties": {"targets": {"items": {"minItems": 1, "maxItems": 1}}}}
		}
	]
}`

// ReplaceSchemaJSON encodes the §6 argument schema for the replace tool.
const ReplaceSchemaJSON = `{
	"type": "object",
	"required": ["operations"],
	"additionalProperties": false,
	"properties": {
		"operations": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["start", "end", "replacement"],
				"additionalProperties": false,
				"properties": {
					"start": {"type": "string"},
					"end": {"type": "string"},
					"replacement": {"type": "string"}
				}
			}
		}
	}
}`

var (
	compileOnce sync.Once
	compiled    map[string]*jsonschema.Schema
	compileErr  error
)

func compileAll() {
	schemas := map[string]string{
		ToolContext: ContextSchemaJSON,
		ToolReplace: ReplaceSchemaJSON,
	}
	compiled = make(map[string]*jsonschema.Schema, len(schemas))
	for name, raw := range schemas {
		var doc any
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			compileErr = fmt.Errorf("unmarshal %s schema: %w", name, err)
			return
		}
		c := jsonschema.NewCompiler()
		resource := name + ".json"
		if err := c.AddResource(resource, doc); err != nil {
			compileErr = fmt.Errorf("add %s schema resource: %w", name, err)
			return
		}
		s, err := c.Compile(resource)
		if err != nil {
			compileErr = fmt.Errorf("compile %s schema: %w", name, err)
			return
		}
		compiled[name] = s
	}
}

// Validate checks payload (already unmarshalled into Go values, e.g. from
// json.Unmarshal into any) against the named tool's argument schema. An
// unrecognized tool name is not this package's concern and returns nil.
func Validate(toolName string, payload any) error {
	compileOnce.Do(compileAll)
	if compileErr != nil {
		return toolerrors.NewWithCause(toolerrors.KindInvalidArgument, "schema compilation failed", compileErr)
	}
	s, ok := compiled[toolName]
	if !ok {
		return nil
	}
	if err := s.Validate(payload); err != nil {
		return toolerrors.NewWithCause(toolerrors.KindInvalidArgument, fmt.Sprintf("%s: invalid arguments", toolName), err)
	}
	return nil
}

// ValidateJSON unmarshals raw JSON and validates it against the named
// tool's schema, the shape a tool-registration hook actually receives the
// call payload in.
func ValidateJSON(toolName string, raw []byte) error {
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return toolerrors.NewWithCause(toolerrors.KindInvalidArgument, fmt.Sprintf("%s: malformed JSON", toolName), err)
	}
	return Validate(toolName, payload)
}
