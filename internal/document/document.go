// Package document models the structured reply of the generation service
// and validates it before anything downstream consumes it.
package document

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// Section is one rendered section of a generated document.
type Section struct {
	Heading string   `json:"heading"`
	Body    string   `json:"body"`
	Bullets []string `json:"bullets,omitempty"`
}

// GeneratedDocument is the untrusted output of the generation service.
// It must pass Validate before rendering or persistence.
type GeneratedDocument struct {
	Title         string    `json:"title"`
	Language      string    `json:"language"`
	Region        string    `json:"region"`
	Sections      []Section `json:"sections"`
	MissingInputs []string  `json:"missing_inputs"`
	Warnings      []string  `json:"warnings"`
}

// Validate checks structural completeness: a non-empty title and a
// sections array. Content is not checked semantically.
func (d *GeneratedDocument) Validate() error {
	if d == nil {
		return fmt.Errorf("document is nil")
	}
	if strings.TrimSpace(d.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if d.Sections == nil {
		return fmt.Errorf("sections array is required")
	}
	for i, s := range d.Sections {
		if strings.TrimSpace(s.Heading) == "" {
			return fmt.Errorf("section %d: heading is required", i)
		}
	}
	return nil
}

// Parse decodes a raw model reply into a GeneratedDocument. Markdown code
// fences around the JSON are tolerated and stripped. The reply is
// validated structurally and against the response schema; a failing
// document is rejected wholesale, never partially accepted.
func Parse(raw string) (*GeneratedDocument, error) {
	cleaned := cleanJSONOutput(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("empty generation response")
	}

	var doc GeneratedDocument
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	if err := validateAgainstSchema(cleaned); err != nil {
		return nil, err
	}
	// Normalize optional arrays so a re-marshaled document stays
	// schema-valid (null is not an array).
	if doc.MissingInputs == nil {
		doc.MissingInputs = []string{}
	}
	if doc.Warnings == nil {
		doc.Warnings = []string{}
	}
	return &doc, nil
}

func cleanJSONOutput(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimSuffix(text, "```")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
	}
	return strings.TrimSpace(text)
}

// responseSchemaJSON describes the expected generation output shape. It
// is exposed alongside the prompt for schema-constrained generation and
// reused here to validate replies.
const responseSchemaJSON = `{
  "type": "object",
  "properties": {
    "title": {"type": "string", "minLength": 1},
    "language": {"type": "string"},
    "region": {"type": "string"},
    "sections": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "heading": {"type": "string"},
          "body": {"type": "string"},
          "bullets": {"type": "array", "items": {"type": "string"}}
        },
        "required": ["heading", "body"]
      }
    },
    "missing_inputs": {"type": "array", "items": {"type": "string"}},
    "warnings": {"type": "array", "items": {"type": "string"}}
  },
  "required": ["title", "language", "region", "sections"]
}`

// ResponseSchemaJSON returns the JSON schema of the expected generation
// output, decoupled from the prompt text.
func ResponseSchemaJSON() string {
	return responseSchemaJSON
}

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func compileResponseSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("response.schema.json", strings.NewReader(responseSchemaJSON)); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = compiler.Compile("response.schema.json")
	})
	return compiledSchema, schemaErr
}

func validateAgainstSchema(raw string) error {
	schema, err := compileResponseSchema()
	if err != nil {
		return fmt.Errorf("failed to compile response schema: %w", err)
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return err
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("response schema validation failed: %w", err)
	}
	return nil
}

// EstimateTokens approximates the token cost of a text at four characters
// per token, rounded up. Used for accounting only.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return (len(text) + 3) / 4
}
