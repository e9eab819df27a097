// Package validation checks request payloads and parameters before handlers
// act on them. JSON bodies are validated against embedded JSON schemas.
package validation

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/xeipuuv/gojsonschema"

	apperrors "github.com/spec-kit/tutorial-service/pkg/util"
)

//go:embed schemas/*.json schemas/refs/*.json
var embeddedSchemas embed.FS

const schemaBase = "https://tutorial-service.local/schemas/"

// Schema ids of the embedded top level schemas.
const (
	SchemaItem       = schemaBase + "item.json"
	SchemaUserIn     = schemaBase + "user_in.json"
	SchemaUserCreate = schemaBase + "user_create.json"
	SchemaItemCreate = schemaBase + "item_create.json"
	SchemaNoteIn     = schemaBase + "note_in.json"
)

// Validator validates JSON documents against a set of compiled schemas.
type Validator struct {
	schemas map[string]*gojsonschema.Schema
}

// New loads the schemas shipped with the service.
func New() (*Validator, error) {
	sub, err := fs.Sub(embeddedSchemas, "schemas")
	if err != nil {
		return nil, err
	}
	return NewValidatorFromFS(sub)
}

// NewValidatorFromFS compiles every .json file at the root of fsys as a top
// level schema. Files under refs/ may be referenced but are not top level.
func NewValidatorFromFS(fsys fs.FS) (*Validator, error) {
	readDir := func(dir string) ([]string, error) {
		entries, err := fs.ReadDir(fsys, dir)
		if err != nil {
			return nil, fmt.Errorf("cannot read dir %s: %w", dir, err)
		}
		var docs []string
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
				continue
			}
			path := e.Name()
			if dir != "." {
				path = dir + "/" + e.Name()
			}
			raw, err := fs.ReadFile(fsys, path)
			if err != nil {
				return nil, fmt.Errorf("cannot read file %s: %w", path, err)
			}
			docs = append(docs, string(raw))
		}
		return docs, nil
	}

	top, err := readDir(".")
	if err != nil {
		return nil, err
	}
	refs, err := readDir("refs")
	if err != nil {
		return nil, err
	}
	return NewValidator(top, refs)
}

// NewValidator compiles schemas, each of which must carry an $id. Top level
// schemas may only reference schemas listed in refs.
func NewValidator(schemas, refs []string) (*Validator, error) {
	v := &Validator{schemas: make(map[string]*gojsonschema.Schema, len(schemas))}
	for _, doc := range schemas {
		var header struct {
			ID string `json:"$id"`
		}
		if err := json.Unmarshal([]byte(doc), &header); err != nil {
			return nil, fmt.Errorf("parse schema: %w", err)
		}
		if header.ID == "" {
			return nil, fmt.Errorf("schema does not contain $id: %q", doc)
		}

		loader := gojsonschema.NewSchemaLoader()
		for _, ref := range refs {
			if err := loader.AddSchemas(gojsonschema.NewStringLoader(ref)); err != nil {
				return nil, fmt.Errorf("add ref schema: %w", err)
			}
		}
		compiled, err := loader.Compile(gojsonschema.NewStringLoader(doc))
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", header.ID, err)
		}
		v.schemas[header.ID] = compiled
	}
	return v, nil
}

// HasSchema reports whether schemaID is known.
func (v *Validator) HasSchema(schemaID string) bool {
	_, ok := v.schemas[schemaID]
	return ok
}

// Validate checks body against schemaID. Malformed JSON and schema violations
// both yield a 422 validation error listing the offending fields.
func (v *Validator) Validate(body []byte, schemaID string) error {
	schema, ok := v.schemas[schemaID]
	if !ok {
		return fmt.Errorf("there is no schema %s", schemaID)
	}
	if len(body) == 0 {
		return apperrors.NewValidationError("request body is required", map[string]any{
			"errors": []FieldError{{Location: "body", Message: "field required"}},
		})
	}
	if !json.Valid(body) {
		return apperrors.NewValidationError("request body is not valid JSON", map[string]any{
			"errors": []FieldError{{Location: "body", Message: "invalid JSON"}},
		})
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return apperrors.NewValidationError("request body is not valid JSON", map[string]any{
			"errors": []FieldError{{Location: "body", Message: err.Error()}},
		})
	}
	if result.Valid() {
		return nil
	}

	fieldErrs := make([]FieldError, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		fieldErrs = append(fieldErrs, FieldError{
			Location: "body",
			Field:    e.Field(),
			Message:  e.Description(),
		})
	}
	sort.SliceStable(fieldErrs, func(i, j int) bool { return fieldErrs[i].Field < fieldErrs[j].Field })
	return apperrors.NewValidationError("request body failed validation", map[string]any{"errors": fieldErrs})
}

// Decode validates body against schemaID and unmarshals it into out.
func (v *Validator) Decode(body []byte, schemaID string, out any) error {
	if err := v.Validate(body, schemaID); err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return apperrors.NewValidationError("request body could not be decoded", map[string]any{
			"errors": []FieldError{{Location: "body", Message: err.Error()}},
		})
	}
	return nil
}
