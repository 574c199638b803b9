package validate

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ============================================================
// Request Schemas
// ============================================================

//go:embed schemas/*.json
var schemas embed.FS

var ErrInvalid = errors.New("invalid request")

const schemaBase = "https://archplan.local/schemas/"

type Validator struct {
	project  *jsonschema.Schema
	generate *jsonschema.Schema
}

func New() (*Validator, error) {
	project, err := compile("project.schema.json")
	if err != nil {
		return nil, err
	}
	generate, err := compile("generate.schema.json")
	if err != nil {
		return nil, err
	}
	return &Validator{project: project, generate: generate}, nil
}

func compile(name string) (*jsonschema.Schema, error) {
	data, err := schemas.ReadFile("schemas/" + name)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", name, err)
	}
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	url := schemaBase + name
	if err := c.AddResource(url, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("schema %s load failed: %w", name, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("schema %s compile failed: %w", name, err)
	}
	return compiled, nil
}

// Project проверяет тело создания проекта.
func (v *Validator) Project(body []byte) error {
	return check(v.project, body)
}

// Generate проверяет тело запуска генерации; пустое тело допустимо.
func (v *Validator) Generate(body []byte) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	return check(v.generate, body)
}

func check(schema *jsonschema.Schema, body []byte) error {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return fmt.Errorf("%w: malformed JSON: %v", ErrInvalid, err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalid, describe(err))
	}
	return nil
}

// describe сводит дерево ошибок схемы к первой листовой причине.
func describe(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}
	leaf := ve
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}
	loc := leaf.InstanceLocation
	if loc == "" {
		loc = "/"
	}
	return fmt.Sprintf("%s: %s", loc, leaf.Message)
}
