package protocol

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

const schemaBaseURL = "https://vacuumsim.ai/schemas/"

var (
	schemasOnce sync.Once
	schemas     map[string]*jsonschema.Schema
	schemasErr  error
)

func loadSchemas() {
	schemas = map[string]*jsonschema.Schema{}
	c := jsonschema.NewCompiler()
	ents, err := schemaFS.ReadDir("schemas")
	if err != nil {
		schemasErr = err
		return
	}
	var names []string
	for _, e := range ents {
		raw, err := schemaFS.ReadFile("schemas/" + e.Name())
		if err != nil {
			schemasErr = err
			return
		}
		if err := c.AddResource(schemaBaseURL+e.Name(), bytes.NewReader(raw)); err != nil {
			schemasErr = fmt.Errorf("schema %s: %w", e.Name(), err)
			return
		}
		names = append(names, e.Name())
	}
	for _, name := range names {
		s, err := c.Compile(schemaBaseURL + name)
		if err != nil {
			schemasErr = fmt.Errorf("compile %s: %w", name, err)
			return
		}
		msgType := strings.ToUpper(strings.TrimSuffix(name, ".schema.json"))
		schemas[msgType] = s
	}
}

// Schema returns the compiled schema for a message type (e.g. "DRIVE").
func Schema(msgType string) (*jsonschema.Schema, error) {
	schemasOnce.Do(loadSchemas)
	if schemasErr != nil {
		return nil, schemasErr
	}
	s, ok := schemas[msgType]
	if !ok {
		return nil, fmt.Errorf("no schema for %q", msgType)
	}
	return s, nil
}

// Validate checks a raw JSON message against the schema of msgType.
func Validate(msgType string, raw []byte) error {
	s, err := Schema(msgType)
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	return s.Validate(v)
}
