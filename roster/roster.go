// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package roster

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/danielhkuo/westminster/models"
)

//go:embed state.schema.json
var stateSchemaJSON string

const stateSchemaURL = "https://westminster.local/schemas/state.schema.json"

var (
	schemaOnce  sync.Once
	stateSchema *jsonschema.Schema
	schemaErr   error
)

func schema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		stateSchema, schemaErr = jsonschema.CompileString(stateSchemaURL, stateSchemaJSON)
	})
	return stateSchema, schemaErr
}

// ValidateDocument checks a JSON state document against the schema and the
// roster's own consistency rules, and decodes it.
func ValidateDocument(data []byte) (models.StateDocument, error) {
	var doc models.StateDocument

	s, err := schema()
	if err != nil {
		return doc, fmt.Errorf("compile state schema: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return doc, fmt.Errorf("state document: %w", err)
	}
	if err := s.Validate(raw); err != nil {
		return doc, fmt.Errorf("state document: %w", err)
	}

	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("state document: %w", err)
	}
	if err := Check(doc); err != nil {
		return doc, err
	}
	return doc, nil
}

// LoadFile reads a YAML roster seed. It goes through the same validation
// as an imported JSON document.
func LoadFile(path string) (models.StateDocument, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return models.StateDocument{}, err
	}

	var doc models.StateDocument
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return doc, fmt.Errorf("%s: %w", path, err)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return doc, fmt.Errorf("%s: %w", path, err)
	}
	doc, err = ValidateDocument(data)
	if err != nil {
		return doc, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Check enforces what the schema cannot: unique names, characters in
// known parties, delegates that exist.
func Check(doc models.StateDocument) error {
	parties := make(map[string]bool, len(doc.Parliament.Parties))
	for _, p := range doc.Parliament.Parties {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return fmt.Errorf("party with empty name")
		}
		if parties[name] {
			return fmt.Errorf("duplicate party %q", name)
		}
		parties[name] = true
	}

	names := make(map[string]bool, len(doc.Players))
	for _, ch := range doc.Players {
		if names[ch.Name] {
			return fmt.Errorf("duplicate character %q", ch.Name)
		}
		names[ch.Name] = true
		if !parties[ch.Party] {
			return fmt.Errorf("character %q sits for unknown party %q", ch.Name, ch.Party)
		}
		if ch.JoinedAt.IsZero() {
			return fmt.Errorf("character %q has no join date", ch.Name)
		}
	}

	for _, ch := range doc.Players {
		if ch.DelegatedTo != nil && !names[*ch.DelegatedTo] {
			return fmt.Errorf("character %q delegates to unknown %q", ch.Name, *ch.DelegatedTo)
		}
	}
	return nil
}
