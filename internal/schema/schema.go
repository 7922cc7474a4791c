// Package schema defines the database schema snapshot the layout engine
// consumes and the helpers to read and summarize it.
package schema

import (
	"encoding/json"
	"fmt"
	"os"
)

// Schema is a one-shot snapshot of a database structure.
type Schema struct {
	Database string  `json:"database,omitempty"`
	DBType   string  `json:"db_type"`
	Nodes    []Table `json:"nodes"`
	Edges    []Edge  `json:"edges"`
}

// Table is a top-level schema object. Columns become detail nodes when the
// table is expanded.
type Table struct {
	ID      string   `json:"id"`
	Label   string   `json:"label"`
	Columns []string `json:"columns,omitempty"`
}

// Edge is a directed relationship between two tables, by id.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Summary holds the counts shown next to the diagram.
type Summary struct {
	DBType   string `json:"db_type"`
	Database string `json:"database,omitempty"`
	Tables   int    `json:"tables"`
	Links    int    `json:"links"`
}

// Parse decodes a schema document. Envelopes of the form
// {"status": "...", "schema": {...}} are unwrapped.
func Parse(data []byte) (*Schema, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty schema data")
	}

	var envelope struct {
		Schema json.RawMessage `json:"schema"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema: %w", err)
	}
	if len(envelope.Schema) > 0 && string(envelope.Schema) != "null" {
		data = envelope.Schema
	}

	var raw struct {
		Schema
		Nodes *[]Table `json:"nodes"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema: %w", err)
	}
	if raw.Nodes == nil {
		return nil, fmt.Errorf("invalid schema: missing nodes field")
	}

	s := raw.Schema
	s.Nodes = *raw.Nodes
	if s.Edges == nil {
		s.Edges = []Edge{}
	}
	for i := range s.Nodes {
		if s.Nodes[i].Label == "" {
			s.Nodes[i].Label = s.Nodes[i].ID
		}
	}
	return &s, nil
}

// Load reads and parses a schema file.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Marshal encodes the schema as indented JSON.
func (s *Schema) Marshal() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// Summarize counts tables and the distinct edges whose endpoints both
// resolve, matching what the graph model keeps.
func (s *Schema) Summarize() Summary {
	ids := make(map[string]bool, len(s.Nodes))
	for _, n := range s.Nodes {
		ids[n.ID] = true
	}
	seen := make(map[Edge]bool, len(s.Edges))
	for _, e := range s.Edges {
		if ids[e.Source] && ids[e.Target] {
			seen[e] = true
		}
	}
	return Summary{
		DBType:   s.DBType,
		Database: s.Database,
		Tables:   len(ids),
		Links:    len(seen),
	}
}
