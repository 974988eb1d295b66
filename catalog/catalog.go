// Package catalog holds the table specs of the Clash of Clans archive.
//
// The catalogue is YAML configuration: tables.yaml is embedded in the
// binary and can be replaced at runtime by a file with the same layout.
package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/clanvault/clanvault/schema"
	"github.com/clanvault/clanvault/tools"
)

//go:embed tables.yaml
var embedded []byte

type document struct {
	Tables []tableDoc `yaml:"tables"`
}

type tableDoc struct {
	Name        string      `yaml:"name"`
	Endpoint    string      `yaml:"endpoint"`
	Description string      `yaml:"description"`
	Columns     []columnDoc `yaml:"columns"`
	Indexes     []string    `yaml:"indexes"`
}

// columnDoc accepts both the split form {type: INTEGER, primaryKey: true}
// and the combined form {type: "INTEGER PRIMARY KEY AUTOINCREMENT"}.
type columnDoc struct {
	Name          string `yaml:"name"`
	Type          string `yaml:"type"`
	PrimaryKey    bool   `yaml:"primaryKey"`
	AutoIncrement bool   `yaml:"autoIncrement"`
}

// Default returns the embedded catalogue.
func Default() ([]schema.TableSpec, error) {
	return Parse(embedded)
}

// Load reads the catalogue at path, or the embedded one when path is empty.
func Load(path string) ([]schema.TableSpec, error) {
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	specs, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return specs, nil
}

// Parse decodes a YAML catalogue and validates every table in it.
// Unknown keys and duplicate table names are rejected.
func Parse(raw []byte) ([]schema.TableSpec, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	specs := make([]schema.TableSpec, 0, len(doc.Tables))
	seen := make(map[string]bool, len(doc.Tables))

	for _, t := range doc.Tables {
		key := strings.ToLower(t.Name)
		if seen[key] {
			return nil, tools.DuplicateTableErr(t.Name)
		}
		seen[key] = true

		spec := schema.TableSpec{
			Name:        t.Name,
			Indexes:     t.Indexes,
			Endpoint:    t.Endpoint,
			Description: t.Description,
		}
		for _, c := range t.Columns {
			col, err := schema.ParseColumnSpec(c.Name, c.Type)
			if err != nil {
				return nil, tools.InvalidSpecErr(t.Name, err)
			}
			col.PrimaryKey = col.PrimaryKey || c.PrimaryKey
			col.AutoIncrement = col.AutoIncrement || c.AutoIncrement
			spec.Columns = append(spec.Columns, col)
		}

		if err := spec.Validate(); err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}

	return specs, nil
}

// Select returns the specs named in names, in the order given.
// An empty names list selects every spec.
func Select(specs []schema.TableSpec, names []string) ([]schema.TableSpec, error) {
	if len(names) == 0 {
		return specs, nil
	}

	byName := make(map[string]schema.TableSpec, len(specs))
	for _, s := range specs {
		byName[strings.ToLower(s.Name)] = s
	}

	selected := make([]schema.TableSpec, 0, len(names))
	for _, name := range names {
		s, ok := byName[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, tools.TableNotFoundErr(name)
		}
		selected = append(selected, s)
	}
	return selected, nil
}
