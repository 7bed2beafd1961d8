// internal/rules/table.go

// Package rules holds the learned description->category rule table: loading
// and saving its JSON form, applying it to uncategorized transactions, and
// mining fresh rules from historical records.
package rules

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Categorizer assigns a category and subcategory to a transaction
// description. Implementations never fail; an unknown description yields
// ("", "").
type Categorizer interface {
	Categorize(description string) (category, subcategory string)
}

// Table maps a transaction description, matched exactly and case-sensitively,
// to its [category, subcategory] pair. Fuzzy matching is out of scope: the
// mining step only ever produces exact descriptions, so callers that need
// normalization must apply it before lookup.
type Table map[string][2]string

// Categorize returns the category and subcategory for a description, or two
// empty strings when no rule matches. It never fails.
func (t Table) Categorize(description string) (string, string) {
	rule, ok := t[description]
	if !ok {
		return "", ""
	}
	slog.Debug("Automatically adding categories",
		"category", rule[0], "subcategory", rule[1], "desc", description)
	return rule[0], rule[1]
}

// Load reads the rule table from path. A missing file is not an error: it
// yields an empty table, meaning every description is uncategorized.
func Load(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Table{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read rule table %s: %w", path, err)
	}
	var table Table
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse rule table %s: %w", path, err)
	}
	return table, nil
}

// Save writes the rule table to path. Output is deterministic for a given
// table: keys sorted, 4-space indent, trailing newline. Re-emitting the same
// rules produces byte-identical files so version-control diffs stay minimal.
func (t Table) Save(path string) error {
	data, err := json.MarshalIndent(t, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode rule table: %w", err)
	}
	data = append(data, '\n')
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create rule table directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write rule table %s: %w", path, err)
	}
	return nil
}
