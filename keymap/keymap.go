// Package keymap holds the table that maps numbered-notation note symbols to
// the keyboard keys a game expects.
package keymap

import (
	"fmt"
	"maps"
	"os"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// RestSymbol marks a rest: the note keeps its time slot but presses nothing.
const RestSymbol = "0"

// defaults covers three octaves of numbered notation.
// "-" suffix is the low octave, "+" the high one.
var defaults = map[string]string{
	"1-": "a", "2-": "s", "3-": "d", "4-": "f", "5-": "g", "6-": "h", "7-": "j",
	"1": "q", "2": "w", "3": "e", "4": "r", "5": "t", "6": "y", "7": "u",
	"1+": "1", "2+": "2", "3+": "3", "4+": "4", "5+": "5", "6+": "6", "7+": "7",
	RestSymbol: " ",
}

// Table is a read-only symbol to key mapping. The zero value is an empty table.
type Table struct {
	m map[string]string
}

// New builds a table from a copy of m.
func New(m map[string]string) *Table {
	return &Table{m: maps.Clone(m)}
}

// Default returns the built-in mapping.
func Default() *Table {
	return New(defaults)
}

// Lookup returns the key mapped to symbol. Unknown symbols are not an error.
func (t *Table) Lookup(symbol string) (string, bool) {
	key, ok := t.m[symbol]
	return key, ok
}

// Entries returns a copy of the whole mapping.
func (t *Table) Entries() map[string]string {
	out := maps.Clone(t.m)
	if out == nil {
		out = map[string]string{}
	}
	return out
}

// Len returns the number of mapped symbols.
func (t *Table) Len() int { return len(t.m) }

// IsRest reports whether symbol is the rest symbol.
func IsRest(symbol string) bool {
	return symbol == RestSymbol
}

// ValidKey reports whether key is a single character.
func ValidKey(key string) bool {
	return utf8.RuneCountInString(key) == 1
}

// File is the on-disk layout of a mapping file.
//
//	inherit: true
//	mapping:
//	  "1": z
//	  "1+": x
type File struct {
	// Inherit layers the file over the built-in mapping instead of replacing it.
	Inherit bool              `yaml:"inherit"`
	Mapping map[string]string `yaml:"mapping"`
}

// Parse decodes a YAML mapping file.
func Parse(data []byte) (*Table, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal key mapping: %w", err)
	}
	m := make(map[string]string, len(defaults)+len(f.Mapping))
	if f.Inherit {
		maps.Copy(m, defaults)
	}
	for symbol, key := range f.Mapping {
		if symbol == "" {
			return nil, fmt.Errorf("key mapping has an empty symbol")
		}
		m[symbol] = key
	}
	return &Table{m: m}, nil
}

// Load reads a YAML mapping file from path.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key mapping %s: %w", path, err)
	}
	return Parse(data)
}
