// Package flavor is the dialogue collaborator: it maps a speaker and a
// template key to a display string. The engine depends only on the lookup,
// never on the wording.
package flavor

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownKey is returned when neither the character nor the shared
// library has lines for a key
var ErrUnknownKey = errors.New("unknown flavor key")

//go:embed default.yaml
var defaultLibrary []byte

// Library is a set of template lines keyed by template key
type Library struct {
	Default    string                         `yaml:"default"`
	Lines      map[string][]string            `yaml:"lines"`
	Characters map[string]map[string][]string `yaml:"characters,omitempty"`
}

// Default returns the built-in library
func Default() *Library {
	lib, err := Parse(defaultLibrary)
	if err != nil {
		panic(fmt.Sprintf("built-in flavor library: %v", err))
	}
	return lib
}

// Load reads a library file. An empty path returns the built-in library.
func Load(path string) (*Library, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read flavor library: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML library
func Parse(data []byte) (*Library, error) {
	var lib Library
	if err := yaml.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("parse flavor library: %w", err)
	}
	if len(lib.Lines) == 0 {
		return nil, fmt.Errorf("parse flavor library: no lines")
	}
	if lib.Default == "" {
		lib.Default = "..."
	}
	return &lib, nil
}

// Lookup returns the candidate lines for key, preferring the character's own
func (l *Library) Lookup(character, key string) ([]string, error) {
	if lines := l.Characters[character][key]; len(lines) > 0 {
		return lines, nil
	}
	if lines := l.Lines[key]; len(lines) > 0 {
		return lines, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownKey, key)
}

// Keys lists every shared key in sorted order
func (l *Library) Keys() []string {
	keys := make([]string, 0, len(l.Lines))
	for k := range l.Lines {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Vars are placeholder values substituted into a line
type Vars map[string]string

// Render substitutes {name} placeholders. Unknown placeholders stay as is.
func Render(line string, vars Vars) string {
	if len(vars) == 0 {
		return line
	}
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(line)
}
