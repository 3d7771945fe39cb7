// Package content serves the bundled dzikir and renungan texts.
package content

import (
	_ "embed"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed library.yaml
var bundled []byte

// Library holds the lists users can draw from.
type Library struct {
	Dzikir   []string `yaml:"dzikir"`
	Renungan []string `yaml:"renungan"`

	pick func(n int) int
}

// Default returns the bundled library.
func Default() (*Library, error) {
	return Parse(bundled)
}

// LoadFile reads a library from path. Empty lists fall back to the bundled ones.
func LoadFile(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("content: read %s: %w", path, err)
	}
	lib, err := Parse(data)
	if err != nil {
		return nil, err
	}
	def, err := Default()
	if err != nil {
		return nil, err
	}
	if len(lib.Dzikir) == 0 {
		lib.Dzikir = def.Dzikir
	}
	if len(lib.Renungan) == 0 {
		lib.Renungan = def.Renungan
	}
	return lib, nil
}

// Parse decodes a YAML library and drops blank entries.
func Parse(data []byte) (*Library, error) {
	var lib Library
	if err := yaml.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("content: decode: %w", err)
	}
	lib.Dzikir = compact(lib.Dzikir)
	lib.Renungan = compact(lib.Renungan)
	return &lib, nil
}

// WithPicker replaces the random index source, mainly for tests.
func (l *Library) WithPicker(pick func(n int) int) *Library {
	l.pick = pick
	return l
}

// RandomDzikir returns one dzikir, or "" when the list is empty.
func (l *Library) RandomDzikir() string { return l.random(l.Dzikir) }

// RandomRenungan returns one renungan, or "" when the list is empty.
func (l *Library) RandomRenungan() string { return l.random(l.Renungan) }

func (l *Library) random(items []string) string {
	if len(items) == 0 {
		return ""
	}
	pick := l.pick
	if pick == nil {
		pick = rand.IntN
	}
	return items[pick(len(items))]
}

func compact(items []string) []string {
	out := items[:0]
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
