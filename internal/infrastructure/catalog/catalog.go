// Package catalog loads the household catalog: which categories are
// perishable, alternative receipt spellings and per-category icons.
package catalog

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalog YAML fayl tuzilmasi
type Catalog struct {
	Perishable []string          `yaml:"perishable"`
	Aliases    map[string]string `yaml:"aliases"`
	Icons      map[string]string `yaml:"icons"`
	Categories []string          `yaml:"categories"`
}

// Default fayl bo'lmaganda ishlatiladigan qiymatlar
func Default() *Catalog {
	return &Catalog{
		Perishable: []string{"food", "食品", "食料品", "生鮮"},
		Aliases:    map[string]string{},
		Icons: map[string]string{
			"food":  "🍙",
			"食品":    "🍙",
			"daily": "🧻",
			"日用品":   "🧻",
		},
	}
}

// Load reads path; an empty path or a missing file yields Default().
func Load(path string) (*Catalog, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes YAML and fills unset sections from Default().
func Parse(raw []byte) (*Catalog, error) {
	c := &Catalog{}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	def := Default()
	if len(c.Perishable) == 0 {
		c.Perishable = def.Perishable
	}
	if c.Aliases == nil {
		c.Aliases = map[string]string{}
	}
	if c.Icons == nil {
		c.Icons = def.Icons
	}
	return c, nil
}

// IsPerishable kategoriya tez buziladigan mahsulotlarga tegishlimi
func (c *Catalog) IsPerishable(category string) bool {
	if c == nil {
		return false
	}
	norm := normalize(category)
	if norm == "" {
		return false
	}
	for _, p := range c.Perishable {
		if normalize(p) == norm {
			return true
		}
	}
	return false
}

// IconFor kategoriya uchun standart icon
func (c *Catalog) IconFor(category string) string {
	if c == nil {
		return ""
	}
	norm := normalize(category)
	for k, v := range c.Icons {
		if normalize(k) == norm {
			return v
		}
	}
	return ""
}

// AliasPairs returns aliases sorted longest first so the more specific
// spelling is tried before a shorter one it contains.
func (c *Catalog) AliasPairs() [][2]string {
	if c == nil || len(c.Aliases) == 0 {
		return nil
	}
	out := make([][2]string, 0, len(c.Aliases))
	for alias, name := range c.Aliases {
		alias = strings.TrimSpace(alias)
		name = strings.TrimSpace(name)
		if alias == "" || name == "" {
			continue
		}
		out = append(out, [2]string{alias, name})
	}
	sort.Slice(out, func(i, j int) bool {
		if len([]rune(out[i][0])) != len([]rune(out[j][0])) {
			return len([]rune(out[i][0])) > len([]rune(out[j][0]))
		}
		return out[i][0] < out[j][0]
	})
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
