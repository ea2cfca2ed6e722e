// Package languages maps user-facing target-language names to the codes
// the translation service expects. Catalogs are YAML files that can be
// hot-reloaded; without any catalog the built-in defaults apply.
package languages

import (
	"strings"
	"sync"
)

// Language is one catalog entry.
type Language struct {
	Name string `yaml:"name" json:"name"`
	Code string `yaml:"code" json:"code"`
}

// Defaults returns the built-in language set.
func Defaults() []Language {
	return []Language{
		{Name: "twi", Code: "tw"},
		{Name: "ewe", Code: "ee"},
		{Name: "ga", Code: "ga"},
	}
}

// Catalog holds the loaded language set.
type Catalog struct {
	dir string

	mu     sync.RWMutex
	byName map[string]string
	list   []Language
}

// NewCatalog creates a catalog for the given directory, seeded with the
// built-in defaults.
func NewCatalog(dir string) *Catalog {
	c := &Catalog{dir: dir}
	c.replace(Defaults())
	return c
}

// Resolve maps a language name to its service code. Names are matched
// case-insensitively; unknown names pass through lowercased, letting
// callers send raw codes directly.
func (c *Catalog) Resolve(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	c.mu.RLock()
	defer c.mu.RUnlock()
	if code, ok := c.byName[key]; ok {
		return code
	}
	return key
}

// All returns a snapshot of the loaded languages.
func (c *Catalog) All() []Language {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cp := make([]Language, len(c.list))
	copy(cp, c.list)
	return cp
}

func (c *Catalog) replace(list []Language) {
	byName := make(map[string]string, len(list))
	for _, l := range list {
		byName[strings.ToLower(l.Name)] = l.Code
	}
	c.mu.Lock()
	c.list = list
	c.byName = byName
	c.mu.Unlock()
}
