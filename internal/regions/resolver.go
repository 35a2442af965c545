package regions

import (
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// Resolver maps human readable region names and aliases to region keys.
// Lookups are case-insensitive and ignore surrounding spaces.
type Resolver struct {
	names map[string]string
	keys  []string
}

// NewResolver indexes every feature by key and name, then adds the configured aliases.
// Aliases pointing at unknown keys are ignored with a warning.
func NewResolver(c *Collection, aliases map[string][]string) *Resolver {
	r := &Resolver{names: make(map[string]string)}

	for _, f := range c.Features {
		key := f.Key()
		if key == "" {
			continue
		}
		if _, seen := r.names[lookupForm(key)]; !seen {
			r.keys = append(r.keys, key)
		}

		r.names[lookupForm(key)] = key
		if name := f.Name(); name != "" {
			r.names[lookupForm(name)] = key
		}
	}

	for key, list := range aliases {
		if _, ok := r.names[lookupForm(key)]; !ok {
			log.Warn().Str("key", key).Msg("Aliases reference unknown region, ignoring")
			continue
		}
		for _, alias := range list {
			r.names[lookupForm(alias)] = r.names[lookupForm(key)]
		}
	}

	sort.Strings(r.keys)
	return r
}

// Resolve returns the region key for a name, key or alias.
func (r *Resolver) Resolve(name string) (string, bool) {
	key, ok := r.names[lookupForm(name)]
	return key, ok
}

// Keys returns all region keys in sorted order.
func (r *Resolver) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

func lookupForm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
