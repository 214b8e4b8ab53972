package filtering

import (
	"fmt"
	"strings"
	"sync"
)

// TitleFilter transforms an item name before it is sent to the store.
// contextID mirrors the host's post id argument; 0 means "no post".
type TitleFilter interface {
	Apply(name string, contextID int) string
}

// Filter names accepted by NewNamedFilter
const (
	FilterNone      = "none"
	FilterTrim      = "trim"
	FilterTexturize = "texturize"
)

// IdentityFilter returns names unchanged. It is the default when the host
// registers no title hooks.
type IdentityFilter struct{}

func (IdentityFilter) Apply(name string, contextID int) string { return name }

// FilterFunc adapts a function to TitleFilter
type FilterFunc func(name string, contextID int) string

func (f FilterFunc) Apply(name string, contextID int) string { return f(name, contextID) }

// TrimFilter strips surrounding whitespace
type TrimFilter struct{}

func (TrimFilter) Apply(name string, contextID int) string { return strings.TrimSpace(name) }

// TexturizeFilter applies the typographic replacements the host's default
// title hooks perform, so item names match what the store compares against.
type TexturizeFilter struct{}

var texturizer = strings.NewReplacer(
	"...", "…",
	" --- ", " — ",
	"---", "—",
	" -- ", " – ",
	"--", "–",
	"(tm)", "™",
	"(TM)", "™",
	"(c)", "©",
	"(C)", "©",
	"(r)", "®",
	"(R)", "®",
)

func (TexturizeFilter) Apply(name string, contextID int) string {
	out := texturizer.Replace(name)
	return curlApostrophes(out)
}

// curlApostrophes turns a straight apostrophe between two letters or digits
// into a right single quote.
func curlApostrophes(s string) string {
	if !strings.Contains(s, "'") {
		return s
	}
	runes := []rune(s)
	for i := 1; i < len(runes)-1; i++ {
		if runes[i] == '\'' && isWordRune(runes[i-1]) && isWordRune(runes[i+1]) {
			runes[i] = '’'
		}
	}
	return string(runes)
}

func isWordRune(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9'
}

// FilterChain applies filters in the order they were added
type FilterChain struct {
	filters []TitleFilter
	mu      sync.RWMutex
}

// NewFilterChain creates a new filter chain
func NewFilterChain(filters ...TitleFilter) *FilterChain {
	return &FilterChain{filters: filters}
}

// Apply runs every filter in turn. An empty chain is the identity.
func (f *FilterChain) Apply(name string, contextID int) string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for _, filter := range f.filters {
		name = filter.Apply(name, contextID)
	}
	return name
}

// AddFilter adds a filter to the end of the chain
func (f *FilterChain) AddFilter(filter TitleFilter) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filters = append(f.filters, filter)
}

// Len returns the number of filters in the chain
func (f *FilterChain) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.filters)
}

// NewNamedFilter builds a chain from configuration names, e.g.
// []string{"trim", "texturize"}. An empty list yields the identity.
func NewNamedFilter(names []string) (*FilterChain, error) {
	chain := NewFilterChain()
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "", FilterNone:
			chain.AddFilter(IdentityFilter{})
		case FilterTrim:
			chain.AddFilter(TrimFilter{})
		case FilterTexturize:
			chain.AddFilter(TexturizeFilter{})
		default:
			return nil, fmt.Errorf("unknown title filter %q", name)
		}
	}
	return chain, nil
}
