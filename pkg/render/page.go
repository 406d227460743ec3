package render

import (
	"strings"
	"sync"
)

// Script describes a script tag emitted with the runtime bootstrap.
type Script struct {
	Src    string
	Type   string
	Inline string
	Defer  bool
	Module bool
	Attrs  map[string]string
}

// Assets groups stylesheets and scripts.
type Assets struct {
	Stylesheets []string
	Scripts     []Script
}

func scriptKey(script Script) string {
	if script.Src != "" {
		return "src:" + script.Src
	}
	return "inline:" + script.Inline
}

// Page carries render state for one HTML page. The runtime bootstrap is
// emitted once per Page no matter how many counters it holds. A Page is safe
// for concurrent use.
type Page struct {
	mu           sync.Mutex
	bootstrapped bool
	styles       map[string]struct{}
	scripts      map[string]struct{}
	counters     int
}

// NewPage returns a page with nothing emitted yet.
func NewPage() *Page {
	return &Page{
		styles:  make(map[string]struct{}),
		scripts: make(map[string]struct{}),
	}
}

// ClaimBootstrap returns true exactly once: for the caller that must emit the
// runtime.
func (p *Page) ClaimBootstrap() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bootstrapped {
		return false
	}
	p.bootstrapped = true
	return true
}

// Bootstrapped reports whether the runtime has been emitted.
func (p *Page) Bootstrapped() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bootstrapped
}

// Counters returns the number of counters rendered on the page.
func (p *Page) Counters() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.counters
}

func (p *Page) addCounter() {
	p.mu.Lock()
	p.counters++
	p.mu.Unlock()
}

// Claim filters assets down to the ones not yet emitted on the page and marks
// them as emitted.
func (p *Page) Claim(assets Assets) Assets {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out Assets
	for _, href := range assets.Stylesheets {
		href = strings.TrimSpace(href)
		if href == "" {
			continue
		}
		if _, exists := p.styles[href]; exists {
			continue
		}
		p.styles[href] = struct{}{}
		out.Stylesheets = append(out.Stylesheets, href)
	}
	for _, script := range assets.Scripts {
		key := scriptKey(script)
		if _, exists := p.scripts[key]; exists {
			continue
		}
		p.scripts[key] = struct{}{}
		out.Scripts = append(out.Scripts, script)
	}
	return out
}
