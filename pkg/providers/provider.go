// Package providers defines the per-timing-provider request builders and
// response parsers, and a registry to look them up by name.
package providers

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sw33tLie/granfondo/pkg/events"
	"github.com/sw33tLie/granfondo/pkg/result"
	"github.com/sw33tLie/granfondo/pkg/whttp"
)

// Provider abstracts one timing provider: how to ask for a bib and how to
// read the answer. Implementations hold no per-request state.
type Provider interface {
	Name() string
	// DefaultPeriod is the pacing floor used when the caller does not set one.
	DefaultPeriod() time.Duration
	BuildRequest(ev events.Event, bibNo int) (*whttp.WHTTPReq, error)
	// Parse extracts raw fields from a response body. A body that carries a
	// no-data marker yields Raw{NotFound: true} and a nil error.
	Parse(body string) (result.Raw, error)
}

// Registry is a case-insensitive name index of providers.
type Registry struct {
	byName map[string]Provider
}

func NewRegistry(ps ...Provider) (*Registry, error) {
	r := &Registry{byName: make(map[string]Provider, len(ps))}
	for _, p := range ps {
		if p == nil {
			return nil, fmt.Errorf("nil provider")
		}
		key := strings.ToLower(strings.TrimSpace(p.Name()))
		if key == "" {
			return nil, fmt.Errorf("provider with empty name")
		}
		if _, dup := r.byName[key]; dup {
			return nil, fmt.Errorf("duplicate provider %q", p.Name())
		}
		r.byName[key] = p
	}
	return r, nil
}

// Get returns the provider registered under name.
func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q (available: %s)", name, strings.Join(r.Names(), ", "))
	}
	return p, nil
}

// ForEvent returns the provider that serves ev.
func (r *Registry) ForEvent(ev events.Event) (Provider, error) {
	return r.Get(ev.Provider)
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
