// Package events holds the static directory of known granfondo events and
// the provider that serves each one.
package events

import (
	"bytes"
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/antzucaro/matchr"
	"github.com/spf13/viper"
)

const DefaultProvider = "sptc"

//go:embed events.yaml
var builtinEvents []byte

// Event identifies one race instance.
type Event struct {
	ID       string
	Year     string
	Name     string
	Location string
	Provider string
	Params   map[string]string
}

// Param returns a provider specific parameter, or def when unset.
func (e Event) Param(key, def string) string {
	if v, ok := e.Params[strings.ToLower(key)]; ok && v != "" {
		return v
	}
	return def
}

type entry struct {
	ID       string            `mapstructure:"id"`
	Name     string            `mapstructure:"name"`
	Provider string            `mapstructure:"provider"`
	Params   map[string]string `mapstructure:"params"`
}

// Directory is a read-only location -> year -> Event lookup. Locations are
// matched case-insensitively because viper lowercases configured map keys.
type Directory struct {
	byLocation map[string]map[string]Event
}

// NotFoundError is returned by Resolve for unknown locations or years.
// KnownYears is set when the location exists; Suggestions lists similar
// location names when it does not.
type NotFoundError struct {
	Location    string
	Year        string
	KnownYears  []string
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	if len(e.KnownYears) > 0 {
		return fmt.Sprintf("invalid location or year: %s %s (known years: %s)",
			e.Location, e.Year, strings.Join(e.KnownYears, ", "))
	}
	msg := fmt.Sprintf("unknown location: %s", e.Location)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

// Load reads the built-in table and overlays the "events" key of overlay,
// if given. Overlay entries replace built-in ones for the same location and
// year.
func Load(overlay *viper.Viper) (*Directory, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(builtinEvents)); err != nil {
		return nil, fmt.Errorf("reading built-in events: %w", err)
	}

	d := &Directory{byLocation: map[string]map[string]Event{}}
	if err := d.merge(v); err != nil {
		return nil, fmt.Errorf("built-in events: %w", err)
	}
	if overlay != nil && overlay.IsSet("events") {
		if err := d.merge(overlay); err != nil {
			return nil, fmt.Errorf("configured events: %w", err)
		}
	}
	return d, nil
}

func (d *Directory) merge(v *viper.Viper) error {
	var table map[string]map[string]entry
	if err := v.UnmarshalKey("events", &table); err != nil {
		return err
	}

	for location, years := range table {
		location = strings.TrimSpace(location)
		for year, e := range years {
			year = strings.TrimSpace(year)
			if location == "" || year == "" || strings.TrimSpace(e.ID) == "" {
				return fmt.Errorf("event %q/%q: location, year and id are required", location, year)
			}
			provider := strings.ToLower(strings.TrimSpace(e.Provider))
			if provider == "" {
				provider = DefaultProvider
			}
			params := make(map[string]string, len(e.Params))
			for k, pv := range e.Params {
				params[strings.ToLower(k)] = pv
			}
			key := locationKey(location)
			if d.byLocation[key] == nil {
				d.byLocation[key] = map[string]Event{}
			}
			d.byLocation[key][year] = Event{
				ID:       strings.TrimSpace(e.ID),
				Year:     year,
				Name:     e.Name,
				Location: location,
				Provider: provider,
				Params:   params,
			}
		}
	}
	return nil
}

func locationKey(location string) string {
	return strings.ToLower(strings.TrimSpace(location))
}

// Resolve looks up the event held at location in year.
func (d *Directory) Resolve(location, year string) (Event, error) {
	location = strings.TrimSpace(location)
	year = strings.TrimSpace(year)

	years, ok := d.byLocation[locationKey(location)]
	if !ok {
		return Event{}, &NotFoundError{Location: location, Year: year, Suggestions: d.suggest(location)}
	}
	ev, ok := years[year]
	if !ok {
		return Event{}, &NotFoundError{Location: location, Year: year, KnownYears: d.Years(location)}
	}
	return ev, nil
}

// HasLocation reports whether any year is known for location.
func (d *Directory) HasLocation(location string) bool {
	_, ok := d.byLocation[locationKey(location)]
	return ok
}

// Years returns the known years for location in ascending order.
func (d *Directory) Years(location string) []string {
	byYear := d.byLocation[locationKey(location)]
	years := make([]string, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Strings(years)
	return years
}

// Locations returns all known locations, sorted.
func (d *Directory) Locations() []string {
	locations := make([]string, 0, len(d.byLocation))
	for l := range d.byLocation {
		locations = append(locations, l)
	}
	sort.Strings(locations)
	return locations
}

// Events lists every event ordered by location then year.
func (d *Directory) Events() []Event {
	var out []Event
	for _, l := range d.Locations() {
		for _, y := range d.Years(l) {
			out = append(out, d.byLocation[l][y])
		}
	}
	return out
}

const suggestionThreshold = 0.7

func (d *Directory) suggest(location string) []string {
	type scored struct {
		name  string
		score float64
	}
	var candidates []scored
	for _, l := range d.Locations() {
		score := matchr.JaroWinkler(location, l, false)
		if score >= suggestionThreshold {
			candidates = append(candidates, scored{l, score})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })

	var out []string
	for i, c := range candidates {
		if i == 3 {
			break
		}
		out = append(out, c.name)
	}
	return out
}
