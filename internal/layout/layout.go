package layout

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrEmptyRoute is returned when a layout has no waypoints.
var ErrEmptyRoute = errors.New("layout: route has no waypoints")

// Load reads a layout from a YAML file and validates it.
func Load(path string) (*Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var l Layout
	if err := yaml.NewDecoder(f).Decode(&l); err != nil {
		return nil, fmt.Errorf("failed to decode layout %s: %w", path, err)
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &l, nil
}

// Validate checks that every reference in the route resolves.
func (l *Layout) Validate() error {
	if len(l.Route) == 0 {
		return ErrEmptyRoute
	}

	seed := make(map[string]struct{}, len(l.SeedList))
	for _, s := range l.SeedList {
		if s.ID == "" {
			return fmt.Errorf("layout: seed item %q has no id", s.Name)
		}
		if _, dup := seed[s.ID]; dup {
			return fmt.Errorf("layout: duplicate seed item id %q", s.ID)
		}
		seed[s.ID] = struct{}{}
	}

	recs := make(map[string]struct{}, len(l.Recommendations))
	for _, r := range l.Recommendations {
		if _, dup := recs[r.ID]; dup {
			return fmt.Errorf("layout: duplicate recommendation id %q", r.ID)
		}
		recs[r.ID] = struct{}{}
	}

	for i, wp := range l.Route {
		if wp.Item != "" {
			if _, ok := seed[wp.Item]; !ok {
				return fmt.Errorf("layout: waypoint %d references unknown item %q", i, wp.Item)
			}
		}
		if wp.Rack != "" {
			if _, ok := l.RackByID(wp.Rack); !ok {
				return fmt.Errorf("layout: waypoint %d references unknown rack %q", i, wp.Rack)
			}
		}
		if wp.Recommendation != "" {
			if _, ok := recs[wp.Recommendation]; !ok {
				return fmt.Errorf("layout: waypoint %d references unknown recommendation %q", i, wp.Recommendation)
			}
		}
	}
	return nil
}

// SharedStopCoordinates returns the indices of stop waypoints whose
// coordinates also appear elsewhere on the route.
func (l *Layout) SharedStopCoordinates() []int {
	type point struct{ x, y float64 }
	seen := make(map[point]int, len(l.Route))
	for _, wp := range l.Route {
		seen[point{wp.X, wp.Y}]++
	}

	var shared []int
	for i, wp := range l.Route {
		if wp.Stop && seen[point{wp.X, wp.Y}] > 1 {
			shared = append(shared, i)
		}
	}
	return shared
}

// LastIndex is the index of the terminal waypoint.
func (l *Layout) LastIndex() int {
	return len(l.Route) - 1
}

// Progress reports how far along the route a cursor is, in percent.
func (l *Layout) Progress(cursor int) float64 {
	if l.LastIndex() <= 0 {
		return 100
	}
	return float64(cursor) / float64(l.LastIndex()) * 100
}

// RoutePath renders the route up to and including upTo as an SVG path.
func (l *Layout) RoutePath(upTo int) string {
	if len(l.Route) == 0 {
		return ""
	}
	if upTo > l.LastIndex() {
		upTo = l.LastIndex()
	}

	var b strings.Builder
	for i := 0; i <= upTo; i++ {
		if i == 0 {
			b.WriteString("M ")
		} else {
			b.WriteString(" L ")
		}
		b.WriteString(formatCoord(l.Route[i].X))
		b.WriteByte(' ')
		b.WriteString(formatCoord(l.Route[i].Y))
	}
	return b.String()
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// SectionByID looks up a section.
func (l *Layout) SectionByID(id string) (Section, bool) {
	for _, s := range l.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// RackByID looks up a rack across all sections.
func (l *Layout) RackByID(id string) (Rack, bool) {
	for _, s := range l.Sections {
		for _, r := range s.Racks {
			if r.ID == id {
				return r, true
			}
		}
	}
	return Rack{}, false
}

// SeedItemByID looks up a seed list entry.
func (l *Layout) SeedItemByID(id string) (SeedItem, bool) {
	for _, s := range l.SeedList {
		if s.ID == id {
			return s, true
		}
	}
	return SeedItem{}, false
}

// RecommendationByID looks up a recommendation.
func (l *Layout) RecommendationByID(id string) (Recommendation, bool) {
	for _, r := range l.Recommendations {
		if r.ID == id {
			return r, true
		}
	}
	return Recommendation{}, false
}
