package shopping

import (
	"sync"

	"github.com/google/uuid"

	"smartbuy-backend/internal/layout"
)

// Entry is one item on the shopping list.
type Entry struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Collected bool   `json:"collected"`
	Section   string `json:"section"`
	Rack      string `json:"rackId"`
	Photo     string `json:"photo,omitempty"`
}

// List is the session's shopping list. Entries are appended and mutated in
// place but never removed; ids stay unique.
type List struct {
	mu      sync.RWMutex
	entries []Entry
	newID   func() string
}

// NewList creates a list populated from the seed items.
func NewList(seed []layout.SeedItem) *List {
	l := &List{newID: uuid.NewString}
	l.Reset(seed)
	return l
}

// Reset replaces the list with the seed items, none collected.
func (l *List) Reset(seed []layout.SeedItem) {
	entries := make([]Entry, 0, len(seed))
	for _, s := range seed {
		entries = append(entries, Entry{
			ID:      s.ID,
			Name:    s.Name,
			Section: s.Section,
			Rack:    s.Rack,
		})
	}

	l.mu.Lock()
	l.entries = entries
	l.mu.Unlock()
}

// Add appends a manually captured item. It is collected on arrival.
func (l *List) Add(name, section, rack, photo string) Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e := Entry{
		ID:        l.freshID(""),
		Name:      name,
		Collected: true,
		Section:   section,
		Rack:      rack,
		Photo:     photo,
	}
	l.entries = append(l.entries, e)
	return e
}

// AddRecommendation appends an accepted recommendation, not yet collected.
// No route stop references it, so it is collected through MarkCollected
// directly. The recommendation id is kept when it does not collide with an entry.
func (l *List) AddRecommendation(rec layout.Recommendation) Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e := Entry{
		ID:      l.freshID(rec.ID),
		Name:    rec.Name,
		Section: rec.Section,
	}
	l.entries = append(l.entries, e)
	return e
}

// freshID returns preferred if unused, otherwise a generated id. Callers hold mu.
func (l *List) freshID(preferred string) string {
	if preferred != "" && l.indexOf(preferred) < 0 {
		return preferred
	}
	for {
		id := l.newID()
		if l.indexOf(id) < 0 {
			return id
		}
	}
}

func (l *List) indexOf(id string) int {
	for i := range l.entries {
		if l.entries[i].ID == id {
			return i
		}
	}
	return -1
}

// MarkCollected flags an entry as collected and attaches the photo.
// It reports false when the entry is unknown or was already collected.
func (l *List) MarkCollected(id, photo string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(id)
	if i < 0 || l.entries[i].Collected {
		return false
	}
	l.entries[i].Collected = true
	if photo != "" {
		l.entries[i].Photo = photo
	}
	return true
}

// Get returns a copy of an entry.
func (l *List) Get(id string) (Entry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	i := l.indexOf(id)
	if i < 0 {
		return Entry{}, false
	}
	return l.entries[i], true
}

// Entries returns a copy of all entries in list order.
func (l *List) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Collected returns the collected entries in list order.
func (l *List) Collected() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []Entry
	for _, e := range l.entries {
		if e.Collected {
			out = append(out, e)
		}
	}
	return out
}

// Counts returns the number of collected entries and the list length.
func (l *List) Counts() (collected, total int) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, e := range l.entries {
		if e.Collected {
			collected++
		}
	}
	return collected, len(l.entries)
}
