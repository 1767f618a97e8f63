package layout

// Rack is a shelf unit drawn on the store map.
type Rack struct {
	ID     string   `yaml:"id" json:"id"`
	Name   string   `yaml:"name" json:"name"`
	X      float64  `yaml:"x" json:"x"`
	Y      float64  `yaml:"y" json:"y"`
	Width  float64  `yaml:"width" json:"width"`
	Height float64  `yaml:"height" json:"height"`
	Items  []string `yaml:"items" json:"items"`
	InList bool     `yaml:"in_list" json:"inList"`
}

// Section groups racks into a department of the store.
type Section struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Color       string `yaml:"color" json:"color"`
	BorderColor string `yaml:"border_color" json:"borderColor"`
	Racks       []Rack `yaml:"racks" json:"racks"`
}

// Waypoint is one scripted point along the demo route.
// Item references a seed list entry by id; Recommendation references a
// recommendation surfaced when playback arrives here.
type Waypoint struct {
	X              float64 `yaml:"x" json:"x"`
	Y              float64 `yaml:"y" json:"y"`
	Item           string  `yaml:"item,omitempty" json:"item,omitempty"`
	Section        string  `yaml:"section,omitempty" json:"section,omitempty"`
	Rack           string  `yaml:"rack,omitempty" json:"rackId,omitempty"`
	Stop           bool    `yaml:"stop,omitempty" json:"stop,omitempty"`
	Recommendation string  `yaml:"recommendation,omitempty" json:"recommendation,omitempty"`
}

// SeedItem is an entry of the shopping list every session starts with.
type SeedItem struct {
	ID      string `yaml:"id" json:"id"`
	Name    string `yaml:"name" json:"name"`
	Section string `yaml:"section" json:"section"`
	Rack    string `yaml:"rack" json:"rackId"`
}

// Recommendation is an upsell surfaced during playback.
type Recommendation struct {
	ID      string `yaml:"id" json:"id"`
	Name    string `yaml:"name" json:"name"`
	Section string `yaml:"section" json:"section"`
	Price   string `yaml:"price" json:"price"`
}

// Layout is the complete static store description. It is read-only once loaded.
type Layout struct {
	Sections        []Section        `yaml:"sections" json:"sections"`
	Route           []Waypoint       `yaml:"route" json:"route"`
	SeedList        []SeedItem       `yaml:"seed_list" json:"seedList"`
	Recommendations []Recommendation `yaml:"recommendations" json:"recommendations"`
}
