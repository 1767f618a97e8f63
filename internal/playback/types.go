package playback

import (
	"errors"
	"time"

	"smartbuy-backend/config"
	"smartbuy-backend/internal/layout"
	"smartbuy-backend/internal/shopping"
)

// State is the controller's session state. Exactly one holds at a time.
type State string

const (
	StateIdle         State = "idle"
	StateAdvancing    State = "advancing"
	StateSuspended    State = "suspended"
	StatePausedAtStop State = "paused_at_stop"
	StateCompleted    State = "completed"
)

var (
	ErrPlaybackActive        = errors.New("playback: a run is already in progress")
	ErrNotAdvancing          = errors.New("playback: not advancing")
	ErrNotPaused             = errors.New("playback: nothing to continue")
	ErrNoPopup               = errors.New("playback: no item popup is open")
	ErrPhotoRequired         = errors.New("playback: a photo is required before continuing")
	ErrCameraUnavailable     = errors.New("playback: camera unavailable")
	ErrUnknownRecommendation = errors.New("playback: recommendation is not surfaced")
	ErrEmptyName             = errors.New("playback: item name is required")
	ErrUnknownItem           = errors.New("playback: item is not on the list")
	ErrAlreadyCollected      = errors.New("playback: item is already collected")
	ErrClosed                = errors.New("playback: controller closed")
)

// Options tune timers and the stop behaviour.
type Options struct {
	TickInterval       time.Duration
	AutoContinue       bool // collect on arrival and never wait at stops
	RequirePhoto       bool // item popups need a captured photo before continuing
	TimeSavedPerItem   int
	TimeSavedDecay     time.Duration
	AssistanceDuration time.Duration
}

// OptionsFromConfig maps the playback config section onto Options.
func OptionsFromConfig(cfg config.PlaybackConfig) Options {
	return Options{
		TickInterval:       cfg.TickInterval,
		AutoContinue:       cfg.AutoContinue,
		RequirePhoto:       cfg.RequirePhoto,
		TimeSavedPerItem:   cfg.TimeSavedPerItem,
		TimeSavedDecay:     cfg.TimeSavedDecay,
		AssistanceDuration: cfg.AssistanceDuration,
	}
}

// Popup is the item collection prompt shown at a stop.
type Popup struct {
	ItemID          string `json:"itemId"`
	Name            string `json:"name"`
	Section         string `json:"section"`
	Rack            string `json:"rackId,omitempty"`
	RequiresPhoto   bool   `json:"requiresPhoto"`
	CameraAvailable bool   `json:"cameraAvailable"`
	Photo           string `json:"photo,omitempty"`
}

// Assistance describes a shopper's request for staff help.
type Assistance struct {
	Section     string    `json:"section"`
	Rack        string    `json:"rackId,omitempty"`
	RequestedAt time.Time `json:"requestedAt"`
}

// View is a read-only snapshot of the session.
type View struct {
	State               State                   `json:"state"`
	Cursor              int                     `json:"cursor"`
	Progress            float64                 `json:"progress"`
	Position            layout.Waypoint         `json:"position"`
	RoutePath           string                  `json:"routePath"`
	ActiveSection       string                  `json:"activeSection"`
	HighlightedRack     string                  `json:"highlightedRack,omitempty"`
	Popup               *Popup                  `json:"popup,omitempty"`
	Recommendations     []layout.Recommendation `json:"recommendations"`
	ShoppingList        []shopping.Entry        `json:"shoppingList"`
	Collected           int                     `json:"collected"`
	Total               int                     `json:"total"`
	TimeSaved           int                     `json:"timeSaved"`
	AssistanceRequested bool                    `json:"assistanceRequested"`
}
