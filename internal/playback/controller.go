package playback

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"smartbuy-backend/internal/camera"
	"smartbuy-backend/internal/layout"
	"smartbuy-backend/internal/shopping"
)

// Controller walks the route table on a fixed interval and keeps the
// derived session state in step with the cursor. All state changes happen
// under mu, so timer callbacks and user actions are strictly sequential.
type Controller struct {
	mu     sync.Mutex
	layout *layout.Layout
	list   *shopping.List
	opts   Options
	sched  Scheduler
	camera camera.Provider
	now    func() time.Time

	state           State
	cursor          int
	activeSection   string
	highlightedRack string
	popup           *Popup
	stream          camera.Stream
	surfaced        []layout.Recommendation
	fired           map[int]bool

	timer Timer
	gen   uint64 // bumped whenever the pending tick is cancelled or replaced

	timeSaved int
	decays    map[int]Timer
	nextDecay int

	assistance      bool
	assistanceTimer Timer
	assistanceGen   uint64

	ctx    context.Context
	cancel context.CancelFunc
	closed bool
}

// NewController creates an idle controller over a validated layout.
// A nil camera provider disables photo capture.
func NewController(l *layout.Layout, list *shopping.List, opts Options, sched Scheduler, cam camera.Provider) *Controller {
	if sched == nil {
		sched = WallClock()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		layout: l,
		list:   list,
		opts:   opts,
		sched:  sched,
		camera: cam,
		now:    time.Now,
		state:  StateIdle,
		fired:  make(map[int]bool),
		decays: make(map[int]Timer),
		ctx:    ctx,
		cancel: cancel,
	}
	if len(l.Route) > 0 {
		c.activeSection = l.Route[0].Section
	}
	return c
}

// Run blocks until ctx is done and then tears the controller down.
func (c *Controller) Run(ctx context.Context) {
	<-ctx.Done()
	log.Println("Playback controller shutting down.")
	c.Close()
}

// Close cancels every pending timer and releases the camera.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.cancelTick()
	c.closePopup()
	for id, t := range c.decays {
		t.Stop()
		delete(c.decays, id)
	}
	if c.assistanceTimer != nil {
		c.assistanceTimer.Stop()
		c.assistanceTimer = nil
	}
	c.cancel()
}

// Start begins a new run from the entrance.
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	switch c.state {
	case StateAdvancing, StateSuspended, StatePausedAtStop:
		return ErrPlaybackActive
	}

	c.cancelTick()
	c.closePopup()
	c.cursor = 0
	c.list.Reset(c.layout.SeedList)
	c.surfaced = nil
	c.fired = make(map[int]bool)
	c.activeSection = c.layout.Route[0].Section
	c.highlightedRack = ""
	c.state = StateAdvancing
	log.Printf("Playback started over %d waypoints", len(c.layout.Route))

	if c.cursor >= c.layout.LastIndex() {
		c.complete()
		return nil
	}
	c.scheduleTick()
	return nil
}

// Pause suspends advancement without touching the cursor.
func (c *Controller) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.state != StateAdvancing {
		return ErrNotAdvancing
	}
	c.cancelTick()
	c.state = StateSuspended
	return nil
}

// Continue resumes after a pause, or confirms the stop the controller is waiting at.
// At an item stop the entry is marked collected with photo (or the captured
// photo) at this moment, not on arrival.
func (c *Controller) Continue(photo string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	switch c.state {
	case StateSuspended:
	case StatePausedAtStop:
		if c.popup != nil {
			if photo == "" {
				photo = c.popup.Photo
			}
			if c.popup.RequiresPhoto && photo == "" {
				return ErrPhotoRequired
			}
			c.collect(c.popup.ItemID, photo)
			c.closePopup()
		}
	default:
		return ErrNotPaused
	}

	c.state = StateAdvancing
	c.scheduleTick()
	return nil
}

// Capture snapshots a still from the camera into the open popup.
func (c *Controller) Capture() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return "", ErrClosed
	}
	if c.state != StatePausedAtStop || c.popup == nil {
		return "", ErrNoPopup
	}
	if c.stream == nil && !c.openCamera() {
		return "", ErrCameraUnavailable
	}

	photo, err := c.stream.Capture()
	if err != nil {
		log.Printf("Error capturing photo for %s: %v", c.popup.ItemID, err)
		return "", ErrCameraUnavailable
	}
	c.popup.Photo = string(photo)
	return c.popup.Photo, nil
}

// AcceptRecommendation moves a surfaced recommendation onto the shopping list.
func (c *Controller) AcceptRecommendation(id string) (shopping.Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.takeSurfaced(id)
	if !ok {
		return shopping.Entry{}, ErrUnknownRecommendation
	}
	return c.list.AddRecommendation(rec), nil
}

// DismissRecommendation hides a surfaced recommendation.
func (c *Controller) DismissRecommendation(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.takeSurfaced(id); !ok {
		return ErrUnknownRecommendation
	}
	return nil
}

func (c *Controller) takeSurfaced(id string) (layout.Recommendation, bool) {
	for i, r := range c.surfaced {
		if r.ID == id {
			c.surfaced = append(c.surfaced[:i:i], c.surfaced[i+1:]...)
			return r, true
		}
	}
	return layout.Recommendation{}, false
}

// AddItem records a manually captured item. It is collected immediately.
func (c *Controller) AddItem(name, section, rack, photo string) (shopping.Entry, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return shopping.Entry{}, ErrEmptyName
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if section == "" {
		section = c.activeSection
	}
	return c.list.Add(name, section, rack, photo), nil
}

// CollectItem picks up a list entry off the route, such as an accepted
// recommendation, which no stop will ever prompt for.
func (c *Controller) CollectItem(id, photo string) (shopping.Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return shopping.Entry{}, ErrClosed
	}
	e, ok := c.list.Get(id)
	if !ok {
		return shopping.Entry{}, ErrUnknownItem
	}
	if e.Collected {
		return e, ErrAlreadyCollected
	}
	c.collect(id, photo)
	e, _ = c.list.Get(id)
	return e, nil
}

// RequestAssistance raises the assistance flag for a while and reports where the shopper is.
func (c *Controller) RequestAssistance() (Assistance, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return Assistance{}, ErrClosed
	}

	c.assistance = true
	c.assistanceGen++
	gen := c.assistanceGen
	if c.assistanceTimer != nil {
		c.assistanceTimer.Stop()
	}
	c.assistanceTimer = c.sched.AfterFunc(c.opts.AssistanceDuration, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if gen == c.assistanceGen {
			c.assistance = false
			c.assistanceTimer = nil
		}
	})

	return Assistance{
		Section:     c.activeSection,
		Rack:        c.highlightedRack,
		RequestedAt: c.now().UTC(),
	}, nil
}

// Basket returns the collected entries.
func (c *Controller) Basket() []shopping.Entry {
	return c.list.Collected()
}

// View returns a snapshot of the session.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		State:               c.state,
		Cursor:              c.cursor,
		Progress:            c.layout.Progress(c.cursor),
		Position:            c.layout.Route[c.cursor],
		RoutePath:           c.layout.RoutePath(c.cursor),
		ActiveSection:       c.activeSection,
		HighlightedRack:     c.highlightedRack,
		Recommendations:     append([]layout.Recommendation{}, c.surfaced...),
		ShoppingList:        c.list.Entries(),
		TimeSaved:           c.timeSaved,
		AssistanceRequested: c.assistance,
	}
	if c.popup != nil {
		p := *c.popup
		v.Popup = &p
	}
	v.Collected, v.Total = c.list.Counts()
	return v
}

// scheduleTick arms the next tick. Callers hold mu.
func (c *Controller) scheduleTick() {
	c.gen++
	gen := c.gen
	c.timer = c.sched.AfterFunc(c.opts.TickInterval, func() { c.tick(gen) })
}

// cancelTick drops the pending tick. Callers hold mu.
func (c *Controller) cancelTick() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.gen++
}

func (c *Controller) tick(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// A stale callback whose timer fired while being cancelled.
	if c.closed || gen != c.gen || c.state != StateAdvancing {
		return
	}
	c.timer = nil
	c.advance()
}

// advance moves the cursor by exactly one and applies the derived updates.
func (c *Controller) advance() {
	last := c.layout.LastIndex()
	if c.cursor >= last {
		c.complete()
		return
	}

	c.cursor++
	wp := c.layout.Route[c.cursor]

	if wp.Section != "" {
		c.activeSection = wp.Section
	}
	c.highlightedRack = wp.Rack
	if wp.Recommendation != "" && !c.fired[c.cursor] {
		c.fired[c.cursor] = true
		if rec, ok := c.layout.RecommendationByID(wp.Recommendation); ok {
			c.surfaced = []layout.Recommendation{rec}
		}
	}

	// An item stop on the terminal waypoint is handled first; the tick
	// after it completes the run.
	if wp.Stop && (c.cursor < last || wp.Item != "") {
		c.arrive(wp)
		return
	}
	if c.cursor == last {
		c.complete()
		return
	}
	c.scheduleTick()
}

// arrive handles reaching a stop waypoint.
func (c *Controller) arrive(wp layout.Waypoint) {
	if c.opts.AutoContinue {
		if wp.Item != "" {
			c.collect(wp.Item, "")
		}
		c.scheduleTick()
		return
	}

	c.state = StatePausedAtStop
	if wp.Item == "" {
		return
	}

	p := &Popup{
		ItemID:        wp.Item,
		Section:       wp.Section,
		Rack:          wp.Rack,
		RequiresPhoto: c.opts.RequirePhoto,
	}
	if e, ok := c.list.Get(wp.Item); ok {
		p.Name = e.Name
	}
	c.popup = p
	if p.RequiresPhoto {
		c.openCamera()
	}
}

// openCamera acquires the stream for the open popup. On failure the popup
// stays in its pre-capture state. Callers hold mu.
func (c *Controller) openCamera() bool {
	s, err := camera.Acquire(c.ctx, c.camera)
	if err != nil {
		log.Printf("Camera unavailable for %s: %v", c.popup.ItemID, err)
		c.popup.CameraAvailable = false
		return false
	}
	c.stream = s
	c.popup.CameraAvailable = true
	return true
}

// closePopup hides the popup and releases the camera. Callers hold mu.
func (c *Controller) closePopup() {
	if c.stream != nil {
		if err := c.stream.Close(); err != nil {
			log.Printf("Error releasing camera: %v", err)
		}
		c.stream = nil
	}
	c.popup = nil
}

func (c *Controller) complete() {
	c.state = StateCompleted
	c.activeSection = c.layout.Route[c.layout.LastIndex()].Section
	if c.activeSection == "" {
		c.activeSection = "checkout"
	}
	c.highlightedRack = ""
	c.closePopup()
	collected, total := c.list.Counts()
	log.Printf("Playback completed: %d/%d items collected", collected, total)
}

// collect marks an entry and credits the time-saved indicator for a while.
func (c *Controller) collect(id, photo string) {
	if !c.list.MarkCollected(id, photo) {
		return
	}

	per := c.opts.TimeSavedPerItem
	c.timeSaved += per
	c.nextDecay++
	decayID := c.nextDecay
	c.decays[decayID] = c.sched.AfterFunc(c.opts.TimeSavedDecay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if _, ok := c.decays[decayID]; !ok {
			return
		}
		delete(c.decays, decayID)
		c.timeSaved -= per
	})
}
