package playback

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartbuy-backend/internal/camera"
	"smartbuy-backend/internal/layout"
	"smartbuy-backend/internal/shopping"
)

const (
	testTick       = 1500 * time.Millisecond
	testDecay      = 3 * time.Second
	testAssistance = 5 * time.Second
)

// fakeTask is a scheduled callback that only runs when the test fires it.
type fakeTask struct {
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTask) Stop() bool {
	wasPending := !t.stopped && !t.fired
	t.stopped = true
	return wasPending
}

type fakeScheduler struct {
	mu    sync.Mutex
	tasks []*fakeTask
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTask{d: d, f: f}
	s.tasks = append(s.tasks, t)
	return t
}

// pending returns the live tasks scheduled with delay d.
func (s *fakeScheduler) pending(d time.Duration) []*fakeTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*fakeTask
	for _, t := range s.tasks {
		if t.d == d && !t.stopped && !t.fired {
			out = append(out, t)
		}
	}
	return out
}

// fire runs the oldest live task with delay d and reports whether one existed.
func (s *fakeScheduler) fire(d time.Duration) bool {
	tasks := s.pending(d)
	if len(tasks) == 0 {
		return false
	}
	tasks[0].fired = true
	tasks[0].f()
	return true
}

// tick fires the pending playback tick.
func (s *fakeScheduler) tick(t *testing.T) {
	t.Helper()
	require.True(t, s.fire(testTick), "expected a pending tick")
}

// fakeCamera hands out streams that record whether they were released.
type fakeCamera struct {
	mu      sync.Mutex
	fail    bool
	opened  []camera.Facing
	streams []*fakeStream
}

type fakeStream struct {
	closed bool
}

func (s *fakeStream) Capture() (camera.Photo, error) {
	if s.closed {
		return "", camera.ErrClosed
	}
	return "data:image/png;base64,c25hcA==", nil
}

func (s *fakeStream) Close() error {
	s.closed = true
	return nil
}

func (c *fakeCamera) Open(ctx context.Context, facing camera.Facing) (camera.Stream, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opened = append(c.opened, facing)
	if c.fail {
		return nil, errors.New("permission denied")
	}
	s := &fakeStream{}
	c.streams = append(c.streams, s)
	return s, nil
}

func (c *fakeCamera) openStreams() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, s := range c.streams {
		if !s.closed {
			n++
		}
	}
	return n
}

func newTestController(t *testing.T, opts Options, cam camera.Provider) (*Controller, *fakeScheduler) {
	t.Helper()
	l := layout.Default()
	require.NoError(t, l.Validate())

	opts.TickInterval = testTick
	opts.TimeSavedDecay = testDecay
	opts.AssistanceDuration = testAssistance
	if opts.TimeSavedPerItem == 0 {
		opts.TimeSavedPerItem = 2
	}

	sched := &fakeScheduler{}
	c := NewController(l, shopping.NewList(l.SeedList), opts, sched, cam)
	t.Cleanup(c.Close)
	return c, sched
}

// runToNextHalt fires ticks until the controller stops advancing.
func runToNextHalt(t *testing.T, c *Controller, s *fakeScheduler) View {
	t.Helper()
	for i := 0; i < 50; i++ {
		v := c.View()
		if v.State != StateAdvancing {
			return v
		}
		s.tick(t)
	}
	t.Fatal("controller never halted")
	return View{}
}

func TestController_InitialState(t *testing.T) {
	c, _ := newTestController(t, Options{}, nil)

	v := c.View()
	assert.Equal(t, StateIdle, v.State)
	assert.Equal(t, 0, v.Cursor)
	assert.Equal(t, "entrance", v.ActiveSection)
	assert.Equal(t, "M 300 700", v.RoutePath)
	assert.Equal(t, 6, v.Total)
}

func TestController_AutoContinueCollectsEverything(t *testing.T) {
	c, s := newTestController(t, Options{AutoContinue: true}, nil)
	require.NoError(t, c.Start())

	v := runToNextHalt(t, c, s)

	assert.Equal(t, StateCompleted, v.State)
	assert.Equal(t, 10, v.Cursor)
	assert.Equal(t, 6, v.Collected)
	for _, e := range v.ShoppingList {
		assert.True(t, e.Collected, "%s should be collected", e.ID)
	}
	assert.Equal(t, "checkout", v.ActiveSection)
	assert.Empty(t, v.HighlightedRack)
	assert.Equal(t, 100.0, v.Progress)
	assert.Empty(t, s.pending(testTick), "no tick may be scheduled after completion")
}

func TestController_TickDerivedState(t *testing.T) {
	c, s := newTestController(t, Options{}, nil)
	require.NoError(t, c.Start())

	// Waypoint 1 is the snacks stop and surfaces rec3.
	s.tick(t)
	v := c.View()
	assert.Equal(t, 1, v.Cursor)
	assert.Equal(t, StatePausedAtStop, v.State)
	assert.Equal(t, "snacks", v.ActiveSection)
	assert.Equal(t, "s2", v.HighlightedRack)
	require.Len(t, v.Recommendations, 1)
	assert.Equal(t, "rec3", v.Recommendations[0].ID)
	require.NotNil(t, v.Popup)
	assert.Equal(t, "sparkling", v.Popup.ItemID)
	assert.Equal(t, "Sparkling Water", v.Popup.Name)
	assert.Empty(t, s.pending(testTick), "stops suspend advancement")

	// Arrival does not collect.
	e, _ := c.list.Get("sparkling")
	assert.False(t, e.Collected)

	require.NoError(t, c.Continue(""))
	s.tick(t) // bakery stop
	require.NoError(t, c.Continue(""))
	s.tick(t) // aisle: no rack, section updates

	v = c.View()
	assert.Equal(t, 3, v.Cursor)
	assert.Equal(t, StateAdvancing, v.State)
	assert.Equal(t, "aisle", v.ActiveSection)
	assert.Empty(t, v.HighlightedRack)
	assert.Len(t, s.pending(testTick), 1)
}

func TestController_ConfirmCollectsAtConfirmation(t *testing.T) {
	c, s := newTestController(t, Options{}, nil)
	require.NoError(t, c.Start())
	s.tick(t)

	require.NoError(t, c.Continue("data:image/png;base64,AAAA"))

	e, ok := c.list.Get("sparkling")
	require.True(t, ok)
	assert.True(t, e.Collected)
	assert.Equal(t, "data:image/png;base64,AAAA", e.Photo)

	v := c.View()
	assert.Nil(t, v.Popup)
	assert.Equal(t, StateAdvancing, v.State)
	assert.Equal(t, 2, v.TimeSaved)

	// The time-saved credit decays.
	require.True(t, s.fire(testDecay))
	assert.Equal(t, 0, c.View().TimeSaved)
}

func TestController_PhotoGate(t *testing.T) {
	cam := &fakeCamera{}
	c, s := newTestController(t, Options{RequirePhoto: true}, cam)
	require.NoError(t, c.Start())
	s.tick(t)

	v := c.View()
	require.NotNil(t, v.Popup)
	assert.True(t, v.Popup.RequiresPhoto)
	assert.True(t, v.Popup.CameraAvailable)
	assert.Equal(t, []camera.Facing{camera.FacingRear}, cam.opened)
	assert.Equal(t, 1, cam.openStreams())

	assert.ErrorIs(t, c.Continue(""), ErrPhotoRequired)
	assert.Equal(t, StatePausedAtStop, c.View().State)

	photo, err := c.Capture()
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,c25hcA==", photo)

	require.NoError(t, c.Continue(""))
	e, _ := c.list.Get("sparkling")
	assert.True(t, e.Collected)
	assert.Equal(t, photo, e.Photo)
	assert.Equal(t, 0, cam.openStreams(), "camera must be released on continue")
}

func TestController_CameraFallbackAndFailure(t *testing.T) {
	cam := &fakeCamera{fail: true}
	c, s := newTestController(t, Options{RequirePhoto: true}, cam)
	require.NoError(t, c.Start())
	s.tick(t)

	v := c.View()
	require.NotNil(t, v.Popup)
	assert.False(t, v.Popup.CameraAvailable)
	assert.Equal(t, []camera.Facing{camera.FacingRear, camera.FacingAny}, cam.opened)

	_, err := c.Capture()
	assert.ErrorIs(t, err, ErrCameraUnavailable)
	assert.ErrorIs(t, c.Continue(""), ErrPhotoRequired)
	assert.Equal(t, StatePausedAtStop, c.View().State)

	// A photo supplied by the client still confirms the stop.
	require.NoError(t, c.Continue("data:image/jpeg;base64,Zm9v"))
	assert.Equal(t, StateAdvancing, c.View().State)
}

func TestController_CameraReleasedOnTeardown(t *testing.T) {
	cam := &fakeCamera{}
	c, s := newTestController(t, Options{RequirePhoto: true}, cam)
	require.NoError(t, c.Start())
	s.tick(t)
	require.Equal(t, 1, cam.openStreams())

	c.Close()
	assert.Equal(t, 0, cam.openStreams())
	assert.ErrorIs(t, c.Start(), ErrClosed)
}

func TestController_PauseAndResume(t *testing.T) {
	c, s := newTestController(t, Options{AutoContinue: true}, nil)
	require.NoError(t, c.Start())
	for i := 0; i < 4; i++ {
		s.tick(t)
	}
	require.Equal(t, 4, c.View().Cursor)

	require.NoError(t, c.Pause())
	assert.Equal(t, StateSuspended, c.View().State)
	assert.Empty(t, s.pending(testTick))
	assert.ErrorIs(t, c.Pause(), ErrNotAdvancing)

	require.NoError(t, c.Continue(""))
	s.tick(t)
	assert.Equal(t, 5, c.View().Cursor, "resume continues from the paused cursor")
}

func TestController_StaleTickIgnored(t *testing.T) {
	c, s := newTestController(t, Options{AutoContinue: true}, nil)
	require.NoError(t, c.Start())
	stale := s.pending(testTick)[0]

	require.NoError(t, c.Pause())
	require.NoError(t, c.Continue(""))

	// The cancelled timer fires anyway, as time.AfterFunc may after Stop.
	stale.f()
	assert.Equal(t, 0, c.View().Cursor)

	s.tick(t)
	assert.Equal(t, 1, c.View().Cursor)
}

func TestController_StartRules(t *testing.T) {
	c, s := newTestController(t, Options{AutoContinue: true}, nil)
	require.NoError(t, c.Start())
	assert.ErrorIs(t, c.Start(), ErrPlaybackActive)

	runToNextHalt(t, c, s)
	require.Equal(t, StateCompleted, c.View().State)

	// Restart resets everything.
	require.NoError(t, c.Start())
	v := c.View()
	assert.Equal(t, StateAdvancing, v.State)
	assert.Equal(t, 0, v.Cursor)
	assert.Equal(t, 0, v.Collected)
	assert.Empty(t, v.Recommendations)
	assert.Equal(t, "entrance", v.ActiveSection)
}

func TestController_StartClearsRecommendationsAndList(t *testing.T) {
	c, s := newTestController(t, Options{AutoContinue: true}, nil)
	require.NoError(t, c.Start())
	s.tick(t)
	_, err := c.AddItem("Granola", "", "", "")
	require.NoError(t, err)
	require.Len(t, c.View().Recommendations, 1)

	runToNextHalt(t, c, s)
	require.NoError(t, c.Start())

	v := c.View()
	assert.Empty(t, v.Recommendations)
	assert.Len(t, v.ShoppingList, 6)
	for _, e := range v.ShoppingList {
		assert.False(t, e.Collected)
	}
}

func TestController_Recommendations(t *testing.T) {
	c, s := newTestController(t, Options{AutoContinue: true}, nil)
	require.NoError(t, c.Start())
	s.tick(t)

	_, err := c.AcceptRecommendation("rec1")
	assert.ErrorIs(t, err, ErrUnknownRecommendation)

	entry, err := c.AcceptRecommendation("rec3")
	require.NoError(t, err)
	assert.Equal(t, "rec3", entry.ID)
	assert.False(t, entry.Collected)
	assert.Empty(t, c.View().Recommendations)
	assert.Len(t, c.View().ShoppingList, 7)

	// Waypoint 8 surfaces rec4, which can be dismissed.
	for c.View().Cursor < 8 {
		s.tick(t)
	}
	require.Len(t, c.View().Recommendations, 1)
	require.NoError(t, c.DismissRecommendation("rec4"))
	assert.Empty(t, c.View().Recommendations)
	assert.ErrorIs(t, c.DismissRecommendation("rec4"), ErrUnknownRecommendation)
}

func TestController_CollectAcceptedRecommendation(t *testing.T) {
	c, s := newTestController(t, Options{}, nil)
	require.NoError(t, c.Start())
	s.tick(t)

	e, err := c.AcceptRecommendation("rec3")
	require.NoError(t, err)
	assert.False(t, e.Collected)

	e, err = c.CollectItem(e.ID, "data:image/png;base64,AA==")
	require.NoError(t, err)
	assert.True(t, e.Collected)
	assert.Equal(t, "data:image/png;base64,AA==", e.Photo)
	assert.Equal(t, 2, c.View().TimeSaved)

	var inBasket bool
	for _, b := range c.Basket() {
		if b.ID == e.ID {
			inBasket = true
		}
	}
	assert.True(t, inBasket)

	_, err = c.CollectItem(e.ID, "")
	assert.ErrorIs(t, err, ErrAlreadyCollected)
	_, err = c.CollectItem("nope", "")
	assert.ErrorIs(t, err, ErrUnknownItem)
}

func TestController_AddItem(t *testing.T) {
	c, s := newTestController(t, Options{AutoContinue: true}, nil)
	require.NoError(t, c.Start())
	s.tick(t)

	_, err := c.AddItem("   ", "", "", "")
	assert.ErrorIs(t, err, ErrEmptyName)

	e, err := c.AddItem("Granola", "", "s1", "data:image/png;base64,AA==")
	require.NoError(t, err)
	assert.True(t, e.Collected)
	assert.Equal(t, "snacks", e.Section, "defaults to the active section")
	assert.NotEmpty(t, e.ID)
}

func TestController_ItemlessStopWaitsForContinue(t *testing.T) {
	l := layout.Default()
	l.Route[3].Stop = true // aisle
	sched := &fakeScheduler{}
	c := NewController(l, shopping.NewList(l.SeedList), Options{TickInterval: testTick, TimeSavedDecay: testDecay}, sched, nil)
	defer c.Close()

	require.NoError(t, c.Start())
	for i := 0; i < 3; i++ {
		sched.tick(t)
		if c.View().State == StatePausedAtStop && c.View().Cursor < 3 {
			require.NoError(t, c.Continue(""))
		}
	}
	v := c.View()
	assert.Equal(t, 3, v.Cursor)
	assert.Equal(t, StatePausedAtStop, v.State)
	assert.Nil(t, v.Popup)
	require.NoError(t, c.Continue(""))
	assert.Equal(t, StateAdvancing, c.View().State)
}

func TestController_ContinueRequiresPause(t *testing.T) {
	c, _ := newTestController(t, Options{}, nil)
	assert.ErrorIs(t, c.Continue(""), ErrNotPaused)
	_, err := c.Capture()
	assert.ErrorIs(t, err, ErrNoPopup)
}

func TestController_RequestAssistance(t *testing.T) {
	c, s := newTestController(t, Options{AutoContinue: true}, nil)
	c.now = func() time.Time { return time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC) }
	require.NoError(t, c.Start())
	s.tick(t)

	a, err := c.RequestAssistance()
	require.NoError(t, err)
	assert.Equal(t, "snacks", a.Section)
	assert.Equal(t, "s2", a.Rack)
	assert.Equal(t, time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC), a.RequestedAt)
	assert.True(t, c.View().AssistanceRequested)

	require.True(t, s.fire(testAssistance))
	assert.False(t, c.View().AssistanceRequested)
}

func TestController_SingleWaypointCompletesImmediately(t *testing.T) {
	l := &layout.Layout{Route: []layout.Waypoint{{X: 0, Y: 0, Section: "checkout"}}}
	sched := &fakeScheduler{}
	c := NewController(l, shopping.NewList(nil), Options{TickInterval: testTick}, sched, nil)
	defer c.Close()

	require.NoError(t, c.Start())
	assert.Equal(t, StateCompleted, c.View().State)
	assert.Empty(t, sched.pending(testTick))
}

func TestController_ItemStopOnLastWaypoint(t *testing.T) {
	testCases := []struct {
		name         string
		autoContinue bool
	}{
		{name: "Popup waits for confirmation", autoContinue: false},
		{name: "Auto-continue collects on arrival", autoContinue: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			l := &layout.Layout{
				Sections: []layout.Section{{ID: "dairy", Racks: []layout.Rack{{ID: "d1"}}}},
				Route: []layout.Waypoint{
					{X: 0, Y: 0, Section: "entrance"},
					{X: 10, Y: 0, Item: "milk", Section: "dairy", Rack: "d1", Stop: true},
				},
				SeedList: []layout.SeedItem{{ID: "milk", Name: "Milk", Section: "dairy", Rack: "d1"}},
			}
			require.NoError(t, l.Validate())
			sched := &fakeScheduler{}
			c := NewController(l, shopping.NewList(l.SeedList), Options{TickInterval: testTick, TimeSavedDecay: testDecay, AutoContinue: tc.autoContinue}, sched, nil)
			defer c.Close()

			require.NoError(t, c.Start())
			sched.tick(t)

			if !tc.autoContinue {
				v := c.View()
				assert.Equal(t, StatePausedAtStop, v.State)
				require.NotNil(t, v.Popup)
				assert.Equal(t, "milk", v.Popup.ItemID)
				require.NoError(t, c.Continue(""))
			}
			sched.tick(t)

			v := c.View()
			assert.Equal(t, StateCompleted, v.State)
			assert.Equal(t, 1, v.Cursor)
			assert.Equal(t, "dairy", v.ActiveSection)
			assert.Empty(t, v.HighlightedRack)
			assert.Equal(t, 1, v.Collected)
			assert.Empty(t, sched.pending(testTick))
		})
	}
}

func TestController_WallClock(t *testing.T) {
	l := layout.Default()
	opts := Options{
		TickInterval:       time.Millisecond,
		AutoContinue:       true,
		TimeSavedPerItem:   2,
		TimeSavedDecay:     time.Millisecond,
		AssistanceDuration: time.Millisecond,
	}
	c := NewController(l, shopping.NewList(l.SeedList), opts, WallClock(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	require.NoError(t, c.Start())
	assert.Eventually(t, func() bool {
		return c.View().State == StateCompleted
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 6, c.View().Collected)

	cancel()
	<-done
	assert.ErrorIs(t, c.Pause(), ErrClosed)
}
