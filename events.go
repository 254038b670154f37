package printready

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Event names.
const (
	EventNavigationStart = "navigationstart"
	EventNavigationEnd   = "navigationend"
	EventRenderStart     = "renderstart"
	EventRenderEnd       = "renderend"
	EventRendered        = "rendered"
	EventPage            = "page"
	EventSize            = "size"
	EventPDFStart        = "pdfstart"
	EventPDFEnd          = "pdfend"
)

// supportedEvents is in pipeline order. "rendered" is accepted for
// subscription but never published; completion is reported by "renderend".
var supportedEvents = []string{
	EventNavigationStart,
	EventNavigationEnd,
	EventRenderStart,
	EventRenderEnd,
	EventRendered,
	EventPage,
	EventSize,
	EventPDFStart,
	EventPDFEnd,
}

// SupportedEvents returns the names accepted by On.
func SupportedEvents() []string {
	out := make([]string, len(supportedEvents))
	copy(out, supportedEvents)
	return out
}

// IsSupportedEvent reports whether On accepts name.
func IsSupportedEvent(name string) bool {
	for _, s := range supportedEvents {
		if s == name {
			return true
		}
	}
	return false
}

// Event is a progress notification. Only the fields relevant to Name are
// set: URL on navigation, render and pdf events, Page on "page", Size on
// "size", Message and Outcome on "renderend", Bytes on "pdfend".
type Event struct {
	Name    string
	URL     string
	Page    *PageGeometry
	Size    *PageSize
	Message string
	Outcome *RenderOutcome
	Bytes   int
}

// Handler observes events. Handlers run synchronously on the rendering
// goroutine or a browser callback goroutine and must not block.
type Handler func(Event)

type subscription struct {
	id int
	fn Handler
}

// Events is a registry of event handlers, safe for concurrent use.
type Events struct {
	log *zap.Logger

	mu     sync.RWMutex
	nextID int
	subs   map[string][]subscription
}

func newEvents(log *zap.Logger) *Events {
	return &Events{log: log, subs: make(map[string][]subscription)}
}

// On registers fn for name and returns a function that removes it.
// Calling the returned function more than once is harmless.
func (e *Events) On(name string, fn Handler) (unsubscribe func(), err error) {
	if !IsSupportedEvent(name) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEvent, name)
	}
	if fn == nil {
		return func() {}, nil
	}

	e.mu.Lock()
	e.nextID++
	id := e.nextID
	e.subs[name] = append(e.subs[name], subscription{id: id, fn: fn})
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { e.remove(name, id) })
	}, nil
}

func (e *Events) remove(name string, id int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	subs := e.subs[name]
	for i, s := range subs {
		if s.id == id {
			e.subs[name] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// emit calls every handler registered for ev.Name in registration order.
// A panicking handler is logged and does not affect the others.
func (e *Events) emit(ev Event) {
	e.mu.RLock()
	subs := append([]subscription(nil), e.subs[ev.Name]...)
	e.mu.RUnlock()

	for _, s := range subs {
		e.call(s.fn, ev)
	}
}

func (e *Events) call(fn Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("event handler panicked", zap.String("event", ev.Name), zap.Any("panic", r))
		}
	}()
	fn(ev)
}
