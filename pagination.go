package printready

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-printready/internal/browser"
)

// Names of the host functions the bridge script calls.
const (
	hookPage     = "onPage"
	hookSize     = "onSize"
	hookRendered = "onRendered"
)

// paginatedSelector appears once the engine has laid out every page.
const paginatedSelector = ".pagedjs_pages"

// renderedGrace bounds the wait for the completion hook once the bridge
// script has returned.
const renderedGrace = 5 * time.Second

var errNoCompletion = errors.New("pagination finished without reporting completion")

type rectPx struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

type pagePayload struct {
	ID          string      `json:"id"`
	Width       float64     `json:"width"`
	Height      float64     `json:"height"`
	StartToken  *BreakToken `json:"startToken"`
	EndToken    *BreakToken `json:"endToken"`
	BreakBefore string      `json:"breakBefore"`
	BreakAfter  string      `json:"breakAfter"`
	Position    int         `json:"position"`
	Media       rectPx      `json:"media"`
	Crop        rectPx      `json:"crop"`
}

type renderedPayload struct {
	Message string `json:"message"`
	Outcome struct {
		PageCount   int       `json:"pageCount"`
		Orientation string    `json:"orientation"`
		Size        *PageSize `json:"size"`
		Time        float64   `json:"time"`
	} `json:"outcome"`
}

// engineScript is how the pagination engine gets into the page.
type engineScript struct {
	url     string
	content string
}

// paginate injects the engine, wires its events to the host and runs the
// preview. Page and size events are published as they arrive; renderend is
// published last, after the after hook has settled.
func (p *Printer) paginate(ctx context.Context, page browser.Page, url string) (RenderOutcome, []PageGeometry, error) {
	if _, err := page.Evaluate(ctx, p.scripts.prepare); err != nil {
		return RenderOutcome{}, nil, err
	}
	if err := page.AddScriptTag(ctx, p.engine.url, p.engine.content); err != nil {
		return RenderOutcome{}, nil, err
	}

	var (
		mu    sync.Mutex
		pages []PageGeometry
	)
	rendered := make(chan renderedPayload, 1)

	hooks := []struct {
		name string
		fn   browser.HostFunc
	}{
		{hookPage, func(payload string) {
			var raw pagePayload
			if err := json.Unmarshal([]byte(payload), &raw); err != nil {
				p.log.Warn("decoding page event", zap.Error(err))
				return
			}
			geom := pageGeometry(raw)
			mu.Lock()
			pages = append(pages, geom)
			mu.Unlock()
			p.events.emit(Event{Name: EventPage, URL: url, Page: &geom})
		}},
		{hookSize, func(payload string) {
			var size PageSize
			if err := json.Unmarshal([]byte(payload), &size); err != nil {
				p.log.Warn("decoding size event", zap.Error(err))
				return
			}
			p.events.emit(Event{Name: EventSize, URL: url, Size: &size})
		}},
		{hookRendered, func(payload string) {
			var r renderedPayload
			if err := json.Unmarshal([]byte(payload), &r); err != nil {
				p.log.Warn("decoding rendered event", zap.Error(err))
			}
			select {
			case rendered <- r:
			default:
			}
		}},
	}
	for _, h := range hooks {
		if err := page.Expose(ctx, h.name, h.fn); err != nil {
			return RenderOutcome{}, nil, err
		}
	}

	p.events.emit(Event{Name: EventRenderStart, URL: url})
	p.log.Debug("pagination started", zap.String("url", url))

	if _, err := page.Evaluate(ctx, p.scripts.bridge, p.cfg.beforeHook, p.cfg.afterHook); err != nil {
		return RenderOutcome{}, nil, err
	}

	var r renderedPayload
	grace := time.NewTimer(renderedGrace)
	defer grace.Stop()
	select {
	case r = <-rendered:
	case <-grace.C:
		return RenderOutcome{}, nil, errNoCompletion
	case <-ctx.Done():
		return RenderOutcome{}, nil, ctx.Err()
	}

	outcome := RenderOutcome{
		PageCount:   r.Outcome.PageCount,
		Orientation: r.Outcome.Orientation,
		Size:        r.Outcome.Size,
		Elapsed:     time.Duration(r.Outcome.Time * float64(time.Millisecond)),
	}
	p.events.emit(Event{Name: EventRenderEnd, URL: url, Message: r.Message, Outcome: &outcome})

	mu.Lock()
	defer mu.Unlock()
	return outcome, append([]PageGeometry(nil), pages...), nil
}

// pageGeometry converts the measured boxes to points. The crop box is
// positioned relative to the media box.
func pageGeometry(raw pagePayload) PageGeometry {
	return PageGeometry{
		ID:          raw.ID,
		Width:       raw.Width,
		Height:      raw.Height,
		StartToken:  raw.StartToken,
		EndToken:    raw.EndToken,
		BreakBefore: raw.BreakBefore,
		BreakAfter:  raw.BreakAfter,
		Position:    raw.Position,
		MediaBox: Box{
			Width:  nonNegative(pxToPt(raw.Media.Width)),
			Height: nonNegative(pxToPt(raw.Media.Height)),
		},
		CropBox: Box{
			Width:  nonNegative(pxToPt(raw.Crop.Width)),
			Height: nonNegative(pxToPt(raw.Crop.Height)),
			X:      round2(pxToPt(raw.Crop.X) - pxToPt(raw.Media.X)),
			Y:      round2(pxToPt(raw.Crop.Y) - pxToPt(raw.Media.Y)),
		},
	}
}

// pxToPt converts CSS pixels (96 per inch) to points (72 per inch).
func pxToPt(px float64) float64 {
	return round2(px * 0.75)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func nonNegative(v float64) float64 {
	return math.Max(0, v)
}

// waitForPages waits for the paginated container within timeout.
func waitForPages(ctx context.Context, page browser.Page, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := page.WaitForSelector(ctx, paginatedSelector); err != nil {
		return fmt.Errorf("%w: %w", ErrPaginationMarker, err)
	}
	return nil
}
