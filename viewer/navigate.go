package viewer

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/docview/pagekit/coords"
	"github.com/docview/pagekit/dom"
	"github.com/docview/pagekit/observability"
	"github.com/docview/pagekit/page"
)

// HandleLinkClick resolves a clicked link's destination and scrolls to it.
// The return value reports whether the click was intercepted; false means
// the default platform behavior, if any, should proceed.
func (v *Viewer) HandleLinkClick(ctx context.Context, link dom.Node) bool {
	detail, ok := link.Attr(destAttr)
	if !ok || detail == "" {
		return false
	}
	var src *page.Unit
	if frame := link.Closest(v.markup.Frame); frame != nil {
		v.mu.Lock()
		if no, ok := frame.Attr(v.markup.NumberAttr); ok {
			if n, err := strconv.ParseInt(no, 16, 32); err == nil {
				if i, found := v.registry.Lookup(int(n)); found {
					src = v.registry.At(i)
				}
			}
		}
		v.mu.Unlock()
	}
	return v.NavigateTo(ctx, detail, src)
}

// NavigateTo resolves a destination detail string, a JSON-encoded array
// [pageNumber, mode, ...params], against the registry. src is the page
// containing the click source, or nil (e.g. an outline item).
//
// If the target page is loaded the scroll happens immediately; otherwise a
// load is issued with a callback performing the exact scroll, while an
// approximate scroll to the page's top-left gives immediate feedback. The
// two scrolls may interleave with other scroll changes; last write wins.
func (v *Viewer) NavigateTo(ctx context.Context, detail string, src *page.Unit) bool {
	var dest []interface{}
	if err := json.Unmarshal([]byte(detail), &dest); err != nil {
		return false
	}
	if len(dest) < 2 {
		return false
	}
	number, ok := dest[0].(float64)
	if !ok {
		return false
	}
	mode, ok := dest[1].(string)
	if !ok {
		return false
	}
	for _, d := range dest[2:] {
		if d == nil {
			continue
		}
		if _, ok := d.(float64); !ok {
			return false
		}
	}
	for len(dest) < 6 {
		dest = append(dest, nil)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	idx, found := v.registry.Lookup(int(number))
	if !found {
		// Dangling targets are a normal outcome, not an error.
		return false
	}

	// Default reference point: where the click source sits, in document
	// coordinates. Scroll space is top-down, document space bottom-up,
	// hence the flip before the inverse transform.
	cur := coords.Point{}
	if src != nil && src.Loaded() {
		p := src.Position()
		cur = src.ICTM().Transform(coords.Point{X: p.X, Y: src.Frame().Height() - p.Y})
	}

	var pos coords.Point
	upsideDown := true
	switch mode {
	case "XYZ":
		pos = coords.Point{X: numOr(dest[2], cur.X), Y: numOr(dest[3], cur.Y)}
	case "Fit", "FitB":
		// target (0,0)
	case "FitH", "FitBH":
		pos.Y = numOr(dest[2], cur.Y)
	case "FitV", "FitBV":
		pos.X = numOr(dest[2], cur.X)
	case "FitR":
		left, ok1 := dest[2].(float64)
		top, ok2 := dest[5].(float64)
		if !ok1 || !ok2 {
			return false
		}
		pos = coords.Point{X: left, Y: top}
		upsideDown = false
	default:
		return false
	}

	scroll := func(u *page.Unit) {
		p := u.CTM().Transform(pos)
		if upsideDown {
			p.Y = u.Frame().Height() - p.Y
		}
		v.scrollToLocked(idx, p)
	}

	target := v.registry.At(idx)
	if target.Loaded() {
		scroll(target)
	} else {
		// The loader invokes callbacks under the viewer's commit, so the
		// exact scroll runs with the lock already held.
		v.loader.Load(ctx, idx, 0, scroll, nil)
		v.scrollToLocked(idx, coords.Point{})
	}
	v.log.Debug("navigated",
		observability.Int("page", int(number)),
		observability.String("mode", mode))
	return true
}

func numOr(d interface{}, fallback float64) float64 {
	if f, ok := d.(float64); ok {
		return f
	}
	return fallback
}
