package viewer

import "github.com/docview/pagekit/coords"

// KeyEvent is a keyboard event translated by the embedder. Key uses the
// DOM key names for the handled set: "+", "=", "-", "0", "PageUp",
// "PageDown", "Home", "End".
type KeyEvent struct {
	Key  string
	Ctrl bool // ctrl, or cmd on mac
	Alt  bool
}

// HandleKey implements the built-in keyboard shortcuts. A true return means
// the event was consumed and the embedder should suppress further handling
// (preventDefault). With the key handler disabled in the configuration,
// every event is left alone.
func (v *Viewer) HandleKey(e KeyEvent) bool {
	if !v.cfg.KeyHandler {
		return false
	}
	switch e.Key {
	case "+", "=":
		if !e.Ctrl {
			return false
		}
		v.Rescale(1/v.cfg.ScaleStep, true, 0, 0)
		return true
	case "-":
		if !e.Ctrl {
			return false
		}
		v.Rescale(v.cfg.ScaleStep, true, 0, 0)
		return true
	case "0":
		if !e.Ctrl {
			return false
		}
		v.Rescale(0, false, 0, 0)
		return true
	case "PageUp":
		return v.pageKey(-1, e.Alt)
	case "PageDown":
		return v.pageKey(+1, e.Alt)
	case "Home":
		// Upstream checked the wrong ctrl flag here and never triggered;
		// this implements the intended jump to the top.
		if !e.Ctrl {
			return false
		}
		v.mu.Lock()
		defer v.mu.Unlock()
		v.container.SetScroll(v.container.ScrollLeft(), 0)
		v.scheduleRenderLocked(true)
		return true
	case "End":
		if !e.Ctrl {
			return false
		}
		v.mu.Lock()
		defer v.mu.Unlock()
		v.container.SetScroll(v.container.ScrollLeft(), v.container.ScrollHeight())
		v.scheduleRenderLocked(true)
		return true
	}
	return false
}

// pageKey moves one page (alt) or one viewport height.
func (v *Viewer) pageKey(dir int, byPage bool) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if byPage {
		idx, active := v.activePageLocked()
		if active == nil {
			return false
		}
		v.scrollToLocked(idx+dir, coords.Point{})
	} else {
		v.container.SetScroll(
			v.container.ScrollLeft(),
			v.container.ScrollTop()+float64(dir)*v.container.ClientHeight(),
		)
	}
	v.scheduleRenderLocked(true)
	return true
}

// HandleWheel implements ctrl+wheel zoom. Plain wheel events are not
// consumed; the embedder scrolls natively and reports via HandleScroll.
func (v *Viewer) HandleWheel(deltaY float64, ctrl bool) bool {
	if !v.cfg.KeyHandler || !ctrl {
		return false
	}
	if deltaY < 0 {
		v.Rescale(1/v.cfg.ScaleStep, true, 0, 0)
	} else {
		v.Rescale(v.cfg.ScaleStep, true, 0, 0)
	}
	return true
}
