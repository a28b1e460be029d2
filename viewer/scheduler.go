package viewer

import (
	"time"

	"github.com/docview/pagekit/observability"
)

// Render runs a visibility pass immediately: every nearly-visible page is
// shown (or loading is triggered), everything else is hidden. This is the
// single place page visibility is decided; redundant calls are safe.
func (v *Viewer) Render() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.renderNowLocked()
}

func (v *Viewer) renderNowLocked() {
	start := time.Now()
	for i, u := range v.registry.Units() {
		if u.IsNearlyVisible() {
			if u.Loaded() {
				u.Show()
			} else {
				v.loader.Load(v.ctx, i, 0, nil, nil)
			}
		} else {
			u.Hide()
		}
	}
	v.log.Debug("render pass",
		observability.Float64(observability.MetricRenderTime, time.Since(start).Seconds()))
}

// ScheduleRender debounces Render by the configured delay. With a render
// already pending, renew=false yields to the existing timer and renew=true
// cancels it and arms a fresh one. Zoom wants the latest parameters (renew),
// scroll bursts want coalescing.
func (v *Viewer) ScheduleRender(renew bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.scheduleRenderLocked(renew)
}

func (v *Viewer) scheduleRenderLocked(renew bool) {
	if v.renderTimer != nil {
		if !renew {
			return
		}
		v.renderTimer.Stop()
	}
	// Stop can miss a timer that already fired and is waiting on the lock;
	// the generation check makes the stale callback a no-op so only one
	// timer ever owns the slot.
	v.renderGen++
	gen := v.renderGen
	delay := time.Duration(v.cfg.RenderTimeoutMS) * time.Millisecond
	v.renderTimer = time.AfterFunc(delay, func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		if gen != v.renderGen {
			return
		}
		v.renderTimer = nil
		v.renderNowLocked()
	})
}

// HandleScroll is the embedder's scroll notification; it coalesces bursts
// into a single settled render.
func (v *Viewer) HandleScroll() {
	v.ScheduleRender(true)
}

// Rebuild rescans the container after the page-frame set changed, then
// re-renders.
func (v *Viewer) Rebuild() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.registry.Rebuild()
	v.scheduleRenderLocked(true)
}
