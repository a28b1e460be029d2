package viewer

import (
	"testing"
	"time"
)

func TestRenderShowsNearbyAndHidesDistantPages(t *testing.T) {
	h := newHarness(t, DefaultConfig(), "", threeLoaded())
	h.viewer.Render()

	reg := h.viewer.Registry()
	if !reg.At(0).Shown() {
		t.Fatal("page 1 is visible and should be shown")
	}
	// Page 2 is one page height below the viewport, within the preload
	// distance; page 3 is beyond it.
	if !reg.At(1).Shown() {
		t.Fatal("page 2 is nearly visible and should be shown")
	}
	if reg.At(2).Shown() {
		t.Fatal("page 3 is far offscreen and should stay hidden")
	}

	h.region.SetScroll(0, 2100)
	h.viewer.Render()
	if reg.At(0).Shown() {
		t.Fatal("page 1 should be hidden after scrolling away")
	}
	if !reg.At(2).Shown() {
		t.Fatal("page 3 should be shown after scrolling to it")
	}
}

func TestRenderTriggersLoadsForUnloadedPages(t *testing.T) {
	h := newHarness(t, DefaultConfig(), "", lazyFrame(1)+lazyFrame(2)+lazyFrame(3))
	h.fetcher.pages["p1.html"] = loadedFrame(1, "")
	h.fetcher.pages["p2.html"] = loadedFrame(2, "")
	h.fetcher.pages["p3.html"] = loadedFrame(3, "")

	h.viewer.Render()
	h.viewer.Wait()

	reg := h.viewer.Registry()
	for i := 0; i < 3; i++ {
		if !reg.At(i).Loaded() {
			t.Fatalf("page %d not loaded after render", i+1)
		}
	}

	h.viewer.Render()
	if !reg.At(0).Shown() || !reg.At(1).Shown() {
		t.Fatal("loaded nearby pages should be shown on the next pass")
	}
}

func TestFetchCompletionSchedulesRender(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RenderTimeoutMS = 5
	h := newHarness(t, cfg, "", lazyFrame(1)+lazyFrame(2)+lazyFrame(3))
	h.fetcher.pages["p1.html"] = loadedFrame(1, "")
	h.fetcher.pages["p2.html"] = loadedFrame(2, "")
	h.fetcher.pages["p3.html"] = loadedFrame(3, "")

	h.viewer.Render()
	h.viewer.Wait()

	// Each successful install schedules a coalescing render; without it
	// the fetched pages would stay blank until the next user event.
	deadline := time.Now().Add(2 * time.Second)
	for h.log.count("render pass") < 2 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if got := h.log.count("render pass"); got < 2 {
		t.Fatalf("render passes = %d, want a follow-up pass after the fetches", got)
	}
	reg := h.viewer.Registry()
	if !reg.At(0).Shown() || !reg.At(1).Shown() {
		t.Fatal("nearby pages must be shown without further input")
	}
	if reg.At(2).Shown() {
		t.Fatal("page 3 is far offscreen and should stay hidden")
	}
}

func TestScheduleRenderCoalescesBursts(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RenderTimeoutMS = 5
	h := newHarness(t, cfg, "", threeLoaded())

	for i := 0; i < 5; i++ {
		h.viewer.HandleScroll()
	}
	settle(h)
	// Give a stray second timer a chance to fire before counting.
	time.Sleep(20 * time.Millisecond)
	if got := h.log.count("render pass"); got != 1 {
		t.Fatalf("render passes = %d, want 1", got)
	}
}

func TestScheduleRenderYieldsToPendingTimer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RenderTimeoutMS = 5
	h := newHarness(t, cfg, "", threeLoaded())

	h.viewer.ScheduleRender(false)
	h.viewer.ScheduleRender(false)
	h.viewer.ScheduleRender(false)
	settle(h)
	time.Sleep(20 * time.Millisecond)
	if got := h.log.count("render pass"); got != 1 {
		t.Fatalf("render passes = %d, want 1", got)
	}

	// The timer slot is free again after firing.
	h.viewer.ScheduleRender(false)
	deadline := time.Now().Add(2 * time.Second)
	for h.log.count("render pass") < 2 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if got := h.log.count("render pass"); got != 2 {
		t.Fatalf("render passes = %d, want 2", got)
	}
}

func TestRenewSupersedesFiredTimer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RenderTimeoutMS = 1
	h := newHarness(t, cfg, "", threeLoaded())
	v := h.viewer

	// Arm a timer and let it fire while the lock is held, so its callback
	// is parked waiting for the mutex. The renewing schedule cannot stop
	// it, but the stale callback must yield to the fresh timer instead of
	// rendering and clearing the slot a second time.
	v.mu.Lock()
	v.scheduleRenderLocked(true)
	time.Sleep(20 * time.Millisecond)
	v.scheduleRenderLocked(true)
	v.mu.Unlock()

	settle(h)
	time.Sleep(20 * time.Millisecond)
	if got := h.log.count("render pass"); got != 1 {
		t.Fatalf("render passes = %d, want exactly 1", got)
	}
}

func TestRebuildPicksUpNewFrames(t *testing.T) {
	h := newHarness(t, DefaultConfig(), "", threeLoaded())
	if got := h.viewer.PageCount(); got != 3 {
		t.Fatalf("page count = %d, want 3", got)
	}

	frame, err := h.region.ParseFrame([]byte(loadedFrame(4, "")), "pf")
	if err != nil {
		t.Fatal(err)
	}
	h.region.PrependChild(frame)
	h.viewer.Rebuild()

	if got := h.viewer.PageCount(); got != 4 {
		t.Fatalf("page count after rebuild = %d, want 4", got)
	}
	if idx, ok := h.viewer.Registry().Lookup(4); !ok || idx != 0 {
		t.Fatalf("page 4 lookup = (%d, %v), want index 0", idx, ok)
	}
}
