package page

import "testing"

func TestRebuildScansFramesInOrder(t *testing.T) {
	_, region := buildRegion(t,
		loadedFrame+
			`<div class="pf" data-page-no="5" data-page-url="p5.html" style="height: 792px"></div>`+
			`<div class="not-a-page"></div>`+
			`<div class="pf" data-page-no="c" data-page-url="p12.html" style="height: 792px"></div>`)
	r := NewRegistry(region, DefaultMarkup())
	if r.Len() != 3 {
		t.Fatalf("len = %d, want 3", r.Len())
	}
	if !r.At(0).Loaded() {
		t.Error("frame with embedded content should come up loaded")
	}
	if r.At(1).Loaded() || r.At(2).Loaded() {
		t.Error("placeholders must stay unloaded")
	}
	// Page numbers are not contiguous; the hex attribute drives the map.
	for number, want := range map[int]int{1: 0, 5: 1, 12: 2} {
		if i, ok := r.Lookup(number); !ok || i != want {
			t.Errorf("Lookup(%d) = %d, %v; want %d, true", number, i, ok, want)
		}
	}
	if _, ok := r.Lookup(99); ok {
		t.Error("dangling page number must miss, not error")
	}
}

func TestSwapKeepsNumberMapping(t *testing.T) {
	_, region := buildRegion(t,
		`<div class="pf" data-page-no="1" data-page-url="p1.html" style="height: 792px"></div>`+
			`<div class="pf" data-page-no="2" data-page-url="p2.html" style="height: 792px"></div>`)
	r := NewRegistry(region, DefaultMarkup())

	repl, err := region.ParseFrame([]byte(loadedFrame), "pf")
	if err != nil {
		t.Fatal(err)
	}
	old := r.At(0)
	region.Replace(old.Frame(), repl)
	u := New(region, repl, DefaultMarkup())
	if err := u.Load(); err != nil {
		t.Fatal(err)
	}
	r.Swap(0, u)

	if got := r.At(0); got != u {
		t.Fatal("Swap did not install the new unit")
	}
	if i, ok := r.Lookup(u.Number()); !ok || i != 0 {
		t.Fatalf("Lookup(%d) = %d, %v after swap; want 0, true", u.Number(), i, ok)
	}
	r.Swap(7, u) // out of range is a no-op
	if r.Len() != 2 {
		t.Fatal("out-of-range swap changed the registry")
	}
}
