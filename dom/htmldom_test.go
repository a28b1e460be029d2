package dom

import (
	"strings"
	"testing"
)

var (
	_ Node      = (*elem)(nil)
	_ Container = (*ScrollRegion)(nil)
)

const sampleDoc = `<html><body>
<div id="sidebar"><div id="outline"></div></div>
<div id="page-container" style="width: 900px; height: 600px">
<div class="pf" data-page-no="1" style="width: 612px; height: 792px">
<div class="pc"><div class="pi" data-data='{"ctm":[1,0,0,1,0,0]}'></div></div>
</div>
<div class="pf" data-page-no="2" data-page-url="page2.html" style="width: 612px; height: 792px"></div>
<div class="pf" data-page-no="3" data-page-url="page3.html" style="width: 612px; height: 792px"></div>
</div>
</body></html>`

func parseSample(t *testing.T) (*Document, *ScrollRegion) {
	t.Helper()
	doc, err := Parse(strings.NewReader(sampleDoc))
	if err != nil {
		t.Fatal(err)
	}
	region, err := doc.RegionByID("page-container")
	if err != nil {
		t.Fatal(err)
	}
	return doc, region
}

func TestRegionGeometry(t *testing.T) {
	_, region := parseSample(t)
	if w, h := region.ClientWidth(), region.ClientHeight(); w != 900 || h != 600 {
		t.Fatalf("client size = %v x %v, want 900 x 600", w, h)
	}
	frames := region.Frames("pf")
	if len(frames) != 3 {
		t.Fatalf("got %d frames, want 3", len(frames))
	}
	for i, want := range []float64{0, 792, 1584} {
		if got := frames[i].OffsetTop(); got != want {
			t.Errorf("frame %d offset top = %v, want %v", i, got, want)
		}
	}
}

func TestFrameSizeAffectsStacking(t *testing.T) {
	_, region := parseSample(t)
	frames := region.Frames("pf")
	frames[0].SetFrameSize(306, 396)
	if got := frames[1].OffsetTop(); got != 396 {
		t.Fatalf("offset top after resize = %v, want 396", got)
	}
}

func TestClassToggling(t *testing.T) {
	_, region := parseSample(t)
	frame := region.Frames("pf")[0]
	pc := frame.ChildByClass("pc")
	if pc == nil {
		t.Fatal("content box not found")
	}
	if pc.HasClass("opened") {
		t.Fatal("content box should start closed")
	}
	pc.AddClass("opened")
	pc.AddClass("opened")
	if !pc.HasClass("opened") {
		t.Fatal("AddClass had no effect")
	}
	pc.RemoveClass("opened")
	if pc.HasClass("opened") {
		t.Fatal("RemoveClass had no effect")
	}
	if !pc.HasClass("pc") {
		t.Fatal("RemoveClass dropped an unrelated class")
	}
}

func TestScaleWrites(t *testing.T) {
	doc, region := parseSample(t)
	frame := region.Frames("pf")[0]
	pc := frame.ChildByClass("pc")
	pc.SetScale(1.5)
	pc.SetScale(1.5)
	if got := doc.ScaleWrites(pc); got != 2 {
		t.Fatalf("scale writes = %d, want 2 (implementation applies every call)", got)
	}
	if v, _ := pc.Attr("style"); !strings.Contains(v, "scale(1.5)") {
		t.Fatalf("style = %q, want scale(1.5)", v)
	}
}

func TestParseFrameAndReplace(t *testing.T) {
	_, region := parseSample(t)
	frames := region.Frames("pf")
	fragment := `<div class="pf" data-page-no="2" style="width: 612px; height: 792px">` +
		`<div class="pc"><div class="pi" data-data='{"ctm":[1,0,0,1,0,0]}'></div></div></div>`
	repl, err := region.ParseFrame([]byte(fragment), "pf")
	if err != nil {
		t.Fatal(err)
	}
	region.Replace(frames[1], repl)
	after := region.Frames("pf")
	if len(after) != 3 {
		t.Fatalf("got %d frames after replace, want 3", len(after))
	}
	if after[1].ChildByClass("pc") == nil {
		t.Fatal("replacement frame lost its content box")
	}
	if no, _ := after[1].Attr("data-page-no"); no != "2" {
		t.Fatalf("replacement page number = %q, want 2", no)
	}
}

func TestParseFrameRejectsFramelessMarkup(t *testing.T) {
	_, region := parseSample(t)
	if _, err := region.ParseFrame([]byte(`<div class="error">boom</div>`), "pf"); err == nil {
		t.Fatal("expected an error for markup without a page frame")
	}
}

func TestPrependAndRemoveChild(t *testing.T) {
	_, region := parseSample(t)
	frame := region.Frames("pf")[1]
	ind := region.CreateElement("div", "loading-indicator")
	frame.PrependChild(ind)
	if frame.ChildByClass("loading-indicator") == nil {
		t.Fatal("indicator not inserted")
	}
	frame.RemoveChild(ind)
	if frame.ChildByClass("loading-indicator") != nil {
		t.Fatal("indicator not removed")
	}
}

func TestClosest(t *testing.T) {
	_, region := parseSample(t)
	frame := region.Frames("pf")[0]
	pi := frame.ChildByClass("pi")
	got := pi.Closest("pf")
	if got == nil {
		t.Fatal("Closest did not find the enclosing frame")
	}
	if no, _ := got.Attr("data-page-no"); no != "1" {
		t.Fatalf("closest frame = page %q, want 1", no)
	}
	if pi.Closest("nope") != nil {
		t.Fatal("Closest found something for an absent class")
	}
}

func TestScrollHeight(t *testing.T) {
	_, region := parseSample(t)
	if got := region.ScrollHeight(); got != 3*792 {
		t.Fatalf("scroll height = %v, want %v", got, 3*792)
	}
}

func TestElementByID(t *testing.T) {
	doc, _ := parseSample(t)
	if doc.ElementByID("sidebar") == nil {
		t.Fatal("sidebar not found")
	}
	if doc.ElementByID("nope") != nil {
		t.Fatal("unexpected element")
	}
}
