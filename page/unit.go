// Package page models a single page of a paginated document and the ordered
// registry of all pages. A page frame exists in the DOM before its content
// does; units therefore answer geometry and visibility queries in every
// state.
package page

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/docview/pagekit/coords"
	"github.com/docview/pagekit/dom"
)

// Markup names the tagged elements and attributes of the page contract.
type Markup struct {
	Frame      string // outer placeholder element class
	ContentBox string // inner element holding the rendered content
	PageData   string // element carrying the per-page metadata blob
	Opened     string // class toggled by Show/Hide
	NumberAttr string // hex-encoded page number attribute
	SourceAttr string // fragment URL attribute for lazy loading
	DataAttr   string // attribute on the page-data element holding JSON
}

// DefaultMarkup matches the classes emitted by the upstream renderer.
func DefaultMarkup() Markup {
	return Markup{
		Frame:      "pf",
		ContentBox: "pc",
		PageData:   "pi",
		Opened:     "opened",
		NumberAttr: "data-page-no",
		SourceAttr: "data-page-url",
		DataAttr:   "data-data",
	}
}

// rescaleEPS guards content redraws: re-applying an unchanged ratio must not
// touch the DOM.
const rescaleEPS = 1e-6

// NearbyFactor widens the visibility test by this many page heights on each
// side. The page's own height stands in for neighbor geometry, which is not
// cheaply available.
var NearbyFactor = 2.0

var (
	ErrNoPageData   = errors.New("page: missing or malformed page data")
	ErrNoContentBox = errors.New("page: missing content box")
)

// Unit is one page: its frame node, geometry, scale state and coordinate
// transform. Identity is the page number assigned by the upstream renderer;
// numbers are stable across node replacement but not necessarily contiguous.
type Unit struct {
	container dom.Container
	frame     dom.Node
	content   dom.Node
	markup    Markup

	number int
	loaded bool
	shown  bool

	// Geometry at scale 1.0, captured before any content loads.
	originalWidth  float64
	originalHeight float64

	// defaultRatio is baked into the delivered content by the renderer,
	// setRatio is the last ratio requested, curRatio the one applied to
	// the DOM. Kept distinct so redundant rescales are no-ops.
	defaultRatio float64
	setRatio     float64
	curRatio     float64

	ctm  coords.Matrix
	ictm coords.Matrix
}

// New wraps a page frame. The unit starts unloaded; call Load once the
// frame's content is present.
func New(c dom.Container, frame dom.Node, m Markup) *Unit {
	u := &Unit{
		container:    c,
		frame:        frame,
		markup:       m,
		defaultRatio: 1,
		setRatio:     1,
		curRatio:     1,
	}
	if v, ok := frame.Attr(m.NumberAttr); ok {
		if n, err := strconv.ParseInt(v, 16, 32); err == nil {
			u.number = int(n)
		}
	}
	u.originalWidth = frame.Width()
	u.originalHeight = frame.Height()
	return u
}

type pageData struct {
	CTM []float64 `json:"ctm"`
}

// Load parses the embedded metadata blob and content box. On failure the
// unit stays unloaded for the lifetime of this DOM node; replacing the node
// is the only retry path.
func (u *Unit) Load() error {
	if u.loaded {
		return nil
	}
	meta := u.frame.ChildByClass(u.markup.PageData)
	if meta == nil {
		return ErrNoPageData
	}
	payload, ok := meta.Attr(u.markup.DataAttr)
	if !ok {
		return ErrNoPageData
	}
	var data pageData
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return fmt.Errorf("%w: %v", ErrNoPageData, err)
	}
	if len(data.CTM) != 6 {
		return fmt.Errorf("%w: ctm has %d entries", ErrNoPageData, len(data.CTM))
	}
	content := u.frame.ChildByClass(u.markup.ContentBox)
	if content == nil {
		return ErrNoContentBox
	}
	ch := content.Height()
	if ch <= 0 {
		return fmt.Errorf("%w: content box has no height", ErrNoContentBox)
	}

	copy(u.ctm[:], data.CTM)
	ictm, err := u.ctm.Inverse()
	if err != nil {
		// A degenerate transform must not break the render loop; position
		// queries on this page become best effort.
		ictm = coords.Identity()
	}
	u.ictm = ictm
	u.content = content
	u.defaultRatio = u.originalHeight / ch
	u.setRatio = u.defaultRatio
	u.curRatio = u.defaultRatio
	u.loaded = true
	return nil
}

// Show opens the content box. No-op when unloaded or already shown.
func (u *Unit) Show() {
	if !u.loaded || u.shown {
		return
	}
	u.content.AddClass(u.markup.Opened)
	u.shown = true
}

// Hide closes the content box. No-op when unloaded.
func (u *Unit) Hide() {
	if !u.loaded {
		return
	}
	u.content.RemoveClass(u.markup.Opened)
	u.shown = false
}

// Rescale sets the requested absolute ratio; zero resets to the ratio the
// content was delivered at. The content transform is rewritten only when the
// ratio actually changes, but the outer frame tracks every call, since frame
// size must stay consistent with the requested ratio even when the redraw is
// skipped.
func (u *Unit) Rescale(ratio float64) {
	if ratio == 0 {
		u.setRatio = u.defaultRatio
	} else {
		u.setRatio = ratio
	}
	if math.Abs(u.setRatio-u.curRatio) > rescaleEPS {
		u.curRatio = u.setRatio
		if u.loaded {
			u.content.SetScale(u.curRatio / u.defaultRatio)
		}
	}
	u.frame.SetFrameSize(u.originalWidth*u.setRatio, u.originalHeight*u.setRatio)
}

// Position is the page origin expressed as distance already scrolled past
// it. Assumes no transformed ancestors between the frame and its container.
func (u *Unit) Position() coords.Point {
	return coords.Point{
		X: u.container.ScrollLeft() - u.frame.OffsetLeft(),
		Y: u.container.ScrollTop() - u.frame.OffsetTop(),
	}
}

// IsVisible reports whether any part of the page is inside the container's
// visible scroll region.
func (u *Unit) IsVisible() bool {
	y := u.Position().Y
	return !(y > u.frame.Height() || y+u.container.ClientHeight() < 0)
}

// IsNearlyVisible widens IsVisible by NearbyFactor page heights. Used for
// prefetch and layout decisions; the stricter IsVisible picks the active
// page.
func (u *Unit) IsNearlyVisible() bool {
	y := u.Position().Y
	h := u.frame.Height()
	return !(y > h*NearbyFactor || y+u.container.ClientHeight()+h < 0)
}

func (u *Unit) Number() int  { return u.number }
func (u *Unit) Loaded() bool { return u.loaded }
func (u *Unit) Shown() bool  { return u.shown }

func (u *Unit) Frame() dom.Node { return u.frame }

func (u *Unit) OriginalWidth() float64  { return u.originalWidth }
func (u *Unit) OriginalHeight() float64 { return u.originalHeight }

// CurrentRatio is the ratio applied to the DOM content.
func (u *Unit) CurrentRatio() float64 { return u.curRatio }

// RequestedRatio is the last ratio asked of Rescale.
func (u *Unit) RequestedRatio() float64 { return u.setRatio }

// DefaultRatio is the ratio baked into the delivered content.
func (u *Unit) DefaultRatio() float64 { return u.defaultRatio }

func (u *Unit) CTM() coords.Matrix  { return u.ctm }
func (u *Unit) ICTM() coords.Matrix { return u.ictm }
