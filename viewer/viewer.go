// Package viewer orchestrates the paginated document: zoom with scroll
// anchoring, fit-to-width/height, debounced rendering, lazy loading and the
// cross-page navigation protocol. All state mutation is serialized behind
// the viewer's mutex, which stands in for the browser's single-threaded
// event loop; fetch completions and timer callbacks re-enter through it.
package viewer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/docview/pagekit/coords"
	"github.com/docview/pagekit/dom"
	"github.com/docview/pagekit/loader"
	"github.com/docview/pagekit/observability"
	"github.com/docview/pagekit/page"
)

// Config is the viewer's externally tunable surface. All fields have
// working defaults; see DefaultConfig.
type Config struct {
	ContainerID           string  `koanf:"container_id" json:"container_id"`
	SidebarID             string  `koanf:"sidebar_id" json:"sidebar_id"`
	OutlineID             string  `koanf:"outline_id" json:"outline_id"`
	LoadingIndicatorClass string  `koanf:"loading_indicator_class" json:"loading_indicator_class"`
	PreloadPages          int     `koanf:"preload_pages" json:"preload_pages"`
	RenderTimeoutMS       int     `koanf:"render_timeout_ms" json:"render_timeout_ms"`
	ScaleStep             float64 `koanf:"scale_step" json:"scale_step"`
	KeyHandler            bool    `koanf:"key_handler" json:"key_handler"`
}

func DefaultConfig() Config {
	return Config{
		ContainerID:           "page-container",
		SidebarID:             "sidebar",
		OutlineID:             "outline",
		LoadingIndicatorClass: "loading-indicator",
		PreloadPages:          3,
		RenderTimeoutMS:       100,
		ScaleStep:             0.9,
		KeyHandler:            true,
	}
}

// destAttr carries the JSON-encoded destination array on link elements.
const destAttr = "data-dest-detail"

// linkClass tags clickable destination elements.
const linkClass = "l"

// Option configures a Viewer.
type Option func(*Viewer)

// WithDocument binds the viewer to a headless document; the container,
// sidebar and outline are resolved from the configured element ids.
func WithDocument(doc *dom.Document) Option {
	return func(v *Viewer) { v.doc = doc }
}

// WithContainer binds the viewer to an explicit scroll container,
// bypassing id resolution.
func WithContainer(c dom.Container) Option {
	return func(v *Viewer) { v.container = c }
}

// WithSidebar binds the sidebar element the viewer toggles open/closed.
func WithSidebar(n dom.Node) Option {
	return func(v *Viewer) { v.sidebar = n }
}

// WithOutline binds the outline element used to decide the sidebar's
// initial state.
func WithOutline(n dom.Node) Option {
	return func(v *Viewer) { v.outline = n }
}

// WithFetcher sets the fragment fetcher; the default fetches over HTTP.
func WithFetcher(f loader.Fetcher) Option {
	return func(v *Viewer) { v.fetcher = f }
}

// WithMarkup overrides the page markup contract.
func WithMarkup(m page.Markup) Option {
	return func(v *Viewer) { v.markup = m }
}

func WithLogger(l observability.Logger) Option {
	return func(v *Viewer) { v.log = l }
}

func WithTracer(tr observability.Tracer) Option {
	return func(v *Viewer) { v.tracer = tr }
}

// WithContext sets the context governing fetches started by scheduled
// renders; cancel it to stop background loading on teardown.
func WithContext(ctx context.Context) Option {
	return func(v *Viewer) { v.ctx = ctx }
}

// Viewer is the top-level controller.
type Viewer struct {
	cfg    Config
	markup page.Markup

	doc       *dom.Document
	container dom.Container
	sidebar   dom.Node
	outline   dom.Node

	fetcher loader.Fetcher
	log     observability.Logger
	tracer  observability.Tracer
	ctx     context.Context

	mu          sync.Mutex
	registry    *page.Registry
	loader      *loader.Loader
	scale       float64
	renderTimer *time.Timer
	renderGen   uint64
}

// New builds a viewer bound to cfg. Either WithDocument or WithContainer
// must be supplied. The initial render is left to the caller: call Render
// (or ScheduleRender) once ready.
func New(cfg Config, opts ...Option) (*Viewer, error) {
	v := &Viewer{
		cfg:    cfg,
		markup: page.DefaultMarkup(),
		log:    observability.NopLogger{},
		tracer: observability.NopTracer(),
		ctx:    context.Background(),
		scale:  1,
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.container == nil {
		if v.doc == nil {
			return nil, errors.New("viewer: no container; use WithDocument or WithContainer")
		}
		region, err := v.doc.RegionByID(cfg.ContainerID)
		if err != nil {
			return nil, err
		}
		v.container = region
	}
	if v.doc != nil {
		if v.sidebar == nil {
			v.sidebar = v.doc.ElementByID(cfg.SidebarID)
		}
		if v.outline == nil {
			v.outline = v.doc.ElementByID(cfg.OutlineID)
		}
	}

	v.registry = page.NewRegistry(v.container, v.markup)
	v.loader = loader.New(loader.Config{
		Container:      v.container,
		Registry:       v.registry,
		Fetcher:        v.fetcher,
		IndicatorClass: cfg.LoadingIndicatorClass,
		PreloadPages:   cfg.PreloadPages,
		Scale:          func() float64 { return v.scale },
		Commit: func(fn func()) {
			v.mu.Lock()
			defer v.mu.Unlock()
			fn()
		},
		// Runs inside Commit, so the lock is already held.
		Schedule: func() { v.scheduleRenderLocked(false) },
		Logger: v.log,
		Tracer: v.tracer,
	})

	// A sidebar with no outline content stays closed.
	if v.sidebar != nil && v.outline != nil && v.outline.ChildByClass(linkClass) != nil {
		v.sidebar.AddClass(v.markup.Opened)
	}
	return v, nil
}

// Registry exposes the page registry for collaborators and tests.
func (v *Viewer) Registry() *page.Registry { return v.registry }

// CurrentScale is the global scale applied to all pages.
func (v *Viewer) CurrentScale() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.scale
}

// PageCount is the number of page frames in the document.
func (v *Viewer) PageCount() int { return v.registry.Len() }

// Wait blocks until in-flight page fetches have settled.
func (v *Viewer) Wait() { v.loader.Wait() }

// ActivePage is the first page, in document order, currently visible in the
// scroll container; nil when nothing is visible.
func (v *Viewer) ActivePage() *page.Unit {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, u := v.activePageLocked()
	return u
}

func (v *Viewer) activePageLocked() (int, *page.Unit) {
	for i, u := range v.registry.Units() {
		if u.IsVisible() {
			return i, u
		}
	}
	return -1, nil
}

// Rescale changes the global scale. ratio zero forces absolute scale 1;
// otherwise the scale is multiplied (relative) or replaced. The currently
// active page's top-left stays fixed modulo the supplied offsets, and the
// horizontal view center tracks the scale change proportionally. With no
// page visible there is nothing to anchor on and the call is a no-op.
func (v *Viewer) Rescale(ratio float64, relative bool, offsetX, offsetY float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.rescaleLocked(ratio, relative, offsetX, offsetY)
}

// Zoom is programmatic zoom without an anchor offset.
func (v *Viewer) Zoom(ratio float64, relative bool) {
	v.Rescale(ratio, relative, 0, 0)
}

func (v *Viewer) rescaleLocked(ratio float64, relative bool, offsetX, offsetY float64) {
	_, active := v.activePageLocked()
	if active == nil {
		// Nothing visible to anchor on; the scale stays as it was.
		return
	}

	oldScale := v.scale
	switch {
	case ratio == 0:
		v.scale = 1
	case relative:
		v.scale *= ratio
	default:
		v.scale = ratio
	}

	frame := active.Frame()
	prevLeft, prevTop := frame.OffsetLeft(), frame.OffsetTop()

	for _, u := range v.registry.Units() {
		u.Rescale(v.scale)
	}

	// Keep the active page's top edge fixed, modulo the caller's offset.
	scrollTop := v.container.ScrollTop() + (frame.OffsetTop() - prevTop) + offsetY

	// The horizontal center of the view scales with the ratio change.
	prevCenterX := v.container.ClientWidth()/2 + v.container.ScrollLeft() - prevLeft
	correction := prevCenterX*(v.scale/oldScale-1) + frame.OffsetLeft() - prevLeft
	scrollLeft := v.container.ScrollLeft() + correction + offsetX

	v.container.SetScroll(scrollLeft, scrollTop)
	v.log.Debug("rescaled", observability.Float64(observability.MetricScale, v.scale))
	v.scheduleRenderLocked(true)
}

// FitWidth scales so the active page's width fills the container, then
// scrolls to that page's top-left.
func (v *Viewer) FitWidth() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.fitLocked(true)
}

// FitHeight scales so the active page's height fills the container, then
// scrolls to that page's top-left.
func (v *Viewer) FitHeight() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.fitLocked(false)
}

func (v *Viewer) fitLocked(horizontal bool) {
	idx, active := v.activePageLocked()
	if active == nil {
		return
	}
	var scale float64
	if horizontal {
		scale = v.container.ClientWidth() / active.OriginalWidth()
	} else {
		scale = v.container.ClientHeight() / active.OriginalHeight()
	}
	v.rescaleLocked(scale, false, 0, 0)
	v.scrollToLocked(idx, coords.Point{})
}

// ScrollTo aligns the page-local position pos with the container's
// top-left. The adjustment is the delta against the page's current
// position, so it composes with scrolling that happened in between.
func (v *Viewer) ScrollTo(index int, pos coords.Point) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.scrollToLocked(index, pos)
}

func (v *Viewer) scrollToLocked(index int, pos coords.Point) {
	u := v.registry.At(index)
	if u == nil {
		return
	}
	cur := u.Position()
	v.container.SetScroll(
		v.container.ScrollLeft()+pos.X-cur.X,
		v.container.ScrollTop()+pos.Y-cur.Y,
	)
}

// OpenSidebar and CloseSidebar emit the sidebar's open/closed state; the
// widget itself is external.
func (v *Viewer) OpenSidebar() {
	if v.sidebar != nil {
		v.sidebar.AddClass(v.markup.Opened)
	}
}

func (v *Viewer) CloseSidebar() {
	if v.sidebar != nil {
		v.sidebar.RemoveClass(v.markup.Opened)
	}
}
