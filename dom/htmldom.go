package dom

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is the headless implementation, backed by an x/net/html tree.
// Box geometry comes from inline style declarations (width/height in px);
// page frames are laid out by stacking the container's children vertically.
// It is not safe for concurrent use; the viewer serializes access.
type Document struct {
	root        *html.Node
	elems       map[*html.Node]*elem
	regions     map[*html.Node]*ScrollRegion
	sizes       map[*html.Node]boxSize
	scales      map[*html.Node]float64
	scaleWrites map[*html.Node]int
}

type boxSize struct {
	w, h float64
}

// Parse reads a complete HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse: %w", err)
	}
	return &Document{
		root:        root,
		elems:       make(map[*html.Node]*elem),
		regions:     make(map[*html.Node]*ScrollRegion),
		sizes:       make(map[*html.Node]boxSize),
		scales:      make(map[*html.Node]float64),
		scaleWrites: make(map[*html.Node]int),
	}, nil
}

// ElementByID returns the element with the given id, or nil.
func (d *Document) ElementByID(id string) Node {
	n := findByID(d.root, id)
	if n == nil {
		return nil
	}
	return d.wrap(n)
}

// RegionByID returns the scroll container rooted at the element with the
// given id.
func (d *Document) RegionByID(id string) (*ScrollRegion, error) {
	n := findByID(d.root, id)
	if n == nil {
		return nil, fmt.Errorf("dom: no element with id %q", id)
	}
	if rg, ok := d.regions[n]; ok {
		return rg, nil
	}
	rg := &ScrollRegion{elem: d.wrap(n)}
	rg.clientW, _ = styleLength(n, "width")
	rg.clientH, _ = styleLength(n, "height")
	d.regions[n] = rg
	return rg, nil
}

// ScaleWrites reports how many scale transforms have been applied to n.
// Exists so callers can verify that redundant rescales are elided.
func (d *Document) ScaleWrites(n Node) int {
	e, ok := n.(*elem)
	if !ok {
		return 0
	}
	return d.scaleWrites[e.n]
}

func (d *Document) wrap(n *html.Node) *elem {
	if e, ok := d.elems[n]; ok {
		return e
	}
	e := &elem{d: d, n: n}
	d.elems[n] = e
	return e
}

type elem struct {
	d *Document
	n *html.Node
}

func (e *elem) Attr(name string) (string, bool) { return getAttr(e.n, name) }

func (e *elem) SetAttr(name, value string) { setAttr(e.n, name, value) }

func (e *elem) HasClass(name string) bool {
	cls, _ := getAttr(e.n, "class")
	for _, c := range strings.Fields(cls) {
		if c == name {
			return true
		}
	}
	return false
}

func (e *elem) AddClass(name string) {
	if e.HasClass(name) {
		return
	}
	cls, _ := getAttr(e.n, "class")
	setAttr(e.n, "class", strings.TrimSpace(cls+" "+name))
}

func (e *elem) RemoveClass(name string) {
	cls, _ := getAttr(e.n, "class")
	fields := strings.Fields(cls)
	kept := fields[:0]
	for _, c := range fields {
		if c != name {
			kept = append(kept, c)
		}
	}
	setAttr(e.n, "class", strings.Join(kept, " "))
}

// OffsetTop stacks the container's element children vertically; elements
// outside the container report zero. Good enough for a headless layout, and
// matches how the upstream renderer emits one frame per row.
func (e *elem) OffsetTop() float64 {
	parent := e.n.Parent
	if parent == nil || e.d.regions[parent] == nil {
		return 0
	}
	var top float64
	for c := parent.FirstChild; c != nil && c != e.n; c = c.NextSibling {
		if c.Type == html.ElementNode {
			top += e.d.wrap(c).Height()
		}
	}
	return top
}

func (e *elem) OffsetLeft() float64 { return 0 }

func (e *elem) Width() float64 {
	if sz, ok := e.d.sizes[e.n]; ok {
		return sz.w
	}
	w, _ := styleLength(e.n, "width")
	return w
}

func (e *elem) Height() float64 {
	if sz, ok := e.d.sizes[e.n]; ok {
		return sz.h
	}
	h, _ := styleLength(e.n, "height")
	return h
}

func (e *elem) SetFrameSize(w, h float64) {
	e.d.sizes[e.n] = boxSize{w: w, h: h}
	setStyle(e.n, "width", formatPx(w))
	setStyle(e.n, "height", formatPx(h))
}

func (e *elem) SetScale(ratio float64) {
	e.d.scales[e.n] = ratio
	e.d.scaleWrites[e.n]++
	setStyle(e.n, "transform", fmt.Sprintf("scale(%s)", strconv.FormatFloat(ratio, 'g', -1, 64)))
}

func (e *elem) ChildByClass(class string) Node {
	n := findByClass(e.n, class, false)
	if n == nil {
		return nil
	}
	return e.d.wrap(n)
}

func (e *elem) Closest(class string) Node {
	for n := e.n; n != nil; n = n.Parent {
		if n.Type != html.ElementNode {
			continue
		}
		w := e.d.wrap(n)
		if w.HasClass(class) {
			return w
		}
	}
	return nil
}

func (e *elem) PrependChild(n Node) {
	child := n.(*elem)
	if e.n.FirstChild != nil {
		e.n.InsertBefore(child.n, e.n.FirstChild)
		return
	}
	e.n.AppendChild(child.n)
}

func (e *elem) RemoveChild(n Node) {
	child := n.(*elem)
	if child.n.Parent == e.n {
		e.n.RemoveChild(child.n)
	}
}

// ScrollRegion is the headless scroll container.
type ScrollRegion struct {
	*elem
	scrollLeft, scrollTop float64
	clientW, clientH      float64
}

func (r *ScrollRegion) ScrollLeft() float64 { return r.scrollLeft }
func (r *ScrollRegion) ScrollTop() float64  { return r.scrollTop }

func (r *ScrollRegion) SetScroll(left, top float64) {
	r.scrollLeft = left
	r.scrollTop = top
}

func (r *ScrollRegion) ClientWidth() float64  { return r.clientW }
func (r *ScrollRegion) ClientHeight() float64 { return r.clientH }

func (r *ScrollRegion) ScrollHeight() float64 {
	var h float64
	for c := r.n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			h += r.d.wrap(c).Height()
		}
	}
	if h < r.clientH {
		return r.clientH
	}
	return h
}

// SetClientSize overrides the visible area, for embedders whose container
// has no inline dimensions.
func (r *ScrollRegion) SetClientSize(w, h float64) {
	r.clientW = w
	r.clientH = h
}

func (r *ScrollRegion) Frames(frameClass string) []Node {
	var frames []Node
	for c := r.n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		e := r.d.wrap(c)
		if e.HasClass(frameClass) {
			frames = append(frames, e)
		}
	}
	return frames
}

func (r *ScrollRegion) Replace(old, replacement Node) {
	o := old.(*elem)
	repl := replacement.(*elem)
	if o.n.Parent != r.n {
		return
	}
	r.n.InsertBefore(repl.n, o.n)
	r.n.RemoveChild(o.n)
}

func (r *ScrollRegion) CreateElement(tag, class string) Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	if class != "" {
		setAttr(n, "class", class)
	}
	return r.d.wrap(n)
}

var errNoFrame = errors.New("dom: fragment contains no page frame")

func (r *ScrollRegion) ParseFrame(markup []byte, frameClass string) (Node, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(bytes.NewReader(markup), ctx)
	if err != nil {
		return nil, fmt.Errorf("dom: parse fragment: %w", err)
	}
	for _, n := range nodes {
		found := findByClass(n, frameClass, true)
		if found == nil {
			continue
		}
		if found.Parent != nil {
			found.Parent.RemoveChild(found)
		}
		return r.d.wrap(found), nil
	}
	return nil, errNoFrame
}

// tree helpers

func findByID(root *html.Node, id string) *html.Node {
	if root.Type == html.ElementNode {
		if v, ok := getAttr(root, "id"); ok && v == id {
			return root
		}
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if n := findByID(c, id); n != nil {
			return n
		}
	}
	return nil
}

func findByClass(root *html.Node, class string, includeSelf bool) *html.Node {
	if includeSelf && root.Type == html.ElementNode {
		cls, _ := getAttr(root, "class")
		for _, c := range strings.Fields(cls) {
			if c == class {
				return root
			}
		}
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if n := findByClass(c, class, true); n != nil {
			return n
		}
	}
	return nil
}

func getAttr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, name, value string) {
	for i, a := range n.Attr {
		if a.Key == name {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

// styleLength reads a pixel length out of an inline style declaration.
func styleLength(n *html.Node, prop string) (float64, bool) {
	style, ok := getAttr(n, "style")
	if !ok {
		return 0, false
	}
	for _, decl := range strings.Split(style, ";") {
		k, v, found := strings.Cut(decl, ":")
		if !found || strings.TrimSpace(k) != prop {
			continue
		}
		v = strings.TrimSuffix(strings.TrimSpace(v), "px")
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func setStyle(n *html.Node, prop, value string) {
	style, _ := getAttr(n, "style")
	var decls []string
	for _, decl := range strings.Split(style, ";") {
		k, _, found := strings.Cut(decl, ":")
		if !found || strings.TrimSpace(k) == prop {
			continue
		}
		decls = append(decls, strings.TrimSpace(decl))
	}
	decls = append(decls, prop+": "+value)
	setAttr(n, "style", strings.Join(decls, "; "))
}

func formatPx(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}
