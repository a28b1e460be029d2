// Package dom defines the narrow slice of a rendered document tree that the
// viewer needs: attributes, class toggling, box geometry, scroll offsets and
// structural edits on page frames. The browser (or any other rendering
// surface) sits behind these interfaces; a headless implementation backed by
// golang.org/x/net/html ships in this package for server-side use and tests.
package dom

// Node is a single element of the document tree.
type Node interface {
	// Attr returns the value of the named attribute, if present.
	Attr(name string) (string, bool)
	SetAttr(name, value string)

	HasClass(name string) bool
	AddClass(name string)
	RemoveClass(name string)

	// Offsets are relative to the scroll container, in screen pixels.
	// Geometry is valid for page frames even before their content loads:
	// a placeholder frame has known dimensions.
	OffsetLeft() float64
	OffsetTop() float64
	Width() float64
	Height() float64

	// SetFrameSize resizes the element's outer box.
	SetFrameSize(w, h float64)

	// SetScale applies a scale transform to the element's content. Callers
	// are expected to elide writes that would not change the effective
	// scale; the implementation applies every call it receives.
	SetScale(ratio float64)

	// ChildByClass returns the first descendant carrying the class, or nil.
	ChildByClass(class string) Node

	// Closest returns the nearest ancestor (or the node itself) carrying
	// the class, or nil.
	Closest(class string) Node

	PrependChild(n Node)
	RemoveChild(n Node)
}

// Container is the scrollable element holding the page frames.
type Container interface {
	ScrollLeft() float64
	ScrollTop() float64
	SetScroll(left, top float64)

	ClientWidth() float64
	ClientHeight() float64

	// ScrollHeight is the total height of the scrollable content.
	ScrollHeight() float64

	// Frames returns the immediate children tagged with the page-frame
	// class, in document order.
	Frames(frameClass string) []Node

	// Replace swaps an immediate child for a replacement node parsed from
	// the same document.
	Replace(old, replacement Node)

	// CreateElement makes a detached element owned by the same document,
	// for use with PrependChild.
	CreateElement(tag, class string) Node

	// ParseFrame extracts the single page-frame element from fetched
	// fragment markup.
	ParseFrame(markup []byte, frameClass string) (Node, error)
}
