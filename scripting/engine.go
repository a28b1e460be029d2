package scripting

import (
	"context"
)

// Engine represents a scripting engine (e.g., JavaScript).
type Engine interface {
	// Execute executes a script against the registered viewer.
	Execute(ctx context.Context, script string) (interface{}, error)

	// RegisterViewer exposes the viewer's control surface to scripts.
	RegisterViewer(v ViewerAPI) error
}

// ViewerAPI is the controlled surface scripts may drive. It is satisfied
// by the viewer controller; embedders can wrap it to restrict or audit
// script access.
type ViewerAPI interface {
	// Zoom changes the global scale; relative multiplies the current
	// scale, otherwise the value replaces it (zero resets to 1).
	Zoom(ratio float64, relative bool)

	// FitWidth and FitHeight scale the active page to the viewport.
	FitWidth()
	FitHeight()

	// PageCount is the number of page frames in the document.
	PageCount() int

	// CurrentScale is the scale applied to all pages.
	CurrentScale() float64

	// OpenSidebar and CloseSidebar toggle the outline sidebar.
	OpenSidebar()
	CloseSidebar()
}
