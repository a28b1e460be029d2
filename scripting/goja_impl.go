package scripting

import (
	"context"

	"github.com/dop251/goja"
)

type GojaEngine struct {
	vm    *goja.Runtime
	alert func(string)
}

func NewEngine() *GojaEngine {
	vm := goja.New()
	return &GojaEngine{vm: vm}
}

// SetAlert installs the handler backing app.alert. Without one, alerts
// are dropped.
func (e *GojaEngine) SetAlert(fn func(string)) {
	e.alert = fn
}

func (e *GojaEngine) Execute(ctx context.Context, script string) (interface{}, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	done := make(chan struct{})
	defer close(done)
	defer e.vm.ClearInterrupt()

	go func() {
		select {
		case <-ctx.Done():
			e.vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	val, err := e.vm.RunString(script)
	if err != nil {
		if interruptedErr, ok := err.(*goja.InterruptedError); ok {
			if cause := interruptedErr.Unwrap(); cause != nil {
				return nil, cause
			}
			return nil, context.Canceled
		}
		return nil, err
	}
	return val.Export(), nil
}

func (e *GojaEngine) RegisterViewer(v ViewerAPI) error {
	// Expose 'app' object
	appObj := e.vm.NewObject()
	err := appObj.Set("alert", func(call goja.FunctionCall) goja.Value {
		msg := ""
		if len(call.Arguments) > 0 {
			msg = call.Arguments[0].String()
		}
		if e.alert != nil {
			e.alert(msg)
		}
		return goja.Undefined()
	})
	if err != nil {
		return err
	}
	e.vm.Set("app", appObj)

	viewerObj := e.vm.NewObject()

	if err := viewerObj.Set("zoom", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			return goja.Undefined()
		}
		ratio := call.Arguments[0].ToFloat()
		relative := len(call.Arguments) > 1 && call.Arguments[1].ToBoolean()
		v.Zoom(ratio, relative)
		return goja.Undefined()
	}); err != nil {
		return err
	}
	if err := viewerObj.Set("fitWidth", func(goja.FunctionCall) goja.Value {
		v.FitWidth()
		return goja.Undefined()
	}); err != nil {
		return err
	}
	if err := viewerObj.Set("fitHeight", func(goja.FunctionCall) goja.Value {
		v.FitHeight()
		return goja.Undefined()
	}); err != nil {
		return err
	}
	if err := viewerObj.Set("openSidebar", func(goja.FunctionCall) goja.Value {
		v.OpenSidebar()
		return goja.Undefined()
	}); err != nil {
		return err
	}
	if err := viewerObj.Set("closeSidebar", func(goja.FunctionCall) goja.Value {
		v.CloseSidebar()
		return goja.Undefined()
	}); err != nil {
		return err
	}

	// Live accessors so scripts always see the current state.
	viewerObj.DefineAccessorProperty("pageCount",
		e.vm.ToValue(func(goja.FunctionCall) goja.Value {
			return e.vm.ToValue(v.PageCount())
		}),
		nil,
		goja.FLAG_TRUE,
		goja.FLAG_TRUE,
	)
	viewerObj.DefineAccessorProperty("scale",
		e.vm.ToValue(func(goja.FunctionCall) goja.Value {
			return e.vm.ToValue(v.CurrentScale())
		}),
		nil,
		goja.FLAG_TRUE,
		goja.FLAG_TRUE,
	)

	return e.vm.Set("viewer", viewerObj)
}
