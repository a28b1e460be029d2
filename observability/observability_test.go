package observability

import (
	"context"
	"errors"
	"testing"
)

func TestFields(t *testing.T) {
	err := errors.New("boom")
	cases := []struct {
		f    Field
		key  string
		want interface{}
	}{
		{String("url", "page2.html"), "url", "page2.html"},
		{Int("index", 3), "index", 3},
		{Float64("scale", 1.5), "scale", 1.5},
		{Error("err", err), "err", err},
	}
	for _, c := range cases {
		if c.f.Key() != c.key || c.f.Value() != c.want {
			t.Errorf("field %q = %v, want %v", c.f.Key(), c.f.Value(), c.want)
		}
	}
}

func TestNopTracer(t *testing.T) {
	tracer := NopTracer()
	ctx := context.Background()
	ctx2, span := tracer.StartSpan(ctx, "test")
	if ctx2 != ctx {
		t.Fatalf("nop tracer should return same context")
	}
	span.SetTag("key", "value")
	span.SetError(nil)
	span.Finish()
}
