package tooltip

import (
	"testing"

	"github.com/matzehuels/facepile/pkg/errors"
	"github.com/matzehuels/facepile/pkg/size"
)

type recorder struct {
	shown []Flyout
}

func (r *recorder) Show(f Flyout) error {
	r.shown = append(r.shown, f)
	return nil
}

func TestRenderWithoutAnchor(t *testing.T) {
	if _, ok := Render(Props{Content: "hi"}); ok {
		t.Error("Render without anchor should produce nothing")
	}

	var r recorder
	if err := Show(&r, Props{Content: "hi"}); err != nil {
		t.Fatalf("Show: %v", err)
	}
	if len(r.shown) != 0 {
		t.Errorf("shown = %d, want 0", len(r.shown))
	}
}

type element struct{ id string }

func TestRenderNilAnchor(t *testing.T) {
	tests := []struct {
		name   string
		anchor Anchor
	}{
		{"nil pointer", (*element)(nil)},
		{"nil map", map[string]string(nil)},
		{"nil func", (func())(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := Render(Props{Anchor: tt.anchor, Content: "hi"}); ok {
				t.Errorf("Render(%T nil anchor) should produce nothing", tt.anchor)
			}
		})
	}

	if _, ok := Render(Props{Anchor: &element{id: "avatar"}}); !ok {
		t.Error("Render with a non-nil pointer anchor should produce a flyout")
	}
}

func TestRenderDefaults(t *testing.T) {
	f, ok := Render(Props{Anchor: "button", Content: "hi"})
	if !ok {
		t.Fatal("Render with anchor should produce a flyout")
	}
	if !f.PositionRelativeToAnchor {
		t.Error("PositionRelativeToAnchor should default to true")
	}
	if f.Size != size.MD {
		t.Errorf("Size = %q, want md", f.Size)
	}
	if f.BgColor != "darkGray" || f.Columns != 12 || f.Padding != 3 {
		t.Errorf("styling = %s/%d/%d", f.BgColor, f.Columns, f.Padding)
	}
}

func TestRenderPassesThrough(t *testing.T) {
	dismissed := false
	off := false
	f, ok := Render(Props{
		Anchor:                   "avatar",
		Content:                  "Ann, Bo",
		IdealDirection:           DirectionLeft,
		OnDismiss:                func() { dismissed = true },
		PositionRelativeToAnchor: &off,
		Size:                     size.XS,
	})
	if !ok {
		t.Fatal("expected flyout")
	}
	if f.Anchor != "avatar" || f.Content != "Ann, Bo" || f.IdealDirection != DirectionLeft || f.Size != size.XS {
		t.Errorf("flyout = %+v", f)
	}
	if f.PositionRelativeToAnchor {
		t.Error("explicit false should be kept")
	}
	f.OnDismiss()
	if !dismissed {
		t.Error("OnDismiss not forwarded")
	}
}

func TestShowValidates(t *testing.T) {
	var r recorder
	err := Show(&r, Props{Anchor: "a", IdealDirection: "diagonal"})
	if !errors.Is(err, errors.ErrCodeInvalidDirection) {
		t.Errorf("err = %v, want INVALID_DIRECTION", err)
	}
	err = Show(&r, Props{Anchor: "a", Size: "huge"})
	if !errors.Is(err, errors.ErrCodeInvalidSize) {
		t.Errorf("err = %v, want INVALID_SIZE", err)
	}
	if err := Show(&r, Props{Anchor: "a", IdealDirection: DirectionUp}); err != nil {
		t.Fatalf("Show: %v", err)
	}
	if len(r.shown) != 1 {
		t.Errorf("shown = %d, want 1", len(r.shown))
	}
}
