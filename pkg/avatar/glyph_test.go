package avatar

import (
	"testing"

	"github.com/matzehuels/facepile/pkg/errors"
	"github.com/matzehuels/facepile/pkg/size"
)

func TestInitial(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"ann", "A"},
		{"Bo", "B"},
		{"zoë", "Z"},
		{"élodie", "É"},
		{"e\u0301lodie", "E\u0301"},
		{"🦊 Fox", "🦊"},
		{"👩‍👩‍👧 family", "👩‍👩‍👧"},
		{"🇩🇪 team", "🇩🇪"},
		{"山田", "山"},
		{"ñandu", "Ñ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Initial(tt.name)
			if err != nil {
				t.Fatalf("Initial(%q): %v", tt.name, err)
			}
			if got != tt.want {
				t.Errorf("Initial(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestInitialEmpty(t *testing.T) {
	if _, err := Initial(""); !errors.Is(err, errors.ErrCodeInvalidName) {
		t.Errorf("Initial(\"\") err = %v, want INVALID_NAME", err)
	}
}

func TestQuadrantPadding(t *testing.T) {
	want := map[size.Class]float64{
		size.XS: 2,
		size.SM: 4,
		size.MD: 9,
		size.LG: 11,
		size.XL: 16,
	}
	for class, w := range want {
		got, err := QuadrantPadding(class)
		if err != nil {
			t.Fatalf("QuadrantPadding(%s): %v", class, err)
		}
		if got != w {
			t.Errorf("QuadrantPadding(%s) = %v, want %v", class, got, w)
		}
	}
}

func TestGlyphFontSize(t *testing.T) {
	want := map[size.Class]float64{
		size.XS: 10,
		size.SM: 16,
		size.MD: 28,
		size.LG: 45,
		size.XL: 53,
	}
	for class, w := range want {
		got, err := GlyphFontSize(class)
		if err != nil || got != w {
			t.Errorf("GlyphFontSize(%s) = %v, %v, want %v", class, got, err, w)
		}
	}
}

func TestRenderFallbackAlignment(t *testing.T) {
	tests := []struct {
		align       TextAlignment
		wantPadding float64
		wantV       string
		wantH       string
	}{
		{Center, 0, AnchorCenter, AnchorCenter},
		{TopLeft, 9, AnchorStart, AnchorStart},
		{BottomLeft, 9, AnchorEnd, AnchorStart},
	}

	for _, tt := range tests {
		t.Run(tt.align.String(), func(t *testing.T) {
			g, err := RenderFallback(53, "ann", tt.align, size.MD)
			if err != nil {
				t.Fatalf("RenderFallback: %v", err)
			}
			if g.Initial != "A" || g.Label != "ann" {
				t.Errorf("Initial/Label = %q/%q", g.Initial, g.Label)
			}
			if g.FontSize != 28 || g.LineHeight != 28 {
				t.Errorf("FontSize/LineHeight = %v/%v, want 28", g.FontSize, g.LineHeight)
			}
			if g.Height != 53 {
				t.Errorf("Height = %v, want 53", g.Height)
			}
			if g.Padding != tt.wantPadding {
				t.Errorf("Padding = %v, want %v", g.Padding, tt.wantPadding)
			}
			if g.VerticalAnchor() != tt.wantV || g.HorizontalAnchor() != tt.wantH {
				t.Errorf("anchors = %s/%s, want %s/%s", g.VerticalAnchor(), g.HorizontalAnchor(), tt.wantV, tt.wantH)
			}
			if g.Background != GlyphBackground || g.Foreground != GlyphForeground || !g.Bold {
				t.Errorf("unexpected colors: %+v", g)
			}
		})
	}
}

func TestRenderFallbackPreconditions(t *testing.T) {
	tests := []struct {
		name   string
		height float64
		who    string
		align  TextAlignment
		class  size.Class
		code   errors.Code
	}{
		{"empty name", 36, "", Center, size.XS, errors.ErrCodeInvalidName},
		{"unknown size", 36, "Ann", Center, size.Class("xxl"), errors.ErrCodeInvalidSize},
		{"unknown alignment", 36, "Ann", TextAlignment(7), size.XS, errors.ErrCodeInvalidAlignment},
		{"zero height", 0, "Ann", Center, size.XS, errors.ErrCodeInvalidFrame},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RenderFallback(tt.height, tt.who, tt.align, tt.class)
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %v", err, tt.code)
			}
		})
	}
}
