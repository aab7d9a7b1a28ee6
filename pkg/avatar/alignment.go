package avatar

import "github.com/matzehuels/facepile/pkg/errors"

// TextAlignment places a fallback glyph within its tile.
type TextAlignment int

// Alignments.
const (
	Center TextAlignment = iota
	TopLeft
	BottomLeft
)

var alignmentNames = [...]string{
	Center:     "center",
	TopLeft:    "topLeft",
	BottomLeft: "bottomLeft",
}

// threeWayAlignments is indexed by tile position in a three-tile composite.
// The right-hand glyphs hug the outer corners of their quarters.
var threeWayAlignments = [MaxTiles]TextAlignment{Center, BottomLeft, TopLeft}

// AlignmentFor returns the glyph alignment for the tile at index in a
// composite of total tiles.
func AlignmentFor(index, total int) TextAlignment {
	if total >= MaxTiles && index >= 0 && index < MaxTiles {
		return threeWayAlignments[index]
	}
	return Center
}

// Valid reports whether a is a known alignment.
func (a TextAlignment) Valid() bool {
	return a >= Center && a <= BottomLeft
}

// Offset reports whether the alignment nudges the glyph off center.
func (a TextAlignment) Offset() bool {
	return a == TopLeft || a == BottomLeft
}

func (a TextAlignment) String() string {
	if !a.Valid() {
		return "unknown"
	}
	return alignmentNames[a]
}

// MarshalText implements encoding.TextMarshaler.
func (a TextAlignment) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidAlignment, "unknown text alignment %d", int(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *TextAlignment) UnmarshalText(text []byte) error {
	parsed, err := ParseAlignment(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseAlignment converts "center", "topLeft" or "bottomLeft" to a
// TextAlignment.
func ParseAlignment(s string) (TextAlignment, error) {
	for i, name := range alignmentNames {
		if name == s {
			return TextAlignment(i), nil
		}
	}
	return 0, errors.New(errors.ErrCodeInvalidAlignment, "unknown text alignment %q", s)
}
