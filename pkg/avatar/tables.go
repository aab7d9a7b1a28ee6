package avatar

import "github.com/matzehuels/facepile/pkg/size"

// BorderWidth is the seam between tiles and the width of the ring around the
// composite frame.
const BorderWidth = 2.0

var frameDiameters = map[size.Class]float64{
	size.XS: 36,
	size.SM: 60,
	size.MD: 108,
	size.LG: 156,
	size.XL: 198,
}

var defaultFontSizes = map[size.Class]float64{
	size.XS: 20,
	size.SM: 32,
	size.MD: 56,
	size.LG: 90,
	size.XL: 106,
}

// FrameDiameter returns the outer diameter of a composite of the given size.
func FrameDiameter(c size.Class) (float64, error) {
	d, ok := frameDiameters[c]
	if !ok {
		return 0, c.Validate()
	}
	return d, nil
}

// DefaultFontSize returns the nominal glyph font size for the given size.
// Glyphs are drawn at half this value.
func DefaultFontSize(c size.Class) (float64, error) {
	f, ok := defaultFontSizes[c]
	if !ok {
		return 0, c.Validate()
	}
	return f, nil
}
