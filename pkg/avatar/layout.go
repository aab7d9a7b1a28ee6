package avatar

import (
	"math"

	"github.com/matzehuels/facepile/pkg/errors"
)

// MaxTiles is the largest number of collaborators a composite shows.
const MaxTiles = 3

// Tile is a rectangular region of the composite frame, in the same unit as
// the frame diameter. Top and Left are measured from the frame's top-left
// corner.
type Tile struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right returns the horizontal end of the tile.
func (t Tile) Right() float64 { return t.Left + t.Width }

// Bottom returns the vertical end of the tile.
func (t Tile) Bottom() float64 { return t.Top + t.Height }

// CenterX returns the horizontal center of the tile.
func (t Tile) CenterX() float64 { return t.Left + t.Width/2 }

// CenterY returns the vertical center of the tile.
func (t Tile) CenterY() float64 { return t.Top + t.Height/2 }

// tiling is the closed set of arrangements the engine knows.
type tiling int

const (
	tilingOne tiling = iota + 1
	tilingTwo
	tilingThreeOrMore
)

func tilingFor(count int) (tiling, error) {
	switch {
	case count <= 0:
		return 0, errors.New(errors.ErrCodeInvalidCount, "tile count must be positive, got %d", count)
	case count == 1:
		return tilingOne, nil
	case count == 2:
		return tilingTwo, nil
	case count == MaxTiles:
		return tilingThreeOrMore, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidCount, "tile count %d exceeds %d; truncate collaborators first", count, MaxTiles)
}

// Layout tiles a square frame of side frameSize into count regions, in
// emission order left column first, then top to bottom.
//
// The two-tile case leaves a seam of BorderWidth between the halves, so the
// tiles cover frameSize-BorderWidth horizontally rather than partitioning
// the frame exactly. The circular mask hides the difference.
func Layout(count int, frameSize float64) ([]Tile, error) {
	if frameSize <= 0 || math.IsNaN(frameSize) || math.IsInf(frameSize, 0) {
		return nil, errors.New(errors.ErrCodeInvalidFrame, "frame size must be a positive number, got %v", frameSize)
	}
	kind, err := tilingFor(count)
	if err != nil {
		return nil, err
	}
	if kind != tilingOne && frameSize < BorderWidth {
		return nil, errors.New(errors.ErrCodeInvalidFrame, "frame size %v is narrower than the %v seam", frameSize, BorderWidth)
	}

	half := frameSize / 2
	seam := BorderWidth / 2
	left := Tile{Top: 0, Left: 0, Width: half - seam, Height: frameSize}

	switch kind {
	case tilingOne:
		return []Tile{{Top: 0, Left: 0, Width: frameSize, Height: frameSize}}, nil
	case tilingTwo:
		return []Tile{
			left,
			{Top: 0, Left: half + seam, Width: half - seam, Height: frameSize},
		}, nil
	default:
		return []Tile{
			left,
			{Top: 0, Left: half + seam, Width: half, Height: half - seam},
			{Top: half + seam, Left: half + seam, Width: half, Height: half - seam},
		}, nil
	}
}
