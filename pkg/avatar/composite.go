package avatar

import (
	"github.com/matzehuels/facepile/pkg/errors"
	"github.com/matzehuels/facepile/pkg/size"
)

// Mask defaults. The ring is drawn over the clipped tiles.
const (
	MaskCircle = "circle"
	RingColor  = "#fff"
	FrameFill  = "white"
)

// Collaborator is one person shown in a composite.
type Collaborator struct {
	Name        string `json:"name" toml:"name"`
	ImageSource string `json:"image,omitempty" toml:"image"`
}

// HasImage reports whether the collaborator brings a picture.
func (c Collaborator) HasImage() bool { return c.ImageSource != "" }

// Validate checks the name and image source.
func (c Collaborator) Validate() error {
	if err := errors.ValidateName(c.Name); err != nil {
		return err
	}
	return errors.ValidateImageSource(c.ImageSource)
}

// Truncate returns at most the first MaxTiles collaborators.
func Truncate(collaborators []Collaborator) []Collaborator {
	if len(collaborators) > MaxTiles {
		return collaborators[:MaxTiles]
	}
	return collaborators
}

// Mask is the circular clip applied to the whole composite, with a ring
// border drawn around it.
type Mask struct {
	Shape     string  `json:"shape"`
	Diameter  float64 `json:"diameter"`
	RingWidth float64 `json:"ring_width"`
	RingColor string  `json:"ring_color"`
	Fill      string  `json:"fill"`
}

// Composite is a fully resolved group avatar ready for a renderer.
type Composite struct {
	Size     size.Class `json:"size"`
	Diameter float64    `json:"diameter"`
	Cells    []Cell     `json:"cells"`
	Mask     Mask       `json:"mask"`
}

// Compose lays out collaborators in a frame of the given size and resolves
// each tile's content. Lists longer than MaxTiles are truncated; only the
// first three collaborators are shown.
func Compose(collaborators []Collaborator, c size.Class) (*Composite, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if len(collaborators) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidCount, "at least one collaborator is required")
	}
	shown := Truncate(collaborators)
	for i, collab := range shown {
		if err := collab.Validate(); err != nil {
			return nil, errors.Wrap(errors.GetCode(err), err, "collaborator %d", i)
		}
	}

	diameter, err := FrameDiameter(c)
	if err != nil {
		return nil, err
	}
	tiles, err := Layout(len(shown), diameter)
	if err != nil {
		return nil, err
	}

	cells := make([]Cell, len(tiles))
	for i, tile := range tiles {
		align := AlignmentFor(i, len(shown))
		content, err := contentFor(shown[i], tile, align, c)
		if err != nil {
			return nil, err
		}
		cells[i] = Cell{Index: i, Tile: tile, Alignment: align, Content: content}
	}

	return &Composite{
		Size:     c,
		Diameter: diameter,
		Cells:    cells,
		Mask: Mask{
			Shape:     MaskCircle,
			Diameter:  diameter,
			RingWidth: BorderWidth,
			RingColor: RingColor,
			Fill:      FrameFill,
		},
	}, nil
}

func contentFor(collab Collaborator, tile Tile, align TextAlignment, c size.Class) (Content, error) {
	if collab.HasImage() {
		return ImageContent{
			Source:     collab.ImageSource,
			AltText:    collab.Name,
			Fit:        ImageFit,
			Background: ImageBackground,
			Wash:       true,
		}, nil
	}
	g, err := RenderFallback(tile.Height, collab.Name, align, c)
	if err != nil {
		return nil, err
	}
	return GlyphContent{Glyph: g}, nil
}
