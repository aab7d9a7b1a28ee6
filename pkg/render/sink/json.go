package sink

import (
	"encoding/json"

	"github.com/matzehuels/facepile/pkg/avatar"
)

// JSONFormat identifies the document layout written by RenderJSON.
const JSONFormat = "facepile/v1"

type jsonOutput struct {
	Format      string  `json:"format"`
	Title       string  `json:"title"`
	BorderWidth float64 `json:"border_width"`
	*avatar.Composite
}

// RenderJSON serializes the resolved composite: size, mask, and every cell
// with its tile geometry and kind-tagged content.
func RenderJSON(c *avatar.Composite) ([]byte, error) {
	return json.MarshalIndent(jsonOutput{
		Format:      JSONFormat,
		Title:       Title(c),
		BorderWidth: avatar.BorderWidth,
		Composite:   c,
	}, "", "  ")
}
