package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/facepile/pkg/avatar"
	"github.com/matzehuels/facepile/pkg/size"
)

// layoutOpts holds the command-line flags for the layout command.
type layoutOpts struct {
	count  int
	size   string
	asJSON bool
}

// layoutRow is one tile with the glyph placement it would get.
type layoutRow struct {
	Index     int                  `json:"index"`
	Tile      avatar.Tile          `json:"tile"`
	Alignment avatar.TextAlignment `json:"alignment"`
	FontSize  float64              `json:"font_size"`
	Padding   float64              `json:"padding"`
}

// layoutCommand creates the layout command, which prints tile geometry
// without rendering anything.
func (c *CLI) layoutCommand() *cobra.Command {
	opts := layoutOpts{count: avatar.MaxTiles, size: size.Default.String()}

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Print tile rectangles for a collaborator count and size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			class, err := size.Parse(opts.size)
			if err != nil {
				return err
			}
			rows, diameter, err := computeLayout(opts.count, class)
			if err != nil {
				return err
			}
			if opts.asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}
			printLayout(class, diameter, rows)
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.count, "count", "n", opts.count, "number of collaborators (1-3)")
	cmd.Flags().StringVarP(&opts.size, "size", "s", opts.size, "size: xs, sm, md, lg, xl")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print JSON instead of a table")

	return cmd
}

// computeLayout returns one row per tile for count collaborators.
func computeLayout(count int, class size.Class) ([]layoutRow, float64, error) {
	diameter, err := avatar.FrameDiameter(class)
	if err != nil {
		return nil, 0, err
	}
	tiles, err := avatar.Layout(count, diameter)
	if err != nil {
		return nil, 0, err
	}
	rows := make([]layoutRow, len(tiles))
	for i, t := range tiles {
		align := avatar.AlignmentFor(i, len(tiles))
		g, err := avatar.RenderFallback(t.Height, "X", align, class)
		if err != nil {
			return nil, 0, err
		}
		rows[i] = layoutRow{Index: i, Tile: t, Alignment: align, FontSize: g.FontSize, Padding: g.Padding}
	}
	return rows, diameter, nil
}

func printLayout(class size.Class, diameter float64, rows []layoutRow) {
	fmt.Println(StyleTitle.Render("Layout"))
	printKeyValue("Size", class.String())
	printKeyValue("Diameter", StyleNumber.Render(formatNum(diameter)))
	printKeyValue("Border", formatNum(avatar.BorderWidth))

	table := make([][]string, len(rows))
	for i, r := range rows {
		table[i] = []string{
			strconv.Itoa(r.Index),
			formatNum(r.Tile.Top),
			formatNum(r.Tile.Left),
			formatNum(r.Tile.Width),
			formatNum(r.Tile.Height),
			r.Alignment.String(),
			formatNum(r.FontSize),
			formatNum(r.Padding),
		}
	}
	fmt.Println(renderTable([]string{"#", "Top", "Left", "Width", "Height", "Align", "Font", "Pad"}, table))
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
