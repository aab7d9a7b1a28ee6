package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/facepile/pkg/avatar"
	"github.com/matzehuels/facepile/pkg/config"
	"github.com/matzehuels/facepile/pkg/errors"
	"github.com/matzehuels/facepile/pkg/pipeline"
	"github.com/matzehuels/facepile/pkg/render"
	"github.com/matzehuels/facepile/pkg/render/sink"
	"github.com/matzehuels/facepile/pkg/size"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	collaborators []string // "Name" or "Name=image"
	size          string   // size class, overrides the group file
	formats       string   // comma-separated output formats
	output        string   // output file (single format) or base path
	title         string   // accessible title
	font          string   // font stack for initials
	noWash        bool     // disable the image wash overlay
	scale         float64  // PNG scale factor
	inline        bool     // embed images as data: URIs
	noCache       bool     // bypass the artifact cache
	refresh       bool     // re-render and overwrite cached artifacts
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [group.toml]",
		Short: "Render a group avatar",
		Long: `Render a group avatar from a TOML group file or --collaborator flags.

Collaborators are drawn in order. Only the first three are shown; anyone
without an image gets their initial on a gray tile.`,
		Example: `  facepile render team.toml -f svg,png
  facepile render -c Ann -c "Bo=https://example.com/bo.png" -s lg -o avatar.svg
  facepile render team.toml -f json -o -`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			popts, err := opts.pipelineOptions(args, cmd.Flags().Changed("inline"))
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), popts, &opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.collaborators, "collaborator", "c", nil, `collaborator as "Name" or "Name=image" (repeatable)`)
	cmd.Flags().StringVarP(&opts.size, "size", "s", "", "size: xs, sm, md (default), lg, xl")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg (default), png, pdf, json (comma-separated)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", `output file (single format), base path (multiple) or "-" for stdout`)
	cmd.Flags().StringVar(&opts.title, "title", "", "accessible title (default: collaborator names)")
	cmd.Flags().StringVar(&opts.font, "font", "", "font family for initials (CSS font stack)")
	cmd.Flags().BoolVar(&opts.noWash, "no-wash", false, "disable the dark wash over images")
	cmd.Flags().Float64Var(&opts.scale, "scale", pipeline.DefaultScale, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.inline, "inline", false, "embed images as data URIs (default on for png and pdf)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even if cached")

	return cmd
}

// pipelineOptions merges the group file (if any) with flags. Flag
// collaborators are appended after the file's.
func (o *renderOpts) pipelineOptions(args []string, inlineSet bool) (pipeline.Options, error) {
	var opts pipeline.Options
	if len(args) == 1 {
		cfg, err := config.Load(args[0])
		if err != nil {
			return opts, err
		}
		opts = cfg.PipelineOptions()
	}

	for _, s := range o.collaborators {
		collab, err := parseCollaborator(s)
		if err != nil {
			return opts, err
		}
		opts.Collaborators = append(opts.Collaborators, collab)
	}

	if o.size != "" {
		class, err := size.Parse(o.size)
		if err != nil {
			return opts, err
		}
		opts.Size = class
	}
	if formats := parseFormats(o.formats); len(formats) > 0 {
		opts.Formats = formats
	}
	if o.title != "" {
		opts.Title = o.title
	}
	if o.font != "" {
		opts.FontFamily = o.font
	}
	opts.NoWash = opts.NoWash || o.noWash
	opts.Scale = o.scale
	opts.Refresh = o.refresh
	opts.Inline = o.inline
	if !inlineSet {
		opts.Inline = needsInline(opts.Formats)
	}

	if len(opts.Collaborators) == 0 {
		return opts, errors.New(errors.ErrCodeInvalidCount, "no collaborators: pass a group file or --collaborator")
	}
	return opts, nil
}

// parseCollaborator parses "Name" or "Name=image".
func parseCollaborator(s string) (avatar.Collaborator, error) {
	name, src, _ := strings.Cut(s, "=")
	collab := avatar.Collaborator{Name: strings.TrimSpace(name), ImageSource: strings.TrimSpace(src)}
	if err := collab.Validate(); err != nil {
		return avatar.Collaborator{}, err
	}
	return collab, nil
}

func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, ro *renderOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	runner, err := c.newRunner(ro.noCache)
	if err != nil {
		return err
	}
	defer runner.Cache.Close()

	if needsInline(opts.Formats) && !render.Available() {
		printWarning("rsvg-convert not found; png and pdf output will fail")
	}

	opts.Logger = logger
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		return err
	}

	// Execute sorts and deduplicates; mirror that for path assignment.
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	paths := outputPaths(ro.output, opts.Formats)
	for _, format := range opts.Formats {
		data := result.Artifacts[format]
		path := paths[format]
		if path == "-" {
			if _, err := os.Stdout.Write(data); err != nil {
				return err
			}
			continue
		}
		if err := writeFile(path, data); err != nil {
			return err
		}
	}

	if len(opts.Formats) == 1 && ro.output == "-" {
		return nil
	}
	prog.done(fmt.Sprintf("Rendered %d file(s)", len(opts.Formats)))
	printSuccess("Rendered %s", StyleValue.Render(sink.Title(result.Composite)))
	printAvatarStats(result.Composite.Size.String(), len(result.Composite.Cells), countGlyphs(result.Composite), result.CacheInfo.AllHit())
	for _, format := range opts.Formats {
		printFile(paths[format])
	}
	return nil
}

// outputPaths assigns a file to each format. A single format uses output
// as-is. Multiple formats treat output as a base path and append the
// extension. "-" writes the only format to stdout.
func outputPaths(output string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := defaultOutputBase
	if output != "" && output != "-" {
		base = strings.TrimSuffix(output, filepath.Ext(output))
	}
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func countGlyphs(c *avatar.Composite) int {
	n := 0
	for _, cell := range c.Cells {
		if _, ok := cell.Glyph(); ok {
			n++
		}
	}
	return n
}
