package cli

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/biotree/pkg/editor"
	"github.com/matzehuels/biotree/pkg/errors"
	"github.com/matzehuels/biotree/pkg/render"
	"github.com/matzehuels/biotree/pkg/render/nodelink"
)

// Output formats.
const (
	formatDOT = "dot"
	formatSVG = "svg"
	formatPDF = "pdf"
	formatPNG = "png"
)

var renderFormats = []string{formatDOT, formatSVG, formatPDF, formatPNG}

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string   // output base path; extension added per format
	formats  []string // output formats: dot, svg, pdf, png
	detailed bool     // show memos, photo counts and branch-point traits
	editable bool     // draw connection ports as in edit mode
	scale    float64  // PNG scale factor
}

// renderCommand creates the render command for drawing the current diagram.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{scale: 2}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the current diagram with Graphviz",
		Long: `Render the current diagram with Graphviz.

Taxa are drawn as boxes tagged with their rank; broader ranks get heavier
outlines. Branch points are drawn as dots labelled with the acquired trait.

DOT output goes to stdout unless --output is set. SVG is rendered in-process;
PDF and PNG additionally need rsvg-convert (librsvg).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formats, err := parseFormats(formatsStr)
			if err != nil {
				return err
			}
			opts.formats = formats
			return c.runRender(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output base path (default: stdout for dot, else ./"+appName+")")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", formatDOT, "comma-separated formats: dot, svg, pdf, png")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include memos, photo counts and branch-point traits")
	cmd.Flags().BoolVar(&opts.editable, "editable", false, "draw connection ports")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")

	return cmd
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) ([]string, error) {
	if s == "" {
		return []string{formatDOT}, nil
	}
	var formats []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if !slices.Contains(renderFormats, f) {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown format %q (want %s)", f, strings.Join(renderFormats, ", "))
		}
		if !slices.Contains(formats, f) {
			formats = append(formats, f)
		}
	}
	return formats, nil
}

// runRender draws the stored diagram in every requested format.
func (c *CLI) runRender(cmd *cobra.Command, opts renderOpts) error {
	ctx := cmd.Context()

	var dot string
	err := c.withSession(ctx, editor.ModeView, func(s *session) error {
		dot = nodelink.ToDOT(s.Snapshot(), nodelink.Options{Detailed: opts.detailed, Editable: opts.editable})
		return nil
	})
	if err != nil {
		return err
	}

	if opts.output == "" && slices.Equal(opts.formats, []string{formatDOT}) {
		_, err := fmt.Fprint(cmd.OutOrStdout(), dot)
		return err
	}

	base := opts.output
	if base == "" {
		base = appName
	}
	base = strings.TrimSuffix(base, "."+opts.formats[0])

	var svg []byte
	for _, format := range opts.formats {
		if format != formatDOT && svg == nil {
			if svg, err = c.renderSVG(ctx, dot, opts.formats); err != nil {
				return err
			}
		}

		data, err := encode(format, dot, svg, opts.scale)
		if err != nil {
			return err
		}
		path := base + "." + format
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}

	printSuccess("Rendered %s", strings.Join(opts.formats, ", "))
	return nil
}

// renderSVG runs Graphviz behind a spinner naming the requested formats.
func (c *CLI) renderSVG(ctx context.Context, dot string, formats []string) ([]byte, error) {
	prog := newProgress(loggerFromContext(ctx))
	var svg []byte
	err := renderSpinner(ctx, c.status, formats).run(func() error {
		var err error
		svg, err = nodelink.RenderSVG(ctx, dot)
		return err
	})
	if err != nil {
		prog.failed("Graphviz failed", err)
		return nil, err
	}
	prog.done("Rendered SVG", "bytes", len(svg))
	return svg, ctx.Err()
}

// encode returns the output bytes for a single format.
func encode(format, dot string, svg []byte, scale float64) ([]byte, error) {
	switch format {
	case formatDOT:
		return []byte(dot), nil
	case formatSVG:
		return svg, nil
	case formatPDF:
		return render.ToPDF(svg)
	case formatPNG:
		return render.ToPNG(svg, scale)
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", format)
}
