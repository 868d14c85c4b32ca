package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanproy/minorminer/pkg/viz"
)

// renderCommand creates the render command: it draws a previously computed
// embedding over its target graph.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output     string
		engine     string
		showUnused bool
	)

	cmd := &cobra.Command{
		Use:   "render <embedding.json> <target-graph>",
		Short: "Draw an embedding over the target graph as SVG, PNG, or DOT",
		Long: `Draw an embedding over the target graph.

The embedding file is the JSON written by "embed --output". The output
format follows the -o extension: .svg, .png, or .dot.

Examples:
  minorminer render out.json chimera.txt -o embedding.svg
  minorminer render out.json target.json -o embedding.png --show-unused`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := readMappingFile(args[0])
			if err != nil {
				return err
			}
			tgt, err := readGraphFile(args[1])
			if err != nil {
				return err
			}

			opts := viz.Options{ShowUnused: showUnused, Engine: engine}
			dot := viz.ToDOT(tgt, m.Mapping, opts)

			p := newProgress(c.Logger)
			var data []byte
			switch ext := strings.ToLower(filepath.Ext(output)); ext {
			case ".dot", "":
				data = []byte(dot)
				if output == "" {
					fmt.Print(dot)
					return nil
				}
			case ".svg":
				data, err = viz.RenderSVG(dot, opts)
			case ".png":
				data, err = viz.RenderPNG(dot, opts)
			default:
				return fmt.Errorf("unsupported output format %q (want .svg, .png, or .dot)", ext)
			}
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			p.done("Rendered embedding")
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.svg, .png, or .dot; stdout DOT if empty)")
	cmd.Flags().StringVar(&engine, "engine", "neato", "graphviz layout engine")
	cmd.Flags().BoolVar(&showUnused, "show-unused", false, "draw target nodes outside every chain")

	return cmd
}
