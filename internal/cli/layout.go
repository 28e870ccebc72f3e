package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bpmnlayout/pkg/bpmn"
	docio "github.com/matzehuels/bpmnlayout/pkg/io"
	"github.com/matzehuels/bpmnlayout/pkg/layout"
	"github.com/matzehuels/bpmnlayout/pkg/pipeline"
)

// layoutFlags holds the flags of the layout command.
type layoutFlags struct {
	output          string
	format          string
	algorithm       string
	noCache         bool
	refresh         bool
	noPoolExpansion bool
	interactive     bool
	diagnostics     bool
	opts            layout.Options
}

// options maps the flags onto pipeline options.
func (f *layoutFlags) options() pipeline.Options {
	opts := pipeline.Options{Options: f.opts, Refresh: f.refresh}
	if f.noPoolExpansion {
		off := false
		opts.PoolExpansion = &off
	}
	return opts
}

// outputPath returns where the result of input is written. "-" means
// standard output.
func (f *layoutFlags) outputPath(input string) string {
	if f.output != "" {
		return f.output
	}
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + ".layout" + ext
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var f layoutFlags

	cmd := &cobra.Command{
		Use:   "layout [diagram.json|diagram.yaml]",
		Short: "Lay out a BPMN diagram document",
		Long: `Lay out a BPMN diagram document.

The layout command reads a diagram document, picks a layout strategy (or uses
--strategy), computes shape positions, orthogonal flow routes, lane and pool
sizes and label positions, and writes the document back with the new geometry.

Pinned elements keep their position. With --elements only the listed
elements move and only the flows touching them are rebuilt.

Results are cached; use --refresh to recompute or --no-cache to bypass the
cache entirely.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), cmd, args[0], &f)
		},
	}

	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file, - for stdout (default: <input>.layout.<ext>)")
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "output format: json, yaml (default: from output file)")
	cmd.Flags().StringVar(&f.algorithm, "algorithm", algorithmLayered, "layered graph algorithm: layered, graphviz")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute and overwrite the cached result")
	cmd.Flags().BoolVarP(&f.interactive, "interactive", "i", false, "pick the strategy interactively")
	cmd.Flags().BoolVar(&f.diagnostics, "diagnostics", true, "print layout diagnostics")

	cmd.Flags().StringVarP(&f.opts.LayoutStrategy, "strategy", "s", "", "layout strategy: deterministic, elk-full, elk-lanes, elk-collaboration, elk-subset (default: recommended)")
	cmd.Flags().StringVar(&f.opts.LaneStrategy, "lanes", layout.LanePreserve, "lane strategy: preserve, ignore")
	cmd.Flags().StringVar(&f.opts.ScopeElementID, "scope", "", "lay out only the content of this pool or subprocess")
	cmd.Flags().StringSliceVar(&f.opts.ElementIDs, "elements", nil, "lay out only these elements (comma-separated)")
	cmd.Flags().IntVar(&f.opts.GridSnap, "grid", 0, "snap shapes to a grid of this pitch")
	cmd.Flags().BoolVar(&f.noPoolExpansion, "no-pool-expansion", false, "never grow pools to fit their content")
	cmd.Flags().BoolVar(&f.opts.ExpandSubprocesses, "expand-subprocesses", false, "expand collapsed subprocesses with internal flow")
	registerLayoutCompletions(cmd)

	return cmd
}

// runLayout loads the document, lays it out and writes the result.
func (c *CLI) runLayout(ctx context.Context, cmd *cobra.Command, input string, f *layoutFlags) error {
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	prog := newProgress(logger, "parse")
	d, err := pipeline.Parse(pipeline.Source{Path: input})
	if err != nil {
		return err
	}
	prog.done("file", input, "elements", len(d.Elements()), "flows", len(d.Flows()))

	runner, err := c.newRunner(ctx, cfg, f.algorithm, f.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := f.options()
	if f.interactive && opts.LayoutStrategy == "" {
		rec, err := runner.Recommend(ctx, d, opts.ElementIDs)
		if err != nil {
			return err
		}
		choice, err := pickStrategy(*rec, opts.Partial(), cmd.InOrStdin(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		if choice == "" {
			printInfo("Cancelled")
			return nil
		}
		opts.LayoutStrategy = string(choice)
	}

	spinner := newSpinner(ctx, cmd.ErrOrStderr(), "Laying out "+filepath.Base(input)+"...")
	restore := reportPasses(spinner)
	spinner.Start()

	prog = newProgress(logger, "layout")
	res, err := runner.Layout(ctx, d, opts)
	restore()
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()
	prog.done("strategy", res.Strategy, "cached", res.CacheHit)

	if ctx.Err() != nil {
		return ctx.Err()
	}

	out := f.outputPath(input)
	if err := writeDiagram(d, out, f.format); err != nil {
		return err
	}
	if out == "-" {
		return nil
	}

	printSuccess("Layout complete")
	printFile(out)
	printStats(len(d.Elements()), len(d.Flows()), res.Strategy, res.CacheHit)
	if res.Diagnostics == nil {
		return nil
	}
	if f.diagnostics {
		printNewline()
		printDiagnostics(os.Stdout, res.Diagnostics)
	}
	for _, id := range res.Diagnostics.RouteFallbacks {
		printWarning("flow %s was routed with the fallback template", id)
	}
	return nil
}

// writeDiagram writes d to path in format, or in the format the path
// implies when format is empty.
func writeDiagram(d *bpmn.Diagram, path, format string) error {
	f := docio.FormatOf(path)
	if format != "" {
		var err error
		if f, err = docio.ParseFormat(format); err != nil {
			return err
		}
	}
	if path == "-" {
		return docio.WriteDocument(d, os.Stdout, f)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}
	if err := docio.WriteDocument(d, file, f); err != nil {
		file.Close()
		return fmt.Errorf("write output %s: %w", path, err)
	}
	return file.Close()
}
