package cli

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bpmnlayout/pkg/layout/strategy"
	"github.com/matzehuels/bpmnlayout/pkg/pipeline"
)

// recommendCommand creates the recommend command, a dry run that reports the
// strategy the selector would pick.
func (c *CLI) recommendCommand() *cobra.Command {
	var (
		elements []string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "recommend [diagram.json|diagram.yaml]",
		Short: "Print the recommended layout strategy without laying out",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRecommend(cmd.Context(), args[0], elements, asJSON)
		},
	}

	cmd.Flags().StringSliceVar(&elements, "elements", nil, "recommend for a partial layout of these elements")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the recommendation and diagram statistics as JSON")

	return cmd
}

func (c *CLI) runRecommend(ctx context.Context, input string, elements []string, asJSON bool) error {
	d, err := pipeline.Parse(pipeline.Source{Path: input})
	if err != nil {
		return err
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg, algorithmLayered, true)
	if err != nil {
		return err
	}
	defer runner.Close()

	rec, err := runner.Recommend(ctx, d, elements)
	if err != nil {
		return err
	}
	stats := strategy.Analyze(d)

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Recommendation *strategy.Recommendation `json:"recommendation"`
			Stats          strategy.Stats           `json:"stats"`
		}{rec, stats})
	}

	printKeyValue("Strategy", StyleHighlight.Render(string(rec.Strategy)))
	printKeyValue("Confidence", string(rec.Confidence))
	printKeyValue("Reason", rec.Reason)
	printNewline()
	printDetail("%d flow nodes, %d sequence flows, %d lanes, %d pools, %d message flows, %d boundary events",
		stats.FlowNodes, stats.SequenceFlows, stats.Lanes, stats.Participants, stats.MessageFlows, stats.BoundaryEvents)
	printDetail("shape: %s", stats.Shape)
	printNewline()
	printNextStep("Lay out", appName+" layout --strategy "+string(rec.Strategy)+" "+input)
	return nil
}
