package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bpmnlayout/pkg/layout"
	"github.com/matzehuels/bpmnlayout/pkg/layout/strategy"
)

var completionShells = map[string]func(root *cobra.Command, w io.Writer) error{
	"bash":       func(r *cobra.Command, w io.Writer) error { return r.GenBashCompletionV2(w, true) },
	"zsh":        (*cobra.Command).GenZshCompletion,
	"fish":       func(r *cobra.Command, w io.Writer) error { return r.GenFishCompletion(w, true) },
	"powershell": (*cobra.Command).GenPowerShellCompletionWithDesc,
}

func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion bash|zsh|fish|powershell",
		Short: "Print a shell completion script",
		Example: `  source <(bpmnlayout completion bash)
  bpmnlayout completion zsh > "${fpath[1]}/_bpmnlayout"
  bpmnlayout completion fish | source`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			gen, ok := completionShells[args[0]]
			if !ok {
				return fmt.Errorf("unsupported shell %q", args[0])
			}
			return gen(cmd.Root(), cmd.OutOrStdout())
		},
	}
}

// fixedValues completes a flag from a closed set of values.
func fixedValues(values ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}

// registerLayoutCompletions completes the enumerated layout flags on cmd.
func registerLayoutCompletions(cmd *cobra.Command) {
	names := make([]string, len(strategy.All))
	for i, st := range strategy.All {
		names[i] = string(st)
	}
	_ = cmd.RegisterFlagCompletionFunc("strategy", fixedValues(names...))
	_ = cmd.RegisterFlagCompletionFunc("lanes", fixedValues(layout.LanePreserve, layout.LaneIgnore))
	_ = cmd.RegisterFlagCompletionFunc("algorithm", fixedValues(algorithmLayered, algorithmGraphviz))
}
