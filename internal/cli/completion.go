package cli

import (
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stagger/pkg/layout"
	"github.com/matzehuels/stagger/pkg/pipeline"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for stagger.

Besides commands, the scripts complete --strategy, --orientation and
--format values, and offer only .json and .toml files where a command
expects an item dataset.

  $ source <(stagger completion bash)
  $ stagger completion zsh > "${fpath[1]}/_stagger"
  $ stagger completion fish > ~/.config/fish/completions/stagger.fish
  PS> stagger completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}

	return cmd
}

// completeChoices completes a flag from a fixed set of values.
func completeChoices(choices ...string) cobra.CompletionFunc {
	return func(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var out []string
		for _, c := range choices {
			if strings.HasPrefix(c, toComplete) {
				out = append(out, c)
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
}

// completeFormats completes the comma-separated --format list. Formats
// already named are not offered again.
func completeFormats(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	done, last := "", toComplete
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		done, last = toComplete[:i+1], toComplete[i+1:]
	}
	seen := make(map[string]bool)
	for _, f := range strings.Split(done, ",") {
		seen[f] = true
	}

	var out []string
	for f := range pipeline.ValidFormats {
		if !seen[f] && strings.HasPrefix(f, last) {
			out = append(out, done+f)
		}
	}
	sort.Strings(out)
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

// completeItemFile offers dataset files for the first positional argument.
func completeItemFile(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"json", "toml"}, cobra.ShellCompDirectiveFilterFileExt
}

// registerEngineCompletions wires value completion for the engine flags.
func registerEngineCompletions(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("strategy", completeChoices(layout.StrategyStaggered, layout.StrategyGrid))
	_ = cmd.RegisterFlagCompletionFunc("orientation", completeChoices("vertical", "horizontal"))
}
