package cli

import (
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var shellGenerators = map[string]func(root *cobra.Command, w io.Writer) error{
	"bash":       func(r *cobra.Command, w io.Writer) error { return r.GenBashCompletionV2(w, true) },
	"zsh":        (*cobra.Command).GenZshCompletion,
	"fish":       func(r *cobra.Command, w io.Writer) error { return r.GenFishCompletion(w, true) },
	"powershell": (*cobra.Command).GenPowerShellCompletionWithDesc,
}

// completionCommand writes a shell completion script to stdout.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script for your shell. Project names stored in the
database complete for show, graph and render.

  source <(impactgraph completion bash)
  impactgraph completion zsh > "${fpath[1]}/_impactgraph"
  impactgraph completion fish | source
  impactgraph completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return shellGenerators[args[0]](cmd.Root(), cmd.OutOrStdout())
		},
	}
}

// completeProjectNames offers stored project names matching the prefix,
// case-insensitively. Names already on the command line are left out.
// With single set, only the first argument completes.
func (c *CLI) completeProjectNames(single bool) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if single && len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		s, err := c.open(cmd.Context(), sessionOptions{noCache: true})
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		defer s.Close()

		names, err := s.db.Names(cmd.Context())
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		return filterNames(names, args, toComplete), cobra.ShellCompDirectiveNoFileComp
	}
}

func filterNames(names, used []string, prefix string) []string {
	taken := make(map[string]bool, len(used))
	for _, u := range used {
		taken[u] = true
	}
	prefix = strings.ToLower(prefix)
	var out []string
	for _, n := range names {
		if !taken[n] && strings.HasPrefix(strings.ToLower(n), prefix) {
			out = append(out, n)
		}
	}
	return out
}
