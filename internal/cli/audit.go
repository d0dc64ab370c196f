package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"flowcore/internal/editor"
)

// errIssues is returned by audit --strict when the document is not clean.
var errIssues = errors.New("flow has issues")

func (c *CLI) auditCommand() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "audit [file]",
		Short: "Check a flow document against the graph rules",
		Long:  "Audit reports fan-in, self loops, direction and type mismatches, dangling connections and nodes without a consumer. Use - to read from stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flow, err := readFlow(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			report := editor.Audit(flow)
			c.Logger.Debug().Str("file", args[0]).Int("nodes", len(flow.Nodes)).Int("issues", len(report.Issues)).Msg("flow audited")

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s %s  %d nodes, %d connections\n", brand.Sprint(appName), args[0], len(flow.Nodes), len(flow.Connections))
			if report.Clean() {
				fmt.Fprintf(w, "%s no issues\n", statusIcon(true))
				return nil
			}

			rows := make([][]string, 0, len(report.Issues))
			for _, i := range report.Issues {
				subject := i.NodeID
				if i.ConnectionID != "" {
					subject = i.ConnectionID
				}
				rows = append(rows, []string{string(i.Kind), subject, i.Message})
			}
			fmt.Fprintln(w)
			table(w, []string{"KIND", "SUBJECT", "MESSAGE"}, rows)
			fmt.Fprintf(w, "\n%s %s\n", statusIcon(false), warn.Sprintf("%d issue(s)", len(report.Issues)))

			if strict {
				return errIssues
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when any issue is found")
	return cmd
}
