package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"flowcore/internal/api/models"
	"flowcore/internal/editor"
)

func (c *CLI) sceneCommand() *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "scene [file]",
		Short: "Print the canvas scene computed for a flow document",
		Long:  "Scene loads the document into an idle editor and prints node bounds, pin centers and edge curves as JSON, using the --layout metrics.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flow, err := readFlow(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}

			e := editor.New(editor.WithLayout(c.layout), editor.WithLogger(c.Logger))
			e.Load(key, flow)

			data, err := json.MarshalIndent(e.Scene(), "", "  ")
			if err != nil {
				return fmt.Errorf("encode scene: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}

	cmd.Flags().StringVar(&key, "key", "local", "document key reported in the scene")
	return cmd
}

func (c *CLI) templatesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List the node types and their default pins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0, len(editor.Templates()))
			for _, tpl := range editor.Templates() {
				var in, out []string
				for _, p := range tpl.Pins {
					pin := p.Label + ":" + p.DataType
					if p.Direction == models.PinInput {
						in = append(in, pin)
					} else {
						out = append(out, pin)
					}
				}
				rows = append(rows, []string{string(tpl.Type), tpl.Label, join(in), join(out)})
			}
			table(cmd.OutOrStdout(), []string{"TYPE", "LABEL", "INPUTS", "OUTPUTS"}, rows)
			return nil
		},
	}
}

func join(pins []string) string {
	if len(pins) == 0 {
		return "-"
	}
	return strings.Join(pins, ", ")
}
