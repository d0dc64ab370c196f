// Package cli implements the flowctl command-line interface: offline auditing,
// rendering and inspection of endpoint flow documents.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"flowcore/internal/api/models"
	"flowcore/internal/editor"
)

const appName = "flowctl"

// CLI holds shared state for all commands.
type CLI struct {
	Logger zerolog.Logger

	layoutPath string
	noColor    bool
	layout     editor.Layout
}

// New creates a CLI logging to w at level.
func New(w io.Writer, level zerolog.Level) *CLI {
	return &CLI{
		Logger: zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}).Level(level).With().Timestamp().Logger(),
		layout: editor.DefaultLayout(),
	}
}

func (c *CLI) SetLogLevel(level zerolog.Level) {
	c.Logger = c.Logger.Level(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "flowctl inspects endpoint flow documents",
		Long:         `flowctl audits, renders and lays out the flow documents edited on the endpoint canvas, without a running server.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.noColor {
				color.NoColor = true
			}
			if c.layoutPath == "" {
				return nil
			}
			l, err := LoadLayout(c.layoutPath)
			if err != nil {
				return err
			}
			c.layout = l
			c.Logger.Debug().Str("file", c.layoutPath).Msg("canvas layout loaded")
			return nil
		},
	}

	root.PersistentFlags().StringVar(&c.layoutPath, "layout", "", "TOML file overriding the canvas metrics")
	root.PersistentFlags().BoolVar(&c.noColor, "no-color", false, "disable colored output")

	root.AddCommand(c.auditCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.sceneCommand())
	root.AddCommand(c.templatesCommand())

	return root
}

// readFlow decodes a flow document from path, or from stdin when path is "-".
// Both a bare flow and an endpoint detail payload (with a "flow" field) are
// accepted.
func readFlow(path string, stdin io.Reader) (models.Flow, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return models.Flow{}, fmt.Errorf("read %s: %w", path, err)
	}

	var doc struct {
		models.Flow
		Inner *models.Flow `json:"flow"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return models.Flow{}, fmt.Errorf("decode %s: %w", path, err)
	}
	if doc.Inner != nil {
		return *doc.Inner, nil
	}
	return doc.Flow, nil
}
