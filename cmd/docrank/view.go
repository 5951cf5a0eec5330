package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"docrank/internal/output"
	"docrank/internal/tui"
)

func newViewCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "view <artifact.json>",
		Short: "Browse a ranking artifact interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := output.Read(args[0])
			if err != nil {
				return err
			}
			a.logger.Debug("viewing artifact", zap.String("path", args[0]), zap.Int("sections", len(doc.ExtractedSections)))
			_, err = tea.NewProgram(tui.New(doc), tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
}
