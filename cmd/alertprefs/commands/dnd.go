package commands

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-alerts/pkg/commands"
)

func dndCmd() *cobra.Command {
	var (
		mode   string
		manual bool
	)
	cmd := &cobra.Command{
		Use:   "dnd",
		Short: "Configure Do Not Disturb behavior for a subject",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSubject(); err != nil {
				return err
			}
			msg := commands.SetDndMode{
				SubjectType: subjectType,
				SubjectID:   subjectID,
				Mode:        mode,
			}
			if cmd.Flags().Changed("manual") {
				msg.Manual = &manual
			}
			return container.Commands.SetDndMode.Execute(cmd.Context(), msg)
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "show", "notification mode while DND is active (show, hide)")
	cmd.Flags().BoolVar(&manual, "manual", false, "toggle manual DND")
	return cmd
}
