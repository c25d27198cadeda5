package commands

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-alerts/pkg/commands"
	"github.com/goliatone/go-alerts/pkg/preferences"
)

func setCmd() *cobra.Command {
	var (
		intensity string
		altDesign bool
		vibeDelay bool
	)
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update alert preference values for a subject",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSubject(); err != nil {
				return err
			}
			if intensity != "" {
				msg := commands.SetVibeIntensity{
					SubjectType: subjectType,
					SubjectID:   subjectID,
					Intensity:   intensity,
				}
				if err := container.Commands.SetVibeIntensity.Execute(cmd.Context(), msg); err != nil {
					return err
				}
			}
			input := preferences.PreferenceInput{
				SubjectType: subjectType,
				SubjectID:   subjectID,
			}
			if cmd.Flags().Changed("alt-design") {
				input.AlternativeDesign = &altDesign
			}
			if cmd.Flags().Changed("vibe-delay") {
				input.VibeDelay = &vibeDelay
			}
			if input.AlternativeDesign == nil && input.VibeDelay == nil {
				return nil
			}
			return container.Commands.UpsertPreference.Execute(cmd.Context(), input)
		},
	}
	cmd.Flags().StringVar(&intensity, "vibe", "", "vibe intensity (low, medium, high)")
	cmd.Flags().BoolVar(&altDesign, "alt-design", false, "enable the alternative notification layout")
	cmd.Flags().BoolVar(&vibeDelay, "vibe-delay", false, "defer vibes when a notification lands")
	return cmd
}
