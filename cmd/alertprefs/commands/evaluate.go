package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	pkgoptions "github.com/goliatone/go-alerts/pkg/options"
	"github.com/goliatone/go-alerts/pkg/preferences"
	opts "github.com/goliatone/go-options"
)

func evaluateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Print the effective alert values for a subject",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSubject(); err != nil {
				return err
			}
			req := preferences.EvaluationRequest{
				Scopes: []pkgoptions.PreferenceScopeRef{
					{
						Scope:       opts.NewScope(subjectType, opts.ScopePriorityUser),
						SubjectType: subjectType,
						SubjectID:   subjectID,
					},
				},
			}
			result, err := container.Preferences.Evaluate(cmd.Context(), req)
			if err != nil {
				return err
			}
			eff := result.Effective
			fmt.Printf("vibe intensity:      %s\n", eff.VibeIntensity)
			fmt.Printf("alternative design:  %t\n", eff.AlternativeDesign)
			fmt.Printf("vibe delay:          %t\n", eff.VibeDelay)
			fmt.Printf("dnd active:          %t", eff.DndActive)
			if result.DndReason != "" {
				fmt.Printf(" (%s)", result.DndReason)
			}
			fmt.Println()
			fmt.Printf("dnd notifications:   %s\n", eff.DndMode)
			fmt.Printf("reason:              %s\n", result.Reason)
			return nil
		},
	}
	return cmd
}
