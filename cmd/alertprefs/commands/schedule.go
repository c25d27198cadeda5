package commands

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-alerts/pkg/preferences"
)

func scheduleCmd() *cobra.Command {
	var (
		start    string
		end      string
		timezone string
		weekdays []string
	)
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Add a recurring DND window for a subject",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSubject(); err != nil {
				return err
			}
			input := preferences.ScheduleInput{
				SubjectType: subjectType,
				SubjectID:   subjectID,
				Start:       start,
				End:         end,
				Timezone:    timezone,
				Weekdays:    weekdays,
			}
			return container.Commands.SaveDndSchedule.Execute(cmd.Context(), input)
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "window start clock (15:04)")
	cmd.Flags().StringVar(&end, "end", "", "window end clock (15:04)")
	cmd.Flags().StringVar(&timezone, "tz", "", "IANA timezone for the window")
	cmd.Flags().StringSliceVar(&weekdays, "days", nil, "weekdays the window applies to (default every day)")
	return cmd
}
